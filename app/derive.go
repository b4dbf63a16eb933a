package app

import (
	"profitpulse/adapters/coercer"
	"profitpulse/domain/project"
	"profitpulse/domain/table"
)

// deriveFields appends the computed margin and labor columns to projects.
// Without an Actual Margin % column Margin_Difference is 0 for every row.
func deriveFields(projects *table.Table) {
	n := projects.NumRows()

	marginDiff := make([]table.Value, n)
	negative := make([]table.Value, n)
	hasActual := projects.Has(project.ColActualMargin)
	hasEstimated := projects.Has(project.ColEstimatedMargin)

	for i := 0; i < n; i++ {
		if !hasActual {
			marginDiff[i] = table.NewNumericValue(0)
			negative[i] = table.NewBooleanValue(false)
			continue
		}
		actual, ok := numericCell(projects, project.ColActualMargin, i)
		if !ok {
			marginDiff[i] = table.NewMissingValue()
			negative[i] = table.NewBooleanValue(false)
			continue
		}

		estimated := 0.0
		if hasEstimated {
			e, ok := numericCell(projects, project.ColEstimatedMargin, i)
			if !ok {
				marginDiff[i] = table.NewMissingValue()
				negative[i] = table.NewBooleanValue(actual < 0)
				continue
			}
			estimated = e
		}

		marginDiff[i] = table.NewNumericValue(actual - estimated)
		negative[i] = table.NewBooleanValue(actual < 0)
	}

	projects.SetColumn(project.ColMarginDifference, table.RoleDerived, marginDiff)
	projects.SetColumn(project.ColIsNegativeMargin, table.RoleDerived, negative)

	if !projects.Has(project.ColQuotedLaborHours) || !projects.Has(project.ColActualLaborHours) {
		return
	}

	variance := make([]table.Value, n)
	variancePct := make([]table.Value, n)
	for i := 0; i < n; i++ {
		quoted, qok := numericCell(projects, project.ColQuotedLaborHours, i)
		actual, aok := numericCell(projects, project.ColActualLaborHours, i)
		if !qok || !aok {
			variance[i] = table.NewMissingValue()
			variancePct[i] = table.NewMissingValue()
			continue
		}

		diff := actual - quoted
		variance[i] = table.NewNumericValue(diff)
		if quoted == 0 {
			variancePct[i] = table.NewMissingValue()
		} else {
			variancePct[i] = table.NewNumericValue(diff / quoted)
		}
	}

	projects.SetColumn(project.ColLaborHoursVariance, table.RoleDerived, variance)
	projects.SetColumn(project.ColLaborHoursVariancePct, table.RoleDerived, variancePct)
}

// numericCell reads a cell as a number, tolerating hour columns that arrived as text
func numericCell(t *table.Table, name string, row int) (float64, bool) {
	return coercer.CoerceNumericCell(t.Value(name, row))
}
