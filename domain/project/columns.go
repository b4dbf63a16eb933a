// Package project names the well-known columns of the projects export
// and the fields the pipeline derives from them.
package project

// Source columns read by the pipeline and the views
const (
	ColTopic                 = "Topic"
	ColRegion                = "Region"
	ColOwner                 = "Owner"
	ColActualMargin          = "Actual Margin %"
	ColEstimatedMargin       = "Estimated Margin %"
	ColQuotedLaborHours      = "Quoted Labor Hours"
	ColActualLaborHours      = "Actual Labor Hours"
	ColProjectedEndDate      = "Projected End Date"
	ColTotalCostsVariance    = "Total Costs Variance $"
	ColLaborVariance         = "Labor Variance $"
	ColPartsVariance         = "Parts Variance $"
	ColTotalInstallPrice     = "Calculated Total Install Price $"
	ColTotalCosts            = "Total Costs $"
	ColMarginDifference      = "Margin_Difference"
	ColIsNegativeMargin      = "Is_Negative_Margin"
	ColLaborHoursVariance    = "Labor_Hours_Variance"
	ColLaborHoursVariancePct = "Labor_Hours_Variance_Pct"
)

// AnalysisColumns is the allowlist sent to the LLM, in prompt order
var AnalysisColumns = []string{
	ColTopic,
	ColRegion,
	ColOwner,
	ColActualMargin,
	ColTotalCostsVariance,
	ColQuotedLaborHours,
	ColActualLaborHours,
	ColLaborVariance,
	ColPartsVariance,
	ColTotalInstallPrice,
}
