package source

import (
	"encoding/csv"
	"fmt"
	"io"

	"profitpulse/domain/table"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the header row and every row using each cell's display form
func WriteCSV(t *table.Table, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			record[j] = c.Cells[i].String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the table to the first sheet of a new workbook at path.
// Numbers, booleans and timestamps keep their native cell types.
func WriteXLSX(t *table.Table, path string) error {
	f, err := buildWorkbook(t)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteXLSXTo streams the workbook WriteXLSX would create to w
func WriteXLSXTo(t *table.Table, w io.Writer) error {
	f, err := buildWorkbook(t)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildWorkbook(t *table.Table) (_ *excelize.File, err error) {
	f := excelize.NewFile()
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, t.NumCols())
	for j, name := range t.Names() {
		header[j] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("create date style: %w", err)
	}

	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c.Cells[i].Raw()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for j, c := range cols {
		if c.Role != table.RoleDate || t.NumRows() == 0 {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(j+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(j+1, t.NumRows()+1)
		if err := f.SetCellStyle(sheet, top, bottom, dateStyle); err != nil {
			return nil, fmt.Errorf("style date column %s: %w", c.Name, err)
		}
	}

	return f, nil
}
