package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"profitpulse/adapters/coercer"
	"profitpulse/domain/core"
	"profitpulse/domain/table"
	"profitpulse/internal"

	"github.com/xuri/excelize/v2"
)

// File types handled by DataReader
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

// DataReader reads one delimited-text or workbook export into a table
type DataReader struct {
	filePath string
	fileType string
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewDataReader picks the file type from the extension; anything but .xlsx is read as CSV
func NewDataReader(filePath string, c *coercer.TypeCoercer, logger *internal.Logger) *DataReader {
	fileType := FileTypeCSV
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		fileType = FileTypeXLSX
	}
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, fileType: fileType, coercer: c, logger: logger.With("SourceReader")}
}

// Path returns the file this reader reads
func (r *DataReader) Path() string { return r.filePath }

// ReadTable reads the file and returns a table whose columns all carry RoleText.
// Columns whose present cells are all plain numbers hold numeric cells.
func (r *DataReader) ReadTable(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := r.ReadRaw()
	if err != nil {
		return nil, err
	}

	t := table.New(len(raw.Rows))
	for j, header := range raw.Headers {
		t.SetColumn(header, table.RoleText, r.coercer.InferColumn(raw.column(j)))
	}
	return t, nil
}

// ReadRaw reads headers and string cells without inference
func (r *DataReader) ReadRaw() (*RawData, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case FileTypeCSV:
		rows, err = r.readCSVRows()
	case FileTypeXLSX:
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupported, r.fileType)
	}
	if err != nil {
		return nil, err
	}

	raw, err := processRows(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d columns, %d rows)",
		r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(raw.Headers), len(raw.Rows))
	return raw, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of the workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.ErrEmptySource
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	// GetRows keeps fully blank rows inside the used range; CSV reading skips them
	kept := rows[:0]
	for _, row := range rows {
		if !isBlank(row) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// processRows turns the header row into trimmed, unique names and pads short rows
func processRows(rows [][]string) (*RawData, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptySource
	}

	headers := uniqueHeaders(rows[0])
	data := &RawData{Headers: headers, Rows: make([][]string, 0, len(rows)-1)}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) > len(headers) {
			return nil, core.NewRaggedRowError(i+1, len(row), len(headers))
		}
		padded := make([]string, len(headers))
		copy(padded, row)
		data.Rows = append(data.Rows, padded)
	}
	return data, nil
}

// uniqueHeaders trims names and suffixes repeats as "Name.1", "Name.2".
// A suffixed name that is already taken gets suffixed again ("Name.1.1").
func uniqueHeaders(headerRow []string) []string {
	headers := make([]string, len(headerRow))
	counts := make(map[string]int, len(headerRow))
	for i, h := range headerRow {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		for n := counts[name]; n > 0; n = counts[name] {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		counts[name]++
		headers[i] = name
	}
	return headers
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
