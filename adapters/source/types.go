package source

// RawData is a parsed source before any type inference
type RawData struct {
	Headers []string   // trimmed, de-duplicated column names
	Rows    [][]string // one slice per data row, padded to len(Headers)
}

// column returns every cell of column j
func (d *RawData) column(j int) []string {
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[j]
	}
	return out
}
