package table

// LoadResult is the outcome of one ingestion run: both tables, or two empty
// tables plus the logged cause. Callers treat an empty projects table as "no data".
type LoadResult struct {
	Summary  *Table
	Projects *Table
	Err      error
}

// Loaded builds a successful result
func Loaded(summary, projects *Table) LoadResult {
	return LoadResult{Summary: summary, Projects: projects}
}

// Degraded builds the fallback result carrying two empty tables
func Degraded(err error) LoadResult {
	return LoadResult{Summary: Empty(), Projects: Empty(), Err: err}
}

// OK reports whether the load succeeded
func (r LoadResult) OK() bool {
	return r.Err == nil
}
