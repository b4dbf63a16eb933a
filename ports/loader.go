package ports

import (
	"context"

	"profitpulse/domain/table"
)

// TableSource reads one tabular export into an untyped table
type TableSource interface {
	Path() string
	ReadTable(ctx context.Context) (*table.Table, error)
}

// TableLoader produces the summary and projects tables as a pair.
// Load never fails; a degraded result carries two empty tables and the cause.
type TableLoader interface {
	Load(ctx context.Context) table.LoadResult
}
