package export

import (
	"context"

	"mortgages/internal/core"
)

// Ports for outbound backup adapters.
type (
	// MortgageWriter appends a mortgage row to the backup destination and
	// returns a reference to the written row.
	MortgageWriter interface {
		Append(ctx context.Context, m core.Mortgage) (rowRef string, err error)
	}
)
