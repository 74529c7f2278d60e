// Package store persists classification sweeps.
//
// A sweep over thousands of rules takes a while, so its result is stored
// under its ID and can be fetched again by the CLI or through the HTTP API.
// [MemoryStore] keeps results for the lifetime of the process; [MongoStore]
// keeps them in a MongoDB collection.
package store

import (
	"context"

	"github.com/matzehuels/rulegraph/pkg/pipeline"
)

// DefaultListLimit is used by ListSweeps when limit is not positive.
const DefaultListLimit = 50

// Store saves and retrieves sweep results.
type Store interface {
	// SaveSweep stores res under res.ID, replacing any previous result.
	SaveSweep(ctx context.Context, res *pipeline.SweepResult) error

	// GetSweep returns the sweep with the given ID or a NOT_FOUND error.
	GetSweep(ctx context.Context, id string) (*pipeline.SweepResult, error)

	// ListSweeps returns the most recent sweeps first. states filters by
	// state count when positive.
	ListSweeps(ctx context.Context, states, limit int) ([]*pipeline.SweepResult, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
