package harpload

import (
	"github.com/taskgraph/harpload/datasource"
	"golang.org/x/net/context"
)

// TrainingInput is what a mapper hands to an algorithm after loading its
// share of the data. PruneData and PruneLabels are nil when no prune file
// is configured.
type TrainingInput struct {
	Data        *datasource.Table
	Labels      *datasource.Table
	PruneData   *datasource.Table
	PruneLabels *datasource.Table
	NumClasses  int
	// Algorithm specific knobs, e.g. "trees" or "maxIterations".
	Params map[string]float64
}

// Algorithm trains a model from loaded tables. The numerics live outside
// this module; implementations register themselves by name.
type Algorithm interface {
	Name() string
	Train(ctx context.Context, in *TrainingInput) (Model, error)
}

// Model predicts one row of results for every row of data.
type Model interface {
	Predict(ctx context.Context, data *datasource.Table) (*datasource.Table, error)
}

// Factory creates a fresh algorithm instance for one task.
type Factory func() Algorithm
