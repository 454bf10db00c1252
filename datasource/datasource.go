package datasource

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/grailbio/base/traverse"
	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload/filesystem"
	"golang.org/x/net/context"
)

const DefaultShardSize = 1024

// DataSource loads many files in parallel, one file per worker, and merges
// them into dense tables.
type DataSource struct {
	client  filesystem.Client
	threads int
	opts    []Option
	o       options
}

// NewDataSource sizes the worker pool to threads, or to the number of
// CPUs when threads is not positive.
func NewDataSource(client filesystem.Client, threads int, opts ...Option) *DataSource {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &DataSource{
		client:  client,
		threads: threads,
		opts:    opts,
		o:       buildOptions(opts),
	}
}

func (ds *DataSource) Threads() int { return ds.threads }

func (ds *DataSource) Client() filesystem.Client { return ds.client }

// LoadShards reads every file and returns their shard lists in the order
// of files. The first failure fails the whole load.
func (ds *DataSource) LoadShards(ctx context.Context, files []string, valuesPerLine int, sep string) ([]ShardList, error) {
	reader, err := NewShardedCSVReader(ds.client, valuesPerLine, ds.o.shardSize, sep, ds.opts...)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	lists := make([]ShardList, len(files))
	errs := make([]error, len(files))
	err = traverse.Limit(ds.threads).Each(len(files), func(i int) error {
		lists[i], errs[i] = reader.Read(ctx, files[i])
		return errs[i]
	})
	if err == nil {
		ds.o.logger.WithFields(logrus.Fields{
			"files":   len(files),
			"threads": ds.threads,
			"elapsed": time.Since(start),
		}).Info("Loading files done")
		return lists, nil
	}
	// report the earliest failing file, not the first to fail in time
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return nil, err
}

// LoadDenseTable reads files into a single table of valuesPerLine columns.
func (ds *DataSource) LoadDenseTable(ctx context.Context, files []string, valuesPerLine int, sep string) (*Table, error) {
	lists, err := ds.LoadShards(ctx, files, valuesPerLine, sep)
	if err != nil {
		return nil, err
	}
	return TableFromShards(valuesPerLine, lists...)
}

// LoadDenseTableSplit reads nFeatures+nLabels columns from files and splits
// them into a data table and a dependent-values table.
func (ds *DataSource) LoadDenseTableSplit(ctx context.Context, files []string, nFeatures, nLabels int, sep string) (*Table, *Table, error) {
	t, err := ds.LoadDenseTable(ctx, files, nFeatures+nLabels, sep)
	if err != nil {
		return nil, nil, err
	}
	return t.Split(nFeatures, nLabels)
}

// ExpandPaths resolves glob patterns through the filesystem client. Plain
// paths are kept as they are.
func (ds *DataSource) ExpandPaths(files []string) ([]string, error) {
	var out []string
	for _, f := range files {
		if !strings.ContainsAny(f, "*?[") {
			out = append(out, f)
			continue
		}
		matches, err := ds.client.Glob(f)
		if err != nil {
			return nil, fmt.Errorf("datasource: glob %s: %v", f, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("datasource: no file matches %s", f)
		}
		out = append(out, matches...)
	}
	return out, nil
}
