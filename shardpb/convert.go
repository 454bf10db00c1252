package shardpb

import (
	"fmt"

	"github.com/taskgraph/harpload/datasource"
)

// ToShardSet flattens every shard of l into row-major values.
func ToShardSet(path string, cols int, l datasource.ShardList) *ShardSet {
	set := &ShardSet{
		Path:   path,
		Cols:   int32(cols),
		Shards: make([]*Shard, 0, len(l)),
	}
	for _, s := range l {
		shard := &Shard{
			Rows:   int32(len(s)),
			Cols:   int32(cols),
			Values: make([]float64, 0, len(s)*cols),
		}
		for _, row := range s {
			shard.Values = append(shard.Values, row...)
		}
		set.Shards = append(set.Shards, shard)
	}
	return set
}

func FromShardSet(set *ShardSet) (datasource.ShardList, error) {
	cols := int(set.GetCols())
	if cols <= 0 {
		return nil, fmt.Errorf("shardpb: %s has %d columns", set.GetPath(), cols)
	}
	l := make(datasource.ShardList, 0, len(set.GetShards()))
	for i, s := range set.GetShards() {
		rows := int(s.GetRows())
		if rows <= 0 {
			return nil, fmt.Errorf("shardpb: shard %d of %s has %d rows", i, set.GetPath(), rows)
		}
		if int(s.GetCols()) != cols || len(s.GetValues()) != rows*cols {
			return nil, fmt.Errorf("shardpb: shard %d of %s is %dx%d with %d values, set has %d columns",
				i, set.GetPath(), rows, s.GetCols(), len(s.GetValues()), cols)
		}
		shard := make(datasource.Shard, rows)
		for r := 0; r < rows; r++ {
			row := make(datasource.Row, cols)
			copy(row, s.Values[r*cols:(r+1)*cols])
			shard[r] = row
		}
		l = append(l, shard)
	}
	return l, nil
}
