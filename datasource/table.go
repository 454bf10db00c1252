package datasource

import "fmt"

// Table is a dense row-major numeric table.
type Table struct {
	Rows int
	Cols int
	Data []float64
}

func NewTable(rows, cols int) *Table {
	return &Table{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (t *Table) Row(i int) []float64 {
	return t.Data[i*t.Cols : (i+1)*t.Cols]
}

func (t *Table) At(i, j int) float64 {
	return t.Data[i*t.Cols+j]
}

// TableFromShards concatenates shard lists in order into one table.
func TableFromShards(cols int, lists ...ShardList) (*Table, error) {
	rows := 0
	for _, l := range lists {
		rows += l.NumRows()
	}
	t := &Table{Rows: rows, Cols: cols, Data: make([]float64, 0, rows*cols)}
	for _, l := range lists {
		for _, s := range l {
			for _, row := range s {
				if len(row) != cols {
					return nil, fmt.Errorf("datasource: row has %d values, table has %d columns", len(row), cols)
				}
				t.Data = append(t.Data, row...)
			}
		}
	}
	return t, nil
}

// Columns copies the columns [from, to) into a new table.
func (t *Table) Columns(from, to int) (*Table, error) {
	if from < 0 || to > t.Cols || from > to {
		return nil, fmt.Errorf("datasource: column range [%d, %d) out of [0, %d)", from, to, t.Cols)
	}
	out := NewTable(t.Rows, to-from)
	for i := 0; i < t.Rows; i++ {
		copy(out.Row(i), t.Row(i)[from:to])
	}
	return out, nil
}

// Split returns the first nFeatures columns as the data table and the
// following nLabels columns as the dependent values.
func (t *Table) Split(nFeatures, nLabels int) (*Table, *Table, error) {
	if nFeatures <= 0 || nLabels < 0 || nFeatures+nLabels > t.Cols {
		return nil, nil, fmt.Errorf("datasource: cannot split %d columns into %d features and %d labels", t.Cols, nFeatures, nLabels)
	}
	data, err := t.Columns(0, nFeatures)
	if err != nil {
		return nil, nil, err
	}
	labels, err := t.Columns(nFeatures, nFeatures+nLabels)
	if err != nil {
		return nil, nil, err
	}
	return data, labels, nil
}
