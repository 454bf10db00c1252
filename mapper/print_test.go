package mapper

import (
	"bytes"
	"testing"

	"github.com/taskgraph/harpload/datasource"
)

func TestPrintClassificationResultLimitsRows(t *testing.T) {
	truth := &datasource.Table{Rows: 3, Cols: 1, Data: []float64{0, 1, 2}}
	pred := &datasource.Table{Rows: 3, Cols: 1, Data: []float64{0, 1, 1}}
	var out bytes.Buffer
	if err := PrintClassificationResult(&out, truth, pred, "Ground truth", "Prediction", "results:", 2); err != nil {
		t.Fatal(err)
	}
	want := "results:\nGround truth\tPrediction\n0.000\t0.000\n1.000\t1.000\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestPrintClassificationResultMultiColumn(t *testing.T) {
	truth := &datasource.Table{Rows: 1, Cols: 2, Data: []float64{1, 2}}
	pred := &datasource.Table{Rows: 1, Cols: 2, Data: []float64{1.5, 2.25}}
	var out bytes.Buffer
	PrintClassificationResult(&out, truth, pred, "a", "b", "m", 20)
	if want := "m\na\tb\n1.000 2.000\t1.500 2.250\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestPrintClassificationResultRowMismatch(t *testing.T) {
	truth := datasource.NewTable(2, 1)
	pred := datasource.NewTable(1, 1)
	if err := PrintClassificationResult(&bytes.Buffer{}, truth, pred, "a", "b", "m", 20); err == nil {
		t.Errorf("mismatched tables accepted")
	}
}
