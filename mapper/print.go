package mapper

import (
	"fmt"
	"io"
	"strings"

	"github.com/taskgraph/harpload/datasource"
)

// PrintClassificationResult writes message, the two headers and then up to
// n rows of ground truth next to the prediction.
func PrintClassificationResult(w io.Writer, truth, pred *datasource.Table, header1, header2, message string, n int) error {
	if truth.Rows != pred.Rows {
		return fmt.Errorf("mapper: %d ground truth rows but %d predictions", truth.Rows, pred.Rows)
	}
	if n > truth.Rows {
		n = truth.Rows
	}
	var b strings.Builder
	fmt.Fprintln(&b, message)
	fmt.Fprintf(&b, "%s\t%s\n", header1, header2)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s\t%s\n", formatRow(truth.Row(i)), formatRow(pred.Row(i)))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatRow(row []float64) string {
	s := make([]string, len(row))
	for i, v := range row {
		s[i] = fmt.Sprintf("%.3f", v)
	}
	return strings.Join(s, " ")
}
