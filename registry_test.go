package harpload

import (
	"errors"
	"strings"
	"testing"

	"github.com/taskgraph/harpload/datasource"
	"golang.org/x/net/context"
)

type constAlgorithm struct{}

func (constAlgorithm) Name() string { return "const" }

func (constAlgorithm) Train(ctx context.Context, in *TrainingInput) (Model, error) {
	return constModel{}, nil
}

type constModel struct{}

func (constModel) Predict(ctx context.Context, data *datasource.Table) (*datasource.Table, error) {
	return datasource.NewTable(data.Rows, 1), nil
}

func TestRegisterLookup(t *testing.T) {
	Register("registry-test-const", func() Algorithm { return constAlgorithm{} })

	alg, err := Lookup("registry-test-const")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	model, err := alg.Train(context.Background(), &TrainingInput{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := model.Predict(context.Background(), datasource.NewTable(3, 2))
	if err != nil || out.Rows != 3 {
		t.Errorf("Predict = %+v, %v", out, err)
	}

	found := false
	for _, name := range Algorithms() {
		if name == "registry-test-const" {
			found = true
		}
	}
	if !found {
		t.Errorf("Algorithms() = %v, missing registry-test-const", Algorithms())
	}
}

func TestLookupUnknown(t *testing.T) {
	Register("registry-test-known", func() Algorithm { return constAlgorithm{} })
	_, err := Lookup("no-such-algorithm")
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("Lookup err = %v, want ErrUnknownAlgorithm", err)
	}
	if !strings.Contains(err.Error(), "registry-test-known") {
		t.Errorf("Lookup err = %v, want the registered names listed", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	Register("registry-test-dup", func() Algorithm { return constAlgorithm{} })
	defer func() {
		if recover() == nil {
			t.Errorf("second Register did not panic")
		}
	}()
	Register("registry-test-dup", func() Algorithm { return constAlgorithm{} })
}
