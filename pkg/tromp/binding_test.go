package tromp

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tromp/pkg/lambda"
)

func TestMaxDepth(t *testing.T) {
	tests := []struct {
		name string
		term lambda.Term
		want int
	}{
		{"I", lambda.I(), 1},
		{"K", lambda.K(), 2},
		{"S", lambda.S(), 3},
		{"Y", lambda.Y(), 2},
		{"false", lambda.False(), 2},
		{"two", lambda.Church(2), 2},
		{"three", lambda.Church(3), 2},
		{"four", lambda.Church(4), 2},
		{"pred", lambda.Pred(), 5},
		{"omega", lambda.Omega(), 1},
		{"variable", lambda.V(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxDepth(tt.term); got != tt.want {
				t.Errorf("MaxDepth(%s) = %d, want %d", tt.term, got, tt.want)
			}
		})
	}
}

func TestVariableOccurrences(t *testing.T) {
	tests := []struct {
		name  string
		term  lambda.Term
		depth int
		want  []Binding
	}{
		{"variable", lambda.V(1), 3, []Binding{{3, 1}}},
		{"identity", lambda.I(), 0, []Binding{{1, 1}}},
		{"S body", lambda.S().(*lambda.Abs).Body.(*lambda.Abs).Body.(*lambda.Abs).Body, 3,
			[]Binding{{3, 3}, {3, 1}, {3, 2}, {3, 1}}},
		{"Y", lambda.Y(), 0, []Binding{{2, 2}, {2, 1}, {2, 1}, {2, 2}, {2, 1}, {2, 1}}},
		{"mixed depth", lambda.L(lambda.A(lambda.V(1), lambda.L(lambda.V(2)))), 0,
			[]Binding{{1, 1}, {2, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VariableOccurrences(tt.term, tt.depth)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("VariableOccurrences mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVariableOccurrencesMatchesLeaves(t *testing.T) {
	for _, f := range lambda.Named() {
		if got, want := len(VariableOccurrences(f.Term, 0)), lambda.Leaves(f.Term); got != want {
			t.Errorf("%s: %d occurrences, want %d", f.Name, got, want)
		}
	}
}

func TestBinderDepth(t *testing.T) {
	tests := []struct {
		b    Binding
		want int
	}{
		{Binding{Depth: 1, Index: 1}, 1},
		{Binding{Depth: 3, Index: 3}, 1},
		{Binding{Depth: 3, Index: 1}, 3},
		{Binding{Depth: 5, Index: 4}, 2},
	}
	for _, tt := range tests {
		if got := tt.b.BinderDepth(); got != tt.want {
			t.Errorf("%+v.BinderDepth() = %d, want %d", tt.b, got, tt.want)
		}
	}
}
