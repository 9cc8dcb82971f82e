package sink

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/tromp"
)

func mustRender(t *testing.T, term lambda.Term) *tromp.Diagram {
	t.Helper()
	d, err := tromp.Render(term)
	if err != nil {
		t.Fatalf("Render(%s) error: %v", term, err)
	}
	return d
}

func TestRenderText(t *testing.T) {
	d := mustRender(t, lambda.I())

	if got, want := string(RenderText(d)), "...\n . \n . \n . \n"; got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}
	if got, want := string(RenderText(d, WithBlocks())), d.String(); got != want {
		t.Errorf("RenderText(WithBlocks) = %q, want %q", got, want)
	}
	if got := string(RenderText(d, WithGlyph('#'))); !strings.HasPrefix(got, "###\n") {
		t.Errorf("RenderText(WithGlyph) = %q", got)
	}
}

func TestRuns(t *testing.T) {
	d := tromp.FromRows([]string{"....... .......", " .   .   .   . "})
	want := []Run{
		{X: 0, Y: 0, Len: 7}, {X: 8, Y: 0, Len: 7},
		{X: 1, Y: 1, Len: 1}, {X: 5, Y: 1, Len: 1}, {X: 9, Y: 1, Len: 1}, {X: 13, Y: 1, Len: 1},
	}
	if diff := cmp.Diff(want, Runs(d)); diff != "" {
		t.Errorf("Runs() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSVG(t *testing.T) {
	d := mustRender(t, lambda.I())

	svg := string(RenderSVG(d))
	for _, want := range []string{
		`viewBox="0 0 24.0 32.0" width="24" height="32"`,
		`<rect x="0" y="0" width="24" height="8"/>`,
		`<rect x="8" y="24" width="8" height="8"/>`,
		`<g fill="black">`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q:\n%s", want, svg)
		}
	}
	if n := strings.Count(svg, "<rect "); n != 4 {
		t.Errorf("RenderSVG() has %d rects, want 4", n)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	d := mustRender(t, lambda.K())

	svg := string(RenderSVG(d,
		WithCellSize(2),
		WithColor("#333"),
		WithBackground("white"),
		WithTitle("K <const>"),
	))
	for _, want := range []string{
		`width="6" height="12"`,
		`<title>K &lt;const&gt;</title>`,
		`fill="white"`,
		`<g fill="#333">`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q:\n%s", want, svg)
		}
	}

	if !bytes.Equal(RenderSVG(d, WithCellSize(0)), RenderSVG(d)) {
		t.Error("non-positive cell size should fall back to the default")
	}
}

func TestRenderJSON(t *testing.T) {
	d := mustRender(t, lambda.Church(2))

	data, err := RenderJSON(d, WithExpression("λλ2(21)", "debruijn"), WithLayout(tromp.PlacementTraced, tromp.ReachEnclosing))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if doc.Width != 11 || doc.Height != 10 {
		t.Errorf("size = %dx%d, want 11x10", doc.Width, doc.Height)
	}
	if doc.Expression != "λλ2(21)" || doc.Notation != "debruijn" {
		t.Errorf("expression = %q/%q", doc.Expression, doc.Notation)
	}
	if doc.Placement != "traced" || doc.Reach != "enclosing" {
		t.Errorf("layout = %q/%q", doc.Placement, doc.Reach)
	}
	if doc.Stats.MaxDepth != 2 || doc.Stats.Leaves != 3 {
		t.Errorf("stats = %+v", doc.Stats)
	}
}

func TestReadJSON(t *testing.T) {
	for _, f := range lambda.Named() {
		t.Run(f.Name, func(t *testing.T) {
			d := mustRender(t, f.Term)
			data, err := RenderJSON(d)
			if err != nil {
				t.Fatalf("RenderJSON() error: %v", err)
			}
			back, _, err := ReadJSON(data)
			if err != nil {
				t.Fatalf("ReadJSON() error: %v", err)
			}
			if back.Cells() != d.Cells() {
				t.Errorf("cells differ:\n%s", cmp.Diff(d.Cells(), back.Cells()))
			}
			if diff := cmp.Diff(d.Stats(), back.Stats()); diff != "" {
				t.Errorf("stats differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"height mismatch", `{"width":1,"height":2,"rows":["."]}`},
		{"width mismatch", `{"width":3,"height":1,"rows":[".."]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ReadJSON([]byte(tt.data)); err == nil {
				t.Error("ReadJSON() should fail")
			}
		})
	}
}
