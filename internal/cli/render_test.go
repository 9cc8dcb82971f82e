package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tromp/pkg/errors"
)

const constantText = "...\n . \n...\n . \n . \n . \n"

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		output  string
		source  string
		want    map[string]string
	}{
		{"txt to stdout", []string{"txt"}, "", "", map[string]string{}},
		{"lone dot to stdout", []string{"dot"}, "", "", map[string]string{}},
		{"svg named after source", []string{"txt", "svg"}, "", "terms/omega.lam", map[string]string{"svg": "omega.svg"}},
		{"default base", []string{"png"}, "", "", map[string]string{"png": "diagram.png"}},
		{"single output", []string{"svg"}, "out/k.image", "", map[string]string{"svg": "out/k.image"}},
		{"strip known ext", []string{"svg", "pdf"}, "out/k.svg", "", map[string]string{"svg": "out/k.svg", "pdf": "out/k.pdf"}},
		{"keep unknown ext", []string{"txt", "json"}, "out/k.v2", "", map[string]string{"txt": "out/k.v2.txt", "json": "out/k.v2.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPaths(tt.formats, tt.output, tt.source)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputPaths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOutputPathsRejectsTraversal(t *testing.T) {
	_, err := outputPaths([]string{"svg"}, "../escape.svg", "")
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH, got %v", err)
	}
}

func TestRenderText(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"classic argument", "", []string{"render", "--no-cache", "λx.λy.x"}},
		{"debruijn argument", "", []string{"render", "--no-cache", "-n", "debruijn", "λλ2"}},
		{"stdin", "λλ2\n", []string{"render", "--no-cache", "-n", "db", "-"}},
		{"fixture", "", []string{"render", "--no-cache", "--fixture", "K"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(constantText, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderBlocks(t *testing.T) {
	out, err := runCLI(t, "", "render", "--no-cache", "--blocks", "λx.x")
	if err != nil {
		t.Fatal(err)
	}
	if want := "███\n █ \n █ \n █ \n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRenderFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "omega")

	out, err := runCLI(t, "", "render", "--no-cache", "--fixture", "omega", "-f", "svg,json,txt", "-o", base)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, ext := range []string{"svg", "json", "txt"} {
		data, err := os.ReadFile(base + "." + ext)
		if err != nil {
			t.Errorf("missing %s output: %v", ext, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s output is empty", ext)
		}
		if !strings.Contains(out, base+"."+ext) {
			t.Errorf("output should list %s.%s:\n%s", base, ext, out)
		}
	}
	if !strings.Contains(out, "15×8 cells") {
		t.Errorf("output should report the diagram size:\n%s", out)
	}
}

func TestRenderFromFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "two.lam")
	if err := os.WriteFile(src, []byte("λf.λx.f (f x)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "", "render", "--no-cache", "--file", src, "-t", "tree", "-f", "dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("dot output:\n%s", out)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no input", []string{"render"}, errors.ErrCodeInvalidInput},
		{"two inputs", []string{"render", "λx.x", "--fixture", "I"}, errors.ErrCodeInvalidInput},
		{"unknown fixture", []string{"render", "--fixture", "nope"}, errors.ErrCodeNotFound},
		{"missing file", []string{"render", "--file", "/does/not/exist.lam"}, errors.ErrCodeFileNotFound},
		{"free variable", []string{"render", "--no-cache", "λx.y"}, errors.ErrCodeFreeVariable},
		{"bad format", []string{"render", "--no-cache", "-f", "gif", "λx.x"}, errors.ErrCodeInvalidFormat},
		{"tree txt", []string{"render", "--no-cache", "-t", "tree", "-f", "txt", "λx.x"}, errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestRenderUsesCache(t *testing.T) {
	cacheDir := t.TempDir()
	cfg := writeConfig(t, cacheDir)
	dir := t.TempDir()

	args := []string{"--config", cfg, "render", "λx.x", "-f", "svg", "-o", filepath.Join(dir, "i.svg")}
	first, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatal(err)
	}
	second, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(first, "fresh") || !strings.Contains(second, "cached") {
		t.Errorf("expected fresh then cached:\n%s\n%s", first, second)
	}
}
