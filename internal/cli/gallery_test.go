package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tromp/pkg/lambda"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestGalleryModelNavigation(t *testing.T) {
	m := NewGalleryModel(lambda.Named())
	if len(m.Items) != len(lambda.Named()) {
		t.Fatalf("gallery has %d items, want %d", len(m.Items), len(lambda.Named()))
	}

	var model tea.Model = m
	for _, k := range []string{"down", "down", "j", "k", "up"} {
		model, _ = model.Update(key(k))
	}
	if got := model.(GalleryModel).Cursor; got != 1 {
		t.Errorf("Cursor = %d, want 1", got)
	}

	// Cursor stays in range.
	for i := 0; i < 5; i++ {
		model, _ = model.Update(key("up"))
	}
	if got := model.(GalleryModel).Cursor; got != 0 {
		t.Errorf("Cursor = %d, want 0", got)
	}

	model, _ = model.Update(key("b"))
	if !model.(GalleryModel).Blocks {
		t.Error("b should toggle block glyphs")
	}
	if !strings.Contains(model.View(), "███") {
		t.Error("block preview should use █")
	}

	model, cmd := model.Update(key("enter"))
	if cmd == nil {
		t.Error("enter should quit")
	}
	if sel := model.(GalleryModel).Selected; sel == nil || sel.Name != "I" {
		t.Errorf("Selected = %v, want I", sel)
	}
}

func TestGalleryModelScrolls(t *testing.T) {
	m := NewGalleryModel(lambda.Named())
	m.Height = 3

	var model tea.Model = m
	for i := 0; i < 4; i++ {
		model, _ = model.Update(key("down"))
	}
	g := model.(GalleryModel)
	if g.Cursor != 4 || g.Offset != 2 {
		t.Errorf("Cursor/Offset = %d/%d, want 4/2", g.Cursor, g.Offset)
	}
	if !strings.Contains(g.View(), "[5/") {
		t.Errorf("view should show position:\n%s", g.View())
	}
}

func TestGalleryList(t *testing.T) {
	out, err := runCLI(t, "", "gallery", "--list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"omega", "(λ11)(λ11)", "Church two"} {
		if !strings.Contains(out, want) {
			t.Errorf("gallery list missing %q:\n%s", want, out)
		}
	}
}
