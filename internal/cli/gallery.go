package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/tromp"
)

var (
	listDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	previewStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	previewTermStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

func (c *CLI) galleryCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse the built-in example terms",
		Long: `Browse the built-in terms with a live diagram preview. Press enter to print
the selected term in de Bruijn notation, ready for 'tromp render'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := NewGalleryModel(lambda.Named())
			if list {
				c.printGallery(model)
				return nil
			}
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(GalleryModel); ok && m.Selected != nil {
				fmt.Fprintln(c.stdout, lambda.Format(m.Selected.Term, lambda.DeBruijn))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print the gallery instead of browsing it")
	return cmd
}

func (c *CLI) printGallery(m GalleryModel) {
	p := c.out()
	for _, item := range m.Items {
		p.keyValue(item.Fixture.Name, lambda.Format(item.Fixture.Term, lambda.DeBruijn))
		p.detail("%s · %s", item.Fixture.Description, lambda.Format(item.Fixture.Term, lambda.Classic))
	}
}

// =============================================================================
// GalleryModel - Interactive fixture browser
// =============================================================================

// GalleryItem pairs a fixture with its pre-rendered diagram.
type GalleryItem struct {
	Fixture lambda.Fixture
	Diagram *tromp.Diagram
}

// GalleryModel is the bubbletea model behind `tromp gallery`.
type GalleryModel struct {
	Items    []GalleryItem
	Cursor   int
	Offset   int
	Height   int
	Blocks   bool
	Selected *lambda.Fixture
}

// NewGalleryModel renders every fixture up front; fixtures are small.
func NewGalleryModel(fixtures []lambda.Fixture) GalleryModel {
	items := make([]GalleryItem, 0, len(fixtures))
	for _, f := range fixtures {
		d, err := tromp.Render(f.Term)
		if err != nil {
			continue
		}
		items = append(items, GalleryItem{Fixture: f, Diagram: d})
	}
	return GalleryModel{Items: items, Height: 12}
}

func (m GalleryModel) Init() tea.Cmd {
	return nil
}

func (m GalleryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "b":
			m.Blocks = !m.Blocks
		case "enter":
			if len(m.Items) > 0 {
				f := m.Items[m.Cursor].Fixture
				m.Selected = &f
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m GalleryModel) View() string {
	if len(m.Items) == 0 {
		return "no fixtures\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Tromp Gallery"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  b blocks  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		item := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		s := item.Diagram.Stats()
		rows = append(rows, []string{cursor, item.Fixture.Name, item.Fixture.Description, fmt.Sprintf("%d×%d", s.Width, s.Height)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Term", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), " ", m.preview()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))
	return b.String()
}

func (m GalleryModel) preview() string {
	item := m.Items[m.Cursor]
	glyph := tromp.DotGlyph
	if m.Blocks {
		glyph = tromp.BlockGlyph
	}
	var b strings.Builder
	b.WriteString(previewTermStyle.Render(lambda.Format(item.Fixture.Term, lambda.Classic)))
	b.WriteString("\n\n")
	b.WriteString(StyleDiagram.Render(strings.Join(item.Diagram.Lines(glyph), "\n")))
	return previewStyle.Render(b.String())
}
