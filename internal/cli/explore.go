package cli

import (
	"context"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/render/interact"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	popupStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "explore [map-file]",
		Short: "Hover over map regions in the terminal",
		Long: `Draw a map and step through its regions. Each selected region is hovered
as a pointer would: its highlight fill and popup are shown. Press "s" to save
the map with the current hover state as SVG.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runExplore(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "SVG file written by \"s\" (default: <map-file>.svg)")
	mapFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts *renderOpts) error {
	src, err := c.newSource(opts.noCache, opts.refresh)
	if err != nil {
		return err
	}
	m, err := drawMap(ctx, src, input, opts)
	if err != nil {
		return err
	}

	model := newExploreModel(m, basePath(opts.output, input)+".svg")
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if em, ok := final.(exploreModel); ok && em.saved != "" {
		printSuccess("Saved hover state")
		printFile(em.saved)
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive region hover
// =============================================================================

type exploreRegion struct {
	id, name string
	pointer  interact.Point
}

// exploreModel is the bubbletea model of the explore command. The region
// under the cursor is the only hovered region.
type exploreModel struct {
	m       *datamap.Map
	regions []exploreRegion
	cursor  int
	offset  int
	height  int
	path    string
	saved   string
	err     error
}

func newExploreModel(m *datamap.Map, path string) exploreModel {
	var regions []exploreRegion
	for _, f := range m.Features() {
		x, y, _ := m.Projection().CentroidOf(f.Geometry)
		regions = append(regions, exploreRegion{id: f.ID, name: f.Name, pointer: interact.Point{X: x, Y: y}})
	}
	em := exploreModel{m: m, regions: regions, height: 15, path: path}
	em.hover(0)
	return em
}

// hover moves the pointer from the current region to region i.
func (em *exploreModel) hover(i int) {
	if len(em.regions) == 0 {
		return
	}
	for _, id := range em.m.Hovered() {
		_ = em.m.Unhover(id)
	}
	em.cursor = i
	r := em.regions[i]
	em.err = em.m.Hover(r.id, r.pointer)
}

func (em exploreModel) Init() tea.Cmd {
	return nil
}

func (em exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return em, tea.Quit
		case "up", "k":
			if em.cursor > 0 {
				em.hover(em.cursor - 1)
				if em.cursor < em.offset {
					em.offset = em.cursor
				}
			}
		case "down", "j":
			if em.cursor < len(em.regions)-1 {
				em.hover(em.cursor + 1)
				if em.cursor >= em.offset+em.height {
					em.offset = em.cursor - em.height + 1
				}
			}
		case "s":
			em.err = os.WriteFile(em.path, em.m.SVG(), 0o644)
			if em.err == nil {
				em.saved = em.path
			}
		}
	case tea.WindowSizeMsg:
		em.height = msg.Height - 12
		if em.height < 5 {
			em.height = 5
		}
	}
	return em, nil
}

func (em exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore " + em.m.Options().Scope))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ hover  s save svg  q quit"))
	b.WriteString("\n\n")

	end := min(em.offset+em.height, len(em.regions))
	rows := [][]string{}
	for i := em.offset; i < end; i++ {
		r := em.regions[i]
		cursor := "  "
		if i == em.cursor {
			cursor = "▸ "
		}
		fill, _ := em.m.Fill(r.id)
		rows = append(rows, []string{cursor, swatch(fill), r.id, r.name, fill})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "ID", "Name", "Fill").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if em.offset+row == em.cursor && col >= 2 {
				return listSelectedStyle
			}
			if col == 4 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", em.cursor+1, len(em.regions))))
	b.WriteString("\n\n")

	if len(em.regions) > 0 {
		if popup, _ := em.m.Popup(em.regions[em.cursor].id); popup != "" {
			b.WriteString(popupStyle.Render(popupText(popup)))
			b.WriteString("\n")
		}
	}
	if em.err != nil {
		b.WriteString(StyleWarning.Render(em.err.Error()))
		b.WriteString("\n")
	}
	if em.saved != "" {
		b.WriteString(StyleDim.Render("saved " + em.saved))
		b.WriteString("\n")
	}
	return b.String()
}

var (
	blockTags = regexp.MustCompile(`(?i)<br\s*/?>|</(div|p|li)>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
)

// popupText turns popup HTML into terminal text.
func popupText(s string) string {
	s = blockTags.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
