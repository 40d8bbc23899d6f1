package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/transitdraw/transitmap/pkg/config"
	"github.com/transitdraw/transitmap/pkg/graph/geojson"
	"github.com/transitdraw/transitmap/pkg/octi"
	"github.com/transitdraw/transitmap/pkg/octi/gridgraph"
	"github.com/transitdraw/transitmap/pkg/optgraph"
	"github.com/transitdraw/transitmap/pkg/pipelineerr"
	"github.com/transitdraw/transitmap/pkg/topo"
)

// newInspectCmd creates the "inspect" command: schematize interactively,
// dropping into a station-relocation picker every time a LayoutInfeasible
// error names the station that could not be placed, instead of failing
// the whole run outright.
func newInspectCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect [exchange.json]",
		Short: "Schematize a network, resolving LayoutInfeasible failures interactively",
		Long: `inspect runs the same schematization stage as "dot --grid-preview", but
when a station has no open grid cell within range it opens a picker over
the surrounding grid so you can relocate the station by hand, then
retries with that cell pinned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "transitmap.toml", "configuration file")
	return cmd
}

func runInspect(cmd *cobra.Command, input, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return pipelineerr.Wrap(pipelineerr.CodeMalformedInput, err, "open input %s", input)
	}
	defer f.Close()

	g, err := geojson.Load(f, 1e-3)
	if err != nil {
		return err
	}
	if err := topo.Build(g, cfg.Topology()); err != nil {
		return err
	}
	og, err := optgraph.Contract(g)
	if err != nil {
		return err
	}

	opts := cfg.Schematize()
	pinned := map[optgraph.OptNodeID]gridgraph.CellCoord{}

	const maxRounds = 25
	for round := 0; round < maxRounds; round++ {
		opts.Pinned = pinned
		layout, err := octi.Schematize(g, og, opts)
		if err == nil {
			printSuccess("Schematization complete")
			printKeyValue("Grid size", fmt.Sprintf("%dx%d", layout.Width, layout.Height))
			if len(pinned) > 0 {
				printKeyValue("Manually placed stations", strconv.Itoa(len(pinned)))
			}
			return nil
		}
		if !pipelineerr.Is(err, pipelineerr.CodeInfeasible) {
			return err
		}

		id, ok := infeasibleNodeID(err)
		if !ok {
			return err
		}
		node, ok := og.Node(id)
		if !ok {
			return err
		}
		src, ok := g.Node(node.Source)
		if !ok {
			return err
		}
		name := "node " + strconv.Itoa(int(node.Source))
		if src.Station != nil {
			name = src.Station.Name
		}

		printWarning("LayoutInfeasible: could not place %s", name)
		cell, quit := pickCell(name, opts.Width, opts.Height)
		if quit {
			return pipelineerr.New(pipelineerr.CodeInfeasible, "LayoutInfeasible: relocation cancelled for %s", name).WithEntity(strconv.Itoa(int(id)))
		}
		pinned[id] = cell
	}

	return pipelineerr.New(pipelineerr.CodeInfeasible, "LayoutInfeasible: exceeded %d relocation rounds", maxRounds)
}

// infeasibleNodeID extracts the OptNodeID recorded on a LayoutInfeasible
// error's EntityID field, parsed from the "(entity=N)" suffix Error()
// renders.
func infeasibleNodeID(err error) (optgraph.OptNodeID, bool) {
	if pipelineerr.GetCode(err) != pipelineerr.CodeInfeasible {
		return 0, false
	}
	s := err.Error()
	idx := strings.LastIndex(s, "(entity=")
	if idx == -1 {
		return 0, false
	}
	rest := s[idx+len("(entity="):]
	end := strings.IndexByte(rest, ')')
	if end == -1 {
		return 0, false
	}
	n, perr := strconv.Atoi(rest[:end])
	if perr != nil {
		return 0, false
	}
	return optgraph.OptNodeID(n), true
}

// relocateModel is the bubbletea model for picking a replacement grid
// cell for a station Schematize could not place on its own.
type relocateModel struct {
	station       string
	width, height int
	cursor        gridgraph.CellCoord
	chosen        *gridgraph.CellCoord
	quit          bool
}

func newRelocateModel(station string, width, height int) relocateModel {
	return relocateModel{
		station: station,
		width:   width,
		height:  height,
		cursor:  gridgraph.CellCoord{X: width / 2, Y: height / 2},
	}
}

func (m relocateModel) Init() tea.Cmd { return nil }

func (m relocateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c", "esc":
		m.quit = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor.Y < m.height-1 {
			m.cursor.Y++
		}
	case "down", "j":
		if m.cursor.Y > 0 {
			m.cursor.Y--
		}
	case "left", "h":
		if m.cursor.X > 0 {
			m.cursor.X--
		}
	case "right", "l":
		if m.cursor.X < m.width-1 {
			m.cursor.X++
		}
	case "enter":
		c := m.cursor
		m.chosen = &c
		return m, tea.Quit
	}
	return m, nil
}

func (m relocateModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Relocate " + m.station))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows: move  enter: place  q: cancel"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, m.height)
	for y := m.height - 1; y >= 0; y-- {
		row := make([]string, 0, m.width)
		for x := 0; x < m.width; x++ {
			cell := "."
			if x == m.cursor.X && y == m.cursor.Y {
				cell = "@"
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if rows[row][col] == "@" {
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  cell (%d, %d)", m.cursor.X, m.cursor.Y)))
	return b.String()
}

// pickCell runs the interactive relocation picker and returns the chosen
// cell, or quit=true if the user cancelled.
func pickCell(station string, width, height int) (gridgraph.CellCoord, bool) {
	model := newRelocateModel(station, width, height)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return gridgraph.CellCoord{}, true
	}
	m := final.(relocateModel)
	if m.quit || m.chosen == nil {
		return gridgraph.CellCoord{}, true
	}
	return *m.chosen, false
}
