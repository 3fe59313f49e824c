package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	radario "github.com/matzehuels/techradar/pkg/io"
	"github.com/matzehuels/techradar/pkg/pipeline"
	"github.com/matzehuels/techradar/pkg/radar"
	"github.com/matzehuels/techradar/pkg/radar/chart"
	"github.com/matzehuels/techradar/pkg/radar/layout"
	"github.com/matzehuels/techradar/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listNewStyle      = lipgloss.NewStyle().Foreground(colorGreen)
)

// browseTick is how often the view polls the chart while it relaxes.
const browseTick = 150 * time.Millisecond

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		numbered  bool
		companies []string
	)
	cmd := &cobra.Command{
		Use:   "browse [definition]",
		Short: "Explore a radar interactively in the terminal",
		Long: `Open a live chart on a radar definition and drive it from the keyboard.

Blips are listed by quadrant and ring with their current position, which
changes while the collision relaxation runs. Moving the cursor hovers a blip,
enter selects it, number keys zoom into a quadrant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(c.config, cmd.Flags(), map[string]string{"seed": "seed"}); err != nil {
				return err
			}
			settings, err := loadSettings(c.config)
			if err != nil {
				return err
			}
			def, err := radario.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			m, err := newBrowseModel(def, settings.Seed, numbered, companies)
			if err != nil {
				return err
			}
			defer m.sess.Close()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&numbered, "numbered", false, "label blips with numbers")
	cmd.Flags().StringSliceVar(&companies, "companies", nil, "only plot items used by these companies")
	cmd.Flags().Uint64("seed", pipeline.DefaultSeed, "random seed for blip placement")
	return cmd
}

// =============================================================================
// browseModel - Interactive chart session
// =============================================================================

type tickMsg time.Time

type settledMsg struct{ err error }

// browseModel is the bubbletea model of the browse command. It owns one
// chart session and shows the blips of the current view.
type browseModel struct {
	sess  *session.Session
	cfg   radar.Config
	items []radar.Item
	view  radar.ViewState
	state chart.State

	blips  []layout.Blip
	cursor int
	offset int
	height int

	region int // hovered quadrant region, -1 for none
	ring   int // hovered ring while zoomed, -1 for none

	selected string
	events   []string
	status   string
}

func newBrowseModel(def *radario.Definition, seed uint64, numbered bool, companies []string) (*browseModel, error) {
	sess, err := session.New(def.Config,
		chart.WithSeed(seed),
		chart.WithLogger(log.New(io.Discard)),
		chart.WithDropInvalid(true),
	)
	if err != nil {
		return nil, err
	}
	m := &browseModel{
		sess:   sess,
		cfg:    def.Config,
		items:  radar.FilterCompanies(def.Items, companies),
		view:   radar.FullView(true),
		height: 15,
		region: -1,
		ring:   -1,
	}
	m.view.Numbered = numbered
	if err := m.render(); err != nil {
		sess.Close()
		return nil, err
	}
	return m, nil
}

func (m *browseModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(browseTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, quit := m.handleKey(msg.String()); quit {
			return m, tea.Quit
		} else if cmd != nil {
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 14
		if m.height < 5 {
			m.height = 5
		}
	case tickMsg:
		m.refresh()
		return m, tick()
	case settledMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "settled"
		}
	}
	m.refresh()
	return m, nil
}

// handleKey applies one key press. It reports whether to quit.
func (m *browseModel) handleKey(key string) (tea.Cmd, bool) {
	c := m.sess.Chart
	var err error
	switch key {
	case "q", "ctrl+c":
		return nil, true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			err = m.hoverCursor()
		}
	case "down", "j":
		if m.cursor < len(m.blips)-1 {
			m.cursor++
			err = m.hoverCursor()
		}
	case "enter":
		if b, ok := m.current(); ok {
			err = c.Click(b.Name())
		}
	case "h":
		if b, ok := m.current(); ok {
			err = c.Highlight(b.Name())
		}
	case "esc":
		switch {
		case m.state.Tooltip != nil:
			err = c.Unhover()
		case m.view.Zoomed():
			err = m.zoom(-1)
		}
	case "1", "2", "3", "4":
		err = m.zoom(int(key[0] - '1'))
	case "0":
		err = m.zoom(-1)
	case "tab":
		if !m.view.Zoomed() {
			m.region = (m.region + 1) % radar.NumQuadrants
			err = c.HoverQuadrant(m.region)
		}
	case " ":
		if m.region >= 0 {
			err = c.ClickQuadrant(m.region)
		}
	case "r":
		if m.view.Zoomed() {
			m.ring = (m.ring + 1) % radar.NumRings
			err = c.HoverRing(m.ring)
		}
	case "n":
		m.view.Numbered = !m.view.Numbered
		err = m.render()
	case "s":
		m.status = "settling..."
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return settledMsg{err: c.Settle(ctx)}
		}, false
	}
	if err != nil {
		m.status = err.Error()
	}
	return nil, false
}

// zoom renders quadrant q, or the full radar for a negative q.
func (m *browseModel) zoom(q int) error {
	if q < 0 {
		m.view = radar.FullView(true)
	} else {
		m.view = radar.ZoomedView(q, true)
	}
	m.view.Numbered = m.state.View.Numbered
	m.region, m.ring, m.cursor, m.offset = -1, -1, 0, 0
	return m.render()
}

func (m *browseModel) render() error {
	res, err := m.sess.Chart.Render(m.items, m.view)
	if err != nil {
		return err
	}
	m.status = fmt.Sprintf("rendered: %d entered, %d updated, %d exited", res.Enter, res.Update, res.Exit)
	if res.Dropped > 0 {
		m.status += fmt.Sprintf(", %d dropped", res.Dropped)
	}
	m.refresh()
	return nil
}

func (m *browseModel) hoverCursor() error {
	b, ok := m.current()
	if !ok {
		return nil
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m.sess.Chart.Hover(b.Name())
}

func (m *browseModel) current() (layout.Blip, bool) {
	if m.cursor < 0 || m.cursor >= len(m.blips) {
		return layout.Blip{}, false
	}
	return m.blips[m.cursor], true
}

// refresh reads the chart state and consumes the events emitted since the
// last call. An activated quadrant navigates to its zoomed view.
func (m *browseModel) refresh() {
	batch := m.sess.Drain()
	for _, e := range batch.Events {
		switch e.Kind {
		case chart.EventItemSelected:
			m.selected = e.Token
		case chart.EventQuadrantActivated:
			if err := m.zoom(e.Quadrant); err != nil {
				m.status = err.Error()
			}
		}
		m.events = append(m.events, describeEvent(e))
	}
	if n := len(m.events); n > 4 {
		m.events = m.events[n-4:]
	}

	m.state = m.sess.Chart.Snapshot()
	m.blips = m.blips[:0]
	for _, b := range m.state.Blips {
		if m.view.Zoomed() && b.Item.Quadrant != *m.view.Quadrant {
			continue
		}
		m.blips = append(m.blips, b)
	}
	sort.SliceStable(m.blips, func(i, j int) bool {
		a, b := m.blips[i].Item, m.blips[j].Item
		if a.Quadrant != b.Quadrant {
			return a.Quadrant < b.Quadrant
		}
		if a.Ring != b.Ring {
			return a.Ring < b.Ring
		}
		return a.Name < b.Name
	})
	if m.cursor >= len(m.blips) {
		m.cursor = max(len(m.blips)-1, 0)
	}
}

func describeEvent(e chart.Event) string {
	switch e.Kind {
	case chart.EventItemHighlighted:
		if e.Item == "" {
			return "highlight cleared"
		}
		return "highlighted " + e.Item
	case chart.EventItemSelected:
		return "selected " + e.Token
	case chart.EventQuadrantActivated:
		return "activated " + e.Route
	}
	return string(e.Kind)
}

func (m *browseModel) View() string {
	var b strings.Builder

	title := "Radar"
	if m.view.Zoomed() {
		title = m.cfg.Quadrants[*m.view.Quadrant].Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ hover  ⏎ select  h highlight  1-4 zoom  0 full  tab/space region  r ring  n numbers  s settle  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.blips))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		bl := m.blips[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		flags := ""
		switch {
		case bl.Item.IsNew:
			flags = "new"
		case bl.Item.Moved > 0:
			flags = "↑"
		case bl.Item.Moved < 0:
			flags = "↓"
		}
		rows = append(rows, []string{
			cursor,
			bl.Label,
			bl.Item.Name,
			m.cfg.Quadrants[bl.Item.Quadrant].Name,
			m.cfg.Rings[bl.Item.Ring].Name,
			fmt.Sprintf("%6.1f %6.1f", bl.Position.X, bl.Position.Y),
			flags,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Item", "Quadrant", "Ring", "Position", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.blips) {
				return lipgloss.NewStyle()
			}
			if idx == m.cursor {
				return listSelectedStyle
			}
			if col == 6 && m.blips[idx].Item.IsNew {
				return listNewStyle
			}
			if col == 5 {
				return listDimStyle
			}
			if col == 3 {
				return quadrantStyle(m.cfg.Quadrants[m.blips[idx].Item.Quadrant])
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	relax := styleCached.Render("settled")
	if m.state.RelaxerRunning || m.state.MovesInFlight > 0 {
		relax = StyleWarning.Render(fmt.Sprintf("relaxing · %d moving", m.state.MovesInFlight))
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] ", min(m.cursor+1, len(m.blips)), len(m.blips))) + relax)
	b.WriteString("\n")
	if m.state.Tooltip != nil {
		b.WriteString("  " + StyleHighlight.Render(m.state.Tooltip.Text) + "\n")
	}
	if m.selected != "" {
		b.WriteString("  " + StyleDim.Render("selected ") + StyleValue.Render(m.selected) + "\n")
	}
	for _, e := range m.events {
		b.WriteString("  " + StyleDim.Render(iconInfo+" "+e) + "\n")
	}
	if m.status != "" {
		b.WriteString("  " + StyleDim.Render(m.status) + "\n")
	}
	return b.String()
}
