package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/render"
	"github.com/matzehuels/deeptime/pkg/session"
	"github.com/matzehuels/deeptime/pkg/view"
)

// cellPx is the width in px one terminal column stands for.
const cellPx = 8.0

// =============================================================================
// Key Map
// =============================================================================

type exploreKeys struct {
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Left    key.Binding
	Right   key.Binding
	Reset   key.Binding
	Eon     key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k exploreKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Left, k.Right, k.Eon, k.Help, k.Quit}
}

func (k exploreKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Reset},
		{k.Left, k.Right, k.Eon},
		{k.Help, k.Quit},
	}
}

var defaultExploreKeys = exploreKeys{
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "older")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "younger")),
	Reset:   key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("home/0", "reset")),
	Eon:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-4", "eons")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// navKey maps a terminal key to the navigator's key name.
func navKey(keys exploreKeys, msg tea.KeyMsg) (string, bool) {
	switch {
	case key.Matches(msg, keys.ZoomIn):
		return "+", true
	case key.Matches(msg, keys.ZoomOut):
		return "-", true
	case key.Matches(msg, keys.Left):
		return "ArrowLeft", true
	case key.Matches(msg, keys.Right):
		return "ArrowRight", true
	case key.Matches(msg, keys.Reset):
		return "Home", true
	case key.Matches(msg, keys.Eon):
		return msg.String(), true
	}
	return "", false
}

// =============================================================================
// Model
// =============================================================================

var (
	exploreTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	exploreAxisStyle  = lipgloss.NewStyle().Foreground(colorGray)
	exploreErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
	exploreNavStyle   = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	exploreNavActive  = lipgloss.NewStyle().Foreground(colorWhite).Background(colorCyan).Padding(0, 1)
)

// exploreModel drives a Navigator from the keyboard and draws each
// snapshot as colored character cells, one column per cellPx.
type exploreModel struct {
	ctx    context.Context
	orch   *render.Orchestrator
	nav    *view.Navigator
	keys   exploreKeys
	help   help.Model
	height float64 // viewport height in px
	cols   int
	rows   int
	start  view.Transform
	snap   *render.Snapshot
	err    error

	configure func(*view.Navigator)
}

func newExploreModel(ctx context.Context, orch *render.Orchestrator, height float64, start view.Transform) *exploreModel {
	return &exploreModel{
		ctx:    ctx,
		orch:   orch,
		keys:   defaultExploreKeys,
		help:   help.New(),
		height: height,
		start:  start,
	}
}

func (m *exploreModel) Init() tea.Cmd { return nil }

// onNavigator registers fn to run once the navigator exists, after the
// initial transform is applied.
func (m *exploreModel) onNavigator(fn func(*view.Navigator)) { m.configure = fn }

func (m *exploreModel) viewport() render.Viewport {
	return render.Viewport{Width: float64(m.cols) * cellPx, Height: m.height}
}

// resize rebuilds or re-parameterizes the navigator for a new terminal width.
func (m *exploreModel) resize(cols, rows int) {
	m.cols, m.rows = cols, rows
	m.help.Width = cols
	vp := m.viewport()
	if m.nav == nil {
		nav, err := m.orch.Navigator(vp)
		if err != nil {
			m.err = err
			return
		}
		nav.Set(m.start)
		if m.configure != nil {
			m.configure(nav)
		}
		m.nav = nav
	} else {
		metrics, err := m.orch.Metrics(vp)
		if err != nil {
			m.err = err
			return
		}
		if err := m.nav.Resize(metrics.InnerWidth); err != nil {
			m.err = err
			return
		}
	}
	m.pass()
}

func (m *exploreModel) pass() {
	if m.nav == nil {
		return
	}
	m.snap, m.err = m.orch.Pass(m.ctx, m.viewport(), m.nav.Transform())
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if name, ok := navKey(m.keys, msg); ok && m.nav != nil && m.nav.Key(name) {
			m.pass()
		}
	}
	return m, nil
}

func (m *exploreModel) View() string {
	if m.snap == nil {
		if m.err != nil {
			return exploreErrStyle.Render("error: "+m.err.Error()) + "\n"
		}
		return exploreDimStyle.Render("loading...") + "\n"
	}
	s := m.snap
	var b strings.Builder

	ctxLine := exploreTitleStyle.Render(s.Nav.Context.Name) + " " + exploreDimStyle.Render(s.Nav.Context.Range)
	b.WriteString(ctxLine + exploreDimStyle.Render(fmt.Sprintf("   k=%.2f", s.Transform.K)) + "\n")
	b.WriteString(m.navButtons() + "\n\n")

	colW := s.Metrics.InnerWidth / float64(m.cols)
	b.WriteString(bandRow(s.Eons, m.cols, colW) + "\n")
	b.WriteString(bandRow(s.Eras, m.cols, colW) + "\n")
	if len(s.Periods) > 0 {
		b.WriteString(bandRow(s.Periods, m.cols, colW) + "\n")
	}

	lanes := laneRows(s.Species, m.cols, colW, m.maxLanes())
	for _, row := range lanes {
		b.WriteString(row + "\n")
	}

	b.WriteString(eventRow(s, m.cols, colW) + "\n")
	b.WriteString(eventLabelRow(s.Events, m.cols, colW) + "\n")
	b.WriteString(axisRow(s, m.cols, colW) + "\n")

	if m.err != nil {
		b.WriteString(exploreErrStyle.Render(m.err.Error()) + "\n")
	}
	if s.Nav.KeyboardHint {
		b.WriteString(exploreDimStyle.Render("Zoom in to reveal periods, species and events") + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

// maxLanes bounds the species rows to what fits above the chrome.
func (m *exploreModel) maxLanes() int {
	n := m.rows - 14
	if n < 1 {
		return 1
	}
	return n
}

func (m *exploreModel) navButtons() string {
	parts := make([]string, 0, len(m.snap.Nav.Eons))
	for _, e := range m.snap.Nav.Eons {
		label := e.Key + " " + e.Name
		if e.Active {
			parts = append(parts, exploreNavActive.Render(label))
		} else {
			parts = append(parts, exploreNavStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// Cell Rendering
// =============================================================================

// cell is one terminal character with its colors. Empty colors use the
// terminal default.
type cell struct {
	ch rune
	fg string
	bg string
}

func blankRow(cols int) []cell {
	row := make([]cell, cols)
	for i := range row {
		row[i].ch = ' '
	}
	return row
}

// span returns the columns covered by [x, x+w) in inner px.
func span(x, w, colW float64, cols int) (int, int) {
	c0 := int(math.Floor(x / colW))
	c1 := int(math.Ceil((x + w) / colW))
	return max(c0, 0), min(c1, cols)
}

// put writes text centered in [c0, c1) when it fits.
func put(row []cell, c0, c1 int, text, fg string) {
	r := []rune(text)
	if len(r) == 0 || len(r) > c1-c0 {
		return
	}
	at := c0 + (c1-c0-len(r))/2
	for i, ch := range r {
		row[at+i].ch = ch
		row[at+i].fg = fg
	}
}

// paint joins runs of equally styled cells into lipgloss spans.
func paint(row []cell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run []rune
		for j < len(row) && row[j].fg == row[i].fg && row[j].bg == row[i].bg {
			run = append(run, row[j].ch)
			j++
		}
		st := lipgloss.NewStyle()
		if row[i].fg != "" {
			st = st.Foreground(lipgloss.Color(row[i].fg))
		}
		if row[i].bg != "" {
			st = st.Background(lipgloss.Color(row[i].bg))
		}
		b.WriteString(st.Render(string(run)))
		i = j
	}
	return b.String()
}

func bandRow(bands []render.Band, cols int, colW float64) string {
	row := blankRow(cols)
	for _, band := range bands {
		if band.Hidden {
			continue
		}
		c0, c1 := span(band.Rect.X, band.Rect.W, colW, cols)
		for c := c0; c < c1; c++ {
			row[c].bg = band.Color
		}
		name := lod.BandLabel(band.Name, float64(c1-c0)*cellPx)
		put(row, c0, c1, name, lod.ContrastColor(band.Color))
	}
	return paint(row)
}

// laneRows draws one row per species lane, oldest lane first.
func laneRows(species []render.SpeciesBar, cols int, colW float64, limit int) []string {
	lanes := 0
	for _, sp := range species {
		lanes = max(lanes, sp.Lane+1)
	}
	lanes = min(lanes, limit)
	rows := make([][]cell, lanes)
	for i := range rows {
		rows[i] = blankRow(cols)
	}
	for _, sp := range species {
		if sp.Lane >= lanes {
			continue
		}
		row := rows[sp.Lane]
		c0, c1 := span(sp.Rect.X, sp.Rect.W, colW, cols)
		for c := c0; c < c1; c++ {
			row[c].ch = '▬'
			row[c].fg = sp.Color
		}
		if sp.Label.Text != "" && c1 < cols {
			text := []rune(sp.Label.Text)
			for i := 0; i < len(text) && c1+1+i < cols; i++ {
				row[c1+1+i] = cell{ch: text[i], fg: string(colorGray)}
			}
		}
	}
	out := make([]string, lanes)
	for i, r := range rows {
		out[i] = paint(r)
	}
	return out
}

// eventRow draws extinction bands and event dots on one line.
func eventRow(s *render.Snapshot, cols int, colW float64) string {
	row := blankRow(cols)
	for _, ex := range s.Extinctions {
		c0, c1 := span(ex.Rect.X, ex.Rect.W, colW, cols)
		for c := c0; c < c1; c++ {
			row[c] = cell{ch: '┃', fg: ex.Color}
		}
	}
	for _, ev := range s.Events {
		c := int(ev.X / colW)
		if c < 0 || c >= cols {
			continue
		}
		ch := '•'
		if ev.Major {
			ch = '●'
		}
		row[c] = cell{ch: ch, fg: ev.Color}
	}
	if s.Marker.Visible {
		if c := int(s.Marker.X / colW); c >= 0 && c < cols {
			row[c] = cell{ch: '▼', fg: string(colorCyan)}
		}
	}
	return paint(row)
}

// eventLabelRow places visible event labels left to right, skipping any
// that would overlap a label already placed.
func eventLabelRow(events []render.EventMarker, cols int, colW float64) string {
	row := blankRow(cols)
	next := 0
	for _, ev := range events {
		text := []rune(ev.Label.Text)
		if len(text) == 0 {
			continue
		}
		c := int(ev.Label.X/colW) - len(text)/2
		if c < next {
			continue
		}
		if c+len(text) > cols {
			break
		}
		for i, ch := range text {
			row[c+i] = cell{ch: ch, fg: ev.Color}
		}
		next = c + len(text) + 1
	}
	return paint(row)
}

func axisRow(s *render.Snapshot, cols int, colW float64) string {
	row := blankRow(cols)
	next := 0
	for _, t := range s.Axis {
		c := int(t.X / colW)
		if c < 0 || c >= cols {
			continue
		}
		row[c] = cell{ch: '┴', fg: string(colorGray)}
		text := []rune(t.Label)
		if c+1 < next || c+1+len(text) > cols {
			continue
		}
		for i, ch := range text {
			row[c+1+i] = cell{ch: ch, fg: string(colorGray)}
		}
		next = c + 2 + len(text)
	}
	return exploreAxisStyle.Render(paint(row))
}

// =============================================================================
// Command
// =============================================================================

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		dataPath string
		viewID   string
		save     bool
		name     string
		lang     string
		start    = view.Identity
	)
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Pan and zoom the timeline in the terminal",
		Long: `Explore the timeline interactively.

Keys: + and - zoom, ← and → pan, 1-4 jump to an eon, home resets.
With --view the view is restored from and written back to the session
store; --save creates a new saved view that follows the navigation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if dataPath == "" {
				dataPath = c.cfg.Dataset
			}
			data, err := dataset.LoadPrepared(dataPath)
			if err != nil {
				return err
			}
			orch := render.New(data, render.WithLayoutEngine(c.cfg.LayoutEngine()))

			var pub *session.Publisher
			if viewID != "" || save {
				store, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				id, st, err := c.resumeView(ctx, store, viewID, name, session.FromTransform(start, lang))
				if err != nil {
					return err
				}
				if viewID != "" && !cmd.Flags().Changed("x") && !cmd.Flags().Changed("k") {
					start = st.Transform()
				}
				lang = st.Lang
				pub = session.NewPublisher(store, id, c.cfg.Session.Debounce, log.New(io.Discard))
				viewID = id
			}

			model := newExploreModel(ctx, orch, c.cfg.Viewport.Height, start)
			if pub != nil {
				publishTo := pub
				model.onNavigator(func(nav *view.Navigator) {
					nav.OnChange(func(t view.Transform) {
						publishTo.Publish(session.FromTransform(t, lang))
					})
				})
			}

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			p := printer{cmd.OutOrStdout()}
			if pub != nil {
				if cerr := pub.Close(); cerr != nil {
					p.warning("Saving view failed: %v", cerr)
				} else if last, n := pub.Last(); n > 0 {
					p.success("Saved view %s %s", StyleHighlight.Render(viewID), StyleDim.Render(last.Query()))
				}
			}
			if err != nil && ctx.Err() == nil {
				return err
			}
			if model.nav != nil {
				p.detail("Last view: %s", model.nav.Transform().Query())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "dataset", "", "dataset file (default builtin)")
	cmd.Flags().Float64Var(&start.X, "x", start.X, "initial translation in px")
	cmd.Flags().Float64Var(&start.K, "k", start.K, "initial scale factor")
	cmd.Flags().StringVar(&viewID, "view", "", "resume a saved view and keep it updated")
	cmd.Flags().BoolVar(&save, "save", false, "save the navigation as a new view")
	cmd.Flags().StringVar(&name, "name", "", "name for a view created with --save")
	cmd.Flags().StringVar(&lang, "lang", "", "language tag stored with the view")
	return cmd
}

// resumeView loads the view id, or creates a new one when id is empty.
func (c *CLI) resumeView(ctx context.Context, store session.Store, id, name string, st session.State) (string, session.State, error) {
	if id != "" {
		sess, err := session.Lookup(ctx, store, id)
		if err != nil {
			return "", session.State{}, err
		}
		return sess.ID, sess.State, nil
	}
	sess := session.New(name, st, c.cfg.Session.TTL)
	if err := store.Set(ctx, sess); err != nil {
		return "", session.State{}, err
	}
	return sess.ID, st, nil
}
