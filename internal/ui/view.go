package ui

import (
	"math"
	"strings"

	"github.com/atomicstack/fabella/internal/input"
	"github.com/atomicstack/fabella/internal/menu"
	"github.com/atomicstack/fabella/internal/theme"
	"github.com/atomicstack/fabella/internal/tile"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// footerRows is the status or prompt line below the grid.
const footerRows = 1

const (
	emblemUnseen   = "●"
	emblemWatching = "◐"
	emblemTrash    = "✗"
	emblemDir      = "▸"
	barFull        = "━"
	barEmpty       = "─"
)

// cellMetrics are the grid metrics measured in terminal cells. A tile is a
// bordered box with two title lines, the info line and the position bar.
func cellMetrics() theme.Metrics {
	m := theme.Default()
	m.TileWidth = 24
	m.ThumbHeight = 4
	m.TextVSpace = 0
	m.TextSize = 1
	m.TextLines = 2
	m.MinHSpace = 2
	m.MinVSpace = 1
	m.HeaderTextSize = 1
	m.HeaderHSpace = 1
	m.HeaderVSpace = 1
	return m
}

// View implements tea.Model.
func (m *Model) View() string {
	metrics := cellMetrics()
	lines := make([]string, m.height)
	lines[0] = m.headerLine(metrics)

	if m.ctrl.Mode() == input.ModeVideo {
		m.viewPlayback(lines, metrics)
	} else {
		m.viewGrid(lines, metrics)
	}

	lines[len(lines)-1] = m.footerLine()
	for i, line := range lines {
		if lipgloss.Width(line) > m.width {
			lines[i] = truncate.String(line, uint(m.width))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) headerLine(metrics theme.Metrics) string {
	pad := strings.Repeat(" ", metrics.HeaderHSpace)
	left := pad + styles.Breadcrumb.Render(m.menu.Title())
	right := styles.Clock.Render(m.clock().Format(menu.ClockFormat)) + pad
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) viewGrid(lines []string, metrics theme.Metrics) {
	grid := menu.Layout(metrics, m.width, m.height-footerRows)
	m.menu.Scroll(grid)
	tiles, first := m.menu.Visible()
	if len(tiles) == 0 {
		if len(lines) > grid.Header {
			lines[grid.Header] = strings.Repeat(" ", metrics.HeaderHSpace) + styles.Info.Render("(no videos here)")
		}
		return
	}
	current := m.menu.Index()
	inner := metrics.TileWidth - 2
	gap := strings.Repeat(" ", metrics.MinHSpace)
	for row := 0; row*grid.TilesPerRow < len(tiles); row++ {
		start := row * grid.TilesPerRow
		end := min(len(tiles), start+grid.TilesPerRow)
		cells := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, gap)
			}
			cells = append(cells, renderTile(tiles[i], inner, first+i == current))
		}
		x, y := grid.TilePos(row, 0)
		block := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		indent := strings.Repeat(" ", x)
		for j, line := range strings.Split(block, "\n") {
			if y+j >= len(lines)-footerRows {
				break
			}
			lines[y+j] = indent + line
		}
	}
}

// renderTile draws one bordered tile cell of the given inner width.
func renderTile(t *tile.Tile, width int, selected bool) string {
	title := titleLines(tile.DisplayName(t.Name, t.IsDir), width, 2)
	body := []string{
		styles.Title.Render(title[0]),
		styles.Title.Render(title[1]),
		infoLine(t, width),
		positionBar(t, width),
	}
	style := styles.Tile
	if selected {
		style = styles.SelectedTile
	}
	return style.Copy().Width(width).Render(strings.Join(body, "\n"))
}

// titleLines word-wraps title into n lines of at most width cells. Text
// that does not fit ends with an ellipsis.
func titleLines(title string, width, n int) []string {
	wrapped := strings.Split(wordwrap.String(title, width), "\n")
	out := make([]string, n)
	for i := range out {
		if i >= len(wrapped) {
			break
		}
		line := wrapped[i]
		if i == n-1 && len(wrapped) > n {
			line = truncate.StringWithTail(line+" "+wrapped[i+1], uint(width), "…")
		} else if lipgloss.Width(line) > width {
			line = truncate.StringWithTail(line, uint(width), "…")
		}
		out[i] = line
	}
	return out
}

func infoLine(t *tile.Tile, width int) string {
	var emblem string
	switch {
	case t.IsDir:
		emblem = styles.Info.Render(emblemDir)
	case t.Trash():
		emblem = styles.Trash.Render(emblemTrash)
	case t.Unseen():
		emblem = styles.Unseen.Render(emblemUnseen)
	case t.Watching():
		emblem = styles.Watching.Render(emblemWatching)
	}
	var duration string
	if d, ok := t.Duration(); ok {
		duration = styles.Duration.Render(tile.FormatDuration(d))
	}
	gap := width - lipgloss.Width(emblem) - lipgloss.Width(duration)
	if gap < 1 {
		return emblem
	}
	return emblem + strings.Repeat(" ", gap) + duration
}

// positionBar draws the resume position of a file; it is blank at the
// start and for directories.
func positionBar(t *tile.Tile, width int) string {
	pos := t.Position()
	if t.IsDir || pos <= 0 {
		return ""
	}
	filled := int(math.Round(math.Min(pos, 1) * float64(width)))
	return styles.PosBar.Render(strings.Repeat(barFull, filled)) +
		styles.PosBarEmpty.Render(strings.Repeat(barEmpty, width-filled))
}

// viewPlayback shows the name of the playing video and, with the OSD on or
// while paused, its status line.
func (m *Model) viewPlayback(lines []string, metrics theme.Metrics) {
	row := metrics.HeaderHeight()
	if row >= len(lines)-footerRows {
		return
	}
	pad := strings.Repeat(" ", metrics.HeaderHSpace)
	name := pad + styles.Title.Render(m.menu.NowPlaying())
	if m.player == nil || !(m.ctrl.OSD() || m.player.Paused()) {
		lines[row] = name
		return
	}
	status := styles.Status.Render(menu.FormatStatus(m.status())) + pad
	gap := m.width - lipgloss.Width(name) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	lines[row] = name + strings.Repeat(" ", gap) + status
}

func (m *Model) status() menu.Status {
	d, known := m.player.Duration()
	return menu.Status{
		Paused:        m.player.Paused(),
		Position:      m.player.Position(),
		Duration:      d,
		KnownDuration: known,
	}
}

func (m *Model) footerLine() string {
	switch {
	case m.finding:
		return m.find.View()
	case m.errMsg != "":
		return styles.Error.Render("Error: " + m.errMsg)
	case m.ctrl.Mode() == input.ModeVideo:
		return styles.Info.Render("esc menu  enter stop  space pause  o status  ctrl+q quit")
	default:
		return styles.Info.Render(keyHelp())
	}
}
