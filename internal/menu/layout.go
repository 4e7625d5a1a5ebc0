package menu

import (
	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/theme"
)

// Grid is the tile layout for one viewport size.
type Grid struct {
	TilesPerRow int
	RowsVisible int
	HOffset     int
	VOffset     int
	HTotal      int
	VTotal      int
	Header      int
}

// Layout computes the grid for a width x height viewport. Tiles are
// centered horizontally and the rows are centered below the header.
func Layout(m theme.Metrics, width, height int) Grid {
	g := Grid{
		HTotal: m.TileWidth + m.MinHSpace,
		VTotal: m.TileHeight() + m.MinVSpace,
		Header: m.HeaderHeight(),
	}
	if g.HTotal < 1 {
		g.HTotal = 1
	}
	if g.VTotal < 1 {
		g.VTotal = 1
	}
	g.TilesPerRow = max(1, width/g.HTotal)
	g.HOffset = (width - g.TilesPerRow*g.HTotal + m.MinHSpace) / 2

	avail := height - g.Header
	g.RowsVisible = max(1, avail/g.VTotal)
	g.VOffset = (avail-g.RowsVisible*g.VTotal)/2 + m.MinVSpace
	return g
}

// TilePos returns the top-left corner of the tile in visible slot
// (row, col).
func (g Grid) TilePos(row, col int) (int, int) {
	return g.HOffset + col*g.HTotal, g.Header + g.VOffset + row*g.VTotal
}

// TotalRows returns how many rows n tiles occupy.
func (g Grid) TotalRows(n int) int {
	if n <= 0 {
		return 0
	}
	return (n-1)/max(1, g.TilesPerRow) + 1
}

// Layout computes the grid for the viewport with the menu's metrics.
func (m *Menu) Layout(width, height int) Grid {
	return Layout(m.metrics, width, height)
}

// Scroll records the grid's row geometry and moves the scroll window so
// the selected row is visible, then clamps it to the tile count.
func (m *Menu) Scroll(g Grid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perRow = max(1, g.TilesPerRow)
	m.rows = max(1, g.RowsVisible)
	m.ensureVisible()
}

func (m *Menu) ensureVisible() {
	if len(m.tiles) == 0 {
		m.current, m.offset = 0, 0
		return
	}
	row := m.current / m.perRow
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+m.rows {
		m.offset = row - m.rows + 1
	}
	total := (len(m.tiles)-1)/m.perRow + 1
	maxOffset := max(0, total-m.rows)
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Previous selects the tile before the current one.
func (m *Menu) Previous() bool { return m.move(-1) }

// Next selects the tile after the current one.
func (m *Menu) Next() bool { return m.move(1) }

// PreviousRow selects the tile one row up, if there is one.
func (m *Menu) PreviousRow() bool { return m.moveRows(-1) }

// NextRow selects the tile one row down. From the row before a short last
// row it lands on the last tile.
func (m *Menu) NextRow() bool { return m.moveRows(1) }

// PageUp moves up by the number of visible rows.
func (m *Menu) PageUp() bool {
	return m.moveRows(-m.visibleRows())
}

// PageDown moves down by the number of visible rows.
func (m *Menu) PageDown() bool {
	return m.moveRows(m.visibleRows())
}

// Home selects the first tile.
func (m *Menu) Home() bool {
	return m.jump(func(int) int { return 0 })
}

// End selects the last tile.
func (m *Menu) End() bool {
	return m.jump(func(n int) int { return n - 1 })
}

// Select moves the selection to idx, clamped to the tiles.
func (m *Menu) Select(idx int) bool {
	return m.jump(func(n int) int { return min(max(idx, 0), n-1) })
}

func (m *Menu) visibleRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows
}

func (m *Menu) move(delta int) bool {
	return m.jump(func(n int) int {
		return min(max(m.current+delta, 0), n-1)
	})
}

// moveRows moves by whole rows, keeping the column where possible. Moving
// down never passes the last tile; moving up stops at the first row.
func (m *Menu) moveRows(rows int) bool {
	return m.jump(func(n int) int {
		row := m.current / m.perRow
		lastRow := (n - 1) / m.perRow
		target := row + rows
		switch {
		case rows > 0 && row >= lastRow:
			return m.current
		case target > lastRow:
			target = lastRow
		case target < 0:
			if row == 0 {
				return m.current
			}
			target = 0
		}
		return min(n-1, m.current+(target-row)*m.perRow)
	})
}

// jump sets the selection to pick(len) and reports whether it changed.
func (m *Menu) jump(pick func(n int) int) bool {
	m.mu.Lock()
	n := len(m.tiles)
	if n == 0 {
		m.mu.Unlock()
		return false
	}
	old := m.current
	m.current = pick(n)
	m.ensureVisible()
	changed := m.current != old
	path, idx, offset := m.path, m.current, m.offset
	m.mu.Unlock()
	if changed {
		events.Menu.Cursor(path, idx, offset)
	}
	return changed
}
