package menu

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/fabella/internal/logging/events"
	"github.com/atomicstack/fabella/internal/tile"
)

// Find selects the tile whose title best matches query and returns its
// index, or -1 when nothing matches.
func (m *Menu) Find(query string) int {
	tiles := m.Tiles()
	titles := make([]string, len(tiles))
	for i, t := range tiles {
		titles[i] = tile.DisplayName(t.Name, t.IsDir)
	}
	idx := BestMatch(titles, query)
	events.Menu.Find(m.Path(), query, idx)
	if idx >= 0 {
		m.Select(idx)
	}
	return idx
}

// BestMatch ranks titles against query: an exact match wins, then the
// first prefix match, then the first substring match, then the closest
// fuzzy match. Ties go to the earlier title.
func BestMatch(titles []string, query string) int {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len(titles) == 0 {
		return -1
	}
	for i, title := range titles {
		if strings.EqualFold(title, trimmed) {
			return i
		}
	}
	lower := strings.ToLower(trimmed)
	for i, title := range titles {
		if strings.HasPrefix(strings.ToLower(title), lower) {
			return i
		}
	}
	for i, title := range titles {
		if strings.Contains(strings.ToLower(title), lower) {
			return i
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, titles)
	best := -1
	bestDistance := 0
	for _, rank := range ranks {
		if best == -1 || rank.Distance < bestDistance ||
			(rank.Distance == bestDistance && rank.OriginalIndex < best) {
			best = rank.OriginalIndex
			bestDistance = rank.Distance
		}
	}
	return best
}
