package theme

import "github.com/charmbracelet/lipgloss"

// Color is a linear RGBA quadruple in [0, 1].
type Color [4]float32

// Metrics describes tile and menu geometry and colors for the graphical
// front-end. Zero values are never used directly; see Default.
type Metrics struct {
	TileWidth       int     `mapstructure:"tile_width" validate:"gt=0"`
	ThumbHeight     int     `mapstructure:"thumb_height" validate:"gt=0"`
	MinHSpace       int     `mapstructure:"min_hspace" validate:"gte=0"`
	MinVSpace       int     `mapstructure:"min_vspace" validate:"gte=0"`
	TextVSpace      int     `mapstructure:"text_vspace" validate:"gte=0"`
	TextSize        float64 `mapstructure:"text_size" validate:"gt=0"`
	TextLines       int     `mapstructure:"text_lines" validate:"gt=0"`
	PosBarHeight    int     `mapstructure:"pos_bar_height" validate:"gte=0"`
	OutlineSize     int     `mapstructure:"outline_size" validate:"gte=0"`
	ShadowBlur      int     `mapstructure:"shadow_blur" validate:"gte=0"`
	ShadowExpand    int     `mapstructure:"shadow_expand" validate:"gte=0"`
	ShadowOffset    int     `mapstructure:"shadow_offset"`
	HighlightBlur   int     `mapstructure:"highlight_blur" validate:"gte=0"`
	HighlightExpand int     `mapstructure:"highlight_expand" validate:"gte=0"`
	HeaderTextSize  float64 `mapstructure:"header_text_size" validate:"gt=0"`
	HeaderHSpace    int     `mapstructure:"header_hspace" validate:"gte=0"`
	HeaderVSpace    int     `mapstructure:"header_vspace" validate:"gte=0"`

	Background     Color `mapstructure:"background"`
	PosBarColor    Color `mapstructure:"pos_bar_color"`
	ShadowColor    Color `mapstructure:"shadow_color"`
	HighlightColor Color `mapstructure:"highlight_color"`
	OutlineColor   Color `mapstructure:"outline_color"`
	TextColor      Color `mapstructure:"text_color"`
	TextHLColor    Color `mapstructure:"text_hl_color"`
	FallbackColor  Color `mapstructure:"fallback_color"`
}

// LineHeight returns the vertical advance of one line of tile text.
func (m Metrics) LineHeight() int {
	return int(m.TextSize * 1.65)
}

// TileHeight is the full height of a tile including its text block.
func (m Metrics) TileHeight() int {
	return m.ThumbHeight + m.TextVSpace + m.LineHeight()*m.TextLines
}

// HeaderHeight is the vertical space reserved above the grid.
func (m Metrics) HeaderHeight() int {
	return int(float64(m.HeaderVSpace) + m.HeaderTextSize*1.65)
}

// Default returns the stock tile and menu metrics.
func Default() Metrics {
	return Metrics{
		TileWidth:       320,
		ThumbHeight:     200,
		MinHSpace:       48,
		MinVSpace:       32,
		TextVSpace:      8,
		TextSize:        18,
		TextLines:       3,
		PosBarHeight:    2,
		OutlineSize:     2,
		ShadowBlur:      32,
		ShadowExpand:    4,
		ShadowOffset:    8,
		HighlightBlur:   19,
		HighlightExpand: 10,
		HeaderTextSize:  36,
		HeaderHSpace:    64,
		HeaderVSpace:    32,

		Background:     Color{0.16, 0.16, 0.2, 1},
		PosBarColor:    Color{0.8, 0.1, 0.1, 1},
		ShadowColor:    Color{0, 0, 0, 1},
		HighlightColor: Color{0.4, 0.7, 1, 1},
		OutlineColor:   Color{0, 0, 0, 1},
		TextColor:      Color{0.6, 0.6, 0.6, 1},
		TextHLColor:    Color{1, 1, 1, 1},
		FallbackColor:  Color{0.3, 0.3, 0.3, 1},
	}
}

// Styles describes reusable Lip Gloss styles for the terminal front-end.
type Styles struct {
	Header       *lipgloss.Style
	Breadcrumb   *lipgloss.Style
	Clock        *lipgloss.Style
	Tile         *lipgloss.Style
	SelectedTile *lipgloss.Style
	Title        *lipgloss.Style
	Duration     *lipgloss.Style
	Unseen       *lipgloss.Style
	Watching     *lipgloss.Style
	Trash        *lipgloss.Style
	PosBar       *lipgloss.Style
	PosBarEmpty  *lipgloss.Style
	Status       *lipgloss.Style
	Error        *lipgloss.Style
	Info         *lipgloss.Style
	Filter       *lipgloss.Style
	FilterPrompt *lipgloss.Style
}

var defaultStyles = Styles{
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Breadcrumb: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	),
	Clock: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	Tile: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")),
	),
	SelectedTile: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).
			Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("33")),
	),
	Title: ptr(
		lipgloss.NewStyle().Bold(true),
	),
	Duration: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	Unseen: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	),
	Watching: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	),
	Trash: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	PosBar: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	),
	PosBarEmpty: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	Status: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Background(lipgloss.Color("236")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Filter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FilterPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
}

// DefaultStyles exposes the standard terminal style set.
func DefaultStyles() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
