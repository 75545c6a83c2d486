package theme

import "github.com/charmbracelet/lipgloss"

// Palette is a set of terminal colours.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
	Muted     lipgloss.Color
	Highlight lipgloss.Color
	BarBg     lipgloss.Color
	BarFg     lipgloss.Color
}

// Palettes selectable with preferences.theme.
var Palettes = map[string]Palette{
	"default": {
		Primary:   "63",  // Purple
		Secondary: "241", // Gray
		Success:   "42",  // Green
		Error:     "196", // Red
		Border:    "238", // Dark gray
		Muted:     "245", // Light gray
		Highlight: "229", // Yellow
		BarBg:     "236",
		BarFg:     "252",
	},
	"night": {
		Primary:   "33",
		Secondary: "240",
		Success:   "36",
		Error:     "167",
		Border:    "236",
		Muted:     "244",
		Highlight: "117",
		BarBg:     "234",
		BarFg:     "250",
	},
	"light": {
		Primary:   "25",
		Secondary: "245",
		Success:   "28",
		Error:     "160",
		Border:    "250",
		Muted:     "242",
		Highlight: "130",
		BarBg:     "254",
		BarFg:     "235",
	},
}

var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorError     lipgloss.Color
	ColorBorder    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorHighlight lipgloss.Color
)

// Shared styles used across TUI components.
var (
	StyleBorder       lipgloss.Style
	StyleActiveBorder lipgloss.Style
	StyleTitle        lipgloss.Style
	StyleMuted        lipgloss.Style
	StyleError        lipgloss.Style
	StyleSuccess      lipgloss.Style
	StyleStatusBar    lipgloss.Style
)

func init() {
	Use("default")
}

// Use switches to the named palette. Unknown names fall back to default
// and report false.
func Use(name string) bool {
	p, ok := Palettes[name]
	if !ok {
		p = Palettes["default"]
	}

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorSuccess = p.Success
	ColorError = p.Error
	ColorBorder = p.Border
	ColorMuted = p.Muted
	ColorHighlight = p.Highlight

	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleActiveBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary)

	StyleTitle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	StyleMuted = lipgloss.NewStyle().
		Foreground(ColorMuted)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorError)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	StyleStatusBar = lipgloss.NewStyle().
		Background(p.BarBg).
		Foreground(p.BarFg).
		Padding(0, 1)

	return ok
}
