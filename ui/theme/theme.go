package theme

// Palette constants and ttk style setup for the control panel.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Light palette.
const (
	ColorBg        = "#f7f9fb" // app background
	ColorSurface   = "#ffffff" // panels, cards
	ColorPrimary   = "#2563eb" // start button, accents
	ColorDanger    = "#dc2626" // stop button
	ColorAccent    = "#10b981"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// Dark palette, selected with SetDark(true).
const (
	DarkBg        = "#0f172a"
	DarkSurface   = "#1e293b"
	DarkPrimary   = "#3b82f6"
	DarkDanger    = "#ef4444"
	DarkText      = "#e2e8f0"
	DarkTextMuted = "#94a3b8"
)

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStateLabel    = "state.TLabel"
	StyleStatusLabel   = "status.TLabel"
	StyleMutedLabel    = "muted.TLabel"
)

// Colors is one resolved palette.
type Colors struct {
	Bg, Surface, Primary, Danger, Accent, Text, TextMuted string
}

// PaletteFor returns the colours for the light or dark mode.
func PaletteFor(dark bool) Colors {
	if dark {
		return Colors{DarkBg, DarkSurface, DarkPrimary, DarkDanger, ColorAccent, DarkText, DarkTextMuted}
	}
	return Colors{ColorBg, ColorSurface, ColorPrimary, ColorDanger, ColorAccent, ColorText, ColorTextMuted}
}

var darkMode bool

// SetDark switches mode and reapplies styles.
func SetDark(dark bool) {
	darkMode = dark
	applyStyles(PaletteFor(darkMode))
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p Colors) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.Bg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleAccentLabel,
		Foreground(p.Primary),
		Background(p.Surface),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground(p.Text),
		Background(p.Surface),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleMutedLabel,
		Foreground(p.TextMuted),
		Background(p.Bg),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
