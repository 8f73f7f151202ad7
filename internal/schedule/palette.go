package schedule

import "strings"

// ColorOption is one named palette entry with its light and dark variants.
type ColorOption struct {
	Name string

	Pastel, PastelText, PastelBorder string
	Bold, BoldText, BoldBorder       string

	DarkPastel, DarkPastelText, DarkPastelBorder string
	DarkBold, DarkBoldText, DarkBoldBorder       string
}

var Palette = []ColorOption{
	{"Blue", "#DBEAFE", "#1E40AF", "#93C5FD", "#3B82F6", "#FFFFFF", "#1D4ED8", "#1E3A5F", "#93C5FD", "#2563EB", "#2563EB", "#DBEAFE", "#1D4ED8"},
	{"Purple", "#EDE9FE", "#5B21B6", "#C4B5FD", "#8B5CF6", "#FFFFFF", "#6D28D9", "#2E1065", "#C4B5FD", "#7C3AED", "#7C3AED", "#EDE9FE", "#6D28D9"},
	{"Rose", "#FFE4E6", "#9F1239", "#FDA4AF", "#F43F5E", "#FFFFFF", "#BE123C", "#4C0519", "#FDA4AF", "#E11D48", "#E11D48", "#FFE4E6", "#BE123C"},
	{"Orange", "#FFEDD5", "#9A3412", "#FDBA74", "#F97316", "#FFFFFF", "#C2410C", "#431407", "#FDBA74", "#EA580C", "#EA580C", "#FFEDD5", "#C2410C"},
	{"Amber", "#FEF3C7", "#92400E", "#FCD34D", "#F59E0B", "#FFFFFF", "#B45309", "#451A03", "#FCD34D", "#D97706", "#D97706", "#FEF3C7", "#B45309"},
	{"Green", "#DCFCE7", "#166534", "#86EFAC", "#22C55E", "#FFFFFF", "#15803D", "#052E16", "#86EFAC", "#16A34A", "#16A34A", "#DCFCE7", "#15803D"},
	{"Teal", "#CCFBF1", "#115E59", "#5EEAD4", "#14B8A6", "#FFFFFF", "#0D9488", "#042F2E", "#5EEAD4", "#0D9488", "#0D9488", "#CCFBF1", "#0F766E"},
	{"Cyan", "#CFFAFE", "#155E75", "#67E8F9", "#06B6D4", "#FFFFFF", "#0891B2", "#083344", "#67E8F9", "#0891B2", "#0891B2", "#CFFAFE", "#0E7490"},
	{"Indigo", "#E0E7FF", "#3730A3", "#A5B4FC", "#6366F1", "#FFFFFF", "#4338CA", "#1E1B4B", "#A5B4FC", "#4F46E5", "#4F46E5", "#E0E7FF", "#4338CA"},
	{"Pink", "#FCE7F3", "#9D174D", "#F9A8D4", "#EC4899", "#FFFFFF", "#BE185D", "#500724", "#F9A8D4", "#DB2777", "#DB2777", "#FCE7F3", "#BE185D"},
}

// DefaultTaskColor is the color new tasks get (Blue, pastel).
var DefaultTaskColor = Palette[0].Pastel

// LookupColor finds the palette entry whose pastel or bold value is hex.
func LookupColor(hex string) (ColorOption, bool) {
	for _, c := range Palette {
		if equalHex(c.Pastel, hex) || equalHex(c.Bold, hex) {
			return c, true
		}
	}
	return ColorOption{}, false
}

// TaskColors is what a renderer paints for one task block.
type TaskColors struct {
	Background string
	Text       string
	Border     string
}

// ResolveColors maps a stored task color to display colors. Colors outside the
// palette are used as-is for background and border.
func ResolveColors(color string, mode PaletteMode, dark bool) TaskColors {
	c, ok := LookupColor(color)
	if !ok {
		text := "#1F2937"
		if dark {
			text = "#E5E7EB"
		}
		return TaskColors{Background: color, Text: text, Border: color}
	}
	switch {
	case mode == PaletteBold && dark:
		return TaskColors{c.DarkBold, c.DarkBoldText, c.DarkBoldBorder}
	case mode == PaletteBold:
		return TaskColors{c.Bold, c.BoldText, c.BoldBorder}
	case dark:
		return TaskColors{c.DarkPastel, c.DarkPastelText, c.DarkPastelBorder}
	}
	return TaskColors{c.Pastel, c.PastelText, c.PastelBorder}
}

func equalHex(a, b string) bool {
	return len(a) == len(b) && strings.EqualFold(a, b)
}
