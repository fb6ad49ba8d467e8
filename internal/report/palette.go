package report

// Palette is an ordered list of "#rrggbb" colors, cycled with wraparound.
type Palette []string

// DefaultPalette matches the seeded category colors.
var DefaultPalette = Palette{
	"#e74c3c",
	"#e67e22",
	"#f39c12",
	"#3498db",
	"#9b59b6",
	"#27ae60",
	"#16a085",
	"#667eea",
}

// At returns the color for position i.
func (p Palette) At(i int) string {
	if len(p) == 0 || i < 0 {
		return ""
	}
	return p[i%len(p)]
}
