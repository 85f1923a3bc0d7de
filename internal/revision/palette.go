package revision

// Palettes assign colors to a discipline's layers by their position in the
// newest-first list. Colors follow sort position, not revision identity.
var palettes = map[string][]string{
	"건축":   {"#374151", "#6B7280", "#9CA3AF", "#D1D5DB"},
	"구조":   {"#B45309", "#D97706", "#FCD34D", "#FDE68A"},
	"소방":   {"#DC2626", "#EF4444", "#F87171", "#FCA5A5"},
	"공조설비": {"#1E40AF", "#2563EB", "#60A5FA", "#93C5FD"},
	"배관설비": {"#059669", "#10B981", "#34D399", "#6EE7B7"},
	"설비":   {"#7C3AED", "#8B5CF6", "#A78BFA", "#C4B5FD"},
	"조경":   {"#16A34A", "#22C55E", "#4ADE80", "#86EFAC"},
}

var defaultPalette = []string{"#374151", "#6B7280", "#9CA3AF", "#D1D5DB"}

// Palette returns the color palette for a discipline.
func Palette(discipline string) []string {
	if p, ok := palettes[discipline]; ok {
		return p
	}
	return defaultPalette
}

// ColorAt returns the color for the idx-th layer of a discipline.
func ColorAt(discipline string, idx int) string {
	p := Palette(discipline)
	if idx < 0 {
		idx = 0
	}
	return p[idx%len(p)]
}
