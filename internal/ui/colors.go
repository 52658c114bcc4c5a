package ui

// Palette exposes the active theme through method accessors. It satisfies
// apperrors.ColorProvider, so error reporting stays colored without the
// errors package importing ui.
type Palette struct{}

func (Palette) Yellow() string { return GetCurrentTheme().Warning }
func (Palette) Red() string    { return GetCurrentTheme().Error }
func (Palette) Green() string  { return GetCurrentTheme().Success }
func (Palette) Blue() string   { return GetCurrentTheme().Index }
func (Palette) Muted() string  { return GetCurrentTheme().Muted }
func (Palette) Bold() string   { return GetCurrentTheme().Bold }
func (Palette) Reset() string  { return GetCurrentTheme().Reset }

// Paint wraps s in color and the theme's reset code. An empty color returns
// s unchanged.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + GetCurrentTheme().Reset
}
