package components

import "github.com/a-h/templ"

// FormDefaults pre-fills the generator form on the home page.
type FormDefaults struct {
	ColorDark  string
	ColorLight string
	Level      string
	Width      int
	Margin     int
	LogoSize   float64
}

// Input is a labelled form input.
type Input struct {
	Label string
	Name  string
	Type  string
	Value string
	Attrs templ.Attributes
	Class string // merged over the default input classes
}

func inputType(t string) string {
	if t == "" {
		return "text"
	}
	return t
}
