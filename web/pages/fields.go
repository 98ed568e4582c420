package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrstore/web/components"
)

// formFields lists the generator inputs, pre-filled from d.
func formFields(d components.FormDefaults) []components.Input {
	return []components.Input{
		{Label: "Data", Name: "data", Attrs: templ.Attributes{"required": true, "placeholder": "https://example.com or LPA:1$host$code"}},
		{Label: "Logo URL", Name: "logoUrl", Type: "url"},
		{Label: "Dark color", Name: "colorDark", Type: "color", Value: d.ColorDark, Class: "h-10 p-1"},
		{Label: "Light color", Name: "colorLight", Type: "color", Value: d.ColorLight, Class: "h-10 p-1"},
		{Label: "Error correction (L, M, Q, H)", Name: "errorCorrectionLevel", Value: d.Level},
		{Label: "Width", Name: "width", Type: "number", Value: strconv.Itoa(d.Width), Attrs: templ.Attributes{"min": "21"}},
		{Label: "Margin", Name: "margin", Type: "number", Value: strconv.Itoa(d.Margin), Attrs: templ.Attributes{"min": "0"}},
		{Label: "Logo size", Name: "logoSize", Type: "number", Value: strconv.FormatFloat(d.LogoSize, 'f', -1, 64),
			Attrs: templ.Attributes{"step": "0.05", "min": "0.05", "max": "0.5"}},
	}
}

var logoField = components.Input{
	Label: "Logo file",
	Name:  "logoFile",
	Type:  "file",
	Attrs: templ.Attributes{"accept": "image/*"},
	Class: "border-0 px-0",
}
