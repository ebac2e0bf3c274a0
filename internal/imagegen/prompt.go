package imagegen

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// makes free text safe to embed in the webhook prompt: double quotes become
// single quotes, backslashes are dropped and whitespace collapses to one space
func Sanitize(value string) string {
	value = strings.ReplaceAll(value, `"`, `'`)
	value = strings.ReplaceAll(value, `\`, "")
	value = whitespaceRun.ReplaceAllString(value, " ")

	return strings.TrimSpace(value)
}

// builds the image_detail prompt for a template from its fields
func BuildImageDetail(t TemplateType, fields map[string]string) string {
	var b strings.Builder

	switch t {
	case TemplateBlog:
		b.WriteString("Blog post title: '")
		b.WriteString(Sanitize(fields[FieldTitle]))
		b.WriteString("', Content: ")
		b.WriteString(Sanitize(fields[FieldContent]))
	case TemplateInfographic:
		b.WriteString(Sanitize(fields[FieldContent]))
	}

	if style := Sanitize(fields[FieldStyle]); style != "" {
		b.WriteString(", Style: ")
		b.WriteString(style)
	}

	if colour := Sanitize(fields[FieldColour]); colour != "" {
		b.WriteString(", Colour: ")
		b.WriteString(colour)
	}

	return b.String()
}

// builds the full webhook request body for one item
func NewRequest(t TemplateType, fields map[string]string) Request {
	return Request{
		ImageType:   t.ImageType(),
		ImageDetail: BuildImageDetail(t, fields),
	}
}
