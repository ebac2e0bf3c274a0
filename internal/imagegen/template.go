package imagegen

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTemplate = errors.New("unknown template type")

// which of the two generation modes a request uses
type TemplateType string

const (
	TemplateBlog        TemplateType = "blog"
	TemplateInfographic TemplateType = "infographic"
)

// field names accepted in a request's field map
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldStyle   = "style"
	FieldColour  = "colour"
)

// credits charged per item
const (
	BlogCost        = 5
	InfographicCost = 10
)

// all supported template types, in display order
var Templates = []TemplateType{TemplateBlog, TemplateInfographic}

// parses a template type from a path or body value
func ParseTemplateType(value string) (TemplateType, error) {
	switch t := TemplateType(strings.ToLower(strings.TrimSpace(value))); t {
	case TemplateBlog, TemplateInfographic:
		return t, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownTemplate, value)
	}
}

func (t TemplateType) Valid() bool {
	return t == TemplateBlog || t == TemplateInfographic
}

// credit price of one item of this template
func (t TemplateType) Cost() int {
	switch t {
	case TemplateBlog:
		return BlogCost
	case TemplateInfographic:
		return InfographicCost
	default:
		return 0
	}
}

// the image_type value the webhook expects
func (t TemplateType) ImageType() string {
	switch t {
	case TemplateBlog:
		return "Featured Image"
	case TemplateInfographic:
		return "Infographic"
	default:
		return ""
	}
}

// fields that must be non-empty before an item can be submitted
func (t TemplateType) RequiredFields() []string {
	switch t {
	case TemplateBlog:
		return []string{FieldTitle, FieldContent}
	case TemplateInfographic:
		return []string{FieldContent}
	default:
		return nil
	}
}

// reports the required fields that are missing or blank
func (t TemplateType) MissingFields(fields map[string]string) []string {
	var missing []string

	for _, name := range t.RequiredFields() {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}

	return missing
}

// true when every required field has content
func (t TemplateType) IsComplete(fields map[string]string) bool {
	return t.Valid() && len(t.MissingFields(fields)) == 0
}
