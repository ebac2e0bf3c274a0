package imagegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "quotes and newline", input: "A \"Big\" Deal\nToday", want: "A 'Big' Deal Today"},
		{name: "backslashes dropped", input: `C:\path\to`, want: "C:pathto"},
		{name: "whitespace runs", input: "  one \t\t two\r\n\nthree  ", want: "one two three"},
		{name: "empty", input: "   ", want: ""},
		{name: "plain", input: "Sunset", want: "Sunset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestBuildImageDetail_Blog(t *testing.T) {
	fields := map[string]string{
		FieldTitle:   "A \"Big\" Deal\nToday",
		FieldContent: "Markets rallied.",
	}

	assert.Equal(t, "Blog post title: 'A 'Big' Deal Today', Content: Markets rallied.", BuildImageDetail(TemplateBlog, fields))

	fields[FieldStyle] = "flat vector"
	fields[FieldColour] = "teal"

	assert.Equal(t,
		"Blog post title: 'A 'Big' Deal Today', Content: Markets rallied., Style: flat vector, Colour: teal",
		BuildImageDetail(TemplateBlog, fields),
	)
}

func TestBuildImageDetail_Infographic(t *testing.T) {
	fields := map[string]string{
		FieldContent: "5 steps\nto better sleep",
		FieldColour:  "  navy ",
	}

	assert.Equal(t, "5 steps to better sleep, Colour: navy", BuildImageDetail(TemplateInfographic, fields))
}

func TestNewRequest_ImageType(t *testing.T) {
	assert.Equal(t, "Featured Image", NewRequest(TemplateBlog, nil).ImageType)
	assert.Equal(t, "Infographic", NewRequest(TemplateInfographic, nil).ImageType)
}

func TestTemplateType_Fields(t *testing.T) {
	assert.Equal(t, 5, TemplateBlog.Cost())
	assert.Equal(t, 10, TemplateInfographic.Cost())
	assert.Equal(t, 0, TemplateType("poster").Cost())

	assert.Equal(t, []string{FieldContent}, TemplateBlog.MissingFields(map[string]string{FieldTitle: "x", FieldContent: " "}))
	assert.True(t, TemplateBlog.IsComplete(map[string]string{FieldTitle: "x", FieldContent: "y"}))
	assert.False(t, TemplateBlog.IsComplete(map[string]string{FieldContent: "y"}))
	assert.True(t, TemplateInfographic.IsComplete(map[string]string{FieldContent: "y"}))
	assert.False(t, TemplateType("poster").IsComplete(map[string]string{FieldContent: "y"}))
}

func TestParseTemplateType(t *testing.T) {
	got, err := ParseTemplateType(" Blog ")
	assert.NoError(t, err)
	assert.Equal(t, TemplateBlog, got)

	_, err = ParseTemplateType("poster")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}
