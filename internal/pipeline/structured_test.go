package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name  string
		input string
		title string
	}{
		{name: "plain", input: `{"title":"A"}`, title: "A"},
		{name: "fenced", input: "```json\n{\"title\":\"B\"}\n```", title: "B"},
		{name: "prose around", input: "Here you go:\n{\"title\":\"C\"}\nHope this helps {smile}", title: "C"},
		{name: "nested braces", input: `{"title":"D","meta":{"x":1}} trailing }`, title: "D"},
		{name: "raw newline in string", input: "{\"title\":\"E\",\"content\":\"<p>a</p>\n<p>b</p>\"}", title: "E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseStructured(tt.input)
			require.NoError(t, err)
			title, ok := stringField(obj, "title")
			assert.True(t, ok)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestParseStructuredRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "no braces here", "{not json}", "[1,2,3]"} {
		_, err := ParseStructured(input)
		var malformed *MalformedError
		assert.ErrorAs(t, err, &malformed, "input %q", input)
	}
}

func TestStringListField(t *testing.T) {
	obj := map[string]any{
		"list":   []any{" a ", "", 3, "b"},
		"csv":    "x, y ,,z",
		"number": 42,
	}
	assert.Equal(t, []string{"a", "b"}, stringListField(obj, "list"))
	assert.Equal(t, []string{"x", "y", "z"}, stringListField(obj, "csv"))
	assert.Nil(t, stringListField(obj, "number"))
	assert.Nil(t, stringListField(obj, "missing"))
}
