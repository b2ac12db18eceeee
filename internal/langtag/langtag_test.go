package langtag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"single", "How do I reverse a list in @Python?", []string{"python"}},
		{"several with dedupe", "@React vs @vue, honestly @react wins", []string{"react", "vue"}},
		{"trailing period", "Learning @go.", []string{"go"}},
		{"symbols", "@C++ and @C# and @node.js", []string{"c++", "c#", "node.js"}},
		{"email is not a tag", "mail me at dev@python.org", []string{}},
		{"none", "no tags here", []string{}},
		{"adjacent punctuation", "(@rust),@zig", []string{"rust", "zig"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.content)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_StorageShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"native array", `["Python","Go"]`, []string{"python", "go"}},
		{"json encoded array string", `"[\"Python\",\"Go\"]"`, []string{"python", "go"}},
		{"bare json string", `"TypeScript"`, []string{"typescript"}},
		{"bare text", `Rust`, []string{"rust"}},
		{"comma separated string", `"Go, Rust"`, []string{"go", "rust"}},
		{"array with blanks and dupes", `[" Go ","go",""]`, []string{"go"}},
		{"bracketed bare text", `[Python, Go]`, []string{"python", "go"}},
		{"bracketed single-quoted text", `['Rust', 'Zig']`, []string{"rust", "zig"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, raw := range []string{"", "null", "  ", "[]", `""`} {
		got, err := Normalize([]byte(raw))
		require.NoError(t, err, raw)
		assert.Empty(t, got, raw)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	for _, raw := range []string{`42`, `{"lang":"go"}`, `[1,2]`, `"[not json"`} {
		_, err := Normalize([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []string{"python"}, Intersect([]string{"Python", "Go"}, []string{"python", "react"}))
	assert.Empty(t, Intersect(nil, []string{"python"}))
	assert.Empty(t, Intersect([]string{"go"}, nil))
	assert.Equal(t, []string{"go", "rust"}, Intersect([]string{"RUST", "go"}, []string{"Go", "rust", "zig"}))
}

func TestMerge(t *testing.T) {
	assert.Equal(t, []string{"go", "rust", "zig"}, Merge([]string{"Go", "rust"}, []string{"ZIG", "go"}))
}
