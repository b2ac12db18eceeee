// Package langtag extracts programming-language tags from post text and
// matches them against profile language preferences.
package langtag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@([\w+#.\-]+)`)

// Extract returns the lower-cased @word tokens of content, de-duplicated in
// order of first appearance. Trailing sentence punctuation is not part of a tag.
func Extract(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimRight(m[1], ".-"))
	}
	return Clean(tags)
}

// Clean lower-cases and trims values, dropping empties and duplicates.
func Clean(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Merge combines tag lists, keeping first-seen order.
func Merge(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return Clean(all)
}

// Normalize decodes a stored preference list. Three shapes are accepted:
//
//	["Python","Go"]          native JSON array
//	"[\"Python\",\"Go\"]"    JSON string holding an encoded array
//	"Python" or Python       a single bare string (commas split it)
//	[Python, Go]             bare text in brackets, split the same way
//
// Null or empty input yields nil. Any other JSON value is an error.
func Normalize(raw []byte) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if !json.Valid(raw) {
		return splitBare(string(raw)), nil
	}

	switch raw[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("language list: %w", err)
		}
		return Clean(list), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("language string: %w", err)
		}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") {
			var list []string
			if err := json.Unmarshal([]byte(s), &list); err != nil {
				return nil, fmt.Errorf("encoded language list: %w", err)
			}
			return Clean(list), nil
		}
		return splitBare(s), nil
	}
	return nil, fmt.Errorf("unsupported language value %s", truncate(raw, 40))
}

// Intersect returns the tags that also appear in prefs, compared
// case-insensitively, in tag order.
func Intersect(prefs, tags []string) []string {
	if len(prefs) == 0 || len(tags) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		want[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	var out []string
	for _, t := range Clean(tags) {
		if _, ok := want[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// splitBare splits a hand-typed list such as `Python, Go` or `[Python, Go]`.
func splitBare(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return Clean(parts)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
