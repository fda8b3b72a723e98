// Package parser turns user-typed tags and tag-pool files into clean tag
// strings.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// MaxTagLength is the longest tag kept, in runes.
const MaxTagLength = 32

var strict = bluemonday.StrictPolicy()

// NormalizeTag cleans free-text tag input: markup is stripped, whitespace
// runs are collapsed, a leading '#' is dropped and the result is truncated to
// MaxTagLength runes. An empty return means the input carried no tag.
func NormalizeTag(raw string) string {
	s := strict.Sanitize(raw)
	// Sanitize escapes what it keeps; tags are rendered by html/template,
	// which escapes on output.
	s = unescapeBasic(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimLeft(s, "#")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxTagLength {
		r := []rune(s)
		s = strings.TrimSpace(string(r[:MaxTagLength]))
	}
	return s
}

var basicEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#34;", `"`,
	"&#39;", "'",
	"&quot;", `"`,
)

func unescapeBasic(s string) string {
	return basicEntities.Replace(s)
}

// poolFile is the YAML shape of a tag-pool file.
type poolFile struct {
	Tags []string `yaml:"tags"`
}

// ParsePool reads a tag pool. The input is either a YAML document with a
// top-level "tags" list or plain text with one tag per line ('#' lines are
// comments). Tags are normalized and deduplicated in order.
func ParsePool(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raw []string
	if bytes.HasPrefix(trimmed, []byte("tags:")) || bytes.HasPrefix(trimmed, []byte("---")) {
		var pf poolFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parser: tag pool yaml: %w", err)
		}
		raw = pf.Tags
	} else {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := NormalizeTag(r)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
