package parser

import (
	"strings"
	"testing"
)

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		"Special":             "Special",
		"  Special  ":         "Special",
		"#AI":                 "AI",
		"##  AI":              "AI",
		"":                    "",
		"   ":                 "",
		"<b>bold</b>":         "bold",
		"<script>x</script>y": "y",
		"multi   word\ttag":   "multi word tag",
		"R&D":                 "R&D",
	}
	for in, want := range cases {
		if got := NormalizeTag(in); got != want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeTag_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxTagLength+10)
	got := NormalizeTag(long)
	if n := len([]rune(got)); n != MaxTagLength {
		t.Errorf("rune length = %d, want %d", n, MaxTagLength)
	}
}

func TestParsePool_YAML(t *testing.T) {
	input := []byte("tags:\n  - AI\n  - Tech\n  - \"#Coding\"\n  - AI\n  - \"\"\n")
	got, err := ParsePool(input)
	if err != nil {
		t.Fatalf("ParsePool: %v", err)
	}
	want := []string{"AI", "Tech", "Coding"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("pool = %v, want %v", got, want)
	}
}

func TestParsePool_Lines(t *testing.T) {
	input := []byte("# comment\nAI\n\n Tech \nAI\n")
	got, err := ParsePool(input)
	if err != nil {
		t.Fatalf("ParsePool: %v", err)
	}
	if strings.Join(got, ",") != "AI,Tech" {
		t.Errorf("pool = %v", got)
	}
}

func TestParsePool_InvalidYAML(t *testing.T) {
	if _, err := ParsePool([]byte("tags: [unclosed\n")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestParsePool_Empty(t *testing.T) {
	got, err := ParsePool([]byte("  \n"))
	if err != nil || got != nil {
		t.Errorf("empty pool = %v, %v", got, err)
	}
}
