package prompt

import (
	"strings"
	"testing"
)

func TestExtractDecade(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
		ok     bool
	}{
		{"Show me in the 1990s", "1990s", true},
		{"1970s disco, then 1980s neon", "1970s", true},
		{"Reimagine me in the 60s", "", false},
		{"The year 1999 was great", "", false},
		{"", "", false},
		{"born in 12345s", "2345s", true},
	}

	for _, tc := range cases {
		got, ok := ExtractDecade(tc.prompt)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ExtractDecade(%q) = (%q, %v), want (%q, %v)", tc.prompt, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFallback(t *testing.T) {
	got := Fallback("1980s")
	if !strings.Contains(got, "living in the 1980s") {
		t.Errorf("fallback prompt missing decade: %q", got)
	}
	if !strings.Contains(got, "photograph") {
		t.Errorf("fallback prompt should ask for a photograph: %q", got)
	}
	if Fallback("1980s") != got {
		t.Error("fallback prompt is not deterministic")
	}
}

func TestPrimary(t *testing.T) {
	got := Primary("1950s")
	if !strings.Contains(got, "style of the 1950s") {
		t.Errorf("primary prompt missing decade: %q", got)
	}
	if d, ok := ExtractDecade(got); !ok || d != "1950s" {
		t.Errorf("primary prompt should carry its decade token, got %q", d)
	}
}

func TestDecades_ReturnsCopy(t *testing.T) {
	d := Decades()
	if len(d) != 6 || d[0] != "1950s" || d[5] != "2000s" {
		t.Fatalf("unexpected decades: %v", d)
	}
	d[0] = "changed"
	if Decades()[0] != "1950s" {
		t.Error("Decades should return a copy")
	}
}
