package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fpang/past-forward/internal/prompt"
)

func TestBuildPrompt_Decade(t *testing.T) {
	for _, in := range []string{"1970s", "the 1970s"} {
		text, decade, err := buildPrompt(strings.NewReader(""), &bytes.Buffer{}, "", in)
		if err != nil {
			t.Fatalf("buildPrompt(%q): %v", in, err)
		}
		if decade != "1970s" {
			t.Errorf("decade = %q, want 1970s", decade)
		}
		if text != prompt.Primary("1970s") {
			t.Errorf("text = %q", text)
		}
	}
}

func TestBuildPrompt_RejectsUnknownDecade(t *testing.T) {
	for _, in := range []string{"foo", "70s", "197s"} {
		var out bytes.Buffer
		_, _, err := buildPrompt(strings.NewReader("\n"), &out, "", in)
		if err == nil {
			t.Errorf("buildPrompt(%q): expected error", in)
		}
		if out.Len() != 0 {
			t.Errorf("buildPrompt(%q) should not show the menu, got %q", in, out.String())
		}
	}
}

func TestBuildPrompt_CustomPromptWins(t *testing.T) {
	text, decade, err := buildPrompt(strings.NewReader(""), &bytes.Buffer{}, "Me as a 1920s flapper", "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Me as a 1920s flapper" || decade != "1920s" {
		t.Errorf("got (%q, %q)", text, decade)
	}
}

func TestBuildPrompt_Interactive(t *testing.T) {
	var out bytes.Buffer
	text, decade, err := buildPrompt(strings.NewReader("3\n"), &out, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decade != "1970s" || text != prompt.Primary("1970s") {
		t.Errorf("got (%q, %q)", text, decade)
	}
	if !strings.Contains(out.String(), "Decade [") {
		t.Errorf("menu not printed: %q", out.String())
	}
}

func TestDefaultOutput(t *testing.T) {
	if got := defaultOutput("1980s"); got != "past-forward-1980s" {
		t.Errorf("defaultOutput = %q", got)
	}
	if got := defaultOutput(""); got != "past-forward" {
		t.Errorf("defaultOutput(\"\") = %q", got)
	}
}
