package dataurl

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode_RoundTrip(t *testing.T) {
	inputs := []string{
		"data:image/png;base64,AAAA",
		"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ==",
		"data:image/webp;base64,UklGRg==",
		"data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=",
		"data:image/png;base64,",
	}

	for _, in := range inputs {
		img, err := Decode(in)
		if err != nil {
			t.Fatalf("Decode(%q): unexpected error: %v", in, err)
		}
		out := Encode(img.MIMEType, img.Data)
		if out != in {
			t.Errorf("round trip mismatch: got %q, want %q", out, in)
		}

		again, err := Decode(out)
		if err != nil {
			t.Fatalf("Decode(%q): unexpected error: %v", out, err)
		}
		if again.MIMEType != img.MIMEType || !bytes.Equal(again.Data, img.Data) {
			t.Errorf("second decode differs: %+v vs %+v", again, img)
		}
	}
}

func TestDecode_Payload(t *testing.T) {
	img, err := Decode("data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("expected image/png, got %s", img.MIMEType)
	}
	if !bytes.Equal(img.Data, []byte{0, 0, 0}) {
		t.Errorf("expected three zero bytes, got %v", img.Data)
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"missing prefix":    "image/png;base64,AAAA",
		"missing separator": "data:image/png,AAAA",
		"not an image":      "data:text/plain;base64,AAAA",
		"empty mime":        "data:;base64,AAAA",
		"bad base64":        "data:image/png;base64,***",
		"empty string":      "",
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(in)
			if err == nil {
				t.Fatalf("expected error for %q", in)
			}
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Errorf("expected *FormatError, got %T", err)
			}
		})
	}
}

func TestParse_AnyMime(t *testing.T) {
	img, err := Parse("data:application/octet-stream;base64,AQID")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.MIMEType != "application/octet-stream" {
		t.Errorf("unexpected mime %s", img.MIMEType)
	}
	if !bytes.Equal(img.Data, []byte{1, 2, 3}) {
		t.Errorf("unexpected data %v", img.Data)
	}

	if _, err := Parse("data:application/json,{}"); err == nil {
		t.Error("expected error for non-base64 data URL")
	}
}

func TestSniff(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if got := Sniff(png); got != "image/png" {
		t.Errorf("expected image/png, got %s", got)
	}
	if IsImage(Sniff([]byte("hello world"))) {
		t.Error("plain text should not sniff as an image")
	}
}
