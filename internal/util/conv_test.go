package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseID(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	if MustParseUint("x") != 0 || MustParseUint("12") != 12 {
		t.Fatalf("MustParseUint mismatch")
	}
}

func TestValidateMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mime, err := ValidateMimeType(bytes.NewReader(png), []string{MimeImage})
	if err != nil {
		t.Fatalf("png rejected: %v", err)
	}
	if mime != "image/png" || !IsImage(mime) {
		t.Fatalf("mime = %q", mime)
	}

	mime, err = ValidateMimeType(strings.NewReader("plain text pretending"), []string{MimeImage})
	if err == nil {
		t.Fatalf("text accepted as %q", mime)
	}

	if _, err := ValidateMimeType(strings.NewReader(""), []string{MimeImage}); err == nil {
		t.Fatalf("empty file accepted")
	}
}

func TestHasAllowedExtension(t *testing.T) {
	if !HasAllowedExtension("cover.PNG", AllowedImageExtensions) {
		t.Fatalf("upper case extension rejected")
	}
	if HasAllowedExtension("notes.txt", AllowedImageExtensions) {
		t.Fatalf(".txt accepted")
	}
	if HasAllowedExtension("noext", AllowedImageExtensions) {
		t.Fatalf("missing extension accepted")
	}
}
