package common

import (
	"reflect"
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "https://example.com/docs", "https://example.com/docs"},
		{"whitespace", "  https://example.com \n", "https://example.com"},
		{"trailing comma", "https://example.com,", "https://example.com"},
		{"markdown link", "[docs](https://example.com/a)", "https://example.com/a"},
		{"angle brackets", "<https://example.com>", "https://example.com"},
		{"quoted", `"https://example.com"`, "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.in); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	in := []string{
		"https://example.com/a.md",
		"http://localhost:8080/docs",
		"ftp://example.com/file",
		"not a url",
		"https://exa mple.com",
		"",
		"https://example.com/b,",
	}

	valid, invalid := SanitizeAndValidateURLs(in)

	wantValid := []string{"https://example.com/a.md", "http://localhost:8080/docs", "https://example.com/b"}
	wantInvalid := []string{"ftp://example.com/file", "not a url", "https://exa mple.com", ""}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Errorf("valid = %v, want %v", valid, wantValid)
	}
	if !reflect.DeepEqual(invalid, wantInvalid) {
		t.Errorf("invalid = %v, want %v", invalid, wantInvalid)
	}
}

func TestContentHash(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ContentHash([]byte("abc")); got != want {
		t.Errorf("ContentHash = %s, want %s", got, want)
	}
}
