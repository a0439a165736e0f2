package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain bio  ", "plain bio"},
		{"<script>alert(1)</script>Hi", "Hi"},
		{"<b>Guitar</b> &amp; drums", "Guitar & drums"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOptional(t *testing.T) {
	if Optional(nil) != nil {
		t.Fatal("nil in should be nil out")
	}
	blank := "   "
	if Optional(&blank) != nil {
		t.Fatal("blank should collapse to nil")
	}
	v := "<i>Berlin</i>"
	got := Optional(&v)
	if got == nil || *got != "Berlin" {
		t.Fatalf("got %v", got)
	}
}

func TestTextEncodedMarkup(t *testing.T) {
	tests := []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;&lt;img src=x onerror=alert(2)&gt;",
		"&amp;lt;b onclick=x&amp;gt;hi&amp;lt;/b&amp;gt;",
		"Hi &lt;iframe src=//evil.example&gt;&lt;/iframe&gt;",
	}
	for _, in := range tests {
		got := Text(in)
		for _, tag := range []string{"<script", "<img", "<b", "<iframe"} {
			if strings.Contains(strings.ToLower(got), tag) {
				t.Errorf("Text(%q) = %q, still contains %s", in, got, tag)
			}
		}
	}

	if got := Text("3 &lt; 5"); got != "3 < 5" {
		t.Errorf("comparison text = %q, want %q", got, "3 < 5")
	}

	v := "&lt;script&gt;x&lt;/script&gt;"
	if got := Optional(&v); got != nil && strings.Contains(*got, "<script") {
		t.Errorf("Optional kept markup: %q", *got)
	}
}
