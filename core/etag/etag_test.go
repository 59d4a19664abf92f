package etag

import (
	"strings"
	"testing"
)

func TestOf(t *testing.T) {
	a := Of([]byte("<p>hello</p>"))
	b := Of([]byte("<p>hello</p>"))
	c := Of([]byte("<p>world</p>"))

	if a != b {
		t.Errorf("Of() not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Errorf("Of() collided for different content: %q", a)
	}
	if !strings.HasPrefix(a, `"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("Of() = %q, want a quoted tag", a)
	}
}

func TestChanged(t *testing.T) {
	tests := []struct {
		name        string
		clientTag   string
		currentTag  string
		wantChanged bool
	}{
		{
			name:        "same tag",
			clientTag:   `"abc123"`,
			currentTag:  `"abc123"`,
			wantChanged: false,
		},
		{
			name:        "different tag",
			clientTag:   `"abc123"`,
			currentTag:  `"def456"`,
			wantChanged: true,
		},
		{
			name:        "client has no tag",
			clientTag:   "",
			currentTag:  `"abc123"`,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Changed(tt.clientTag, tt.currentTag)
			if got != tt.wantChanged {
				t.Errorf("Changed(%q, %q) = %v, want %v",
					tt.clientTag, tt.currentTag, got, tt.wantChanged)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tag := `"abc"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"zzz", "abc"`, true},
		{`"zzz"`, false},
	}

	for _, tt := range tests {
		if got := Matches(tt.header, tag); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.header, tag, got, tt.want)
		}
	}
}

func TestNewRendered(t *testing.T) {
	r := NewRendered("<p>x</p>")
	if r.HTML != "<p>x</p>" {
		t.Errorf("HTML = %q", r.HTML)
	}
	if r.ETag != Of([]byte("<p>x</p>")) {
		t.Errorf("ETag = %q, want tag of the html", r.ETag)
	}
}
