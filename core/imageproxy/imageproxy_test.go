package imageproxy

import "testing"

func TestProxy_ImageSrc(t *testing.T) {
	p := New("https://chat.example.com/")

	tests := []struct {
		name    string
		src     string
		enabled bool
		want    string
	}{
		{"disabled", "http://x/img.png", false, "http://x/img.png"},
		{"empty", "", true, ""},
		{"proxied", "http://x/img.png?a=1&b=2", true, "https://chat.example.com/api/v4/image?url=http%3A%2F%2Fx%2Fimg.png%3Fa%3D1%26b%3D2"},
		{"already proxied", "https://chat.example.com/api/v4/image?url=abc", true, "https://chat.example.com/api/v4/image?url=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ImageSrc(tt.src, tt.enabled); got != tt.want {
				t.Errorf("ImageSrc(%q, %v) = %q, want %q", tt.src, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestProxy_NoSiteURL(t *testing.T) {
	got := New("").ImageSrc("http://x/a.png", true)
	want := "/api/v4/image?url=http%3A%2F%2Fx%2Fa.png"
	if got != want {
		t.Errorf("ImageSrc() = %q, want %q", got, want)
	}
}
