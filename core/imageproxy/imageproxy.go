// Package imageproxy rewrites image URLs so they are fetched through the
// server's image proxy.
package imageproxy

import (
	"net/url"
	"strings"
)

// Route is the proxy endpoint relative to the site URL.
const Route = "/api/v4/image"

// Proxy rewrites URLs for one site.
type Proxy struct {
	prefix string
}

// New returns a Proxy for siteURL. siteURL may be empty, in which case
// proxied URLs are relative to the current origin.
func New(siteURL string) *Proxy {
	return &Proxy{prefix: strings.TrimRight(siteURL, "/") + Route + "?url="}
}

// ImageSrc returns the URL an <img> should load. With the proxy disabled, or
// for an empty or already proxied src, src is returned unchanged.
func (p *Proxy) ImageSrc(src string, enabled bool) string {
	if src == "" || !enabled || strings.HasPrefix(src, p.prefix) {
		return src
	}
	return p.prefix + url.QueryEscape(src)
}
