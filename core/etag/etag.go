// Package etag derives cache validators for rendered HTML. Rendering is
// deterministic, so equal input and options always give an equal tag.
package etag

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Of returns a strong, quoted ETag for content.
func Of(content []byte) string {
	h := fnv.New64a()
	h.Write(content)
	return fmt.Sprintf(`"%016x"`, h.Sum64())
}

// Changed reports whether the tag a client holds differs from the current one.
func Changed(clientTag, currentTag string) bool {
	return clientTag != currentTag
}

// Matches reports whether an If-None-Match header value matches tag.
// The header may be "*" or a comma separated list; weak tags compare equal
// to their strong form.
func Matches(ifNoneMatch, tag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if !Changed(candidate, tag) {
			return true
		}
	}
	return false
}
