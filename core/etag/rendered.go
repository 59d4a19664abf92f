package etag

// Rendered is a rendered message together with its validator.
type Rendered struct {
	HTML string `json:"html"`
	ETag string `json:"etag"`
}

// NewRendered tags html.
func NewRendered(html string) Rendered {
	return Rendered{
		HTML: html,
		ETag: Of([]byte(html)),
	}
}
