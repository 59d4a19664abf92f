package markdown

import (
	"bytes"
	"regexp"
)

// sizedImage matches ![alt](url =WxH), which CommonMark would not parse as an
// image because of the space in the destination.
var sizedImage = regexp.MustCompile(`!\[([^\]\n]*)\]\(([^\s()<>]+)[ \t]+(=\d*x?\d*)\)`)

// normalizeImageDimensions wraps sized image destinations in angle brackets
// so the size suffix survives parsing and reaches the Image handler. Fenced
// code and inline code spans are left untouched.
func normalizeImageDimensions(source []byte) []byte {
	if !bytes.Contains(source, []byte("![")) {
		return source
	}

	var out bytes.Buffer
	out.Grow(len(source) + 16)

	var fence []byte
	for _, line := range bytes.SplitAfter(source, []byte("\n")) {
		if marker := fenceMarker(line); marker != nil {
			switch {
			case fence == nil:
				fence = marker
			case bytes.HasPrefix(marker, fence[:1]) && len(marker) >= len(fence):
				fence = nil
			}
			out.Write(line)
			continue
		}
		if fence != nil {
			out.Write(line)
			continue
		}
		out.Write(rewriteOutsideCodeSpans(line))
	}
	return out.Bytes()
}

// fenceMarker returns the run of ``` or ~~~ opening line, or nil.
func fenceMarker(line []byte) []byte {
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return nil
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return nil
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return nil
	}
	return trimmed[:n]
}

func rewriteOutsideCodeSpans(line []byte) []byte {
	if !sizedImage.Match(line) {
		return line
	}

	var out []byte
	for len(line) > 0 {
		open := bytes.IndexByte(line, '`')
		if open < 0 {
			out = append(out, rewriteSizedImages(line)...)
			break
		}
		out = append(out, rewriteSizedImages(line[:open])...)

		run := 0
		for open+run < len(line) && line[open+run] == '`' {
			run++
		}
		delim := line[open : open+run]
		rest := line[open+run:]
		end := bytes.Index(rest, delim)
		if end < 0 {
			out = append(out, line[open:]...)
			break
		}
		span := open + run + end + run
		out = append(out, line[open:span]...)
		line = line[span:]
	}
	return out
}

func rewriteSizedImages(b []byte) []byte {
	return sizedImage.ReplaceAll(b, []byte("![$1](<$2 $3>)"))
}
