package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange = errors.New("invalid range")
	ErrMultiRange   = errors.New("multi-range not supported")
)

// Range is one inclusive byte range [Start, End] within a resource.
type Range struct {
	Start int64
	End   int64
}

// Length is the number of bytes the range covers.
func (r Range) Length() int64 { return r.End - r.Start + 1 }

// ParseRange interprets a Range request header against a resource of the
// given size. Exactly one byte range is accepted; a comma anywhere in the
// header is ErrMultiRange. The two accepted forms are dispatched to
// dedicated parsers: "bytes=-N" (the last N bytes) and "bytes=start-" /
// "bytes=start-end". Ends past the resource are clamped; starts past it
// are not satisfiable.
func ParseRange(header string, size int64) (Range, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return Range{}, ErrInvalidRange
	}
	if strings.Contains(spec, ",") {
		return Range{}, ErrMultiRange
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return Range{}, ErrInvalidRange
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		return suffixRange(endStr, size)
	}
	return boundedRange(startStr, endStr, size)
}

// suffixRange handles "bytes=-N": the final N bytes, clamped to the whole
// resource when N exceeds it.
func suffixRange(lenStr string, size int64) (Range, error) {
	n, err := strconv.ParseInt(lenStr, 10, 64)
	if err != nil || n <= 0 {
		return Range{}, ErrInvalidRange
	}
	if n > size {
		n = size
	}
	return Range{Start: size - n, End: size - 1}, nil
}

// boundedRange handles "bytes=start-" and "bytes=start-end". The start
// must fall inside the resource; an open end means through the last byte.
func boundedRange(startStr, endStr string, size int64) (Range, error) {
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 || start >= size {
		return Range{}, ErrInvalidRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return Range{}, ErrInvalidRange
		}
		if end > size-1 {
			end = size - 1
		}
	}
	return Range{Start: start, End: end}, nil
}

// FormatContentRange renders the Content-Range header for a 206 response.
func FormatContentRange(r Range, size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// Format416ContentRange renders the Content-Range header for a 416
// response, which carries only the resource size.
func Format416ContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}
