package httpapi

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxBodyBytes bounds field value bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// limitedBody fails once more than limit bytes are read, instead of
// truncating silently like io.LimitReader.
type limitedBody struct {
	r     io.Reader
	left  int64
	limit int64
}

func newLimitedBody(r io.Reader, limit int64) *limitedBody {
	return &limitedBody{r: r, left: limit, limit: limit}
}

func (l *limitedBody) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, &BodyTooLargeError{Limit: l.limit}
	}
	// Allow one byte past the limit to tell "exactly limit" from "more".
	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return n - int(-l.left), &BodyTooLargeError{Limit: l.limit}
	}
	return n, err
}

// BodyTooLargeError is returned when a request body exceeds the limit.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %s", formatSize(e.Limit))
}

func isBodyTooLarge(err error) bool {
	var tooLarge *BodyTooLargeError
	return errors.As(err, &tooLarge)
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
