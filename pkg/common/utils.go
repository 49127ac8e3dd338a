package common

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jpillora/backoff"
)

func MaskEmail(email string, mask rune) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	username := parts[0]
	length := len(username)

	var keep int
	switch length {
	case 0, 1:
		keep = length
	case 2, 3:
		keep = 1
	case 4, 5:
		keep = 2
	case 6, 7:
		keep = 3
	case 8, 9:
		keep = 4
	default:
		keep = 5
	}

	prefix := username[:keep]
	suffix := ""

	n := length - keep
	if n > 5 {
		n = 5
		suffix = ".."
	}

	xxx := strings.Repeat(string(mask), n)

	return prefix + xxx + suffix + "@" + parts[1]
}

func ParseBoolean(value string) bool {
	switch value {
	case "1", "Y", "y", "yes", "Yes", "YES", "true", "TRUE", "True":
		return true
	default:
		return false
	}
}

// SplitList splits a comma-separated value, dropping empty items.
func SplitList(value string) []string {
	var result []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); len(item) > 0 {
			result = append(result, item)
		}
	}

	return result
}

// IsRetriableStatus reports server errors and the few client errors that can succeed later.
func IsRetriableStatus(code int) bool {
	return (code >= 500) ||
		(code == http.StatusTooManyRequests) ||
		(code == http.StatusRequestTimeout) ||
		(code == http.StatusTooEarly)
}

// RetriableError is a wrapper for errors that should be retried.
type RetriableError struct {
	err error
}

func NewRetriableError(err error) RetriableError {
	return RetriableError{err}
}

func (e RetriableError) Error() string {
	return e.err.Error()
}

func (e RetriableError) Unwrap() error {
	return e.err
}

func NewBackoff(minInterval, maxInterval time.Duration) *backoff.Backoff {
	return &backoff.Backoff{
		Min:    minInterval,
		Max:    maxInterval,
		Factor: 2,
		Jitter: true,
	}
}

// Retry runs f until it succeeds, fails with an error that is not a RetriableError,
// or attempts are exhausted. The last error is returned unwrapped.
func Retry(ctx context.Context, attempts int, b *backoff.Backoff, f func(ctx context.Context, attempt int) error) error {
	var err error
	n := max(attempts, 1)

	for i := 0; i < n; i++ {
		err = f(ctx, i)

		var rerr RetriableError
		if (err == nil) || !errors.As(err, &rerr) {
			return err
		}

		slog.WarnContext(ctx, "Retriable operation failed", "attempt", i, ErrAttr(rerr.Unwrap()))

		if i+1 == n {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}

	var rerr RetriableError
	if errors.As(err, &rerr) {
		return rerr.Unwrap()
	}

	return err
}
