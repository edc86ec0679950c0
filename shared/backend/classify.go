package backend

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
)

// transientCues are substrings the summarization service uses for
// retry-worthy failures.
var transientCues = []string{
	"overloaded",
	"rate limit",
	"timeout",
	"timed out",
	"temporarily unavailable",
	"network",
}

// IsTransient classifies an error from a backend call: rate limiting,
// overload, timeouts and transport faults are retried; everything else is not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		if upErr.Status == http.StatusTooManyRequests || upErr.Status == http.StatusServiceUnavailable {
			return true
		}
		return containsCue(upErr.Detail)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return containsCue(err.Error())
}

func containsCue(msg string) bool {
	msg = strings.ToLower(msg)
	for _, cue := range transientCues {
		if strings.Contains(msg, cue) {
			return true
		}
	}
	return false
}
