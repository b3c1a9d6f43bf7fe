package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/OpsaAI/OpsaAI/fault"
)

// classifyProviderError maps a raw provider failure onto the typed taxonomy.
// This is the only place in the system allowed to inspect provider error
// text: hosted backends report quota and auth problems as message substrings,
// not structured codes. Everything unrecognized counts as transient, which
// keeps the fallback path the default for unknown failures.
func classifyProviderError(err error) fault.Kind {
	if err == nil {
		return fault.Internal
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fault.Transient
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "resource-exhausted"),
		strings.Contains(msg, "resource exhausted"):
		return fault.Transient
	case strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "401"):
		return fault.Config
	default:
		return fault.Transient
	}
}
