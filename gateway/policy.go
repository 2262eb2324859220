package gateway

import (
	"time"

	"spurchat/provider"
)

// Decision is what the attempt loop does after a failed attempt.
type Decision int

const (
	// Retry the same model, after the returned delay.
	Retry Decision = iota
	// SwitchModel abandons the current model without further attempts.
	SwitchModel
	// Fatal stops everything; the failure is a configuration problem.
	Fatal
	// Exhausted means the attempt budget for this model is spent.
	Exhausted
)

func (d Decision) String() string {
	switch d {
	case Retry:
		return "retry"
	case SwitchModel:
		return "switch_model"
	case Fatal:
		return "fatal"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

const (
	backoffBase         = time.Second
	maxRateLimitBackoff = 10 * time.Second
)

// Decide maps a failure of kind on the zero-based attempt to the next step.
// The delay is only meaningful for Retry.
func Decide(kind provider.ErrorKind, attempt, maxAttempts int) (Decision, time.Duration) {
	switch kind {
	case provider.KindAuth:
		return Fatal, 0
	case provider.KindNotFound:
		return SwitchModel, 0
	}

	if attempt >= maxAttempts-1 {
		return Exhausted, 0
	}

	switch kind {
	case provider.KindRateLimit:
		return Retry, rateLimitDelay(attempt)
	case provider.KindServer:
		return Retry, backoffBase * time.Duration(attempt+1)
	default:
		return Retry, 0
	}
}

func rateLimitDelay(attempt int) time.Duration {
	if attempt >= 4 {
		return maxRateLimitBackoff
	}
	d := backoffBase << attempt
	if d > maxRateLimitBackoff {
		return maxRateLimitBackoff
	}
	return d
}
