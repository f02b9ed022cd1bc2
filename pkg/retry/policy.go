package retry

import "time"

// ErrKind is a minimal local mirror of errkind.Kind's string values, kept
// here (instead of importing pkg/errkind) to avoid a dependency cycle:
// errkind classification sits below retry in some call paths and above it
// in others. Callers pass one of the errkind.Kind constants' string form.
type ErrKind string

// ClassifiedPolicy maps a spec.md §7 error kind to a concrete retry
// profile. Unknown kinds fall back to DefaultConfig.
func ClassifiedPolicy(kind string) Config {
	switch kind {
	case "RPC_TIMEOUT":
		return NetworkConfig()
	case "RPC_RATE_LIMITED":
		return Config{
			MaxRetries:   5,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     20 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.2,
		}
	case "BLOCKHASH_EXPIRED":
		// Spec.md §7: "re-sign with fresh blockhash; one retry".
		return Config{
			MaxRetries:   2,
			InitialDelay: 50 * time.Millisecond,
			MaxDelay:     1 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.0,
		}
	case "SLIPPAGE_EXCEEDED":
		// Spec.md §7: "retry once with increased slippage if strategy allows".
		return Config{
			MaxRetries:   2,
			InitialDelay: 0,
			MaxDelay:     0,
			Multiplier:   1.0,
			JitterFactor: 0.0,
		}
	case "DB_TRANSIENT":
		return DefaultConfig()
	default:
		return DefaultConfig()
	}
}
