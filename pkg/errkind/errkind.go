// Package errkind classifies pipeline errors into the fixed set of kinds
// from spec.md §7, so that retry policy and terminal-notification choice
// never dispatch on string matching past the classification boundary.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one of the error classes in spec.md's error handling table.
type Kind string

const (
	RPCTimeout        Kind = "RPC_TIMEOUT"
	RPCRateLimited     Kind = "RPC_RATE_LIMITED"
	BlockhashExpired   Kind = "BLOCKHASH_EXPIRED"
	InsufficientFunds  Kind = "INSUFFICIENT_FUNDS"
	SlippageExceeded   Kind = "SLIPPAGE_EXCEEDED"
	BondingCurveError  Kind = "BONDING_CURVE_ERROR"
	TokenGraduated     Kind = "TOKEN_GRADUATED"
	ParseFailed        Kind = "PARSE_FAILED"
	Dedupe             Kind = "DEDUPE"
	DBTransient        Kind = "DB_TRANSIENT"
	ConfigFatal        Kind = "CONFIG_FATAL"
)

// Classified wraps an underlying error with its classified Kind. Mirrors
// the shape of the teacher's exchange.ExchangeError (a typed error with a
// Code field, compared via errors.As) generalized from exchange-specific
// codes to chain-level kinds.
type Classified struct {
	Kind   Kind
	Err    error
	Fields map[string]interface{}
}

func (c *Classified) Error() string {
	if c.Err == nil {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s: %v", c.Kind, c.Err)
}

func (c *Classified) Unwrap() error {
	return c.Err
}

// New classifies err under kind, attaching optional diagnostic fields.
func New(kind Kind, err error, fields map[string]interface{}) *Classified {
	return &Classified{Kind: kind, Err: err, Fields: fields}
}

// Is reports whether err was classified as kind.
func Is(err error, kind Kind) bool {
	var c *Classified
	if errors.As(err, &c) {
		return c.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err was never classified.
func KindOf(err error) Kind {
	var c *Classified
	if errors.As(err, &c) {
		return c.Kind
	}
	return ""
}

// FieldsOf extracts the diagnostic Fields from err, or nil if err was
// never classified.
func FieldsOf(err error) map[string]interface{} {
	var c *Classified
	if errors.As(err, &c) {
		return c.Fields
	}
	return nil
}

// Retryable reports whether the classified kind has a defined recovery
// path short of terminal failure, per spec.md §7.
func Retryable(kind Kind) bool {
	switch kind {
	case RPCTimeout, RPCRateLimited, BlockhashExpired, SlippageExceeded, DBTransient, Dedupe:
		return true
	default:
		return false
	}
}
