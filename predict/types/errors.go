package types

import "errors"

// Construction-time errors. Any of these must prevent a signing request from
// being issued.
var (
	// ErrUnsupportedVariant means no exchange deployment exists for the
	// requested chain/variant pair. There is deliberately no fallback: an
	// order signed against the wrong contract can never verify on-chain.
	ErrUnsupportedVariant = errors.New("unsupported market variant for chain")

	// ErrInvalidAmount means price or size is outside its domain
	// (price must be in (0,1) exclusive, size strictly positive).
	ErrInvalidAmount = errors.New("invalid order amount")

	// ErrMissingTokenID means the market metadata carries no on-chain id for
	// the requested outcome.
	ErrMissingTokenID = errors.New("market outcome has no on-chain token id")
)

// Recoverable errors. The caller may retry; none of them leaves partial order
// state behind.
var (
	ErrApprovalFailed     = errors.New("on-chain approval failed")
	ErrSigningRejected    = errors.New("signing rejected")
	ErrSubmissionRejected = errors.New("order submission rejected")

	// ErrPartialScanFailure indicates one or more log-query chunks failed
	// during a redemption scan. The scan still returns best-effort results.
	ErrPartialScanFailure = errors.New("partial redemption scan failure")

	// ErrNotReady means a required precondition is not satisfied yet, such
	// as missing on-chain approvals or an unconfigured RPC endpoint.
	ErrNotReady = errors.New("not ready")
)
