package submit

import "fmt"

// SubmissionError wraps a transport or signing failure that occurred before
// the ledger could have recorded any effect. Submissions are never retried:
// resubmitting a signed transaction risks double-effect ambiguity, so the
// operation aborts here and the caller moves on.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: submission failed: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// OnChainFailure reports a transaction the ledger accepted but whose effects
// ended in failure. Reason carries the node's status or error text verbatim
// for manual reconciliation.
type OnChainFailure struct {
	Op     string
	Digest string
	Reason string
}

func (e *OnChainFailure) Error() string {
	return fmt.Sprintf("%s: transaction %s failed on-chain: %s", e.Op, e.Digest, e.Reason)
}

// ReceiptUnavailableError means polling exhausted every attempt without a
// durable receipt. The outcome of the transaction is unknown, not failed;
// the digest is preserved so an operator can look it up manually.
type ReceiptUnavailableError struct {
	Op       string
	Digest   string
	Attempts int
}

func (e *ReceiptUnavailableError) Error() string {
	return fmt.Sprintf("%s: no receipt for %s after %d polling attempts", e.Op, e.Digest, e.Attempts)
}
