package submit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"creekbot/crypto"
	"creekbot/ledger"
	"creekbot/observability"
	"creekbot/rpc"
)

const (
	defaultMaxAttempts  = 10
	defaultPollInterval = 1000 * time.Millisecond
	defaultWaitTimeout  = 5 * time.Second
)

// Path records which branch of the protocol produced the outcome.
type Path string

const (
	// PathLocalEffects means the node returned execution effects inline
	// with the submission response; no polling occurred.
	PathLocalEffects Path = "localEffects"
	// PathReceipt means the outcome was determined from a polled receipt.
	PathReceipt Path = "receipt"
)

// Outcome is the terminal confirmation of one submitted transaction.
type Outcome struct {
	Digest string
	Path   Path
}

// Submitter drives a built intent through sign, submit and confirm. There
// is no at-most-once guarantee across process restarts: a crash between
// submission and confirmation leaves the on-chain effect unknown.
type Submitter struct {
	client       *rpc.Client
	log          *slog.Logger
	maxAttempts  int
	pollInterval time.Duration
	waitTimeout  time.Duration
	sleep        func(ctx context.Context, d time.Duration)
}

// Option tweaks submitter behaviour, primarily for tests.
type Option func(*Submitter)

// WithPolicy overrides the polling bounds.
func WithPolicy(maxAttempts int, pollInterval, waitTimeout time.Duration) Option {
	return func(s *Submitter) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if pollInterval > 0 {
			s.pollInterval = pollInterval
		}
		if waitTimeout > 0 {
			s.waitTimeout = waitTimeout
		}
	}
}

// WithSleep overrides the inter-attempt sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(s *Submitter) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// New constructs a Submitter over the given RPC client.
func New(client *rpc.Client, log *slog.Logger, opts ...Option) *Submitter {
	s := &Submitter{
		client:       client,
		log:          log,
		maxAttempts:  defaultMaxAttempts,
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
		sleep:        sleepContext,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sleepContext pauses for d or until ctx is cancelled, whichever is first.
// Cancellation only shortens the delay between polling attempts; it never
// aborts a network call already in flight.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func statusConfirms(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "ok":
		return true
	default:
		return false
	}
}

// Execute signs and submits the intent, then determines its final outcome.
// Inline effects, when returned, are authoritative. Otherwise the submitter
// polls for a durable receipt with bounded retries: each attempt first
// issues a short wait-for-finality call, falling back to a plain fetch by
// digest when that errors. All polling errors are treated as transient.
func (s *Submitter) Execute(ctx context.Context, op string, key *crypto.PrivateKey, intent *ledger.Intent) (*Outcome, error) {
	signed, err := intent.Sign(key)
	if err != nil {
		observability.Submitter().Record(op, "signError")
		return nil, &SubmissionError{Op: op, Err: err}
	}

	result, err := s.client.ExecuteTransaction(ctx, signed.TxBytes, signed.Signature)
	if err != nil {
		observability.Submitter().Record(op, "submitError")
		return nil, &SubmissionError{Op: op, Err: err}
	}
	digest := signed.Digest
	if result != nil && result.Digest != "" {
		digest = result.Digest
	}
	s.log.Info("transaction submitted", "op", op, "digest", digest)

	if result != nil && result.Effects != nil {
		return s.resolveEffects(op, digest, PathLocalEffects, result.Effects)
	}

	receipt, err := s.pollReceipt(ctx, op, digest)
	if err != nil {
		return nil, err
	}
	if receipt.Effects == nil {
		observability.Submitter().Record(op, "failed")
		return nil, &OnChainFailure{Op: op, Digest: digest, Reason: "receipt carries no effects"}
	}
	return s.resolveEffects(op, digest, PathReceipt, receipt.Effects)
}

func (s *Submitter) resolveEffects(op, digest string, path Path, effects *rpc.TransactionEffects) (*Outcome, error) {
	if statusConfirms(effects.Status.Status) {
		s.log.Info("transaction confirmed", "op", op, "digest", digest, "path", string(path))
		observability.Submitter().Record(op, "confirmed")
		return &Outcome{Digest: digest, Path: path}, nil
	}
	reason := effects.Status.Error
	if reason == "" {
		reason = effects.Status.Status
	}
	s.log.Error("transaction failed", "op", op, "digest", digest, "reason", reason)
	observability.Submitter().Record(op, "failed")
	return nil, &OnChainFailure{Op: op, Digest: digest, Reason: reason}
}

// pollReceipt fetches a durable receipt with bounded retries. Attempts are
// not distinguished by error code; every failure is treated as transient
// and logged for diagnostics. Exhausting the budget is a terminal unknown.
func (s *Submitter) pollReceipt(ctx context.Context, op, digest string) (*rpc.Receipt, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		receipt, err := s.fetchOnce(ctx, digest)
		if err == nil && receipt != nil {
			observability.Submitter().ObservePollAttempts(attempt)
			return receipt, nil
		}
		if err != nil {
			s.log.Debug("polling attempt failed", "op", op, "digest", digest,
				"attempt", attempt, "max", s.maxAttempts, "err", err)
		}
		s.sleep(ctx, s.pollInterval)
	}
	observability.Submitter().Record(op, "noReceipt")
	return nil, &ReceiptUnavailableError{Op: op, Digest: digest, Attempts: s.maxAttempts}
}

// fetchOnce tries the push-style finality wait and falls back to the
// pull-style fetch when the wait errors. Fetching is read-only and
// idempotent, which is why only this step retries.
func (s *Submitter) fetchOnce(ctx context.Context, digest string) (*rpc.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout+time.Second)
	defer cancel()
	receipt, err := s.client.WaitForTransaction(waitCtx, digest, s.waitTimeout)
	if err == nil {
		return receipt, nil
	}
	return s.client.GetTransaction(ctx, digest)
}
