package protocol

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"creekbot/crypto"
	"creekbot/ledger"
	"creekbot/rpc"
	"creekbot/submit"
)

// Session binds one account to its RPC transport and submitter. Every bound
// operation is strictly sequential for the account, which keeps owned coin
// objects free of version races.
type Session struct {
	client    *rpc.Client
	submitter *submit.Submitter
	key       *crypto.PrivateKey
	address   crypto.Address
	log       *slog.Logger

	settleDelay time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration)
}

// SessionOption tweaks session behaviour, primarily for tests.
type SessionOption func(*Session)

// WithClock overrides the time source used for oracle price nonces.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSettleDelay overrides the wait between creating an obligation and
// re-querying ownership.
func WithSettleDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.settleDelay = d
		}
	}
}

// WithSleep overrides the settle-delay sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) SessionOption {
	return func(s *Session) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// NewSession builds a session for one account.
func NewSession(client *rpc.Client, submitter *submit.Submitter, key *crypto.PrivateKey, log *slog.Logger, opts ...SessionOption) *Session {
	s := &Session{
		client:      client,
		submitter:   submitter,
		key:         key,
		address:     key.PubKey().Address(),
		log:         log,
		settleDelay: 5 * time.Second,
		now:         time.Now,
		sleep:       sleepContext,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Address returns the account address bound to this session.
func (s *Session) Address() crypto.Address {
	return s.address
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// prepareSpend fetches the account's coins of one type, selects and merges
// them, and splits off the exact spend amount inside the intent. The
// returned Arg is the freshly split coin.
func (s *Session) prepareSpend(ctx context.Context, b *ledger.Builder, coinType string, amount *big.Int) (ledger.Arg, error) {
	wireCoins, err := s.client.GetCoins(ctx, s.address.String(), coinType)
	if err != nil {
		return ledger.Arg{}, err
	}
	coins, err := ledger.CoinsFromRPC(wireCoins)
	if err != nil {
		return ledger.Arg{}, err
	}
	primary, merge, err := ledger.SelectCoins(coins, amount)
	if err != nil {
		return ledger.Arg{}, err
	}
	primaryArg := b.Object(primary.Ref)
	if len(merge) > 0 {
		sources := make([]ledger.Arg, 0, len(merge))
		for _, ref := range merge {
			sources = append(sources, b.Object(ref))
		}
		b.MergeCoins(primaryArg, sources)
	}
	return b.SplitCoin(primaryArg, b.PureU64(amount)), nil
}

// prepareNativeSpend spends the native asset, which doubles as the gas
// coin. Loose native coins are merged into the gas coin first so the split
// always draws from a single object.
func (s *Session) prepareNativeSpend(ctx context.Context, b *ledger.Builder, amount *big.Int) (ledger.Arg, error) {
	wireCoins, err := s.client.GetCoins(ctx, s.address.String(), SUIType)
	if err != nil {
		return ledger.Arg{}, err
	}
	coins, err := ledger.CoinsFromRPC(wireCoins)
	if err != nil {
		return ledger.Arg{}, err
	}
	if len(coins) == 0 {
		return ledger.Arg{}, ledger.ErrNoCoins
	}
	if len(coins) > 1 {
		sources := make([]ledger.Arg, 0, len(coins)-1)
		for _, c := range coins[1:] {
			sources = append(sources, b.Object(c.Ref))
		}
		b.MergeCoins(b.GasCoin(), sources)
	}
	return b.SplitCoin(b.GasCoin(), b.PureU64(amount)), nil
}

func (s *Session) execute(ctx context.Context, op string, intent *ledger.Intent) (*submit.Outcome, error) {
	return s.submitter.Execute(ctx, op, s.key, intent)
}
