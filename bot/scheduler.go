package bot

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"creekbot/config"
	"creekbot/crypto"
	"creekbot/observability"
	"creekbot/protocol"
	"creekbot/rpc"
	"creekbot/submit"
)

const (
	settleDelay   = 3 * time.Second
	phaseDelay    = 10 * time.Second
	repDelayFloor = 10 * time.Second
	repDelaySpan  = 15 * time.Second
)

// operator is the protocol surface the scheduler drives. Satisfied by
// *protocol.Session.
type operator interface {
	Address() crypto.Address
	MintXAUM(ctx context.Context) (*submit.Outcome, error)
	MintUSDC(ctx context.Context) (*submit.Outcome, error)
	Swap(ctx context.Context, direction protocol.SwapDirection, amount string) (*submit.Outcome, error)
	Stake(ctx context.Context, amount string) (*submit.Outcome, error)
	Unstake(ctx context.Context, amount string) (*submit.Outcome, error)
	Deposit(ctx context.Context, coinType, amount string) (*submit.Outcome, error)
	Withdraw(ctx context.Context, coinType, amount string) (*submit.Outcome, error)
	Borrow(ctx context.Context, amount string) (*submit.Outcome, error)
	Repay(ctx context.Context, amount string) (*submit.Outcome, error)
	Health(ctx context.Context) protocol.HealthSnapshot
}

// Scheduler runs the daily activity plan sequentially across accounts. One
// account is active at a time; within an account every operation is
// sequential, so owned object versions never race.
type Scheduler struct {
	cfg      *config.Config
	plan     config.Activity
	accounts []Account
	log      *slog.Logger

	rng        *rand.Rand
	sleep      func(ctx context.Context, d time.Duration)
	newSession func(account Account) (operator, error)

	suspendedWaits atomic.Int64
}

// SchedulerOption tweaks scheduler behaviour, primarily for tests.
type SchedulerOption func(*Scheduler)

// WithRandSource fixes the random source used for amounts and delays.
func WithRandSource(src rand.Source) SchedulerOption {
	return func(s *Scheduler) {
		if src != nil {
			s.rng = rand.New(src)
		}
	}
}

// WithSleep overrides all scheduler waits.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) SchedulerOption {
	return func(s *Scheduler) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithSessionFactory overrides how per-account sessions are built.
func WithSessionFactory(factory func(account Account) (operator, error)) SchedulerOption {
	return func(s *Scheduler) {
		if factory != nil {
			s.newSession = factory
		}
	}
}

// NewScheduler builds a scheduler over the given accounts and plan.
func NewScheduler(cfg *config.Config, plan config.Activity, accounts []Account, log *slog.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cfg:      cfg,
		plan:     plan,
		accounts: accounts,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.sleep = s.countingSleep
	s.newSession = s.dialSession
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SuspendedWaits reports how many scheduled waits were cut short by a stop
// request. Any non-zero value suppresses scheduling of the next cycle.
func (s *Scheduler) SuspendedWaits() int64 {
	return s.suspendedWaits.Load()
}

// countingSleep pauses for d or until ctx is cancelled. An interrupted wait
// is counted rather than retried: stopping accelerates the drain, it never
// repeats work.
func (s *Scheduler) countingSleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		s.suspendedWaits.Add(1)
	}
}

// dialSession builds a fresh RPC client for the account's proxy pairing and
// wraps it into a protocol session.
func (s *Scheduler) dialSession(account Account) (operator, error) {
	client, err := rpc.New(rpc.Config{
		Endpoint:          s.cfg.Endpoint,
		ProxyURL:          account.Proxy,
		RequestsPerSecond: s.cfg.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	log := s.log.With("account", account.Index)
	return protocol.NewSession(client, submit.New(client, log), account.Key, log), nil
}

// Run executes activity cycles until the context is cancelled. The next
// cycle is only scheduled when the previous one drained cleanly, with no
// waits suspended by a stop request.
func (s *Scheduler) Run(ctx context.Context) error {
	for cycle := 1; ; cycle++ {
		s.log.Info("starting activity cycle", "cycle", cycle, "accounts", len(s.accounts))
		s.runCycle(ctx)
		observability.Activity().RecordCycle()
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.SuspendedWaits() > 0 {
			s.log.Warn("cycle drained with suspended waits, not rescheduling")
			return nil
		}
		s.log.Info("cycle complete, sleeping until next",
			"hours", s.plan.LoopHours)
		s.sleep(ctx, time.Duration(s.plan.LoopHours)*time.Hour)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	for i, account := range s.accounts {
		if ctx.Err() != nil {
			return
		}
		s.runAccount(ctx, account)
		if i < len(s.accounts)-1 && ctx.Err() == nil {
			s.sleep(ctx, phaseDelay)
		}
	}
}

func (s *Scheduler) runAccount(ctx context.Context, account Account) {
	session, err := s.newSession(account)
	if err != nil {
		s.log.Error("cannot build session for account", "account", account.Index, "error", err)
		return
	}
	log := s.log.With("account", account.Index, "address", session.Address().Short())
	connection := "direct"
	if account.Proxy != "" {
		connection = "proxied"
	}
	log.Info("processing account", "connection", connection)

	s.runOp(ctx, log, "mintXAUM", func() error {
		_, err := session.MintXAUM(ctx)
		return err
	})
	s.runOp(ctx, log, "mintUSDC", func() error {
		_, err := session.MintUSDC(ctx)
		return err
	})
	s.phaseGap(ctx, log, "swaps")

	for rep := 0; rep < s.plan.SwapRepetitions && ctx.Err() == nil; rep++ {
		direction := protocol.SwapDirections[rep%len(protocol.SwapDirections)]
		var amount string
		if direction.From == "USDC" {
			amount = s.randAmount(s.plan.USDCSwapRange, 3)
		} else {
			amount = s.randAmount(s.plan.GUSDSwapRange, 3)
		}
		log.Info("swap scheduled", "rep", rep+1, "from", direction.From, "to", direction.To, "amount", amount)
		s.runOp(ctx, log, "swap", func() error {
			_, err := session.Swap(ctx, direction, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.SwapRepetitions)
	}
	s.phaseGap(ctx, log, "staking")

	for rep := 0; rep < s.plan.StakeRepetitions && ctx.Err() == nil; rep++ {
		amount := s.randAmount(s.plan.XAUMStakeRange, 4)
		log.Info("stake scheduled", "rep", rep+1, "amount", amount)
		s.runOp(ctx, log, "stake", func() error {
			_, err := session.Stake(ctx, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.StakeRepetitions)
	}
	s.phaseGap(ctx, log, "unstaking")

	for rep := 0; rep < s.plan.UnstakeRepetitions && ctx.Err() == nil; rep++ {
		amount := s.randAmount(s.plan.XAUMUnstakeRange, 4)
		log.Info("unstake scheduled", "rep", rep+1, "amount", amount)
		s.runOp(ctx, log, "unstake", func() error {
			_, err := session.Unstake(ctx, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.UnstakeRepetitions)
	}
	s.phaseGap(ctx, log, "depositing")

	for rep := 0; rep < s.plan.DepositRepetitions && ctx.Err() == nil; rep++ {
		coinType, amount := s.collateralDraw(rep, s.plan.GRDepositRange, s.plan.SUIDepositRange)
		log.Info("deposit scheduled", "rep", rep+1, "coinType", coinType, "amount", amount)
		s.runOp(ctx, log, "deposit", func() error {
			_, err := session.Deposit(ctx, coinType, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.DepositRepetitions)
	}
	s.phaseGap(ctx, log, "withdrawing")

	for rep := 0; rep < s.plan.WithdrawRepetitions && ctx.Err() == nil; rep++ {
		coinType, amount := s.collateralDraw(rep, s.plan.GRWithdrawRange, s.plan.SUIWithdrawRange)
		log.Info("withdraw scheduled", "rep", rep+1, "coinType", coinType, "amount", amount)
		s.runOp(ctx, log, "withdraw", func() error {
			_, err := session.Withdraw(ctx, coinType, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.WithdrawRepetitions)
	}
	s.phaseGap(ctx, log, "borrowing")

	for rep := 0; rep < s.plan.BorrowRepetitions && ctx.Err() == nil; rep++ {
		amount := s.randAmount(s.plan.GUSDBorrowRange, 4)
		log.Info("borrow scheduled", "rep", rep+1, "amount", amount)
		s.runOp(ctx, log, "borrow", func() error {
			_, err := session.Borrow(ctx, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.BorrowRepetitions)
	}
	s.phaseGap(ctx, log, "repaying")

	for rep := 0; rep < s.plan.RepayRepetitions && ctx.Err() == nil; rep++ {
		amount := s.randAmount(s.plan.GUSDRepayRange, 4)
		log.Info("repay scheduled", "rep", rep+1, "amount", amount)
		s.runOp(ctx, log, "repay", func() error {
			_, err := session.Repay(ctx, amount)
			return err
		})
		s.repGap(ctx, log, rep, s.plan.RepayRepetitions)
	}

	snapshot := session.Health(ctx)
	log.Info("health summary", "snapshot", snapshot.Summary())
}

// runOp executes one operation, records its result, and always waits the
// post-operation settle so back-to-back submissions never race object
// versions. Failures are logged and skipped; the plan continues.
func (s *Scheduler) runOp(ctx context.Context, log *slog.Logger, name string, op func() error) {
	if ctx.Err() != nil {
		return
	}
	if err := op(); err != nil {
		log.Error("operation failed, skipping", "op", name, "error", err)
		observability.Activity().RecordOperation(name, "error")
	} else {
		observability.Activity().RecordOperation(name, "ok")
	}
	s.sleep(ctx, settleDelay)
}

func (s *Scheduler) phaseGap(ctx context.Context, log *slog.Logger, next string) {
	if ctx.Err() != nil {
		return
	}
	log.Info("waiting before next phase", "next", next, "wait", phaseDelay)
	s.sleep(ctx, phaseDelay)
}

// repGap waits a randomized interval between repetitions of one phase, but
// not after the last repetition.
func (s *Scheduler) repGap(ctx context.Context, log *slog.Logger, rep, total int) {
	if rep >= total-1 || ctx.Err() != nil {
		return
	}
	delay := repDelayFloor + time.Duration(s.rng.Int63n(int64(repDelaySpan)))
	log.Info("waiting before next repetition", "wait", delay.Round(time.Second))
	s.sleep(ctx, delay)
}

// collateralDraw alternates GR and SUI collateral across repetitions,
// drawing the amount from the matching range.
func (s *Scheduler) collateralDraw(rep int, grRange, suiRange config.Range) (string, string) {
	if rep%2 == 0 {
		return protocol.GRType, s.randAmount(grRange, 4)
	}
	return protocol.SUIType, s.randAmount(suiRange, 4)
}

func (s *Scheduler) randAmount(r config.Range, decimals int) string {
	v := r.Min + s.rng.Float64()*(r.Max-r.Min)
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
