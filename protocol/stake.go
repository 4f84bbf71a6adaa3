package protocol

import (
	"context"
	"fmt"
	"math/big"

	"creekbot/ledger"
	"creekbot/submit"
)

// Stake deposits amount (human decimal) of XAUM into the staking manager.
func (s *Session) Stake(ctx context.Context, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	balance, err := s.client.GetBalance(ctx, s.address.String(), XAUMType)
	if err != nil {
		return nil, err
	}
	if total, err := balance.TotalInt(); err == nil {
		s.log.Info("current XAUM balance", "balance", ledger.FormatAmount(total))
	}
	b := ledger.NewBuilder(s.address)
	split, err := s.prepareSpend(ctx, b, XAUMType, scaled)
	if err != nil {
		return nil, err
	}
	b.MoveCall(fmt.Sprintf("%s::%s::stake_xaum", PackageID, stakingModule), nil,
		b.SharedObject(StakingManagerObject),
		split,
	)
	outcome, err := s.execute(ctx, "stake", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("stake confirmed", "amount", amount, "digest", outcome.Digest)
	return outcome, nil
}

// MaxUnstakeable returns how much XAUM the paired GR/GY share balances can
// redeem, descaled to a ledger integer of XAUM units.
func MaxUnstakeable(grBalance, gyBalance *big.Int) *big.Int {
	lesser := grBalance
	if gyBalance.Cmp(grBalance) < 0 {
		lesser = gyBalance
	}
	return new(big.Int).Quo(lesser, unstakeShareRatio)
}

// Unstake redeems amount (human decimal) of XAUM from the staking manager.
// Unstaking consumes GR and GY share coins in a fixed 100:1 ratio per XAUM
// unit, so the request is checked against freshly fetched balances before
// any transaction is built.
func (s *Session) Unstake(ctx context.Context, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	shareAmount := new(big.Int).Mul(scaled, unstakeShareRatio)

	grBalance, err := s.client.GetBalance(ctx, s.address.String(), GRType)
	if err != nil {
		return nil, err
	}
	gyBalance, err := s.client.GetBalance(ctx, s.address.String(), GYType)
	if err != nil {
		return nil, err
	}
	grTotal, err := grBalance.TotalInt()
	if err != nil {
		return nil, err
	}
	gyTotal, err := gyBalance.TotalInt()
	if err != nil {
		return nil, err
	}
	max := MaxUnstakeable(grTotal, gyTotal)
	s.log.Info("max unstakeable", "xaum", ledger.FormatAmount(max))
	if scaled.Cmp(max) > 0 {
		return nil, &InsufficientSharesError{
			Requested: ledger.FormatAmount(scaled),
			Max:       ledger.FormatAmount(max),
		}
	}

	b := ledger.NewBuilder(s.address)
	grSplit, err := s.prepareSpend(ctx, b, GRType, shareAmount)
	if err != nil {
		return nil, err
	}
	gySplit, err := s.prepareSpend(ctx, b, GYType, shareAmount)
	if err != nil {
		return nil, err
	}
	b.MoveCall(fmt.Sprintf("%s::%s::unstake", PackageID, stakingModule), nil,
		b.SharedObject(StakingManagerObject),
		grSplit,
		gySplit,
	)
	outcome, err := s.execute(ctx, "unstake", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("unstake confirmed", "amount", amount, "digest", outcome.Digest)
	return outcome, nil
}
