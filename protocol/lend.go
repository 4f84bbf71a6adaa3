package protocol

import (
	"context"
	"fmt"

	"creekbot/ledger"
	"creekbot/submit"
)

// Deposit pledges amount (human decimal) of coinType as collateral on the
// account's obligation, creating the obligation first if needed.
func (s *Session) Deposit(ctx context.Context, coinType, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	if balance, err := s.client.GetBalance(ctx, s.address.String(), coinType); err == nil {
		if total, err := balance.TotalInt(); err == nil {
			s.log.Info("current balance", "coinType", coinType, "balance", ledger.FormatAmount(total))
		}
	}
	obligation, err := s.EnsureObligation(ctx)
	if err != nil {
		return nil, err
	}

	b := ledger.NewBuilder(s.address)
	var split ledger.Arg
	if coinType == SUIType {
		split, err = s.prepareNativeSpend(ctx, b, scaled)
	} else {
		split, err = s.prepareSpend(ctx, b, coinType, scaled)
	}
	if err != nil {
		return nil, err
	}
	b.MoveCall(fmt.Sprintf("%s::%s::deposit_collateral", PackageID, depositModule),
		[]string{coinType},
		b.SharedObject(ObligationRegistryObject),
		b.SharedObject(obligation.ObligationID),
		b.SharedObject(MarketObject),
		split,
	)
	outcome, err := s.execute(ctx, "deposit", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("deposit confirmed", "coinType", coinType, "amount", amount, "digest", outcome.Digest)
	return outcome, nil
}

// Withdraw removes amount (human decimal) of coinType collateral. The risk
// model re-checks the position against fresh oracle prices, so the intent
// prepends a nonce-perturbed price refresh for every inspected asset.
func (s *Session) Withdraw(ctx context.Context, coinType, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	obligation, err := s.EnsureObligation(ctx)
	if err != nil {
		return nil, err
	}

	b := ledger.NewBuilder(s.address)
	appendPriceRefresh(b, withdrawPriceUpdates(s.priceNonce()))
	b.MoveCall(fmt.Sprintf("%s::%s::withdraw_collateral_entry", PackageID, withdrawModule),
		[]string{coinType},
		b.SharedObject(ObligationRegistryObject),
		b.SharedObject(obligation.ObligationID),
		b.Object(obligation.Key),
		b.SharedObject(MarketObject),
		b.SharedObject(RiskModelObject),
		b.PureU64(scaled),
		b.SharedObject(XOracleObject),
		b.SharedObject(ClockObject),
	)
	outcome, err := s.execute(ctx, "withdraw", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("withdraw confirmed", "coinType", coinType, "amount", amount, "digest", outcome.Digest)
	return outcome, nil
}

// Borrow draws amount (human decimal) of GUSD against the obligation's
// collateral, refreshing every inspected asset price at the fixed
// reference values first.
func (s *Session) Borrow(ctx context.Context, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	obligation, err := s.EnsureObligation(ctx)
	if err != nil {
		return nil, err
	}

	b := ledger.NewBuilder(s.address)
	appendPriceRefresh(b, borrowPriceUpdates())
	b.MoveCall(fmt.Sprintf("%s::%s::borrow_entry", PackageID, borrowModule), nil,
		b.SharedObject(ObligationRegistryObject),
		b.SharedObject(obligation.ObligationID),
		b.Object(obligation.Key),
		b.SharedObject(MarketObject),
		b.SharedObject(RiskModelObject),
		b.PureU64(scaled),
		b.SharedObject(XOracleObject),
		b.SharedObject(ClockObject),
	)
	outcome, err := s.execute(ctx, "borrow", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("borrow confirmed", "amount", amount, "digest", outcome.Digest)
	return outcome, nil
}

// Repay pays amount (human decimal) of GUSD back into the obligation.
func (s *Session) Repay(ctx context.Context, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	if balance, err := s.client.GetBalance(ctx, s.address.String(), GUSDType); err == nil {
		if total, err := balance.TotalInt(); err == nil {
			s.log.Info("current GUSD balance", "balance", ledger.FormatAmount(total))
		}
	}
	obligation, err := s.EnsureObligation(ctx)
	if err != nil {
		return nil, err
	}

	b := ledger.NewBuilder(s.address)
	split, err := s.prepareSpend(ctx, b, GUSDType, scaled)
	if err != nil {
		return nil, err
	}
	b.MoveCall(fmt.Sprintf("%s::%s::repay", PackageID, repayModule),
		[]string{GUSDType},
		b.SharedObject(ObligationRegistryObject),
		b.SharedObject(obligation.ObligationID),
		b.SharedObject(MarketObject),
		split,
		b.SharedObject(ClockObject),
	)
	outcome, err := s.execute(ctx, "repay", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("repay confirmed", "amount", amount, "digest", outcome.Digest)
	return outcome, nil
}
