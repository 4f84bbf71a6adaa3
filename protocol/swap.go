package protocol

import (
	"context"
	"fmt"

	"creekbot/ledger"
	"creekbot/submit"
)

// SwapDirection describes one leg of the GUSD/USDC vault pair.
type SwapDirection struct {
	From       string
	To         string
	CoinTypeIn string
	Function   string
}

// SwapDirections cycles USDC→GUSD then GUSD→USDC, matching the vault's two
// entry points.
var SwapDirections = []SwapDirection{
	{From: "USDC", To: "GUSD", CoinTypeIn: USDCType, Function: "mint_gusd"},
	{From: "GUSD", To: "USDC", CoinTypeIn: GUSDType, Function: "redeem_gusd"},
}

// Swap exchanges amount (human decimal) of the direction's source asset
// through the vault.
func (s *Session) Swap(ctx context.Context, direction SwapDirection, amount string) (*submit.Outcome, error) {
	scaled, err := ledger.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	b := ledger.NewBuilder(s.address)
	split, err := s.prepareSpend(ctx, b, direction.CoinTypeIn, scaled)
	if err != nil {
		return nil, err
	}
	target := fmt.Sprintf("%s::%s::%s", PackageID, swapModule, direction.Function)
	if direction.From == "USDC" {
		// mint_gusd consults the clock for vault accounting; redeem does not.
		b.MoveCall(target, nil,
			b.SharedObject(USDCVaultObject),
			b.SharedObject(MarketObject),
			split,
			b.SharedObject(ClockObject),
		)
	} else {
		b.MoveCall(target, nil,
			b.SharedObject(USDCVaultObject),
			b.SharedObject(MarketObject),
			split,
		)
	}
	outcome, err := s.execute(ctx, "swap", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("swap confirmed", "from", direction.From, "to", direction.To,
		"amount", amount, "digest", outcome.Digest)
	return outcome, nil
}
