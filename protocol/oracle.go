package protocol

import (
	"fmt"
	"math/big"

	"creekbot/ledger"
)

// priceUpdate is one asset's oracle refresh: the three-step handshake of
// opening an update request, setting a primary price, and confirming.
type priceUpdate struct {
	assetType string
	price     *big.Int
}

// appendPriceRefresh prepends the oracle handshakes an operation needs so
// the protocol does not reject it for stale prices. Each update threads the
// opened request handle through the set and confirm calls.
func appendPriceRefresh(b *ledger.Builder, updates []priceUpdate) {
	for _, u := range updates {
		typeArgs := []string{u.assetType}
		request := b.MoveCall(
			fmt.Sprintf("%s::x_oracle::price_update_request", OraclePackageID),
			typeArgs,
			b.SharedObject(XOracleObject),
		)
		b.MoveCall(
			fmt.Sprintf("%s::rule::set_price_as_primary", RulePackageID),
			typeArgs,
			request,
			b.PureU64(u.price),
			b.SharedObject(ClockObject),
		)
		b.MoveCall(
			fmt.Sprintf("%s::x_oracle::confirm_price_update_request", OraclePackageID),
			typeArgs,
			b.SharedObject(XOracleObject),
			request,
			b.SharedObject(ClockObject),
		)
	}
}

// borrowPriceUpdates covers every asset the risk model inspects during a
// borrow, at the fixed reference prices.
func borrowPriceUpdates() []priceUpdate {
	return []priceUpdate{
		{assetType: GRType, price: grOraclePrice},
		{assetType: USDCType, price: usdcOraclePrice},
		{assetType: SUIType, price: suiOraclePrice},
		{assetType: GUSDType, price: gusdOraclePrice},
	}
}

// withdrawPriceUpdates perturbs each reference price by a shared
// time-derived nonce so the oracle accepts the update as new even when the
// nominal price is unchanged. This games the oracle's staleness rule rather
// than honouring it — a protocol-compliance risk inherited from the
// deployment, not a pricing policy.
func withdrawPriceUpdates(nonce *big.Int) []priceUpdate {
	return []priceUpdate{
		{assetType: GRType, price: new(big.Int).Add(grOraclePrice, nonce)},
		{assetType: SUIType, price: new(big.Int).Add(suiOraclePrice, nonce)},
		{assetType: USDCType, price: new(big.Int).Add(usdcOraclePrice, nonce)},
	}
}

// priceNonce derives the shared perturbation from the current wall clock,
// bounded so it stays far below any real price magnitude.
func (s *Session) priceNonce() *big.Int {
	return big.NewInt(s.now().UnixMilli() % 1_000_000)
}
