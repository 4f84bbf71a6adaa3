package ledger

import (
	"errors"
	"math/big"

	"creekbot/rpc"
)

// ErrNoCoins indicates the owner holds no coin objects of the requested type.
var ErrNoCoins = errors.New("no coin objects found")

// Coin is a value object of one asset type owned by an address.
type Coin struct {
	Ref     ObjectRef
	Type    string
	Balance *big.Int
}

// CoinsFromRPC converts wire coins into ledger coins with parsed balances.
func CoinsFromRPC(coins []rpc.Coin) ([]Coin, error) {
	out := make([]Coin, 0, len(coins))
	for _, c := range coins {
		balance, err := c.BalanceInt()
		if err != nil {
			return nil, err
		}
		out = append(out, Coin{
			Ref:     ObjectRef{ID: c.CoinObjectID, Version: c.Version, Digest: c.Digest},
			Type:    c.CoinType,
			Balance: balance,
		})
	}
	return out, nil
}

// SelectCoins picks a primary coin to spend target from, and the remaining
// coins to merge into it. The first coin whose balance covers the target is
// chosen; if none does, the first coin by enumeration order is. Every other
// coin is merged regardless, which keeps fragmentation down and makes the
// later split position-independent. When no single coin covers the target
// even after merging, the split inside the transaction fails on-chain; the
// caller surfaces that outcome rather than masking it here.
func SelectCoins(coins []Coin, target *big.Int) (Coin, []ObjectRef, error) {
	if len(coins) == 0 {
		return Coin{}, nil, ErrNoCoins
	}
	primary := coins[0]
	for _, c := range coins {
		if c.Balance != nil && target != nil && c.Balance.Cmp(target) >= 0 {
			primary = c
			break
		}
	}
	merge := make([]ObjectRef, 0, len(coins)-1)
	for _, c := range coins {
		if c.Ref.ID == primary.Ref.ID {
			continue
		}
		merge = append(merge, c.Ref)
	}
	return primary, merge, nil
}
