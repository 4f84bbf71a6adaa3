package ledger

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point scale used by every asset on the Creek ledger.
// On-chain amounts are integers carrying this many implied decimal places.
const Decimals = 9

// ErrInvalidAmount rejects amount inputs that are not strictly positive
// decimal numbers.
type ErrInvalidAmount struct {
	Input string
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount %q: must be a positive decimal", e.Input)
}

// ParseAmount converts a human-readable decimal string into a scaled ledger
// integer. Values beyond the fixed scale are rounded half up.
func ParseAmount(input string) (*big.Int, error) {
	d, err := decimal.NewFromString(input)
	if err != nil {
		return nil, &ErrInvalidAmount{Input: input}
	}
	if d.Sign() <= 0 {
		return nil, &ErrInvalidAmount{Input: input}
	}
	return d.Shift(Decimals).Round(0).BigInt(), nil
}

// Descale converts a scaled ledger integer to its exact decimal value.
func Descale(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -Decimals)
}

// Rescale converts a decimal value back to a scaled ledger integer. For any
// integer v representable at the fixed scale, Rescale(Descale(v)) == v.
func Rescale(d decimal.Decimal) *big.Int {
	return d.Shift(Decimals).BigInt()
}

// FormatAmount renders a scaled integer with four decimal places for logs.
func FormatAmount(v *big.Int) string {
	return Descale(v).StringFixed(4)
}
