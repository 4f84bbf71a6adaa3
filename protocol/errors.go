package protocol

import (
	"errors"
	"fmt"
)

// ErrObligationCreationFailed means provisioning could not establish an
// obligation for the account. Fatal for that account's current operation
// only; the scheduler continues with the next one.
var ErrObligationCreationFailed = errors.New("obligation creation failed: key not found after settle delay")

// InsufficientSharesError rejects an unstake whose paired GR/GY share
// balances cannot cover the requested amount. The check runs before any
// transaction is built because the ledger cannot express insufficient
// funds as a friendly error.
type InsufficientSharesError struct {
	Requested string
	Max       string
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient staked shares: requested %s XAUM, max unstakeable %s XAUM", e.Requested, e.Max)
}
