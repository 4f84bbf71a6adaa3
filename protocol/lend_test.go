package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"creekbot/ledger"
	"creekbot/rpc"
)

func ownedKeyHandler() func(json.RawMessage, int) (any, *rpc.Error) {
	return func(json.RawMessage, int) (any, *rpc.Error) {
		return rpc.OwnedObjectPage{Data: []rpc.ObjectResult{keyObjectResult("0xkey", "0xobl")}}, nil
	}
}

func TestWithdrawBuildsPriceRefreshThenEntryCall(t *testing.T) {
	t.Parallel()

	node := newLedgerNode(t)
	node.handle("creek_getOwnedObjects", ownedKeyHandler())
	node.confirmExecutions()
	fixed := time.UnixMilli(1_700_000_123_456)
	session := newTestSession(t, node, WithClock(func() time.Time { return fixed }))

	if _, err := session.Withdraw(context.Background(), GRType, "0.1"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if len(node.executed) != 1 {
		t.Fatalf("executed %d intents, want 1", len(node.executed))
	}
	intent := node.executed[0]

	// three assets refreshed, three commands each, then the withdraw itself
	if len(intent.Commands) != 10 {
		t.Fatalf("commands = %d, want 10", len(intent.Commands))
	}
	if !strings.HasSuffix(intent.Commands[0].Target, "::x_oracle::price_update_request") {
		t.Fatalf("first command = %q", intent.Commands[0].Target)
	}
	if !strings.HasSuffix(intent.Commands[1].Target, "::rule::set_price_as_primary") {
		t.Fatalf("second command = %q", intent.Commands[1].Target)
	}
	if !strings.HasSuffix(intent.Commands[2].Target, "::x_oracle::confirm_price_update_request") {
		t.Fatalf("third command = %q", intent.Commands[2].Target)
	}
	last := intent.Commands[9]
	if last.Target != PackageID+"::withdraw_collateral::withdraw_collateral_entry" {
		t.Fatalf("final target = %q", last.Target)
	}
	if len(last.TypeArguments) != 1 || last.TypeArguments[0] != GRType {
		t.Fatalf("type arguments = %v", last.TypeArguments)
	}

	// the confirm call must consume the request opened for the same asset
	confirm := intent.Commands[2]
	if confirm.Arguments[1].Result == nil || *confirm.Arguments[1].Result != 0 {
		t.Fatalf("confirm must thread the opened request, got %+v", confirm.Arguments[1])
	}

	// perturbed GR price: reference + now-derived nonce
	wantGR := "150500123456"
	found := false
	for _, in := range intent.Inputs {
		if in.Kind == "pure" && in.Value == wantGR {
			found = true
		}
	}
	if !found {
		t.Fatalf("perturbed GR price %s not present in inputs", wantGR)
	}
}

func TestDepositNonNativeSplitsFromOwnedCoin(t *testing.T) {
	t.Parallel()

	node := newLedgerNode(t)
	node.handle("creek_getOwnedObjects", ownedKeyHandler())
	node.handle("creek_getBalance", balanceHandler(t, map[string]string{GRType: "10000000000"}))
	node.handle("creek_getCoins", coinHandler(t, map[string]string{GRType: "10000000000"}))
	node.confirmExecutions()
	session := newTestSession(t, node)

	if _, err := session.Deposit(context.Background(), GRType, "0.15"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	intent := node.executed[0]
	last := intent.Commands[len(intent.Commands)-1]
	if last.Target != PackageID+"::deposit_collateral::deposit_collateral" {
		t.Fatalf("target = %q", last.Target)
	}
	if len(last.TypeArguments) != 1 || last.TypeArguments[0] != GRType {
		t.Fatalf("type arguments = %v", last.TypeArguments)
	}
	// the split result, not a raw coin, must feed the deposit
	splitArg := last.Arguments[len(last.Arguments)-1]
	if splitArg.Result == nil {
		t.Fatalf("deposit must consume the split coin, got %+v", splitArg)
	}
}

func TestDepositNativeUsesGasCoin(t *testing.T) {
	t.Parallel()

	node := newLedgerNode(t)
	node.handle("creek_getOwnedObjects", ownedKeyHandler())
	node.handle("creek_getBalance", balanceHandler(t, map[string]string{SUIType: "5000000000"}))
	node.handle("creek_getCoins", coinHandler(t, map[string]string{SUIType: "5000000000"}))
	node.confirmExecutions()
	session := newTestSession(t, node)

	if _, err := session.Deposit(context.Background(), SUIType, "0.01"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	intent := node.executed[0]
	// the split must draw from the gas coin when spending the native asset
	var sawGasSplit bool
	for _, cmd := range intent.Commands {
		if cmd.Kind == ledger.CommandSplitCoin && cmd.Arguments[0].GasCoin {
			sawGasSplit = true
		}
	}
	if !sawGasSplit {
		t.Fatalf("native deposit must split from the gas coin")
	}
}

func TestBorrowRefreshesFourAssets(t *testing.T) {
	t.Parallel()

	node := newLedgerNode(t)
	node.handle("creek_getOwnedObjects", ownedKeyHandler())
	node.confirmExecutions()
	session := newTestSession(t, node)

	if _, err := session.Borrow(context.Background(), "1.5"); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	intent := node.executed[0]
	// four refresh triples plus the borrow call
	if len(intent.Commands) != 13 {
		t.Fatalf("commands = %d, want 13", len(intent.Commands))
	}
	last := intent.Commands[12]
	if last.Target != PackageID+"::borrow::borrow_entry" {
		t.Fatalf("final target = %q", last.Target)
	}
}

func TestRepayRejectsInvalidAmount(t *testing.T) {
	t.Parallel()

	node := newLedgerNode(t)
	session := newTestSession(t, node)

	_, err := session.Repay(context.Background(), "-3")
	var invalid *ledger.ErrInvalidAmount
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *ledger.ErrInvalidAmount", err)
	}
	if len(node.calls) != 0 {
		t.Fatalf("invalid amounts must fail before any network call")
	}
}
