package ledger

import (
	"errors"
	"math/big"
	"testing"
)

func coin(id string, balance int64) Coin {
	return Coin{
		Ref:     ObjectRef{ID: id, Version: 1, Digest: "d-" + id},
		Type:    "0x2::sui::SUI",
		Balance: big.NewInt(balance),
	}
}

func TestSelectCoinsPrefersFirstCovering(t *testing.T) {
	t.Parallel()

	coins := []Coin{coin("a", 10), coin("b", 100), coin("c", 200)}
	primary, merge, err := SelectCoins(coins, big.NewInt(50))
	if err != nil {
		t.Fatalf("SelectCoins: %v", err)
	}
	if primary.Ref.ID != "b" {
		t.Fatalf("primary = %s, want b", primary.Ref.ID)
	}
	if len(merge) != 2 || merge[0].ID != "a" || merge[1].ID != "c" {
		t.Fatalf("merge = %+v, want [a c]", merge)
	}
}

func TestSelectCoinsFallsBackToFirst(t *testing.T) {
	t.Parallel()

	coins := []Coin{coin("a", 10), coin("b", 20)}
	primary, merge, err := SelectCoins(coins, big.NewInt(1000))
	if err != nil {
		t.Fatalf("SelectCoins: %v", err)
	}
	if primary.Ref.ID != "a" {
		t.Fatalf("primary = %s, want a", primary.Ref.ID)
	}
	if len(merge) != 1 || merge[0].ID != "b" {
		t.Fatalf("merge = %+v, want [b]", merge)
	}
}

func TestSelectCoinsMergesEverythingElse(t *testing.T) {
	t.Parallel()

	coins := []Coin{coin("a", 500), coin("b", 1), coin("c", 2), coin("d", 3)}
	primary, merge, err := SelectCoins(coins, big.NewInt(100))
	if err != nil {
		t.Fatalf("SelectCoins: %v", err)
	}
	if len(merge) != len(coins)-1 {
		t.Fatalf("merged %d coins, want %d", len(merge), len(coins)-1)
	}
	for _, ref := range merge {
		if ref.ID == primary.Ref.ID {
			t.Fatalf("primary %s also listed for merge", primary.Ref.ID)
		}
	}
}

func TestSelectCoinsEmpty(t *testing.T) {
	t.Parallel()

	_, _, err := SelectCoins(nil, big.NewInt(1))
	if !errors.Is(err, ErrNoCoins) {
		t.Fatalf("err = %v, want ErrNoCoins", err)
	}
}
