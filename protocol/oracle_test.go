package protocol

import (
	"math/big"
	"testing"
	"time"
)

func TestBorrowPriceUpdatesCoverInspectedAssets(t *testing.T) {
	t.Parallel()

	updates := borrowPriceUpdates()
	if len(updates) != 4 {
		t.Fatalf("updates = %d, want 4", len(updates))
	}
	want := map[string]*big.Int{
		GRType:   grOraclePrice,
		USDCType: usdcOraclePrice,
		SUIType:  suiOraclePrice,
		GUSDType: gusdOraclePrice,
	}
	for _, u := range updates {
		price, ok := want[u.assetType]
		if !ok {
			t.Fatalf("unexpected asset %q", u.assetType)
		}
		if u.price.Cmp(price) != 0 {
			t.Fatalf("asset %q price = %s, want %s", u.assetType, u.price, price)
		}
	}
}

func TestWithdrawPriceUpdatesPerturbed(t *testing.T) {
	t.Parallel()

	nonce := big.NewInt(123456)
	updates := withdrawPriceUpdates(nonce)
	if len(updates) != 3 {
		t.Fatalf("updates = %d, want 3", len(updates))
	}
	base := map[string]*big.Int{
		GRType:   grOraclePrice,
		SUIType:  suiOraclePrice,
		USDCType: usdcOraclePrice,
	}
	for _, u := range updates {
		want := new(big.Int).Add(base[u.assetType], nonce)
		if u.price.Cmp(want) != 0 {
			t.Fatalf("asset %q price = %s, want %s", u.assetType, u.price, want)
		}
	}
}

func TestPriceNonceDerivedFromClock(t *testing.T) {
	t.Parallel()

	node := newLedgerNode(t)
	fixed := time.UnixMilli(1_700_000_123_456)
	session := newTestSession(t, node, WithClock(func() time.Time { return fixed }))

	nonce := session.priceNonce()
	if nonce.Int64() != 123456 {
		t.Fatalf("nonce = %s, want 123456", nonce)
	}
	if nonce.Int64() >= 1_000_000 {
		t.Fatalf("nonce must stay below 1e6")
	}
}
