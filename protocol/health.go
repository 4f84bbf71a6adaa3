package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"creekbot/ledger"
)

// Asset is a protocol asset recognised by the health snapshot.
type Asset string

const (
	AssetGR      Asset = "GR"
	AssetSUI     Asset = "SUI"
	AssetUSDC    Asset = "USDC"
	AssetGUSD    Asset = "GUSD"
	AssetUnknown Asset = "UNKNOWN"
)

// classifyAsset maps an on-chain type name to a known asset. Matching is
// substring-based because type names appear both with and without their
// package address, and checks GUSD and GR before the generic fallbacks so
// "coin_gusd" never classifies as GR.
func classifyAsset(typeName string) Asset {
	switch {
	case strings.Contains(typeName, "coin_gusd"):
		return AssetGUSD
	case strings.Contains(typeName, "coin_gr"):
		return AssetGR
	case strings.Contains(typeName, "::sui::SUI"):
		return AssetSUI
	case strings.Contains(typeName, "usdc"):
		return AssetUSDC
	default:
		return AssetUnknown
	}
}

// HealthStatus buckets a health factor into an operator-facing judgement.
type HealthStatus string

const (
	StatusNoBorrow HealthStatus = "no borrow, very safe"
	StatusVerySafe HealthStatus = "very safe"
	StatusSafe     HealthStatus = "safe"
	StatusWarning  HealthStatus = "warning"
	StatusCritical HealthStatus = "critical, liquidation risk"
)

// HealthSnapshot is a point-in-time valuation of one obligation. Values are
// in USD at the static reference prices; a snapshot with no debt reports an
// infinite health factor.
type HealthSnapshot struct {
	Deposits map[Asset]decimal.Decimal
	Borrows  map[Asset]decimal.Decimal

	TotalCollateralValue decimal.Decimal
	TotalDebtValue       decimal.Decimal

	HealthFactor decimal.Decimal
	Infinite     bool
	Status       HealthStatus
}

// Summary renders the snapshot as a single log-friendly line.
func (h HealthSnapshot) Summary() string {
	factor := "inf"
	if !h.Infinite {
		factor = h.HealthFactor.StringFixed(2)
	}
	return fmt.Sprintf("collateral=%s debt=%s factor=%s status=%q",
		h.TotalCollateralValue.StringFixed(2), h.TotalDebtValue.StringFixed(2), factor, h.Status)
}

func emptySnapshot() HealthSnapshot {
	return HealthSnapshot{
		Deposits: map[Asset]decimal.Decimal{},
		Borrows:  map[Asset]decimal.Decimal{},
		Infinite: true,
		Status:   StatusNoBorrow,
	}
}

// aggregate values raw scaled balances at the reference prices and derives
// the health factor. Unknown assets keep their amounts in the maps but
// contribute nothing to the valuation.
func aggregate(deposits, borrows map[Asset]*big.Int) HealthSnapshot {
	snap := emptySnapshot()
	for asset, raw := range deposits {
		amount := ledger.Descale(raw)
		snap.Deposits[asset] = amount
		if price, ok := referencePrices[asset]; ok {
			snap.TotalCollateralValue = snap.TotalCollateralValue.Add(amount.Mul(price))
		}
	}
	for asset, raw := range borrows {
		amount := ledger.Descale(raw)
		snap.Borrows[asset] = amount
		if price, ok := referencePrices[asset]; ok {
			snap.TotalDebtValue = snap.TotalDebtValue.Add(amount.Mul(price))
		}
	}
	if snap.TotalDebtValue.Sign() <= 0 {
		snap.Infinite = true
		snap.Status = StatusNoBorrow
		return snap
	}
	snap.Infinite = false
	snap.HealthFactor = snap.TotalCollateralValue.Div(snap.TotalDebtValue)
	switch {
	case snap.HealthFactor.GreaterThanOrEqual(decimal.NewFromInt(10)):
		snap.Status = StatusVerySafe
	case snap.HealthFactor.GreaterThanOrEqual(decimal.NewFromInt(2)):
		snap.Status = StatusSafe
	case snap.HealthFactor.GreaterThanOrEqual(decimal.RequireFromString("1.5")):
		snap.Status = StatusWarning
	default:
		snap.Status = StatusCritical
	}
	return snap
}

// Health snapshots the account's obligation. A snapshot is advisory: any
// traversal failure degrades to an empty snapshot after a warning instead
// of failing the caller's operation.
func (s *Session) Health(ctx context.Context) HealthSnapshot {
	snap, err := s.healthSnapshot(ctx)
	if err != nil {
		s.log.Warn("health snapshot unavailable", "address", s.address.Short(), "error", err)
		return emptySnapshot()
	}
	return snap
}

// containerID is the nested id shape shared by bags and tables.
type containerID struct {
	Fields struct {
		ID struct {
			ID string `json:"id"`
		} `json:"id"`
	} `json:"fields"`
}

// typeKeySet lists the asset type names present in a keyed collection.
type typeKeySet struct {
	Fields struct {
		Contents []struct {
			Fields struct {
				Name string `json:"name"`
			} `json:"fields"`
		} `json:"contents"`
	} `json:"fields"`
}

func (k typeKeySet) names() []string {
	names := make([]string, 0, len(k.Fields.Contents))
	for _, c := range k.Fields.Contents {
		if c.Fields.Name != "" {
			names = append(names, c.Fields.Name)
		}
	}
	return names
}

// obligationFields is the subset of the obligation object the snapshot
// walks: collateral balances live in a bag, debts in a table, and both
// collections carry an explicit key set naming the asset types present.
type obligationFields struct {
	Balances struct {
		Fields struct {
			Bag containerID `json:"bag"`
		} `json:"fields"`
	} `json:"balances"`
	Collaterals struct {
		Fields struct {
			Keys typeKeySet `json:"keys"`
		} `json:"fields"`
	} `json:"collaterals"`
	Debts struct {
		Fields struct {
			Table containerID `json:"table"`
			Keys  typeKeySet  `json:"keys"`
		} `json:"fields"`
	} `json:"debts"`
}

func (s *Session) healthSnapshot(ctx context.Context) (HealthSnapshot, error) {
	obligation, err := s.findObligation(ctx)
	if err != nil {
		return HealthSnapshot{}, err
	}
	if obligation == nil {
		return emptySnapshot(), nil
	}
	res, err := s.client.GetObject(ctx, obligation.ObligationID, true)
	if err != nil {
		return HealthSnapshot{}, err
	}
	if res.Data == nil || res.Data.Content == nil {
		return HealthSnapshot{}, fmt.Errorf("obligation %s has no content", obligation.ObligationID)
	}
	var fields obligationFields
	if err := json.Unmarshal(res.Data.Content.Fields, &fields); err != nil {
		return HealthSnapshot{}, fmt.Errorf("decode obligation %s: %w", obligation.ObligationID, err)
	}

	deposits, err := s.collateralBalances(ctx, fields.Balances.Fields.Bag.Fields.ID.ID, fields.Collaterals.Fields.Keys.names())
	if err != nil {
		return HealthSnapshot{}, err
	}
	borrows, err := s.debtBalances(ctx, fields.Debts.Fields.Table.Fields.ID.ID, fields.Debts.Fields.Keys.names())
	if err != nil {
		return HealthSnapshot{}, err
	}
	return aggregate(deposits, borrows), nil
}

// collateralBalances reads each named collateral's balance entry out of the
// obligation's balance bag.
func (s *Session) collateralBalances(ctx context.Context, bagID string, names []string) (map[Asset]*big.Int, error) {
	out := make(map[Asset]*big.Int)
	if bagID == "" || len(names) == 0 {
		return out, nil
	}
	entries, err := s.entryIndex(ctx, bagID)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		objectID, ok := entries[name]
		if !ok {
			s.log.Warn("collateral entry missing from bag", "asset", name)
			continue
		}
		amount, err := s.entryAmount(ctx, objectID, decodeBalanceAmount)
		if err != nil {
			return nil, fmt.Errorf("collateral %s: %w", name, err)
		}
		addAmount(out, classifyAsset(name), amount)
	}
	return out, nil
}

// debtBalances reads each named debt entry out of the obligation's debt
// table.
func (s *Session) debtBalances(ctx context.Context, tableID string, names []string) (map[Asset]*big.Int, error) {
	out := make(map[Asset]*big.Int)
	if tableID == "" || len(names) == 0 {
		return out, nil
	}
	entries, err := s.entryIndex(ctx, tableID)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		objectID, ok := entries[name]
		if !ok {
			s.log.Warn("debt entry missing from table", "asset", name)
			continue
		}
		amount, err := s.entryAmount(ctx, objectID, decodeDebtAmount)
		if err != nil {
			return nil, fmt.Errorf("debt %s: %w", name, err)
		}
		addAmount(out, classifyAsset(name), amount)
	}
	return out, nil
}

// entryIndex enumerates a bag or table's dynamic fields keyed by asset type
// name.
func (s *Session) entryIndex(ctx context.Context, parentID string) (map[string]string, error) {
	fields, err := s.client.GetDynamicFields(ctx, parentID, 50)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(fields))
	for _, field := range fields {
		if name := field.EntryName(); name != "" {
			index[name] = field.ObjectID
		}
	}
	return index, nil
}

func (s *Session) entryAmount(ctx context.Context, objectID string, decode func(json.RawMessage) (*big.Int, error)) (*big.Int, error) {
	res, err := s.client.GetObject(ctx, objectID, true)
	if err != nil {
		return nil, err
	}
	if res.Data == nil || res.Data.Content == nil {
		return nil, fmt.Errorf("entry %s has no content", objectID)
	}
	return decode(res.Data.Content.Fields)
}

func addAmount(m map[Asset]*big.Int, asset Asset, amount *big.Int) {
	if existing, ok := m[asset]; ok {
		m[asset] = new(big.Int).Add(existing, amount)
		return
	}
	m[asset] = amount
}

// chainInt accepts the two encodings chain integers arrive in: a decimal
// string or a bare JSON number.
type chainInt struct {
	value *big.Int
}

func (c *chainInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return fmt.Errorf("invalid chain integer %s", string(data))
	}
	c.value = v
	return nil
}

// decodeBalanceAmount extracts the amount of a balance-bag entry, whose
// value field is a bare scaled integer.
func decodeBalanceAmount(fields json.RawMessage) (*big.Int, error) {
	var entry struct {
		Value chainInt `json:"value"`
	}
	if err := json.Unmarshal(fields, &entry); err != nil {
		return nil, fmt.Errorf("decode balance entry: %w", err)
	}
	if entry.Value.value == nil {
		return nil, fmt.Errorf("balance entry carries no value")
	}
	return entry.Value.value, nil
}

// decodeDebtAmount extracts the amount of a debt-table entry. Debt values
// have shipped in three shapes over protocol upgrades, so decoding tries
// the nested struct amount, then a flat amount, then a bare value.
func decodeDebtAmount(fields json.RawMessage) (*big.Int, error) {
	var entry struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(fields, &entry); err != nil {
		return nil, fmt.Errorf("decode debt entry: %w", err)
	}
	if len(entry.Value) == 0 {
		return nil, fmt.Errorf("debt entry carries no value")
	}

	var nested struct {
		Fields struct {
			Amount chainInt `json:"amount"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(entry.Value, &nested); err == nil && nested.Fields.Amount.value != nil {
		return nested.Fields.Amount.value, nil
	}
	var flat struct {
		Amount chainInt `json:"amount"`
	}
	if err := json.Unmarshal(entry.Value, &flat); err == nil && flat.Amount.value != nil {
		return flat.Amount.value, nil
	}
	var bare chainInt
	if err := bare.UnmarshalJSON(entry.Value); err == nil {
		return bare.value, nil
	}
	return nil, fmt.Errorf("unrecognised debt value shape: %s", string(entry.Value))
}
