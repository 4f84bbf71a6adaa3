package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Range bounds a randomly drawn human-decimal amount.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) valid() bool {
	return r.Min > 0 && r.Max >= r.Min
}

// Activity tunes the daily activity plan: how many repetitions of each
// operation to run per account and the amount range for each.
type Activity struct {
	SwapRepetitions     int `json:"swapRepetitions"`
	StakeRepetitions    int `json:"stakeRepetitions"`
	UnstakeRepetitions  int `json:"unstakeRepetitions"`
	DepositRepetitions  int `json:"depositRepetitions"`
	WithdrawRepetitions int `json:"withdrawRepetitions"`
	BorrowRepetitions   int `json:"borrowRepetitions"`
	RepayRepetitions    int `json:"repayRepetitions"`

	USDCSwapRange    Range `json:"usdcSwapRange"`
	GUSDSwapRange    Range `json:"gusdSwapRange"`
	XAUMStakeRange   Range `json:"xaumStakeRange"`
	XAUMUnstakeRange Range `json:"xaumUnstakeRange"`
	GRDepositRange   Range `json:"grDepositRange"`
	SUIDepositRange  Range `json:"suiDepositRange"`
	GRWithdrawRange  Range `json:"grWithdrawRange"`
	SUIWithdrawRange Range `json:"suiWithdrawRange"`
	GUSDBorrowRange  Range `json:"gusdBorrowRange"`
	GUSDRepayRange   Range `json:"gusdRepayRange"`

	LoopHours int `json:"loopHours"`
}

// DefaultActivity returns the stock daily plan.
func DefaultActivity() Activity {
	return Activity{
		SwapRepetitions:     3,
		StakeRepetitions:    3,
		UnstakeRepetitions:  3,
		DepositRepetitions:  3,
		WithdrawRepetitions: 12,
		BorrowRepetitions:   3,
		RepayRepetitions:    3,
		USDCSwapRange:       Range{Min: 1, Max: 2},
		GUSDSwapRange:       Range{Min: 1, Max: 2},
		XAUMStakeRange:      Range{Min: 0.01, Max: 0.02},
		XAUMUnstakeRange:    Range{Min: 0.01, Max: 0.02},
		GRDepositRange:      Range{Min: 0.1, Max: 0.2},
		SUIDepositRange:     Range{Min: 0.01, Max: 0.02},
		GRWithdrawRange:     Range{Min: 0.1, Max: 0.2},
		SUIWithdrawRange:    Range{Min: 0.01, Max: 0.02},
		GUSDBorrowRange:     Range{Min: 1, Max: 2},
		GUSDRepayRange:      Range{Min: 0.5, Max: 1},
		LoopHours:           24,
	}
}

// LoadActivity reads the activity plan, falling back to the stock plan when
// the file is absent. Zero or malformed values fall back field by field so a
// partial file tunes only what it names.
func LoadActivity(path string) (Activity, error) {
	plan := DefaultActivity()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return plan, nil
	}
	if err != nil {
		return plan, err
	}
	var loaded Activity
	if err := json.Unmarshal(data, &loaded); err != nil {
		return plan, fmt.Errorf("parse activity plan %s: %w", path, err)
	}
	mergeActivity(&plan, loaded)
	return plan, nil
}

func mergeActivity(plan *Activity, loaded Activity) {
	reps := []struct {
		dst *int
		src int
	}{
		{&plan.SwapRepetitions, loaded.SwapRepetitions},
		{&plan.StakeRepetitions, loaded.StakeRepetitions},
		{&plan.UnstakeRepetitions, loaded.UnstakeRepetitions},
		{&plan.DepositRepetitions, loaded.DepositRepetitions},
		{&plan.WithdrawRepetitions, loaded.WithdrawRepetitions},
		{&plan.BorrowRepetitions, loaded.BorrowRepetitions},
		{&plan.RepayRepetitions, loaded.RepayRepetitions},
		{&plan.LoopHours, loaded.LoopHours},
	}
	for _, r := range reps {
		if r.src > 0 {
			*r.dst = r.src
		}
	}
	ranges := []struct {
		dst *Range
		src Range
	}{
		{&plan.USDCSwapRange, loaded.USDCSwapRange},
		{&plan.GUSDSwapRange, loaded.GUSDSwapRange},
		{&plan.XAUMStakeRange, loaded.XAUMStakeRange},
		{&plan.XAUMUnstakeRange, loaded.XAUMUnstakeRange},
		{&plan.GRDepositRange, loaded.GRDepositRange},
		{&plan.SUIDepositRange, loaded.SUIDepositRange},
		{&plan.GRWithdrawRange, loaded.GRWithdrawRange},
		{&plan.SUIWithdrawRange, loaded.SUIWithdrawRange},
		{&plan.GUSDBorrowRange, loaded.GUSDBorrowRange},
		{&plan.GUSDRepayRange, loaded.GUSDRepayRange},
	}
	for _, r := range ranges {
		if r.src.valid() {
			*r.dst = r.src
		}
	}
}
