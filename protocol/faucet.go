package protocol

import (
	"context"
	"fmt"

	"creekbot/ledger"
	"creekbot/submit"
)

// MintXAUM claims the fixed XAUM faucet allowance for the account.
func (s *Session) MintXAUM(ctx context.Context) (*submit.Outcome, error) {
	b := ledger.NewBuilder(s.address)
	b.MoveCall(fmt.Sprintf("%s::%s::mint", FaucetPackageID, xaumMintModule), nil,
		b.SharedObject(xaumGlobalMintCap),
		b.PureU64(xaumFaucetAmount),
		b.PureAddress(s.address.String()),
	)
	outcome, err := s.execute(ctx, "mintXAUM", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("XAUM faucet minted", "amount", ledger.FormatAmount(xaumFaucetAmount), "digest", outcome.Digest)
	return outcome, nil
}

// MintUSDC claims the fixed USDC faucet allowance for the account.
func (s *Session) MintUSDC(ctx context.Context) (*submit.Outcome, error) {
	b := ledger.NewBuilder(s.address)
	b.MoveCall(fmt.Sprintf("%s::%s::mint", FaucetPackageID, usdcMintModule), nil,
		b.SharedObject(usdcTreasury),
		b.PureU64(usdcFaucetAmount),
		b.PureAddress(s.address.String()),
	)
	outcome, err := s.execute(ctx, "mintUSDC", b.Intent())
	if err != nil {
		return nil, err
	}
	s.log.Info("USDC faucet minted", "amount", ledger.FormatAmount(usdcFaucetAmount), "digest", outcome.Digest)
	return outcome, nil
}
