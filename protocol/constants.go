package protocol

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Asset type tags recognised by the Creek lending deployment.
const (
	USDCType = "0xa03cb0b29e92c6fa9bfb7b9c57ffdba5e23810f20885b4390f724553d32efb8b::usdc::USDC"
	GUSDType = "0x5434351f2dcae30c0c4b97420475c5edc966b02fd7d0bbe19ea2220d2f623586::coin_gusd::COIN_GUSD"
	XAUMType = "0xa03cb0b29e92c6fa9bfb7b9c57ffdba5e23810f20885b4390f724553d32efb8b::coin_xaum::COIN_XAUM"
	GRType   = "0x5504354cf3dcbaf64201989bc734e97c1d89bba5c7f01ff2704c43192cc2717c::coin_gr::COIN_GR"
	GYType   = "0x0ac2d5ebd2834c0db725eedcc562c60fa8e281b1772493a4d199fd1e70065671::coin_gy::COIN_GY"
	SUIType  = "0x2::sui::SUI"
)

// Shared protocol objects.
const (
	MarketObject             = "0x166dd68901d2cb47b55c7cfbb7182316f84114f9e12da9251fd4c4f338e37f5d"
	USDCVaultObject          = "0x1fc1b07f7c1d06d4d8f0b1d0a2977418ad71df0d531c476273a2143dfeffba0e"
	StakingManagerObject     = "0x5c9d26e8310f740353eac0e67c351f71bad8748cf5ac90305ffd32a5f3326990"
	ClockObject              = "0x0000000000000000000000000000000000000000000000000000000000000006"
	XOracleObject            = "0x9052b77605c1e2796582e996e0ce60e2780c9a440d8878a319fa37c50ca32530"
	RiskModelObject          = "0x3a865c5bc0e47efc505781598396d75b647e4f1218359e89b08682519c3ac060"
	ObligationRegistryObject = "0x13f4679d0ebd6fc721875af14ee380f45cde02f81d690809ac543901d66f6758"
)

// Package ids and module names for the deployed entry points.
const (
	PackageID       = "0x8cee41afab63e559bc236338bfd7c6b2af07c9f28f285fc8246666a7ce9ae97a"
	FaucetPackageID = "0xa03cb0b29e92c6fa9bfb7b9c57ffdba5e23810f20885b4390f724553d32efb8b"
	RulePackageID   = "0xbd6d8bb7f40ca9921d0c61404cba6dcfa132f184cf8c0f273008a103889eb0e8"
	OraclePackageID = "0xca9b2f66c5ab734939e048d0732e2a09f486402bb009d88f95c27abe8a4872ee"

	swapModule       = "gusd_usdc_vault"
	stakingModule    = "staking_manager"
	depositModule    = "deposit_collateral"
	withdrawModule   = "withdraw_collateral"
	borrowModule     = "borrow"
	repayModule      = "repay"
	xaumMintModule   = "coin_xaum"
	usdcMintModule   = "usdc"
	obligationModule = "obligation_registry"
)

// ObligationKeyType is the struct type of the capability object that proves
// the right to operate on one obligation.
const ObligationKeyType = PackageID + "::obligation::ObligationKey"

// Faucet mint objects and amounts.
const (
	xaumGlobalMintCap = "0x66984752afbd878aaee450c70142747bb31fca2bb63f0a083d75c361da39adb1"
	usdcTreasury      = "0x77153159c4e3933658293a46187c30ef68a8f98aa48b0ce76ffb0e6d20c0776b"
)

var (
	xaumFaucetAmount = big.NewInt(1_000_000_000)  // 1 XAUM
	usdcFaucetAmount = big.NewInt(10_000_000_000) // 10 USDC
)

// Reference oracle prices, scaled to ledger precision. These feed the
// price-refresh calls that borrow and withdraw prepend; they are not a
// pricing policy.
var (
	grOraclePrice   = big.NewInt(150_500_000_000)
	suiOraclePrice  = big.NewInt(3_180_000_000)
	usdcOraclePrice = big.NewInt(1_000_000_000)
	gusdOraclePrice = big.NewInt(1_050_000_000)
)

// Static USD valuations used only by the health snapshot display. These are
// a local approximation, deliberately decoupled from the oracle prices used
// during borrow and withdraw.
var referencePrices = map[Asset]decimal.Decimal{
	AssetGR:   decimal.RequireFromString("150.5"),
	AssetSUI:  decimal.RequireFromString("3.18"),
	AssetUSDC: decimal.RequireFromString("1.0"),
	AssetGUSD: decimal.RequireFromString("1.05"),
}

// unstakeShareRatio is the GR/GY share pair consumed per unit of XAUM
// unstaked, reflecting the staking manager's 100:1 share design.
var unstakeShareRatio = big.NewInt(100)
