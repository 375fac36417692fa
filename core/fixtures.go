package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Function signatures served by the fixtures.
const (
	SigName         = "name()"
	SigSymbol       = "symbol()"
	SigDecimals     = "decimals()"
	SigBalanceOf    = "balanceOf(address)"
	SigGetOwners    = "getOwners()"
	SigGetThreshold = "getThreshold()"
	SigNonce        = "nonce()"
)

// TokenFixture is an ERC20 that answers the same metadata and balance for every caller.
func TokenFixture(fc FixtureConfig) *ContractFixture {
	balance, _ := parseBig(fc.TokenBalance)
	if balance == nil {
		balance = new(big.Int)
	}

	return NewContractFixture(fc.TokenAddress).
		Handle(SigName, returnsString(fc.TokenName)).
		Handle(SigSymbol, returnsString(fc.TokenSymbol)).
		Handle(SigDecimals, returnsUint8(fc.TokenDecimals)).
		Handle(SigBalanceOf, returnsUint256(balance))
}

// SafeFixture is a multisig custody contract with fixed owners, threshold and nonce.
func SafeFixture(fc FixtureConfig) *ContractFixture {
	owners := make([]common.Address, 0, len(fc.SafeOwners))
	for _, owner := range fc.SafeOwners {
		owners = append(owners, common.HexToAddress(owner))
	}

	return NewContractFixture(fc.SafeAddress).
		Handle(SigGetOwners, returnsAddresses(owners)).
		Handle(SigGetThreshold, returnsUint256(new(big.Int).SetUint64(fc.SafeThreshold))).
		Handle(SigNonce, returnsUint256(new(big.Int).SetUint64(fc.SafeNonce)))
}

func DefaultFixtures() []*ContractFixture {
	fc := DefaultConfig().Fixtures
	return []*ContractFixture{TokenFixture(fc), SafeFixture(fc)}
}
