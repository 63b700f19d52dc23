package client

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/predictbet/gopredict/predict/signing"
	"github.com/predictbet/gopredict/predict/types"
)

// CollateralTokenDecimals is the precision of the USDT collateral (18 on BNB
// Chain, unlike the 6-decimal stables on other chains).
const CollateralTokenDecimals = 18

// ContractConfig lists every deployment address the engine touches on one
// chain. A zero exchange address means the variant is not deployed there.
type ContractConfig struct {
	Exchange                    common.Address // standard CTF exchange
	NegRiskExchange             common.Address
	YieldBearingExchange        common.Address
	YieldBearingNegRiskExchange common.Address
	Collateral                  common.Address // USDT

	// ConditionalTokens are every contract that can emit PayoutRedemption
	// events for this chain. The first address also serves the neg-risk
	// adapter family, which emits a differently-shaped event.
	ConditionalTokens []common.Address
}

var bnbMainnetContracts = ContractConfig{
	Exchange:                    common.HexToAddress("0x8BC070BEdAB741406F4B1Eb65A72bee27894B689"),
	NegRiskExchange:             common.HexToAddress("0x365fb81bd4A24D6303cd2F19c349dE6894D8d58A"),
	YieldBearingExchange:        common.HexToAddress("0x6bEb5a40C032AFc305961162d8204CDA16DECFa5"),
	YieldBearingNegRiskExchange: common.HexToAddress("0x8A289d458f5a134bA40015085A8F50Ffb681B41d"),
	Collateral:                  common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"),
	ConditionalTokens: []common.Address{
		common.HexToAddress("0x22DA1810B194ca018378464a58f6Ac2B10C9d244"),
		common.HexToAddress("0x9400F8Ad57e9e0F352345935d6D3175975eb1d9F"),
		common.HexToAddress("0xF64b0b318AAf83BD9071110af24D24445719A07F"),
	},
}

// The testnet has no NegRisk-only and no YieldBearingNegRisk exchange; those
// variants fail closed there.
var bnbTestnetContracts = ContractConfig{
	Exchange:             common.HexToAddress("0x2A6413639BD3d73a20ed8C95F634Ce198ABbd2d7"),
	YieldBearingExchange: common.HexToAddress("0x8a6B4Fa700A1e310b106E7a48bAFa29111f66e89"),
	Collateral:           common.HexToAddress("0x337610d27c682E347C9cD60BD4b3b107C9d34dDd"),
	ConditionalTokens: []common.Address{
		common.HexToAddress("0x2827AAef52D71910E8FBad2FfeBC1B6C2DA37743"),
		common.HexToAddress("0x38BF1cbD66d174bb5F3037d7068E708861D68D7f"),
		common.HexToAddress("0x26e865CbaAe99b62fbF9D18B55c25B5E079A93D5"),
	},
}

// ContractsFor returns the deployment table for a chain.
func ContractsFor(chain types.Chain) (*ContractConfig, error) {
	switch chain {
	case types.ChainBNBMainnet:
		return &bnbMainnetContracts, nil
	case types.ChainBNBTestnet:
		return &bnbTestnetContracts, nil
	default:
		return nil, fmt.Errorf("no contract deployment for chain %d: %w", chain, types.ErrUnsupportedVariant)
	}
}

// ExchangeFor selects the verifying exchange contract for a variant pair.
// NegRisk and YieldBearing combined select a fifth, distinct deployment, not
// a composition of the other two.
func (c *ContractConfig) ExchangeFor(isNegRisk, isYieldBearing bool) (common.Address, error) {
	var addr common.Address
	switch {
	case isNegRisk && isYieldBearing:
		addr = c.YieldBearingNegRiskExchange
	case isNegRisk:
		addr = c.NegRiskExchange
	case isYieldBearing:
		addr = c.YieldBearingExchange
	default:
		addr = c.Exchange
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("negRisk=%v yieldBearing=%v: %w", isNegRisk, isYieldBearing, types.ErrUnsupportedVariant)
	}
	return addr, nil
}

// ResolveVariant maps (chain, negRisk, yieldBearing) to the verifying
// contract and its EIP-712 domain. It never falls back to a default: a wrong
// contract address would produce a signature the chain rejects.
func ResolveVariant(chain types.Chain, isNegRisk, isYieldBearing bool) (common.Address, apitypes.TypedDataDomain, error) {
	cfg, err := ContractsFor(chain)
	if err != nil {
		return common.Address{}, apitypes.TypedDataDomain{}, err
	}
	exchange, err := cfg.ExchangeFor(isNegRisk, isYieldBearing)
	if err != nil {
		return common.Address{}, apitypes.TypedDataDomain{}, err
	}
	return exchange, signing.OrderDomain(chain, exchange), nil
}
