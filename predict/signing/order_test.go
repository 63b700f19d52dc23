package signing

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/predictbet/gopredict/predict/types"
)

const testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe512961708279feb1be6ae5538da033"

func baseOrder() *types.UnsignedOrder {
	return &types.UnsignedOrder{
		Salt:          big.NewInt(123456789),
		Maker:         common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Signer:        common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Taker:         types.ZeroTaker,
		TokenID:       big.NewInt(111222333),
		MakerAmount:   mustWei("50000000000000000000"),
		TakerAmount:   mustWei("100000000000000000000"),
		Expiration:    big.NewInt(1_900_000_000),
		Nonce:         big.NewInt(0),
		FeeRateBps:    big.NewInt(0),
		Side:          types.SideBuy,
		SignatureType: types.SignatureTypeEOA,
	}
}

func mustWei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad literal " + s)
	}
	return v
}

func TestHashOrderDeterministic(t *testing.T) {
	domain := OrderDomain(types.ChainBNBMainnet,
		common.HexToAddress("0x8BC070BEdAB741406F4B1Eb65A72bee27894B689"))

	h1, err := HashOrder(domain, baseOrder())
	if err != nil {
		t.Fatalf("HashOrder() error = %v", err)
	}
	h2, err := HashOrder(domain, baseOrder())
	if err != nil {
		t.Fatalf("HashOrder() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("identical orders hashed differently: %s vs %s", h1.Hex(), h2.Hex())
	}
	if h1 == (common.Hash{}) {
		t.Error("hash is zero")
	}
}

func TestHashOrderFieldSensitivity(t *testing.T) {
	domain := OrderDomain(types.ChainBNBMainnet,
		common.HexToAddress("0x8BC070BEdAB741406F4B1Eb65A72bee27894B689"))

	base, err := HashOrder(domain, baseOrder())
	if err != nil {
		t.Fatalf("HashOrder() error = %v", err)
	}

	mutations := []struct {
		name   string
		mutate func(o *types.UnsignedOrder)
	}{
		{"salt", func(o *types.UnsignedOrder) { o.Salt = big.NewInt(987654321) }},
		{"maker", func(o *types.UnsignedOrder) { o.Maker = common.Address{0xbb} }},
		{"signer", func(o *types.UnsignedOrder) { o.Signer = common.Address{0xcc} }},
		{"taker", func(o *types.UnsignedOrder) { o.Taker = common.Address{0xdd} }},
		{"tokenId", func(o *types.UnsignedOrder) { o.TokenID = big.NewInt(444555666) }},
		{"makerAmount", func(o *types.UnsignedOrder) { o.MakerAmount = big.NewInt(1) }},
		{"takerAmount", func(o *types.UnsignedOrder) { o.TakerAmount = big.NewInt(1) }},
		{"expiration", func(o *types.UnsignedOrder) { o.Expiration = big.NewInt(1) }},
		{"nonce", func(o *types.UnsignedOrder) { o.Nonce = big.NewInt(7) }},
		{"feeRateBps", func(o *types.UnsignedOrder) { o.FeeRateBps = big.NewInt(100) }},
		{"side", func(o *types.UnsignedOrder) { o.Side = types.SideSell }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			o := baseOrder()
			tt.mutate(o)
			h, err := HashOrder(domain, o)
			if err != nil {
				t.Fatalf("HashOrder() error = %v", err)
			}
			if h == base {
				t.Errorf("changing %s did not change the hash", tt.name)
			}
		})
	}
}

func TestHashOrderDomainSeparation(t *testing.T) {
	order := baseOrder()
	contracts := []string{
		"0x8BC070BEdAB741406F4B1Eb65A72bee27894B689",
		"0x365fb81bd4A24D6303cd2F19c349dE6894D8d58A",
		"0x6bEb5a40C032AFc305961162d8204CDA16DECFa5",
		"0x8A289d458f5a134bA40015085A8F50Ffb681B41d",
	}

	seen := make(map[common.Hash]string)
	for _, addr := range contracts {
		domain := OrderDomain(types.ChainBNBMainnet, common.HexToAddress(addr))
		h, err := HashOrder(domain, order)
		if err != nil {
			t.Fatalf("HashOrder(%s) error = %v", addr, err)
		}
		if prev, dup := seen[h]; dup {
			t.Errorf("contracts %s and %s produce the same digest", addr, prev)
		}
		seen[h] = addr
	}

	// Same contract address on a different chain also separates.
	testnetDomain := OrderDomain(types.ChainBNBTestnet, common.HexToAddress(contracts[0]))
	h, err := HashOrder(testnetDomain, order)
	if err != nil {
		t.Fatalf("HashOrder() error = %v", err)
	}
	if _, dup := seen[h]; dup {
		t.Error("chain id does not separate the digest")
	}
}

func TestSignOrderRecovers(t *testing.T) {
	signer, err := NewPrivateKeySigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewPrivateKeySigner() error = %v", err)
	}
	domain := OrderDomain(types.ChainBNBMainnet,
		common.HexToAddress("0x8BC070BEdAB741406F4B1Eb65A72bee27894B689"))

	order := baseOrder()
	order.Maker = signer.Address()
	order.Signer = signer.Address()

	signed, err := SignOrder(context.Background(), signer, domain, order)
	if err != nil {
		t.Fatalf("SignOrder() error = %v", err)
	}
	if !strings.HasPrefix(signed.Signature, "0x") || len(signed.Signature) != 2+65*2 {
		t.Fatalf("signature %q is not a 65-byte hex string", signed.Signature)
	}

	// Recover the signer from the digest and the signature.
	sig := common.FromHex(signed.Signature)
	sig[64] -= 27
	pub, err := crypto.SigToPub(common.HexToHash(signed.Hash).Bytes(), sig)
	if err != nil {
		t.Fatalf("SigToPub() error = %v", err)
	}
	if got := crypto.PubkeyToAddress(*pub); got != signer.Address() {
		t.Errorf("recovered %s, want %s", got.Hex(), signer.Address().Hex())
	}
}

func TestSignedOrderWireForm(t *testing.T) {
	signer, err := NewPrivateKeySigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewPrivateKeySigner() error = %v", err)
	}
	domain := OrderDomain(types.ChainBNBMainnet,
		common.HexToAddress("0x8BC070BEdAB741406F4B1Eb65A72bee27894B689"))

	signed, err := SignOrder(context.Background(), signer, domain, baseOrder())
	if err != nil {
		t.Fatalf("SignOrder() error = %v", err)
	}
	if signed.MakerAmount != "50000000000000000000" {
		t.Errorf("makerAmount = %q, want decimal string", signed.MakerAmount)
	}
	if signed.Side != 0 {
		t.Errorf("side = %d, want 0 for BUY", signed.Side)
	}
	if signed.SignatureType != 0 {
		t.Errorf("signatureType = %d, want 0 for EOA", signed.SignatureType)
	}
}
