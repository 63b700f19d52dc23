// Package client implements the predict.fun order construction, signing and
// reconciliation engine: canonical order building, EIP-712 digest production,
// REST submission, approval gating, order reconciliation against the remote
// book, and redemption-history recovery from chain logs.
package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/predictbet/gopredict/pkg/logger"
	"github.com/predictbet/gopredict/pkg/ratelimit"
	"github.com/predictbet/gopredict/predict/history"
	"github.com/predictbet/gopredict/predict/signing"
	"github.com/predictbet/gopredict/predict/types"
)

// Config wires a Client. Signer is required; RPCURL is only needed for the
// approval gate and the redemption scanner. Stores are injected, never
// ambient.
type Config struct {
	Network types.Network
	BaseURL string // optional override of the network default
	APIKey  string // required on mainnet
	RPCURL  string

	Signer      signing.Signer
	Orders      *history.OrderHistory
	Redemptions *history.RedemptionHistory

	// Scanner tuning; zero values take the defaults (90 days, 9 999 blocks).
	ScanLookbackDays  int
	ScanMaxBlockRange uint64
}

// Client is the engine facade. All methods are safe for concurrent use; the
// two local caches are the only mutable state and each has a single logical
// writer.
type Client struct {
	http      *resty.Client
	eth       *ethclient.Client
	network   types.Network
	contracts *ContractConfig
	signer    signing.Signer
	builder   *OrderBuilder
	gate      *ApprovalGate
	scanner   *RedemptionScanner
	limiter   *ratelimit.TokenBucket
	apiKey    string

	orders      *history.OrderHistory
	redemptions *history.RedemptionHistory

	jwtMu     sync.RWMutex
	jwtToken  string
	jwtExpiry time.Time

	log *logrus.Entry
}

// New builds a Client for one network.
func New(cfg Config) (*Client, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("client: signer is required")
	}
	contracts, err := ContractsFor(cfg.Network.Chain())
	if err != nil {
		return nil, err
	}
	if cfg.Network.RequiresAPIKey() && cfg.APIKey == "" {
		return nil, fmt.Errorf("client: %s requires an API key", cfg.Network)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cfg.Network.BaseURL()
	}

	c := &Client{
		http:        newRestyClient(baseURL),
		network:     cfg.Network,
		contracts:   contracts,
		signer:      cfg.Signer,
		builder:     NewOrderBuilder(cfg.Network.Chain(), cfg.Signer.Address()),
		limiter:     ratelimit.NewTokenBucket(10, 5),
		apiKey:      cfg.APIKey,
		orders:      cfg.Orders,
		redemptions: cfg.Redemptions,
		log:         logger.WithComponent("predict_client"),
	}

	if cfg.RPCURL != "" {
		eth, err := ethclient.Dial(cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial rpc: %w", err)
		}
		c.eth = eth
		c.gate = NewApprovalGate(eth, cfg.Network.Chain(), contracts, cfg.Signer)
		c.scanner = NewRedemptionScanner(eth, cfg.Network.Chain(), contracts, ScanConfig{
			LookbackDays:  cfg.ScanLookbackDays,
			MaxBlockRange: cfg.ScanMaxBlockRange,
		})
	}
	return c, nil
}

// Builder exposes the order builder for callers that sign externally.
func (c *Client) Builder() *OrderBuilder {
	return c.builder
}

// Approvals returns the approval gate, or nil when no RPC URL was configured.
func (c *Client) Approvals() *ApprovalGate {
	return c.gate
}

// Scanner returns the redemption scanner, or nil when no RPC URL was
// configured.
func (c *Client) Scanner() *RedemptionScanner {
	return c.scanner
}

// Contracts returns the chain's deployment table.
func (c *Client) Contracts() *ContractConfig {
	return c.contracts
}

func (c *Client) currentJWT() string {
	c.jwtMu.RLock()
	defer c.jwtMu.RUnlock()
	if c.jwtToken == "" || time.Now().After(c.jwtExpiry) {
		return ""
	}
	return c.jwtToken
}

func (c *Client) setJWT(token string, expiry time.Time) {
	c.jwtMu.Lock()
	c.jwtToken = token
	c.jwtExpiry = expiry
	c.jwtMu.Unlock()
}
