package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/predictbet/gopredict/pkg/config"
	"github.com/predictbet/gopredict/pkg/logger"
	"github.com/predictbet/gopredict/pkg/store"
	"github.com/predictbet/gopredict/predict/client"
	"github.com/predictbet/gopredict/predict/history"
	"github.com/predictbet/gopredict/predict/signing"
	"github.com/predictbet/gopredict/predict/types"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		marketID   = flag.Int64("market", 0, "market id to trade")
		side       = flag.String("side", "BUY", "BUY or SELL")
		outcome    = flag.String("outcome", "YES", "YES or NO")
		price      = flag.String("price", "", "limit price per share, e.g. 0.55")
		size       = flag.String("size", "", "number of shares, e.g. 100")
		market     = flag.Bool("market-order", false, "submit as a market order")
		reconcile  = flag.Bool("reconcile", false, "print the reconciled order view and exit")
		cancel     = flag.String("cancel", "", "order hash to cancel and exit")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("[Trader] No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Trader] Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("[Trader] Failed to init logger: %v", err)
	}

	db, err := store.Open(store.Options{Path: cfg.StorePath})
	if err != nil {
		log.Fatalf("[Trader] Failed to open store: %v", err)
	}
	defer db.Close()

	signer, err := signing.NewPrivateKeySigner(cfg.Wallet.PrivateKey)
	if err != nil {
		log.Fatalf("[Trader] Failed to load private key: %v", err)
	}

	c, err := client.New(client.Config{
		Network:           cfg.NetworkType(),
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		RPCURL:            cfg.RPCURL,
		Signer:            signer,
		Orders:            history.NewOrderHistory(db),
		Redemptions:       history.NewRedemptionHistory(db),
		ScanLookbackDays:  cfg.Scan.LookbackDays,
		ScanMaxBlockRange: cfg.Scan.MaxBlockRange,
	})
	if err != nil {
		log.Fatalf("[Trader] Failed to create client: %v", err)
	}

	ctx := context.Background()
	if err := c.Authenticate(ctx); err != nil {
		log.Fatalf("[Trader] Authentication failed: %v", err)
	}

	switch {
	case *reconcile:
		orders, err := c.ReconcileOrders(ctx)
		if err != nil {
			log.Fatalf("[Trader] Reconcile failed: %v", err)
		}
		printJSON(orders)

	case *cancel != "":
		cancelled, err := c.CancelOrders(ctx, []string{*cancel})
		if err != nil {
			log.Fatalf("[Trader] Cancel failed: %v", err)
		}
		log.Printf("[Trader] Cancelled %d order(s)", len(cancelled))

	default:
		if *marketID == 0 || *price == "" || *size == "" {
			flag.Usage()
			os.Exit(2)
		}
		mkt, err := c.GetMarket(ctx, *marketID)
		if err != nil {
			log.Fatalf("[Trader] Failed to fetch market %d: %v", *marketID, err)
		}
		strategy := types.StrategyLimit
		if *market {
			strategy = types.StrategyMarket
		}
		signed, err := c.PlaceOrder(ctx, client.OrderIntent{
			Market:   mkt,
			Side:     types.Side(*side),
			Outcome:  types.Outcome(*outcome),
			Price:    *price,
			Size:     *size,
			Strategy: strategy,
		})
		if err != nil {
			log.Fatalf("[Trader] Order rejected: %v", err)
		}
		log.Printf("[Trader] Order accepted: hash=%s", signed.Hash)
	}
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("[Trader] Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}
