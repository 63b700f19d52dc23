package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"

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
	configPath := flag.String("config", "config.yaml", "path to config file")
	redeemID := flag.String("redeem", "", "position id to redeem before scanning")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("[Redemptions] No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Redemptions] Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("[Redemptions] Failed to init logger: %v", err)
	}
	if cfg.RPCURL == "" {
		log.Fatal("[Redemptions] rpc_url is required for log scanning")
	}

	db, err := store.Open(store.Options{Path: cfg.StorePath})
	if err != nil {
		log.Fatalf("[Redemptions] Failed to open store: %v", err)
	}
	defer db.Close()

	signer, err := signing.NewPrivateKeySigner(cfg.Wallet.PrivateKey)
	if err != nil {
		log.Fatalf("[Redemptions] Failed to load private key: %v", err)
	}

	c, err := client.New(client.Config{
		Network:           cfg.NetworkType(),
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		RPCURL:            cfg.RPCURL,
		Signer:            signer,
		Redemptions:       history.NewRedemptionHistory(db),
		ScanLookbackDays:  cfg.Scan.LookbackDays,
		ScanMaxBlockRange: cfg.Scan.MaxBlockRange,
	})
	if err != nil {
		log.Fatalf("[Redemptions] Failed to create client: %v", err)
	}

	ctx := context.Background()
	if *redeemID != "" {
		if err := redeemPosition(ctx, c, *redeemID); err != nil {
			log.Fatalf("[Redemptions] Redeem failed: %v", err)
		}
	}

	events, err := c.ScanRedemptions(ctx)
	if err != nil {
		if !errors.Is(err, types.ErrPartialScanFailure) {
			log.Fatalf("[Redemptions] Scan failed: %v", err)
		}
		log.Printf("[Redemptions] Scan incomplete: %v", err)
	}

	logEvents(events, signer)
}

func redeemPosition(ctx context.Context, c *client.Client, id string) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}
	positions, err := c.ListPositions(ctx)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		if pos.ID != id {
			continue
		}
		txHash, err := c.Redeem(ctx, pos)
		if err != nil {
			return err
		}
		log.Printf("[Redemptions] Redeem submitted: tx=%s", txHash.Hex())
		return nil
	}
	return fmt.Errorf("position %s not found", id)
}

func logEvents(events []types.RedemptionEvent, signer *signing.PrivateKeySigner) {
	log.Printf("[Redemptions] Found %d redemption(s) for %s", len(events), signer.Address().Hex())
	out, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		log.Fatalf("[Redemptions] Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}
