package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/perpsign/params"
	"github.com/uhyunpark/perpsign/pkg/codec"
	"github.com/uhyunpark/perpsign/pkg/crypto"
	"github.com/uhyunpark/perpsign/pkg/intent"
	"github.com/uhyunpark/perpsign/pkg/util"
	"github.com/uhyunpark/perpsign/pkg/venue"
)

func main() {
	cfg := params.LoadFromEnv("")

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Log.File != "" {
		logger, err = util.NewLoggerWithFile(cfg.Log.Level, cfg.Log.File)
	} else {
		logger, err = util.NewLogger(cfg.Log.Level)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := runEVM(cfg.EVM, logger); err != nil {
		sugar.Errorw("evm signing failed", "err", err)
		os.Exit(1)
	}
	if err := runIntent(context.Background(), cfg.Intent, logger); err != nil {
		sugar.Errorw("intent signing failed", "err", err)
		os.Exit(1)
	}
}

func runEVM(cfg params.EVM, logger *zap.Logger) error {
	key, err := loadECDSAKey(cfg.PrivateKey, logger)
	if err != nil {
		return err
	}
	v, err := venue.NewEVMVenue(cfg, key, venue.WithLogger(logger))
	if err != nil {
		return err
	}

	onboarding, err := v.SignOnboarding()
	if err != nil {
		return err
	}
	printJSON("EVM onboarding", onboarding)

	price, err := codec.ToWeiString("price", "1601")
	if err != nil {
		return err
	}
	qty, err := codec.ToWeiString("quantity", "0.01")
	if err != nil {
		return err
	}
	lev, err := codec.ToWeiString("leverage", "20")
	if err != nil {
		return err
	}

	order, err := v.NewOrder(true, price, qty, lev, 30*24*time.Hour)
	if err != nil {
		return err
	}
	signed, err := v.SignOrder(order)
	if err != nil {
		return err
	}
	if err := v.Verify(signed); err != nil {
		return err
	}
	printJSON("EVM order", struct {
		Order  any `json:"order"`
		Signed any `json:"signed"`
	}{order, signed})

	typed, err := v.Encoder().TypedDataJSON(order)
	if err != nil {
		return err
	}
	fmt.Printf("EVM typed data (eth_signTypedData_v4):\n%s\n\n", typed)

	cancel, err := v.SignCancel(signed.Hash)
	if err != nil {
		return err
	}
	printJSON("EVM cancel", cancel)
	return nil
}

func runIntent(ctx context.Context, cfg params.Intent, logger *zap.Logger) error {
	key, err := loadEd25519Key(cfg.PrivateKey, logger)
	if err != nil {
		return err
	}
	v, err := venue.NewIntentVenueFromConfig(cfg, key, venue.WithLogger(logger))
	if err != nil {
		return err
	}

	onboarding, err := v.SignOnboarding()
	if err != nil {
		return err
	}
	printJSON("Intent onboarding", onboarding)

	markets, err := intent.ParseMarkets(cfg.Markets)
	if err != nil {
		return err
	}
	if len(markets) == 0 {
		logger.Sugar().Infow("no markets configured, skipping intent order", "env", "INTENT_MARKETS")
		return nil
	}

	qty, err := codec.ToWeiString("quantity", "0.01")
	if err != nil {
		return err
	}
	lev, err := codec.ToWeiString("leverage", "3")
	if err != nil {
		return err
	}
	order, err := v.NewOrder(markets[0].Symbol, true, intent.OrderTypeMarket, "0", qty, lev, 30*24*time.Hour)
	if err != nil {
		return err
	}
	req, signed, err := v.OrderRequest(ctx, order)
	if err != nil {
		return err
	}
	printJSON("Intent order request", req)

	cancel, err := v.CancelRequest(order.Market, signed.Hash)
	if err != nil {
		return err
	}
	printJSON("Intent cancel request", cancel)
	return nil
}

func loadECDSAKey(hexKey string, logger *zap.Logger) (*crypto.ECDSAKey, error) {
	if hexKey != "" {
		return crypto.ECDSAKeyFromHex(hexKey)
	}
	key, err := crypto.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}
	logger.Sugar().Warnw("EVM_PRIVATE_KEY not set, using a throwaway key", "address", key.Address())
	return key, nil
}

func loadEd25519Key(hexSeed string, logger *zap.Logger) (*crypto.Ed25519Key, error) {
	if hexSeed != "" {
		return crypto.Ed25519KeyFromHex(hexSeed)
	}
	key, err := crypto.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	logger.Sugar().Warnw("ED25519_PRIVATE_KEY not set, using a throwaway key", "address", key.Address())
	return key, nil
}

func printJSON(title string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: marshal: %v\n", title, err)
		return
	}
	fmt.Printf("%s:\n%s\n\n", title, b)
}
