package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"curve-limit-agent/config"
	"curve-limit-agent/engine"
	"curve-limit-agent/gateway"
	"curve-limit-agent/infrastructure/alert"
	"curve-limit-agent/infrastructure/logger"
	"curve-limit-agent/journal"
	"curve-limit-agent/metrics"
	"curve-limit-agent/order"
	"curve-limit-agent/policy"
)

func main() {
	var (
		configPath    = flag.String("config", "configs/config.yaml", "配置文件路径")
		poolAddr      = flag.String("pool", "", "池地址，覆盖配置")
		inputToken    = flag.String("in", "", "输入 token，覆盖配置")
		outputToken   = flag.String("out", "", "输出 token，覆盖配置")
		amount        = flag.Uint64("amount", 0, "输入数量（最小单位）")
		tifFlag       = flag.String("tif", "GTC", "TIF 策略: GTC/GTT/IOC/FOK")
		limitPrice    = flag.Float64("limit", 0, "限价（output/input）")
		expiryMinutes = flag.Int("expiryMinutes", 0, "GTT 有效期（分钟），0 取默认")
		slippage      = flag.Float64("slippage", 0.005, "滑点容忍")
		metricsAddr   = flag.String("metricsAddr", "", "指标地址，覆盖配置")
		dryRun        = flag.Bool("dryRun", false, "结算不广播")
		mockPricing   = flag.Bool("mockPricing", false, "报价不走链上")
		maxChecks     = flag.Int("maxChecks", -1, "GTC 询价次数上限，-1 取配置")
	)
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *poolAddr != "" {
		cfg.Pool.Address = *poolAddr
	}
	if *inputToken != "" {
		cfg.Pool.InputToken = *inputToken
	}
	if *outputToken != "" {
		cfg.Pool.OutputToken = *outputToken
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *dryRun {
		cfg.RPC.DryRun = true
	}
	if *mockPricing {
		cfg.RPC.MockPricing = true
	}
	if *maxChecks >= 0 {
		cfg.Policy.MaxChecks = *maxChecks
	}

	logCfg := cfg.Logger
	if logCfg.Level == "" {
		logCfg = logger.DefaultConfig()
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	tif, ok := order.ParseTIF(*tifFlag)
	if !ok {
		log.Error("unknown TIF policy: " + *tifFlag)
		os.Exit(1)
	}

	metrics.StartMetricsServer(cfg.Metrics.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j, err := openJournal(cfg)
	if err != nil {
		log.LogError(err, map[string]interface{}{"op": "open_journal"})
		os.Exit(1)
	}
	defer j.Close()

	limiter := gateway.NewTokenBucket(cfg.RPC.RateLimit, cfg.RPC.Burst)
	rpc := gateway.NewRPCClient(cfg.RPC.URL, limiter)
	if cfg.RPC.TimeoutSeconds > 0 {
		rpc.HTTPClient.Timeout = time.Duration(cfg.RPC.TimeoutSeconds) * time.Second
	}
	poolOpts := gateway.PoolOptions{
		Log:         log,
		MockPricing: cfg.RPC.MockPricing,
		MockRate:    cfg.RPC.MockRate,
	}
	if !cfg.RPC.DryRun {
		// 交易签名在进程外完成，本进程只会 dry-run
		log.Warn("tx broadcasting unavailable, settlement runs in dry-run mode")
	}
	pool := gateway.NewPoolClient(rpc, poolOpts)

	alerts := alert.NewManager([]alert.Channel{alert.NewZapChannel("log", log)}, time.Minute)

	eng := engine.New(cfg.Policy.Runtime(), policy.Collaborators{
		Quotes: pool,
		Settle: pool,
		Log:    log,
	}, engine.Options{Log: log, Alerts: alerts, Journal: j})

	reloader, err := config.NewHotReloader(*configPath, config.DefaultHotReloadConfig())
	if err == nil {
		reloader.SetReloadHandler(func(newCfg config.AppConfig) {
			eng.UpdatePolicy(newCfg.Policy.Runtime())
			log.WithFields(map[string]interface{}{
				"pollIntervalMs": newCfg.Policy.PollIntervalMs,
				"maxChecks":      newCfg.Policy.MaxChecks,
			}).Info("config reloaded")
		})
		if err := reloader.Start(ctx); err != nil {
			log.LogError(err, map[string]interface{}{"op": "config_watch"})
		}
	}

	terms := order.Terms{
		InputToken:  cfg.Pool.InputToken,
		OutputToken: cfg.Pool.OutputToken,
		InputAmount: *amount,
		LimitPrice:  *limitPrice,
		Slippage:    *slippage,
		TIF:         tif,
		PoolAddress: cfg.Pool.Address,
		InputIndex:  cfg.Pool.InputIndex,
		OutputIndex: cfg.Pool.OutputIndex,
		Receiver:    cfg.Wallet.Receiver,
	}
	if tif == order.TIFGTT && *expiryMinutes > 0 {
		terms.Expiry = time.Now().Add(time.Duration(*expiryMinutes) * time.Minute)
	}

	id, err := eng.Place(terms)
	if err != nil {
		log.LogError(err, map[string]interface{}{"op": "place_order"})
		os.Exit(1)
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	eng.RunAll(ctx)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	o, _ := eng.Order(id)
	fmt.Printf("order %s: %s", o.ID, o.Status)
	if o.FailureReason != "" {
		fmt.Printf(" (%s)", o.FailureReason)
	}
	if o.TxHash != "" {
		fmt.Printf(" tx=%s received=%d", o.TxHash, o.ReceivedAmount)
	}
	fmt.Println()

	if o.Status == order.StatusFailed {
		os.Exit(1)
	}
}

func openJournal(cfg config.AppConfig) (journal.Journaler, error) {
	switch cfg.Journal.Driver {
	case "postgres":
		return journal.NewPostgres(cfg.Journal.DSN)
	default:
		return journal.NewMemory(), nil
	}
}
