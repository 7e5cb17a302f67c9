package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curve-limit-agent/config"
	"curve-limit-agent/gateway"
	"curve-limit-agent/infrastructure/logger"
	"curve-limit-agent/market"
)

// pricewatch 独立的价格观测工具：周期性采样池子汇率并输出统计。
func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "配置文件路径")
		duration   = flag.Duration("duration", time.Minute, "观测时长，0 表示直到 Ctrl-C")
		interval   = flag.Duration("interval", 2*time.Second, "采样间隔")
		target     = flag.Float64("target", 0, "目标汇率，>0 时报告是否达标")
		probe      = flag.Uint64("probe", 1000000, "采样用的输入数量")
	)
	flag.Parse()

	cfg, err := config.LoadWithEnvOverrides(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpc := gateway.NewRPCClient(cfg.RPC.URL, gateway.NewTokenBucket(cfg.RPC.RateLimit, cfg.RPC.Burst))
	pool := gateway.NewPoolClient(rpc, gateway.PoolOptions{
		Log:         log,
		MockPricing: cfg.RPC.MockPricing,
		MockRate:    cfg.RPC.MockRate,
	})

	if cfg.Feed.URL != "" {
		feed := gateway.NewQuoteFeed(cfg.Feed.URL, log)
		go func() { _ = feed.Run(ctx) }()
		go func() {
			for u := range feed.Updates {
				log.WithFields(map[string]interface{}{
					"pool":   u.Pool,
					"output": u.Output,
				}).Debug("feed update")
			}
		}()
	}

	quote := func(ctx context.Context, amount uint64) (uint64, error) {
		return pool.Quote(ctx, cfg.Pool.Address, cfg.Pool.InputIndex, cfg.Pool.OutputIndex, amount)
	}
	mon := market.NewPriceMonitor(quote, *probe, log)
	mon.Run(ctx, *duration, *interval)

	s := mon.Snapshot()
	fmt.Printf("samples=%d min=%.6f max=%.6f avg=%.6f vol=%.6f\n",
		s.Count, s.Min, s.Max, s.Avg, s.Volatility)
	if *target > 0 {
		if mon.AboveTarget(*target) {
			fmt.Printf("target %.6f met\n", *target)
		} else {
			fmt.Printf("target %.6f not met\n", *target)
		}
	}
}
