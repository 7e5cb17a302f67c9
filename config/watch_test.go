package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestHotReloaderPicksUpWrite(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	h, err := NewHotReloader(path, HotReloadConfig{Enabled: true, CooldownTime: time.Millisecond})
	if err != nil {
		t.Fatalf("new reloader: %v", err)
	}

	got := make(chan AppConfig, 1)
	h.SetReloadHandler(func(cfg AppConfig) {
		select {
		case got <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := h.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	updated := validYAML + "\nmetrics:\n  addr: \":9100\"\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-got:
		if cfg.Metrics.Addr != ":9100" {
			t.Errorf("Expected reloaded metrics addr, got %q", cfg.Metrics.Addr)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("reload callback not invoked")
	}
}

func TestHotReloaderDropsInvalidConfig(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	h, err := NewHotReloader(path, HotReloadConfig{Enabled: true, CooldownTime: time.Millisecond})
	if err != nil {
		t.Fatalf("new reloader: %v", err)
	}

	called := make(chan struct{}, 1)
	h.SetReloadHandler(func(AppConfig) {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := h.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := os.WriteFile(path, []byte("env: \n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-called:
		t.Fatalf("invalid config must not reach handler")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestHotReloaderDisabled(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	h, err := NewHotReloader(path, HotReloadConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new reloader: %v", err)
	}
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("disabled start: %v", err)
	}
}
