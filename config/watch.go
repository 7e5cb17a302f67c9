package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// HotReloadConfig 热更新配置
type HotReloadConfig struct {
	Enabled      bool
	CooldownTime time.Duration // 冷却时间，避免编辑器连续写触发多次重载
}

// DefaultHotReloadConfig 默认热更新配置
func DefaultHotReloadConfig() HotReloadConfig {
	return HotReloadConfig{
		Enabled:      true,
		CooldownTime: 5 * time.Second,
	}
}

// HotReloader 监听配置文件变化并回调最新配置。
// 解析或校验失败的新配置会被丢弃，继续使用旧配置。
type HotReloader struct {
	cfg        HotReloadConfig
	configPath string
	watcher    *fsnotify.Watcher

	mu         sync.Mutex
	lastReload time.Time
	onReload   func(AppConfig)
}

// NewHotReloader 创建热更新器
func NewHotReloader(configPath string, cfg HotReloadConfig) (*HotReloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &HotReloader{
		cfg:        cfg,
		configPath: configPath,
		watcher:    watcher,
	}, nil
}

// SetReloadHandler 设置重载回调
func (h *HotReloader) SetReloadHandler(fn func(AppConfig)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = fn
}

// Start 启动监听，ctx 结束后自动关闭。
func (h *HotReloader) Start(ctx context.Context) error {
	if !h.cfg.Enabled {
		return h.watcher.Close()
	}
	if err := h.watcher.Add(h.configPath); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	go h.loop(ctx)
	return nil
}

func (h *HotReloader) loop(ctx context.Context) {
	defer h.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.maybeReload()
		case _, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (h *HotReloader) maybeReload() {
	h.mu.Lock()
	if time.Since(h.lastReload) < h.cfg.CooldownTime {
		h.mu.Unlock()
		return
	}
	h.lastReload = time.Now()
	fn := h.onReload
	h.mu.Unlock()

	cfg, err := LoadWithEnvOverrides(h.configPath)
	if err != nil {
		return
	}
	if fn != nil {
		fn(cfg)
	}
}
