package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/five82/logview/internal/config"
	"github.com/five82/logview/internal/logging"
	"github.com/five82/logview/internal/logtail"
	"github.com/five82/logview/internal/prefs"
	"github.com/five82/logview/internal/rules"
	"github.com/five82/logview/internal/state"
	"github.com/five82/logview/internal/ui"
	"github.com/five82/logview/internal/watcher"
)

// Options configure the logview application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/logview/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	Encoding   string // overrides the configured default encoding
	LogPath    string // overrides the configured log file
	Debug      bool
	Files      []string
}

// Run boots the logview TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogPath != "" {
		cfg.LogPath = opts.LogPath
	}

	logger, closeLog, err := logging.Open(cfg.LogPath, cfg.Debug || opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("preferences unreadable, using defaults", "error", err)
	}

	encodingName := cfg.Encoding
	if opts.Encoding != "" {
		encodingName = opts.Encoding
	}
	_, encodingName, err = logtail.LookupEncoding(encodingName)
	if err != nil {
		return err
	}

	palette, err := rules.NewPalette(cfg.Palette)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}
	ruleSet, err := rules.Load(cfg.RulesPath, palette)
	if err != nil {
		return err
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	store := state.NewStore(cfg.MaxBufferBytes)

	var changes <-chan struct{}
	var follower *Follower
	wcfg := watcher.DefaultConfig()
	wcfg.Logger = logger
	w, err := watcher.New(wcfg)
	if err != nil {
		logger.Warn("file watcher unavailable, polling only", "error", err)
		follower = NewFollower(store, nil, logger, interval, cfg.TailLines)
	} else {
		defer func() { _ = w.Stop() }()
		changes = w.Start()
		follower = NewFollower(store, w, logger, interval, cfg.TailLines)
	}

	files := opts.Files
	if len(files) == 0 {
		files = userPrefs.Files
	}
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			logger.Warn("skipping file", "path", path, "error", err)
			continue
		}
		follower.Follow(abs, encodingName)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Do initial refresh to populate store before UI starts
	follower.refresh()
	go follower.Run(runCtx, changes)

	logger.Info("starting", "files", len(files), "rules", ruleSet.Len(), "palette", palette.Name())

	uiOpts := ui.Options{
		Context:   runCtx,
		Store:     store,
		Files:     follower,
		Rules:     ruleSet,
		RulesPath: cfg.RulesPath,
		Logger:    logger.With(slog.String("component", "ui")),
		Encoding:  encodingName,
		PollTick:  min(interval, 250*time.Millisecond),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
