package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/dartwatch/dartwatch/internal/dart"
	"github.com/dartwatch/dartwatch/internal/fetcher"
	"github.com/dartwatch/dartwatch/internal/market"
	"github.com/dartwatch/dartwatch/internal/model"
	"github.com/dartwatch/dartwatch/internal/notify"
	"github.com/dartwatch/dartwatch/internal/pipeline"
	"github.com/dartwatch/dartwatch/internal/scorer"
	"github.com/dartwatch/dartwatch/internal/store"
)

// initPipeline builds the pipeline and its store from the loaded config. The
// caller owns the returned store and must Close it.
func initPipeline(ctx context.Context, dryRun bool, onAlert func(model.Alert)) (*pipeline.Pipeline, store.SeenStore, error) {
	if err := cfg.Validate(dryRun); err != nil {
		return nil, nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, eris.Wrap(err, "init store")
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:      time.Duration(cfg.DART.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	client := dart.NewClient(f, dart.Options{
		APIKey:    cfg.DART.APIKey,
		BaseURL:   cfg.DART.BaseURL,
		ViewerURL: cfg.DART.ViewerURL,
		Markets:   cfg.Filter.Markets,
	})

	var lookup market.Lookup
	if cfg.Market.Enabled {
		lookup = market.NewNaverLookup(f, cfg.Market.BaseURL)
	}

	var notifier notify.Notifier
	if !dryRun {
		notifier = notify.NewTelegram(f, notify.Options{
			BaseURL:    cfg.Telegram.BaseURL,
			BotToken:   cfg.Telegram.BotToken,
			ChatID:     cfg.Telegram.ChatID,
			MaxRetries: cfg.Notify.MaxRetries,
		})
	}

	p := pipeline.New(pipeline.Options{
		Dart:     client,
		Store:    st,
		Scorer:   scorer.New(cfg.Scorer),
		Notifier: notifier,
		Market:   lookup,
		Config:   cfg,
		DryRun:   dryRun,
		OnAlert:  onAlert,
	})
	return p, st, nil
}

// dateRange resolves the scan window. Explicit flags win; otherwise the
// window is today minus the configured lookback through today.
func dateRange(from, to string) (string, string) {
	now := time.Now()
	if to == "" {
		to = now.Format("20060102")
	}
	if from == "" {
		lookback := cfg.Filter.LookbackDays
		if lookback < 0 {
			lookback = 0
		}
		from = now.AddDate(0, 0, -lookback).Format("20060102")
	}
	return from, to
}
