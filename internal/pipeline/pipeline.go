// Package pipeline wires the listing client, classifiers, scorer, dedup
// store and notifier into one run.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dartwatch/dartwatch/internal/classify"
	"github.com/dartwatch/dartwatch/internal/config"
	"github.com/dartwatch/dartwatch/internal/extract"
	"github.com/dartwatch/dartwatch/internal/market"
	"github.com/dartwatch/dartwatch/internal/model"
	"github.com/dartwatch/dartwatch/internal/notify"
	"github.com/dartwatch/dartwatch/internal/scorer"
	"github.com/dartwatch/dartwatch/internal/store"
)

// DartClient is the listing and document source.
type DartClient interface {
	ListFilings(ctx context.Context, from, to string) ([]model.FilingSummary, error)
	FetchDocument(ctx context.Context, filingID string) model.FilingDocument
	ViewerHTML(ctx context.Context, filingID string) string
	ViewerURL(filingID string) string
}

// Pipeline runs the monitor end to end. One instance per process; runs are
// sequential, never concurrent.
type Pipeline struct {
	dart     DartClient
	store    store.SeenStore
	scorer   *scorer.RiskScorer
	notifier notify.Notifier
	market   market.Lookup
	cfg      *config.Config

	dryRun  bool
	onAlert func(model.Alert)
}

// Options assembles a Pipeline. Market may be nil (treated as disabled).
// OnAlert, when set, observes every accepted alert; the scan command uses it
// for its table output.
type Options struct {
	Dart     DartClient
	Store    store.SeenStore
	Scorer   *scorer.RiskScorer
	Notifier notify.Notifier
	Market   market.Lookup
	Config   *config.Config
	DryRun   bool
	OnAlert  func(model.Alert)
}

// New assembles a Pipeline from its parts.
func New(opts Options) *Pipeline {
	m := opts.Market
	if m == nil {
		m = market.Disabled{}
	}
	return &Pipeline{
		dart:     opts.Dart,
		store:    opts.Store,
		scorer:   opts.Scorer,
		notifier: opts.Notifier,
		market:   m,
		cfg:      opts.Config,
		dryRun:   opts.DryRun,
		onAlert:  opts.OnAlert,
	}
}

// Run processes the inclusive date range (YYYYMMDD). A listing failure aborts
// the whole run with nothing marked seen; every later stage is per-filing.
// Rerunning over the same upstream data sends nothing.
func (p *Pipeline) Run(ctx context.Context, from, to string) (model.RunSummary, error) {
	sum := model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := zap.L().With(zap.String("run_id", sum.RunID))

	filings, err := p.dart.ListFilings(ctx, from, to)
	if err != nil {
		return sum, eris.Wrap(err, "pipeline: list filings")
	}
	sum.Fetched = len(filings)
	log.Info("listing fetched",
		zap.String("from", from), zap.String("to", to), zap.Int("filings", len(filings)))

	// Oldest first so alerts arrive in disclosure order.
	sort.SliceStable(filings, func(i, j int) bool {
		return filings[i].ReceivedDate < filings[j].ReceivedDate
	})

	var alerts []model.Alert
	for _, f := range filings {
		if err := ctx.Err(); err != nil {
			return sum, eris.Wrap(err, "pipeline: canceled")
		}

		seen, err := p.store.Has(ctx, f.FilingID)
		if err != nil {
			return sum, eris.Wrap(err, "pipeline: seen check")
		}
		if seen {
			sum.Seen++
			continue
		}

		alert, accepted := p.evaluate(ctx, log, f)
		if !accepted {
			sum.Excluded++
			if err := p.markSeen(ctx, f.FilingID); err != nil {
				return sum, err
			}
			continue
		}
		sum.Considered++
		if p.onAlert != nil {
			p.onAlert(alert)
		}
		alerts = append(alerts, alert)
	}

	p.deliver(ctx, log, alerts, &sum)

	if !p.dryRun {
		if err := p.store.Save(ctx); err != nil {
			return sum, eris.Wrap(err, "pipeline: save store")
		}
	}

	log.Info("run complete",
		zap.Int("fetched", sum.Fetched),
		zap.Int("considered", sum.Considered),
		zap.Int("excluded", sum.Excluded),
		zap.Int("sent", sum.Sent),
		zap.Int("send_errors", sum.SendErrors),
		zap.Int("already_seen", sum.Seen))
	return sum, nil
}

// evaluate runs one filing through the gates and, when accepted, assembles
// its alert.
func (p *Pipeline) evaluate(ctx context.Context, log *zap.Logger, f model.FilingSummary) (model.Alert, bool) {
	log = log.With(zap.String("filing_id", f.FilingID), zap.String("company", f.CompanyName))

	verdict := classify.Title(f.Title)
	if !verdict.Consider {
		log.Debug("rejected by title", zap.String("reason", verdict.Reason))
		return model.Alert{}, false
	}

	doc := p.dart.FetchDocument(ctx, f.FilingID)
	viewerText := ""
	if doc.RawText == "" && p.cfg.Filter.DocFailPolicy == config.PolicyLenient {
		viewerText = p.dart.ViewerHTML(ctx, f.FilingID)
	}

	scope := classify.Scope(f.Title, doc.RawText, viewerText, p.cfg.Filter.DocFailPolicy)
	if !scope.Include {
		log.Debug("excluded by scope", zap.String("reason", scope.Reason))
		return model.Alert{}, false
	}

	fields := extract.Extract(doc.RawText)
	raise := extract.RaiseAmount(doc.RawText)
	if min := p.cfg.Filter.MinRaiseAmount; min > 0 && raise > 0 && raise < min {
		log.Debug("below minimum raise", zap.Int64("raise", raise), zap.Int64("min", min))
		return model.Alert{}, false
	}

	var quote *model.Quote
	if q, err := p.market.Quote(ctx, f.CompanyName); err == nil {
		quote = q
	} else if !errors.Is(err, market.ErrUnavailable) {
		log.Warn("market lookup failed", zap.Error(err))
	}

	alloc := classify.Allocation(f.Title, doc.RawText)
	risk := p.scorer.Score(scorer.Input{
		Type:          verdict.Type,
		Allocation:    alloc,
		Market:        f.Market,
		Fields:        fields,
		RaiseAmount:   raise,
		Participation: scorer.DetectParticipation(doc.RawText),
		Quote:         quote,
	})

	return model.Alert{
		Filing:     f,
		Type:       verdict.Type,
		Allocation: alloc,
		Fields:     fields,
		Risk:       risk,
		ViewerURL:  p.dart.ViewerURL(f.FilingID),
	}, true
}

// deliver groups accepted alerts per company and received date, sends one
// card per group, and marks every member seen whether or not the send
// succeeded.
func (p *Pipeline) deliver(ctx context.Context, log *zap.Logger, alerts []model.Alert, sum *model.RunSummary) {
	for _, group := range groupAlerts(alerts) {
		if p.dryRun {
			continue
		}

		card := BuildCard(group)
		if err := p.notifier.Send(ctx, card); err != nil {
			sum.SendErrors++
			log.Error("send failed, marking seen anyway",
				zap.String("company", group[0].Filing.CompanyName), zap.Error(err))
		} else {
			sum.Sent++
		}

		for _, a := range group {
			if err := p.markSeen(ctx, a.Filing.FilingID); err != nil {
				log.Error("mark seen failed", zap.Error(err))
			}
		}
	}
}

func (p *Pipeline) markSeen(ctx context.Context, filingID string) error {
	if p.dryRun {
		return nil
	}
	return eris.Wrap(p.store.Add(ctx, filingID), "pipeline: mark seen")
}

// groupAlerts buckets alerts by company and received date, preserving the
// processing order of both groups and members.
func groupAlerts(alerts []model.Alert) [][]model.Alert {
	type key struct{ company, date string }
	index := make(map[key]int)
	var groups [][]model.Alert
	for _, a := range alerts {
		k := key{a.Filing.CompanyName, a.Filing.ReceivedDate}
		if i, ok := index[k]; ok {
			groups[i] = append(groups[i], a)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, []model.Alert{a})
	}
	return groups
}
