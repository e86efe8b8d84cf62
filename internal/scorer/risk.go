package scorer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dartwatch/dartwatch/internal/config"
	"github.com/dartwatch/dartwatch/internal/extract"
	"github.com/dartwatch/dartwatch/internal/model"
)

// Participation captures whether the largest shareholder is stated to take
// part in the offering.
type Participation string

const (
	ParticipationUnknown Participation = "unknown"
	Participating        Participation = "participating"
	Abstaining           Participation = "abstaining"
)

var (
	majorHolder    = regexp.MustCompile(`(최대주주|대주주)`)
	participateExp = regexp.MustCompile(`(최대주주|대주주)[^\n]{0,40}(참여|청약\s*예정|배정.?수량\s*청약)`)
	abstainExp     = regexp.MustCompile(`(최대주주|대주주)[^\n]{0,40}(불참|미참여|청약하지)`)
)

// DetectParticipation scans the filing text for a largest-shareholder
// participation statement. Abstention wording wins over participation
// wording when both appear, since "참여" also occurs inside negated phrases.
func DetectParticipation(text string) Participation {
	if text == "" || !majorHolder.MatchString(text) {
		return ParticipationUnknown
	}
	if abstainExp.MatchString(text) {
		return Abstaining
	}
	if participateExp.MatchString(text) {
		return Participating
	}
	return ParticipationUnknown
}

// Input is everything the risk scorer looks at. Quote may be nil when market
// data is unavailable; the ratio and discount adjustments are then skipped.
type Input struct {
	Type          model.FilingType
	Allocation    model.AllocationType
	Market        model.Market
	Fields        model.Fields
	RaiseAmount   int64
	Participation Participation
	Quote         *model.Quote
}

// RiskScorer maps filing facts to a 0-100 score and tier.
type RiskScorer struct {
	cfg config.ScorerConfig
}

// New creates a RiskScorer; zero-valued config fields fall back to defaults.
func New(cfg config.ScorerConfig) *RiskScorer {
	return &RiskScorer{cfg: withDefaults(cfg)}
}

// Score is a pure function of its input: recomputed each run, never
// persisted, never compared against a prior value.
func (s *RiskScorer) Score(in Input) model.RiskAssessment {
	cfg := s.cfg
	score := cfg.Base
	var factors []string

	add := func(w int, format string, args ...any) {
		if w == 0 {
			return
		}
		score += w
		factors = append(factors, fmt.Sprintf("%s (%+d)", fmt.Sprintf(format, args...), w))
	}

	switch in.Type {
	case model.FilingPaidIn:
		add(cfg.PaidInWeight, "paid-in issue")
	case model.FilingCombined:
		add(cfg.CombinedWeight, "combined paid-in and bonus issue")
	}

	switch in.Market {
	case model.MarketKOSDAQ:
		add(cfg.KOSDAQWeight, "KOSDAQ listing")
	case model.MarketKONEX:
		add(cfg.KONEXWeight, "KONEX listing")
	}

	if purpose, ok := in.Fields.Get(model.FieldFundingPurpose); ok {
		switch {
		case strings.Contains(purpose, "채무상환"):
			add(cfg.DebtRepayWeight, "debt repayment purpose")
		case strings.Contains(purpose, "운영자금"):
			add(cfg.WorkingCapitalWeight, "working capital purpose")
		case strings.Contains(purpose, "시설"):
			add(cfg.FacilityWeight, "facility investment purpose")
		}
	}

	if in.Quote != nil && in.Quote.MarketCap > 0 && in.RaiseAmount > 0 {
		ratio := float64(in.RaiseAmount) / float64(in.Quote.MarketCap)
		if w := bucketWeight(cfg.RaiseRatioBuckets, ratio); w != 0 {
			add(w, "raise is %.0f%% of market cap", ratio*100)
		}
	}

	if in.Quote != nil && in.Quote.Price > 0 {
		if offer, ok := in.Fields.Get(model.FieldOfferPrice); ok {
			if price := extract.ParseAmount(offer); price > 0 && price < in.Quote.Price {
				discount := 1 - float64(price)/float64(in.Quote.Price)
				if w := bucketWeight(cfg.DiscountBuckets, discount); w != 0 {
					add(w, "offer priced %.0f%% below market", discount*100)
				}
			}
		}
	}

	switch in.Participation {
	case Participating:
		add(cfg.ParticipationWeight, "largest shareholder participating")
	case Abstaining:
		add(cfg.AbstentionWeight, "largest shareholder abstaining")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return model.RiskAssessment{
		Score:   score,
		Tier:    s.tierOf(score),
		Factors: factors,
	}
}

// bucketWeight returns the weight of the highest threshold the ratio meets.
// Buckets are ordered highest threshold first.
func bucketWeight(buckets []config.RatioBucket, ratio float64) int {
	for _, b := range buckets {
		if ratio >= b.Threshold {
			return b.Weight
		}
	}
	return 0
}

func (s *RiskScorer) tierOf(score int) model.RiskTier {
	switch {
	case score < s.cfg.MidCutoff:
		return model.TierLow
	case score < s.cfg.HighCutoff:
		return model.TierMid
	default:
		return model.TierHigh
	}
}
