// Package scorer computes the heuristic dilution-risk score for an accepted
// filing. All weights and thresholds are tunable configuration constants,
// not derived values; the tested property is monotonicity, not exact scores.
package scorer

import "github.com/dartwatch/dartwatch/internal/config"

// DefaultConfig returns the default scoring weights.
//
// Rationale baked into the defaults: paid-in increases dilute existing
// holders while bonus issues do not; smaller exchange tiers are less liquid;
// debt-repayment and working-capital funding purposes correlate with
// financial distress more than facility investment; a large raise relative
// to market cap and a deep discount both raise risk; participation of the
// largest shareholder signals confidence, abstention the opposite.
func DefaultConfig() config.ScorerConfig {
	return config.ScorerConfig{
		Base: 30,

		PaidInWeight:   15,
		CombinedWeight: 8,

		KOSDAQWeight: 8,
		KONEXWeight:  12,

		DebtRepayWeight:      12,
		WorkingCapitalWeight: 8,
		FacilityWeight:       -4,

		RaiseRatioBuckets: []config.RatioBucket{
			{Threshold: 0.50, Weight: 20},
			{Threshold: 0.30, Weight: 12},
			{Threshold: 0.10, Weight: 5},
		},
		DiscountBuckets: []config.RatioBucket{
			{Threshold: 0.25, Weight: 12},
			{Threshold: 0.15, Weight: 6},
		},

		ParticipationWeight: -10,
		AbstentionWeight:    10,

		MidCutoff:  35,
		HighCutoff: 65,
	}
}

// withDefaults backfills only the structural fields where zero is never a
// sensible operating value: the base score, the tier cutoffs and the ratio
// buckets. Weight fields are taken as given, so an explicit zero disables
// that adjustment; config.Load seeds the default weights for configs coming
// from file or environment.
func withDefaults(c config.ScorerConfig) config.ScorerConfig {
	d := DefaultConfig()
	if c.Base == 0 {
		c.Base = d.Base
	}
	if len(c.RaiseRatioBuckets) == 0 {
		c.RaiseRatioBuckets = d.RaiseRatioBuckets
	}
	if len(c.DiscountBuckets) == 0 {
		c.DiscountBuckets = d.DiscountBuckets
	}
	if c.MidCutoff == 0 {
		c.MidCutoff = d.MidCutoff
	}
	if c.HighCutoff == 0 {
		c.HighCutoff = d.HighCutoff
	}
	return c
}
