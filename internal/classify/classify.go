// Package classify decides which filings the pipeline delivers: a permissive
// title gate followed by a strict third-party-allocation exclusion over the
// filing's full text.
package classify

import (
	"github.com/dartwatch/dartwatch/internal/config"
	"github.com/dartwatch/dartwatch/internal/model"
)

// TitleVerdict is the outcome of the title gate.
type TitleVerdict struct {
	Consider bool
	Type     model.FilingType
	Reason   string
}

// Title runs the title gate. Policy, in order:
//  1. the title must name a capital increase, else reject;
//  2. a third-party allocation variant in the title rejects immediately,
//     without ever fetching the document;
//  3. otherwise consider. Deliberately permissive: many legitimate filings
//     omit the allocation wording from the title, so requiring an explicit
//     general-offering phrase here would drop them.
func Title(title string) TitleVerdict {
	if title == "" || !capitalIncrease.MatchString(title) {
		return TitleVerdict{Consider: false, Reason: "not a capital increase"}
	}

	if thirdParty.MatchString(title) {
		return TitleVerdict{Consider: false, Reason: "third-party allocation in title"}
	}

	return TitleVerdict{Consider: true, Type: TypeOf(title)}
}

// TypeOf classifies the filing subtype from its title.
func TypeOf(title string) model.FilingType {
	switch {
	case combinedIssue.MatchString(title):
		return model.FilingCombined
	case paidInIssue.MatchString(title) && bonusIssue.MatchString(title):
		return model.FilingCombined
	case paidInIssue.MatchString(title):
		return model.FilingPaidIn
	case bonusIssue.MatchString(title):
		return model.FilingBonus
	default:
		return model.FilingUnknown
	}
}

// ScopeVerdict is the outcome of the exclusion/scope gate.
type ScopeVerdict struct {
	Include bool
	Reason  string
}

// Scope runs the exclusion gate over the fetched texts, in strict order:
//  1. third-party match in the title excludes, final;
//  2. third-party match in the body excludes;
//  3. a non-empty clean body includes — the full legal text is authoritative
//     and overrides the absence of signal anywhere else;
//  4. an empty body falls back to the configured policy: strict excludes;
//     lenient scans the lower-trust viewer text and, if that is clean or
//     missing too, includes.
//
// The ordering is non-negotiable: the disqualifier always wins over the
// qualifier, and body text always wins over lower-trust sources.
func Scope(title, body, viewerText string, policy config.DocFailPolicy) ScopeVerdict {
	if thirdParty.MatchString(title) {
		return ScopeVerdict{Include: false, Reason: "third-party allocation in title"}
	}

	if body != "" {
		if thirdParty.MatchString(body) {
			return ScopeVerdict{Include: false, Reason: "third-party allocation in document"}
		}
		return ScopeVerdict{Include: true, Reason: "document clean"}
	}

	if policy == config.PolicyStrict {
		return ScopeVerdict{Include: false, Reason: "document unreadable (strict policy)"}
	}

	if viewerText != "" && thirdParty.MatchString(viewerText) {
		return ScopeVerdict{Include: false, Reason: "third-party allocation in viewer page"}
	}

	return ScopeVerdict{Include: true, Reason: "document unreadable (lenient policy)"}
}

// Allocation tags the allocation type for display. Bonus issues win over
// text hints; otherwise the body hints decide; unspecified when nothing
// matches. The tag enriches the card and never gates delivery.
func Allocation(title, text string) model.AllocationType {
	if TypeOf(title) == model.FilingBonus {
		return model.AllocBonus
	}

	switch {
	case publicOffering.MatchString(text):
		return model.AllocPublicOffering
	case shareholderAlloc.MatchString(text):
		return model.AllocShareholder
	default:
		return model.AllocUnspecified
	}
}
