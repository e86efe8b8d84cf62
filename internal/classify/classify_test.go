package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dartwatch/dartwatch/internal/config"
	"github.com/dartwatch/dartwatch/internal/model"
)

func TestTitle_Consider(t *testing.T) {
	cases := []struct {
		title    string
		consider bool
		typ      model.FilingType
	}{
		{"유상증자결정", true, model.FilingPaidIn},
		{"주요사항보고서(유상증자결정)", true, model.FilingPaidIn},
		{"주요사항보고서(무상증자결정)", true, model.FilingBonus},
		{"[기재정정]유상증자결정", true, model.FilingPaidIn},
		{"유무상증자결정", true, model.FilingCombined},
		{"유상증자또는주식관련사채등의발행결과", true, model.FilingPaidIn},
		{"사업보고서", false, model.FilingUnknown},
		{"전환사채권발행결정", false, model.FilingUnknown},
		{"", false, model.FilingUnknown},
	}

	for _, tc := range cases {
		v := Title(tc.title)
		assert.Equal(t, tc.consider, v.Consider, "title %q", tc.title)
		if tc.consider {
			assert.Equal(t, tc.typ, v.Type, "title %q", tc.title)
		}
	}
}

// thirdPartyVariants generates spacing and numeral variants of the
// disqualifying phrase. The reject-regardless property must hold for all of
// them.
func thirdPartyVariants() []string {
	var out []string
	digits := []string{"3", "삼", "３"}
	seps := []string{"", " ", "  ", "　"}
	for _, d := range digits {
		for _, s := range seps {
			out = append(out,
				strings.Join([]string{"제", d, "자", "배정"}, s),
				strings.Join([]string{"제", d, "자", "배정", "유상증자"}, s),
			)
		}
	}
	out = append(out, "third party allocation", "Third Party", "3rd party", "3RD PARTY")
	return out
}

func TestTitle_ThirdPartyAlwaysRejected(t *testing.T) {
	for _, variant := range thirdPartyVariants() {
		title := "유상증자결정(" + variant + ")"
		v := Title(title)
		assert.False(t, v.Consider, "title %q must be rejected", title)
	}
}

func TestTitle_SpacedThirdPartyRejectedAtTitleStep(t *testing.T) {
	// Embedded spaces must not defeat the title gate.
	v := Title("유상증자결정(제 3 자 배정)")
	assert.False(t, v.Consider)
	assert.Equal(t, "third-party allocation in title", v.Reason)
}

func TestScope_Ordering(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		body    string
		viewer  string
		policy  config.DocFailPolicy
		include bool
	}{
		{
			name:    "clean body includes",
			title:   "유상증자결정",
			body:    "신주 발행. 주주배정 방식.",
			policy:  config.PolicyStrict,
			include: true,
		},
		{
			name:    "third party in body excludes even when title passes",
			title:   "주요사항보고서(유상증자결정)",
			body:    "배정 방식: 제3자배정",
			policy:  config.PolicyLenient,
			include: false,
		},
		{
			name:    "title disqualifier is final",
			title:   "유상증자결정(제3자배정)",
			body:    "주주배정",
			policy:  config.PolicyLenient,
			include: false,
		},
		{
			name:    "empty body strict excludes",
			title:   "유상증자결정",
			body:    "",
			policy:  config.PolicyStrict,
			include: false,
		},
		{
			name:    "empty body lenient with clean viewer includes",
			title:   "유상증자결정",
			body:    "",
			viewer:  "일반공모 증자",
			policy:  config.PolicyLenient,
			include: true,
		},
		{
			name:    "empty body lenient with dirty viewer excludes",
			title:   "유상증자결정",
			body:    "",
			viewer:  "제 3 자 배정 증자",
			policy:  config.PolicyLenient,
			include: false,
		},
		{
			name:    "empty body lenient with no viewer includes",
			title:   "유상증자결정",
			body:    "",
			policy:  config.PolicyLenient,
			include: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Scope(tc.title, tc.body, tc.viewer, tc.policy)
			assert.Equal(t, tc.include, v.Include, v.Reason)
		})
	}
}

// Inclusion and exclusion must be mutually exclusive: whenever the body text
// matches the disqualifier, no policy or viewer content may include it.
func TestScope_ExclusionWinsUniversally(t *testing.T) {
	for _, variant := range thirdPartyVariants() {
		body := "발행 대상: " + variant + " 방식"
		for _, policy := range []config.DocFailPolicy{config.PolicyStrict, config.PolicyLenient} {
			v := Scope("유상증자결정", body, "일반공모", policy)
			assert.False(t, v.Include, "body variant %q policy %s", variant, policy)
		}
	}
}

func TestAllocation(t *testing.T) {
	assert.Equal(t, model.AllocBonus, Allocation("무상증자결정", "아무 내용"))
	assert.Equal(t, model.AllocPublicOffering, Allocation("유상증자결정", "일반공모 방식"))
	assert.Equal(t, model.AllocShareholder, Allocation("유상증자결정", "구주주 청약"))
	assert.Equal(t, model.AllocUnspecified, Allocation("유상증자결정", "기타"))
}

func TestMatchesThirdParty(t *testing.T) {
	assert.True(t, MatchesThirdParty("제3자배정"))
	assert.True(t, MatchesThirdParty("제삼자 배정"))
	assert.False(t, MatchesThirdParty("주주배정"))
	assert.False(t, MatchesThirdParty(""))
}
