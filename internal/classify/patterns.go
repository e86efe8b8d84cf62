package classify

import "regexp"

// Pattern sets for title and body classification. Kept as package data so new
// filing-template wording can be added without touching control flow. Each
// pattern is the union of the wording variants observed across DART filing
// templates.

// capitalIncrease matches any capital-increase disclosure title.
var capitalIncrease = regexp.MustCompile(`(?i)(유상증자|무상증자|유무상증자)`)

// thirdParty is the disqualifying pattern: third-party/private allocation.
// Tolerant of arbitrary internal whitespace, the Sino-Korean numeral (삼), the
// full-width digit (３) and the English equivalents. This is the single most
// important pattern in the system; a miss here leaks a disqualified filing.
// [\s　] also covers the ideographic space (U+3000) that rendered filing
// tables often contain; Go's \s alone does not match it.
var thirdParty = regexp.MustCompile(`(?i)(제[\s　]*[삼3３][\s　]*자[\s　]*배정([\s　]*유상)?([\s　]*증자)?` +
	`|third\s*party|3rd\s*party)`)

// publicOffering and shareholderAlloc mark qualifying general-offering /
// existing-shareholder language for the display-only allocation tag; their
// absence never excludes a filing.
var publicOffering = regexp.MustCompile(`(?i)(일반공모|일반\s*주주)`)
var shareholderAlloc = regexp.MustCompile(`(?i)(주주배정|주주\s*우선|구주주|기존주주)`)

// bonusIssue identifies gratis issues for both typing and tagging.
var bonusIssue = regexp.MustCompile(`(?i)무상증자`)

// paidInIssue identifies cash issues.
var paidInIssue = regexp.MustCompile(`(?i)유상증자`)

// combinedIssue identifies combined paid-in+bonus titles.
var combinedIssue = regexp.MustCompile(`(?i)유무상증자`)

// MatchesThirdParty reports whether the text contains any third-party
// allocation variant. Exposed for property tests.
func MatchesThirdParty(text string) bool {
	return thirdParty.MatchString(text)
}
