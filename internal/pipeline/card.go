package pipeline

import (
	"fmt"
	"strings"

	"github.com/dartwatch/dartwatch/internal/model"
)

var typeLabels = map[model.FilingType]string{
	model.FilingPaidIn:   "유상증자",
	model.FilingBonus:    "무상증자",
	model.FilingCombined: "유무상증자",
	model.FilingUnknown:  "증자",
}

var allocLabels = map[model.AllocationType]string{
	model.AllocPublicOffering: "일반공모",
	model.AllocShareholder:    "주주배정",
	model.AllocBonus:          "무상",
}

var fieldLabels = map[string]string{
	model.FieldFundingPurpose:  "자금 목적",
	model.FieldRecordDate:      "신주배정기준일",
	model.FieldOfferPrice:      "발행가",
	model.FieldPriceFixingDate: "발행가 확정일",
	model.FieldRightsListing:   "신주인수권 상장",
	model.FieldSubscription:    "청약",
	model.FieldListingDate:     "신주 상장일",
}

var marketLabels = map[model.Market]string{
	model.MarketKOSPI:  "코스피",
	model.MarketKOSDAQ: "코스닥",
	model.MarketKONEX:  "코넥스",
	model.MarketEtc:    "기타",
}

// BuildCard renders one notification card for a group of alerts sharing a
// company and received date. The first alert carries the detail lines; the
// rest contribute extra link rows.
func BuildCard(group []model.Alert) model.Card {
	a := group[0]

	card := model.Card{
		Title:      fmt.Sprintf("[%s] %s %s", a.Risk.Tier, a.Filing.CompanyName, typeLabels[a.Type]),
		PrimaryURL: a.ViewerURL,
	}

	line := func(format string, args ...any) {
		card.Lines = append(card.Lines, fmt.Sprintf(format, args...))
	}

	line("위험도: %s (%d점)", a.Risk.Tier, a.Risk.Score)
	if label, ok := allocLabels[a.Allocation]; ok {
		line("배정 방식: %s", label)
	}
	if label, ok := marketLabels[a.Filing.Market]; ok {
		line("시장: %s", label)
	}
	line("접수일: %s", formatDate(a.Filing.ReceivedDate))

	for _, name := range model.FieldNames {
		if v, ok := a.Fields.Get(name); ok {
			line("%s: %s", fieldLabels[name], v)
		}
	}

	if len(a.Risk.Factors) > 0 {
		line("판단 근거: %s", strings.Join(a.Risk.Factors, ", "))
	}

	for _, other := range group[1:] {
		card.Extra = append(card.Extra, model.Link{
			Label: shorten(other.Filing.Title, 40),
			URL:   other.ViewerURL,
		})
	}
	return card
}

// formatDate rewrites YYYYMMDD as YYYY-MM-DD, passing through anything that
// does not fit.
func formatDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

func shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
