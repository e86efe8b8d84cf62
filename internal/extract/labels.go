package extract

import "github.com/dartwatch/dartwatch/internal/model"

// Label synonym lists, ordered by priority: the first label that yields a
// non-empty value wins for its field. DART filing templates have reworded
// these labels over the years; new wording is added here, never in control
// flow. The lists are the union of the variants observed across templates.

var fieldLabels = []struct {
	field  string
	labels []string
}{
	{model.FieldFundingPurpose, []string{
		"자금조달의 목적",
		"자금조달 목적",
		"자금의 사용목적",
		"증자의 목적",
	}},
	{model.FieldRecordDate, []string{
		"신주배정기준일",
		"신주의 배정기준일",
		"배정기준일",
	}},
	{model.FieldOfferPrice, []string{
		"확정발행가",
		"신주 발행가액",
		"1주당 발행가액",
		"예정발행가",
		"발행가액",
	}},
	{model.FieldPriceFixingDate, []string{
		"발행가액 확정일",
		"발행가 확정일",
		"확정예정일",
	}},
	{model.FieldRightsListing, []string{
		"신주인수권증서의 상장",
		"신주인수권증서 상장",
	}},
	{model.FieldListingDate, []string{
		"신주의 상장예정일",
		"신주권교부예정일",
		"상장예정일",
	}},
}

// subscriptionLabels feed the multi-value collector: a filing often lists
// separate subscription dates per allocation tranche.
var subscriptionLabels = []string{
	"구주주 청약일",
	"우리사주조합 청약일",
	"일반공모 청약일",
	"청약예정일",
	"청약일",
}

// amountLabels locate the total raise amount for the minimum-raise filter
// and the risk scorer's raise-to-market-cap ratio.
var amountLabels = []string{
	"자금조달금액",
	"자금조달 금액",
	"증자금액",
	"발행금액",
}
