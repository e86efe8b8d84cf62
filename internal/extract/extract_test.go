package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dartwatch/dartwatch/internal/model"
)

const sampleBody = `주요사항보고서(유상증자결정)
자금조달의 목적 : 운영자금 및 채무상환자금
신주배정기준일 : 2026-03-02
1주당 발행가액 : 12,500원
발행가액 확정일 : 2026-03-20
신주인수권증서의 상장 : 2026-03-25 ~ 2026-03-31
구주주 청약일 : 2026-04-06 ~ 2026-04-07
일반공모 청약일 : 2026-04-10 ~ 2026-04-11
신주의 상장예정일 : 2026-04-28
자금조달금액 : 15,000,000,000원
`

func TestExtract_AllFields(t *testing.T) {
	fields := Extract(sampleBody)

	v, ok := fields.Get(model.FieldFundingPurpose)
	assert.True(t, ok)
	assert.Equal(t, "운영자금 및 채무상환자금", v)

	v, ok = fields.Get(model.FieldRecordDate)
	assert.True(t, ok)
	assert.Equal(t, "2026-03-02", v)

	v, ok = fields.Get(model.FieldOfferPrice)
	assert.True(t, ok)
	assert.Equal(t, "12,500원", v)

	v, ok = fields.Get(model.FieldPriceFixingDate)
	assert.True(t, ok)
	assert.Equal(t, "2026-03-20", v)

	v, ok = fields.Get(model.FieldRightsListing)
	assert.True(t, ok)
	assert.Equal(t, "2026-03-25 ~ 2026-03-31", v)

	v, ok = fields.Get(model.FieldListingDate)
	assert.True(t, ok)
	assert.Equal(t, "2026-04-28", v)

	v, ok = fields.Get(model.FieldSubscription)
	assert.True(t, ok)
	assert.Contains(t, v, "2026-04-06 ~ 2026-04-07")
	assert.Contains(t, v, "2026-04-10 ~ 2026-04-11")
}

func TestExtract_EmptyBody(t *testing.T) {
	for _, body := range []string{"", "   ", "\n\n"} {
		fields := Extract(body)
		assert.Empty(t, fields)
	}
}

func TestExtract_AbsentFieldsOmitted(t *testing.T) {
	fields := Extract("자금조달의 목적 : 시설자금\n")

	_, ok := fields.Get(model.FieldFundingPurpose)
	assert.True(t, ok)
	_, ok = fields.Get(model.FieldRecordDate)
	assert.False(t, ok)
	_, ok = fields.Get(model.FieldSubscription)
	assert.False(t, ok)
}

func TestExtract_ContinuationLine(t *testing.T) {
	// Rendered tables split label and value across rows.
	body := "신주배정기준일 :\n2026-05-04\n"
	fields := Extract(body)

	v, ok := fields.Get(model.FieldRecordDate)
	assert.True(t, ok)
	assert.Equal(t, "2026-05-04", v)
}

func TestExtract_LabelPriority(t *testing.T) {
	// 확정발행가 outranks 예정발행가.
	body := "예정발행가 : 10,000원\n확정발행가 : 9,500원\n"
	fields := Extract(body)

	v, ok := fields.Get(model.FieldOfferPrice)
	assert.True(t, ok)
	assert.Equal(t, "9,500원", v)
}

func TestExtract_SubscriptionDedup(t *testing.T) {
	body := "구주주 청약일 : 2026-04-06\n청약일 : 2026-04-06\n"
	fields := Extract(body)

	v, ok := fields.Get(model.FieldSubscription)
	assert.True(t, ok)
	assert.Equal(t, "2026-04-06", v)
}

func TestRaiseAmount(t *testing.T) {
	assert.Equal(t, int64(15_000_000_000), RaiseAmount(sampleBody))
	assert.Equal(t, int64(0), RaiseAmount(""))
	assert.Equal(t, int64(0), RaiseAmount("자금조달금액 : 미정\n"))
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"15,000,000,000원", 15_000_000_000},
		{"12,500", 12_500},
		{"12500원", 12_500},
		{" 3,000 원", 3_000},
		{"미정", 0},
		{"", 0},
		{"-100", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseAmount(tc.in), "input %q", tc.in)
	}
}
