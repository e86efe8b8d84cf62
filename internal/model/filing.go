// Package model defines the core types shared across the alert pipeline.
package model

import "time"

// Market identifies the exchange tier a company is listed on, using the
// single-letter corp_cls codes from OpenDART.
type Market string

const (
	MarketKOSPI  Market = "Y"
	MarketKOSDAQ Market = "K"
	MarketKONEX  Market = "N"
	MarketEtc    Market = "E"
)

// FilingType classifies a capital-increase disclosure by its subtype.
type FilingType string

const (
	FilingPaidIn   FilingType = "paid_in"
	FilingBonus    FilingType = "bonus"
	FilingCombined FilingType = "combined"
	FilingUnknown  FilingType = "unknown"
)

// AllocationType tags how the new shares are allocated. Display-only; it
// never gates delivery.
type AllocationType string

const (
	AllocPublicOffering AllocationType = "public_offering"
	AllocShareholder    AllocationType = "shareholder"
	AllocBonus          AllocationType = "bonus"
	AllocUnspecified    AllocationType = "unspecified"
)

// FilingSummary is one row from the OpenDART list endpoint. Created fresh on
// each fetch and never mutated.
type FilingSummary struct {
	FilingID     string `json:"rcept_no"`
	CompanyName  string `json:"corp_name"`
	Market       Market `json:"corp_cls"`
	Title        string `json:"report_nm"`
	ReceivedDate string `json:"rcept_dt"` // YYYYMMDD
}

// FilingDocument holds the tag-stripped full text of one filing. RawText may
// be empty when the fetch failed; downstream classifiers must treat empty
// text as unknown, not as a verdict.
type FilingDocument struct {
	FilingID string
	RawText  string
}

// Field names extracted from filing bodies. The extractor maps each to a
// string value or leaves it absent.
const (
	FieldFundingPurpose  = "funding_purpose"
	FieldRecordDate      = "record_date"
	FieldOfferPrice      = "offer_price"
	FieldPriceFixingDate = "price_fixing_date"
	FieldRightsListing   = "rights_listing"
	FieldSubscription    = "subscription"
	FieldListingDate     = "listing_date"
)

// FieldNames lists all extractable fields in display order.
var FieldNames = []string{
	FieldFundingPurpose,
	FieldRecordDate,
	FieldOfferPrice,
	FieldPriceFixingDate,
	FieldRightsListing,
	FieldSubscription,
	FieldListingDate,
}

// Fields maps field names to extracted values. A missing key means the field
// was absent from the document.
type Fields map[string]string

// Get returns the value and whether the field was found.
func (f Fields) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// RiskTier buckets a risk score into a qualitative band.
type RiskTier string

const (
	TierLow  RiskTier = "LOW"
	TierMid  RiskTier = "MID"
	TierHigh RiskTier = "HIGH"
)

// RiskAssessment is a pure function of a filing and its extracted fields.
// Recomputed each run, never persisted.
type RiskAssessment struct {
	Score   int      `json:"score"` // clamped to [0,100]
	Tier    RiskTier `json:"tier"`
	Factors []string `json:"factors"` // ordered contributing factors
}

// Quote carries market data for one listed company.
type Quote struct {
	Price     int64 // current price, KRW
	MarketCap int64 // market capitalization, KRW
}

// Link is a labeled deep link attached to a notification card.
type Link struct {
	Label string
	URL   string
}

// Card is the outward notification artifact. Constructed fresh per send and
// never persisted.
type Card struct {
	Title      string
	Lines      []string
	PrimaryURL string
	Extra      []Link // secondary links for grouped filings
}

// Alert bundles everything known about one accepted filing.
type Alert struct {
	Filing     FilingSummary
	Type       FilingType
	Allocation AllocationType
	Fields     Fields
	Risk       RiskAssessment
	ViewerURL  string
}

// RunSummary aggregates the outcome of one pipeline run. Operators only see
// these counts or a fatal abort.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Fetched    int
	Considered int
	Excluded   int
	Sent       int
	SendErrors int
	Seen       int
}
