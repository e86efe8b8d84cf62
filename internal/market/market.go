// Package market resolves a listed company to a current price and market
// capitalization. The data is enrichment only; every caller must handle
// ErrUnavailable and proceed without a quote.
package market

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dartwatch/dartwatch/internal/model"
)

// ErrUnavailable means no quote could be resolved for the company. It is an
// expected outcome, not a failure.
var ErrUnavailable = eris.New("market: quote unavailable")

// Lookup resolves company names to quotes.
type Lookup interface {
	Quote(ctx context.Context, companyName string) (*model.Quote, error)
}

// Disabled is the no-op lookup used when market enrichment is off.
type Disabled struct{}

func (Disabled) Quote(context.Context, string) (*model.Quote, error) {
	return nil, ErrUnavailable
}

// parseKRW parses a comma-formatted won amount such as "70,000" into won.
// Returns 0 when nothing numeric is found.
func parseKRW(s string) int64 {
	return digits(strings.TrimSpace(s))
}

// parseMarketCapEok parses a market cap quoted in 억원 units, with an
// optional 조 segment ("1조 2,345" means 12,345억), and returns won.
func parseMarketCapEok(s string) int64 {
	s = strings.TrimSpace(s)
	var eok int64
	if idx := strings.Index(s, "조"); idx >= 0 {
		eok = digits(s[:idx])*10_000 + digits(s[idx+len("조"):])
	} else {
		eok = digits(s)
	}
	return eok * 1_0000_0000
}

func digits(s string) int64 {
	var n int64
	found := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int64(r-'0')
			found = true
		}
	}
	if !found {
		return 0
	}
	return n
}
