package market

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/dartwatch/dartwatch/internal/fetcher"
	"github.com/dartwatch/dartwatch/internal/model"
)

// NaverLookup scrapes finance.naver.com. Two requests per quote: a name
// search to resolve the ticker code, then the item page for price and market
// cap. Markup drift on either page degrades to ErrUnavailable.
type NaverLookup struct {
	fetcher Fetcher
	baseURL string
}

// Fetcher is the transport the lookup runs on.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, string, error)
}

// NewNaverLookup builds a lookup against baseURL.
func NewNaverLookup(f Fetcher, baseURL string) *NaverLookup {
	return &NaverLookup{fetcher: f, baseURL: strings.TrimRight(baseURL, "/")}
}

var itemCodeRe = regexp.MustCompile(`code=(\d{6})`)

func (l *NaverLookup) Quote(ctx context.Context, companyName string) (*model.Quote, error) {
	code, err := l.resolveCode(ctx, companyName)
	if err != nil {
		return nil, err
	}

	raw, _, err := l.fetcher.Get(ctx, l.baseURL+"/item/main.naver?code="+code)
	if err != nil {
		zap.L().Debug("item page fetch failed",
			zap.String("company", companyName), zap.Error(err))
		return nil, ErrUnavailable
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetcher.DecodeBestEffort(raw)))
	if err != nil {
		return nil, ErrUnavailable
	}

	q := &model.Quote{
		Price:     parseKRW(doc.Find("p.no_today .blind").First().Text()),
		MarketCap: parseMarketCapEok(doc.Find("#_market_sum").First().Text()),
	}
	if q.Price == 0 && q.MarketCap == 0 {
		return nil, ErrUnavailable
	}
	return q, nil
}

// resolveCode finds the six-digit ticker for a company name via the search
// page. The first item link wins.
func (l *NaverLookup) resolveCode(ctx context.Context, companyName string) (string, error) {
	searchURL := l.baseURL + "/search/searchList.naver?query=" + url.QueryEscape(companyName)
	raw, _, err := l.fetcher.Get(ctx, searchURL)
	if err != nil {
		zap.L().Debug("search fetch failed",
			zap.String("company", companyName), zap.Error(err))
		return "", ErrUnavailable
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetcher.DecodeBestEffort(raw)))
	if err != nil {
		return "", ErrUnavailable
	}

	code := ""
	doc.Find("a[href*='/item/main']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if m := itemCodeRe.FindStringSubmatch(href); m != nil {
			code = m[1]
			return false
		}
		return true
	})
	if code == "" {
		return "", ErrUnavailable
	}
	return code, nil
}
