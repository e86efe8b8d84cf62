// Package dart is the OpenDART API client. Listing failures are fatal to a
// run; document and viewer fetches are best-effort and fold any failure into
// an empty result.
package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dartwatch/dartwatch/internal/fetcher"
	"github.com/dartwatch/dartwatch/internal/model"
)

const (
	pageSize = 100
	// maxPages bounds pagination against a runaway or lying server. Hitting
	// it truncates the listing, it does not fail the run.
	maxPages = 50

	statusOK    = "000"
	statusEmpty = "013"
)

// Fetcher is the transport the client runs on.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Client talks to OpenDART and the DART viewer.
type Client struct {
	fetcher   Fetcher
	apiKey    string
	baseURL   string
	viewerURL string
	markets   map[model.Market]bool
}

// Options configures a Client. Markets, when non-empty, restricts ListFilings
// to those corp_cls codes.
type Options struct {
	APIKey    string
	BaseURL   string
	ViewerURL string
	Markets   []string
}

// NewClient builds a Client on the given transport.
func NewClient(f Fetcher, opts Options) *Client {
	c := &Client{
		fetcher:   f,
		apiKey:    opts.APIKey,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		viewerURL: opts.ViewerURL,
	}
	if len(opts.Markets) > 0 {
		c.markets = make(map[model.Market]bool, len(opts.Markets))
		for _, m := range opts.Markets {
			c.markets[model.Market(strings.ToUpper(m))] = true
		}
	}
	return c
}

// listResponse mirrors the list.json envelope.
type listResponse struct {
	Status    string                `json:"status"`
	Message   string                `json:"message"`
	PageNo    int                   `json:"page_no"`
	TotalPage int                   `json:"total_page"`
	List      []model.FilingSummary `json:"list"`
}

// ListFilings pages through list.json for the inclusive date range and
// returns the deduplicated summaries. Dates are YYYYMMDD. Status "013" is an
// empty result, not an error; any other non-"000" status or malformed payload
// aborts the run.
func (c *Client) ListFilings(ctx context.Context, from, to string) ([]model.FilingSummary, error) {
	var out []model.FilingSummary
	seen := make(map[string]bool)

	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("crtfc_key", c.apiKey)
		q.Set("bgn_de", from)
		q.Set("end_de", to)
		q.Set("page_no", strconv.Itoa(page))
		q.Set("page_count", strconv.Itoa(pageSize))

		raw, _, err := c.fetcher.Get(ctx, c.baseURL+"/list.json?"+q.Encode())
		if err != nil {
			return nil, eris.Wrapf(err, "dart: list page %d", page)
		}

		var resp listResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, eris.Wrapf(err, "dart: decode list page %d", page)
		}

		switch resp.Status {
		case statusOK:
		case statusEmpty:
			return out, nil
		default:
			return nil, eris.Errorf("dart: list status %s: %s", resp.Status, resp.Message)
		}

		for _, f := range resp.List {
			if f.FilingID == "" || seen[f.FilingID] {
				continue
			}
			// Some list.json rows omit corp_cls; those pass the filter
			// rather than being silently dropped.
			if c.markets != nil && f.Market != "" && !c.markets[f.Market] {
				continue
			}
			seen[f.FilingID] = true
			out = append(out, f)
		}

		if resp.TotalPage > 0 && page >= resp.TotalPage {
			break
		}
		if len(resp.List) < pageSize {
			break
		}
		if page == maxPages {
			zap.L().Warn("listing truncated at page cap",
				zap.Int("pages", maxPages), zap.Int("filings", len(out)))
		}
	}

	return out, nil
}

// FetchDocument retrieves the full filing text from document.xml. The payload
// is usually a zip of XML viewer parts, sniffed by its PK magic; anything
// else is decoded and tag-stripped directly. All failures collapse into an
// empty RawText.
func (c *Client) FetchDocument(ctx context.Context, filingID string) model.FilingDocument {
	doc := model.FilingDocument{FilingID: filingID}

	q := url.Values{}
	q.Set("crtfc_key", c.apiKey)
	q.Set("rcept_no", filingID)

	raw, contentType, err := c.fetcher.Get(ctx, c.baseURL+"/document.xml?"+q.Encode())
	if err != nil {
		zap.L().Warn("document fetch failed",
			zap.String("filing_id", filingID), zap.Error(err))
		return doc
	}

	if fetcher.IsZip(raw) || strings.Contains(contentType, "zip") {
		text, err := fetcher.TextFromZip(raw)
		if err != nil {
			zap.L().Warn("document archive unreadable",
				zap.String("filing_id", filingID), zap.Error(err))
			return doc
		}
		doc.RawText = text
		return doc
	}

	doc.RawText = fetcher.CapText(fetcher.StripTags(fetcher.DecodeBestEffort(raw)))
	return doc
}

// ViewerHTML fetches the public viewer page and returns its visible text.
// Lower-trust fallback used only under the lenient document policy; any
// failure returns "".
func (c *Client) ViewerHTML(ctx context.Context, filingID string) string {
	raw, _, err := c.fetcher.Get(ctx, c.ViewerURL(filingID))
	if err != nil {
		zap.L().Warn("viewer fetch failed",
			zap.String("filing_id", filingID), zap.Error(err))
		return ""
	}

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(fetcher.DecodeBestEffort(raw)))
	if err != nil {
		zap.L().Warn("viewer parse failed",
			zap.String("filing_id", filingID), zap.Error(err))
		return ""
	}
	gq.Find("script, style").Remove()
	return strings.TrimSpace(gq.Find("body").Text())
}

// ViewerURL returns the public deep link for a filing.
func (c *Client) ViewerURL(filingID string) string {
	return fmt.Sprintf("%s?rcpNo=%s", c.viewerURL, url.QueryEscape(filingID))
}
