package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dartwatch/dartwatch/internal/fetcher"
	"github.com/dartwatch/dartwatch/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler, markets []string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second})
	c := NewClient(f, Options{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		ViewerURL: srv.URL + "/dsaf001/main.do",
		Markets:   markets,
	})
	return c, srv
}

func listPage(status string, totalPage int, filings ...model.FilingSummary) []byte {
	raw, _ := json.Marshal(map[string]any{
		"status":     status,
		"message":    "",
		"total_page": totalPage,
		"list":       filings,
	})
	return raw
}

func summary(id, market string) model.FilingSummary {
	return model.FilingSummary{
		FilingID:     id,
		CompanyName:  "테스트기업",
		Market:       model.Market(market),
		Title:        "유상증자결정",
		ReceivedDate: "20260301",
	}
}

func TestListFilings_SinglePage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
		assert.Equal(t, "20260301", r.URL.Query().Get("bgn_de"))
		w.Write(listPage("000", 1, summary("1", "Y"), summary("2", "K")))
	}), nil)

	filings, err := c.ListFilings(context.Background(), "20260301", "20260302")
	require.NoError(t, err)
	require.Len(t, filings, 2)
	assert.Equal(t, "1", filings[0].FilingID)
}

func TestListFilings_Paginates(t *testing.T) {
	pages := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		page := r.URL.Query().Get("page_no")
		var fs []model.FilingSummary
		start := 0
		if page == "2" {
			start = 100
		}
		for i := 0; i < 100; i++ {
			fs = append(fs, summary(fmt.Sprintf("%d", start+i), "Y"))
		}
		w.Write(listPage("000", 2, fs...))
	}), nil)

	filings, err := c.ListFilings(context.Background(), "20260301", "20260302")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Len(t, filings, 200)
}

func TestListFilings_EmptyStatusIsNotError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listPage("013", 0))
	}), nil)

	filings, err := c.ListFilings(context.Background(), "20260301", "20260302")
	require.NoError(t, err)
	assert.Empty(t, filings)
}

func TestListFilings_ErrorStatusIsFatal(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"020","message":"API key limit"}`))
	}), nil)

	_, err := c.ListFilings(context.Background(), "20260301", "20260302")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "020")
}

func TestListFilings_MalformedPayloadIsFatal(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}), nil)

	_, err := c.ListFilings(context.Background(), "20260301", "20260302")
	require.Error(t, err)
}

func TestListFilings_FiltersMarketsAndDedupes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listPage("000", 1,
			summary("1", "Y"),
			summary("1", "Y"),
			summary("2", "E"),
			summary("3", "K"),
			summary("4", "")))
	}), []string{"Y", "K", "N"})

	filings, err := c.ListFilings(context.Background(), "20260301", "20260302")
	require.NoError(t, err)
	require.Len(t, filings, 3)
	assert.Equal(t, "1", filings[0].FilingID)
	assert.Equal(t, "3", filings[1].FilingID)
	// Rows without a corp_cls code are kept.
	assert.Equal(t, "4", filings[2].FilingID)
}

func TestFetchDocument_ZipPayload(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("20260301000001.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<BODY>유상증자결정 시설자금 납입</BODY>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20260301000001", r.URL.Query().Get("rcept_no"))
		w.Header().Set("Content-Type", "application/zip")
		w.Write(buf.Bytes())
	}), nil)

	doc := c.FetchDocument(context.Background(), "20260301000001")
	assert.Equal(t, "20260301000001", doc.FilingID)
	assert.Contains(t, doc.RawText, "유상증자결정")
	assert.Contains(t, doc.RawText, "시설자금")
}

func TestFetchDocument_RawXMLPayload(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.Write([]byte("<result><message>본문 없음</message></result>"))
	}), nil)

	doc := c.FetchDocument(context.Background(), "x")
	assert.Contains(t, doc.RawText, "본문 없음")
}

func TestFetchDocument_FetchFailureYieldsEmptyText(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), nil)

	doc := c.FetchDocument(context.Background(), "20260301000001")
	assert.Equal(t, "20260301000001", doc.FilingID)
	assert.Empty(t, doc.RawText)
}

func TestViewerHTML(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script>var x=1;</script></head><body><p>주주배정 유상증자</p></body></html>`))
	}), nil)

	text := c.ViewerHTML(context.Background(), "x")
	assert.Contains(t, text, "주주배정 유상증자")
	assert.NotContains(t, text, "var x")
}

func TestViewerHTML_FailureYieldsEmpty(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), nil)

	assert.Empty(t, c.ViewerHTML(context.Background(), "x"))
}

func TestViewerURL(t *testing.T) {
	c := NewClient(nil, Options{ViewerURL: "https://dart.fss.or.kr/dsaf001/main.do"})
	assert.Equal(t,
		"https://dart.fss.or.kr/dsaf001/main.do?rcpNo=20260301000001",
		c.ViewerURL("20260301000001"))
}
