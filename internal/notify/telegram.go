// Package notify delivers alert cards to Telegram.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dartwatch/dartwatch/internal/model"
	"github.com/dartwatch/dartwatch/internal/resilience"
)

// maxMessageRunes is Telegram's hard sendMessage limit. Longer cards are
// truncated, never split across messages.
const maxMessageRunes = 4096

// Notifier sends rendered cards somewhere an operator will see them.
type Notifier interface {
	Send(ctx context.Context, card model.Card) error
}

// Fetcher is the transport the Telegram notifier posts through.
type Fetcher interface {
	PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, int, error)
}

// Telegram posts cards to one chat via the Bot API. HTML parse mode; all
// interpolated text goes through html.EscapeString before rendering.
type Telegram struct {
	fetcher  Fetcher
	baseURL  string
	botToken string
	chatID   string
	retry    resilience.RetryConfig
}

// Options configures a Telegram notifier.
type Options struct {
	BaseURL    string
	BotToken   string
	ChatID     string
	MaxRetries int
}

// NewTelegram builds a notifier for one bot and chat.
func NewTelegram(f Fetcher, opts Options) *Telegram {
	retry := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries
	}
	retry.OnRetry = resilience.RetryLogger("telegram", "sendMessage")
	return &Telegram{
		fetcher:  f,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		botToken: opts.BotToken,
		chatID:   opts.ChatID,
		retry:    retry,
	}
}

// apiResponse mirrors the Bot API envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Send renders and posts one card. Transient failures (429, 5xx, network) are
// retried with backoff up to the configured attempt budget; the final error
// is returned so the caller can apply its own policy.
func (t *Telegram) Send(ctx context.Context, card model.Card) error {
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", Render(card))
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	markup, err := replyMarkup(card)
	if err != nil {
		return err
	}
	if markup != "" {
		form.Set("reply_markup", markup)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	return resilience.Do(ctx, t.retry, func(ctx context.Context) error {
		body, status, err := t.fetcher.PostForm(ctx, endpoint, form)
		if err != nil {
			return resilience.NewTransientError(eris.Wrap(err, "notify: post"), 0)
		}
		if resilience.IsTransientHTTPStatus(status) {
			return resilience.NewTransientError(
				eris.Errorf("notify: telegram status %d", status), status)
		}

		var resp apiResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return eris.Wrap(err, "notify: decode response")
		}
		if !resp.OK {
			return eris.Errorf("notify: telegram error %d: %s",
				resp.ErrorCode, resp.Description)
		}

		zap.L().Debug("card sent", zap.String("title", card.Title))
		return nil
	})
}

// Render produces the HTML message body, escaped and truncated to the
// Telegram limit. The title line always survives truncation.
func Render(card model.Card) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(card.Title))
	b.WriteString("</b>")
	for _, line := range card.Lines {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(line))
	}
	return truncate(b.String(), maxMessageRunes)
}

// truncate cuts s to limit runes, appending an ellipsis marker when anything
// was dropped. The cut backs off to the previous line break so no HTML tag or
// entity is split.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := limit - 2
	for i := cut; i > 0; i-- {
		if runes[i] == '\n' {
			cut = i
			break
		}
	}
	return string(runes[:cut]) + "\n…"
}

// replyMarkup builds the inline keyboard: one primary button, then one row
// per extra link.
func replyMarkup(card model.Card) (string, error) {
	type button struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	}
	var rows [][]button

	if card.PrimaryURL != "" {
		rows = append(rows, []button{{Text: "공시 보기", URL: card.PrimaryURL}})
	}
	for _, link := range card.Extra {
		rows = append(rows, []button{{Text: link.Label, URL: link.URL}})
	}
	if len(rows) == 0 {
		return "", nil
	}

	raw, err := json.Marshal(map[string]any{"inline_keyboard": rows})
	if err != nil {
		return "", eris.Wrap(err, "notify: marshal keyboard")
	}
	return string(raw), nil
}
