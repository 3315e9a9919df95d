package postdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postdesk/content"
)

const (
	defaultTranslateURL = "https://translate.googleapis.com/translate_a/single"
	translateTimeout    = 10 * time.Second
)

// Translator translates text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// GoogleTranslator calls the public Google Translate "gtx" endpoint.
type GoogleTranslator struct {
	endpoint string
	client   *http.Client
}

// NewGoogleTranslator returns a translator for endpoint. A nil client uses
// one with a short timeout.
func NewGoogleTranslator(endpoint string, client *http.Client) *GoogleTranslator {
	if endpoint == "" {
		endpoint = defaultTranslateURL
	}
	if client == nil {
		client = &http.Client{Timeout: translateTimeout}
	}
	return &GoogleTranslator{endpoint: endpoint, client: client}
}

// Translate implements Translator.
func (g *GoogleTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", from)
	q.Set("tl", to)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return parseGTX(body)
}

// parseGTX extracts the translation from a gtx response, a nested array
// whose first element lists [translated, original, ...] segments.
func parseGTX(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return "", fmt.Errorf("translate: malformed response")
	}
	var segments [][]interface{}
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("translate: malformed segments: %w", err)
	}
	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translate: empty translation")
	}
	return b.String(), nil
}

// hasHan reports whether s contains a CJK unified ideograph.
func hasHan(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

type translateRequest struct {
	Title string `json:"title"`
}

func (a *App) handleTranslateTitle(c echo.Context) error {
	if !a.translateLimiter.Allow(c.RealIP()) {
		return apiError(c, http.StatusTooManyRequests, "Too many translation requests. Try again later.")
	}
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid JSON body")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apiError(c, http.StatusBadRequest, "Missing required field: title")
	}

	if !hasHan(title) {
		return apiOK(c, http.StatusOK, echo.Map{
			"slug":       content.TextToSlug(title),
			"translated": title,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), translateTimeout)
	defer cancel()
	translated, err := a.Translator.Translate(ctx, title, "zh-TW", "en")
	if err != nil {
		c.Logger().Warnf("translate %q: %v", title, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success":  false,
			"error":    "Translation failed: " + err.Error(),
			"fallback": content.FallbackSlug(title),
		})
	}
	return apiOK(c, http.StatusOK, echo.Map{
		"slug":       content.TextToSlug(translated),
		"translated": translated,
	})
}
