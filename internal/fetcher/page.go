// Package fetcher produces canonical ChampionStats from the upstream stats
// page and from previously exported CSV/XLSX stat sheets. It owns all
// network I/O, charset handling, and label translation; the analysis only
// ever sees normalized records.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"

	"github.com/riftlab/riftrank/internal/config"
	"github.com/riftlab/riftrank/internal/i18n"
	"github.com/riftlab/riftrank/internal/model"
)

const (
	// maxPageBytes caps the downloaded page size.
	maxPageBytes = 4 * 1024 * 1024 // 4 MB

	// dataMarker precedes the JSON stats blob embedded in the page.
	dataMarker = "window.championStats ="
)

// PageFetcher downloads the stats page and turns its embedded JSON payload
// into translated ChampionStats, keyed by rank bracket.
type PageFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	tr      *i18n.Translator
	cfg     config.SourceConfig
}

// NewPageFetcher creates a PageFetcher for the configured source.
func NewPageFetcher(cfg config.SourceConfig, tr *i18n.Translator) *PageFetcher {
	return &PageFetcher{
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		tr:      tr,
		cfg:     cfg,
	}
}

// rawEntry is one champion row as embedded in the page.
type rawEntry struct {
	Hero string `json:"hero_name"`
	Win  string `json:"win_rate"`
	Pick string `json:"appear_rate"`
	Ban  string `json:"forbid_rate"`
}

// FetchAll downloads the stats page once and returns the translated records
// for every bracket it carries.
func (f *PageFetcher) FetchAll(ctx context.Context) (map[model.Bracket][]model.ChampionStats, error) {
	body, err := f.fetchPage(ctx)
	if err != nil {
		return nil, err
	}

	blob, err := extractPayload(body)
	if err != nil {
		return nil, err
	}

	// bracket label -> lane label -> rows, all labels in the source language
	var payload map[string]map[string][]rawEntry
	if err := json.Unmarshal(blob, &payload); err != nil {
		return nil, eris.Wrap(err, "fetcher: decode stats payload")
	}

	out := make(map[model.Bracket][]model.ChampionStats, len(payload))
	for zhBracket, lanes := range payload {
		bracket, ok := f.tr.BracketName(zhBracket)
		if !ok {
			zap.L().Warn("fetcher: unknown bracket label", zap.String("label", zhBracket))
			continue
		}
		stats, err := f.translateLanes(lanes)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: bracket %s", bracket)
		}
		out[bracket] = stats
	}

	if len(out) == 0 {
		return nil, eris.New("fetcher: page carried no recognizable brackets")
	}
	return out, nil
}

// Fetch downloads the stats page and returns the records for one bracket.
func (f *PageFetcher) Fetch(ctx context.Context, bracket model.Bracket) ([]model.ChampionStats, error) {
	all, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	stats, ok := all[bracket]
	if !ok {
		return nil, eris.Errorf("fetcher: bracket %s not present on page", bracket)
	}
	return stats, nil
}

func (f *PageFetcher) fetchPage(ctx context.Context) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: build request")
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", f.cfg.URL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetcher: get %s: status %d", f.cfg.URL, resp.StatusCode)
	}

	reader, err := decodeCharset(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}

	zap.L().Debug("fetcher: page downloaded",
		zap.String("url", f.cfg.URL),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

// decodeCharset wraps the body in a decoder for the Content-Type charset.
// The source page historically serves GBK.
func decodeCharset(body io.Reader, contentType string) (io.Reader, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil //nolint:nilerr // unparsable header, assume UTF-8
	}
	charset, ok := params["charset"]
	if !ok || strings.EqualFold(charset, "utf-8") {
		return body, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(body), nil
}

// extractPayload locates the JSON blob the page embeds after dataMarker and
// returns it with the trailing statement terminator stripped.
func extractPayload(body []byte) ([]byte, error) {
	page := string(body)
	start := strings.Index(page, dataMarker)
	if start < 0 {
		return nil, eris.New("fetcher: stats payload marker not found")
	}
	rest := page[start+len(dataMarker):]

	end := strings.Index(rest, "</script>")
	if end < 0 {
		return nil, eris.New("fetcher: stats payload not terminated")
	}

	blob := strings.TrimSpace(rest[:end])
	blob = strings.TrimSuffix(blob, ";")
	return []byte(blob), nil
}

func (f *PageFetcher) translateLanes(lanes map[string][]rawEntry) ([]model.ChampionStats, error) {
	var stats []model.ChampionStats
	for zhLane, entries := range lanes {
		lane, ok := f.tr.LaneName(zhLane)
		if !ok {
			zap.L().Warn("fetcher: unknown lane label", zap.String("label", zhLane))
			continue
		}
		for _, e := range entries {
			name, ok := f.tr.ChampionName(e.Hero)
			if !ok {
				// Untranslated champions keep the source label so new
				// releases still flow through the analysis.
				zap.L().Warn("fetcher: unknown champion label", zap.String("label", e.Hero))
				name = e.Hero
			}

			win, err := parseRate(e.Win)
			if err != nil {
				return nil, eris.Wrapf(err, "champion %s win rate", name)
			}
			pick, err := parseRate(e.Pick)
			if err != nil {
				return nil, eris.Wrapf(err, "champion %s pick rate", name)
			}
			ban, err := parseRate(e.Ban)
			if err != nil {
				return nil, eris.Wrapf(err, "champion %s ban rate", name)
			}

			stats = append(stats, model.ChampionStats{
				Lane:     lane,
				Name:     name,
				WinRate:  win,
				PickRate: pick,
				BanRate:  ban,
			})
		}
	}
	return stats, nil
}

// parseRate normalizes a rate string to a fraction in [0,1]. The page
// formats rates as percentages ("54.2%"); plain fractions are accepted for
// re-imported sheets.
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, eris.New("fetcher: empty rate")
	}

	percent := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: parse rate %q", s)
	}
	if percent {
		v /= 100
	}

	if v < 0 || v > 1 {
		return 0, eris.Errorf("fetcher: rate %q outside [0,1]", s)
	}
	return v, nil
}
