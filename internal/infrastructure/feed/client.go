package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/fivesquad/fivesquad/internal/domain/performance"
)

// Client pulls player statistics from the external sports-data feed over
// fasthttp. The feed is read-only: this client only ever issues GETs.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *slog.Logger
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		http:    &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		logger:  logger,
	}
}

type feedPerformanceRow struct {
	PlayerID    string `json:"player_id"`
	Gameweek    int    `json:"gameweek"`
	Points      int    `json:"points"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	CleanSheets int    `json:"clean_sheets"`
	YellowCards int    `json:"yellow_cards"`
	RedCards    int    `json:"red_cards"`
	Minutes     int    `json:"minutes"`
	Bonus       int    `json:"bonus"`
}

type feedGameweekResponse struct {
	Rows []feedPerformanceRow `json:"performances"`
}

type feedTotalsResponse struct {
	Totals map[string]int `json:"season_totals"`
}

func (c *Client) FetchGameweek(ctx context.Context, gameweek int) ([]performance.Performance, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/v1/gameweeks/%d/performances", c.baseURL, gameweek))
	if err != nil {
		return nil, err
	}

	var decoded feedGameweekResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, crerr.Wrap(err, "unmarshal gameweek response")
	}

	out := make([]performance.Performance, 0, len(decoded.Rows))
	for _, row := range decoded.Rows {
		out = append(out, performance.Performance{
			PlayerID:    row.PlayerID,
			Gameweek:    row.Gameweek,
			Points:      row.Points,
			Goals:       row.Goals,
			Assists:     row.Assists,
			CleanSheets: row.CleanSheets,
			YellowCards: row.YellowCards,
			RedCards:    row.RedCards,
			Minutes:     row.Minutes,
			Bonus:       row.Bonus,
		})
	}

	return out, nil
}

func (c *Client) FetchSeasonTotals(ctx context.Context) (map[string]int, error) {
	body, err := c.get(ctx, c.baseURL+"/v1/players/season-totals")
	if err != nil {
		return nil, err
	}

	var decoded feedTotalsResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, crerr.Wrap(err, "unmarshal season totals response")
	}

	return decoded.Totals, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, crerr.New("feed base url is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, crerr.Wrapf(err, "get %s", url)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, crerr.Newf("feed responded with status %d for %s", code, url)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())

	return body, nil
}
