package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// chartEvents selects the corporate-action streams included with every chart
// response.
const chartEvents = "div|split|capitalGains"

// ChartResponse is the envelope of the v8 chart endpoint.
type ChartResponse struct {
	Chart ChartResult `json:"chart"`
}

// ChartResult carries either the result blocks or an embedded error.
type ChartResult struct {
	Result []*ChartBlock  `json:"result"`
	Error  *ResponseError `json:"error"`
}

// ChartBlock is one instrument's data within a chart response.
type ChartBlock struct {
	Meta       Metadata    `json:"meta"`
	Timestamp  []int64     `json:"timestamp"`
	Events     *Events     `json:"events"`
	Indicators *Indicators `json:"indicators"`
}

// Metadata describes the instrument and the window the response covers.
type Metadata struct {
	Currency             *string         `json:"currency"`
	Symbol               string          `json:"symbol"`
	ExchangeName         string          `json:"exchangeName"`
	InstrumentType       string          `json:"instrumentType"`
	FirstTradeDate       *int64          `json:"firstTradeDate"`
	RegularMarketTime    int64           `json:"regularMarketTime"`
	GMTOffset            int64           `json:"gmtoffset"`
	Timezone             string          `json:"timezone"`
	ExchangeTimezoneName string          `json:"exchangeTimezoneName"`
	RegularMarketPrice   FuzzyFloat      `json:"regularMarketPrice"`
	ChartPreviousClose   FuzzyFloat      `json:"chartPreviousClose"`
	PreviousClose        FuzzyFloat      `json:"previousClose"`
	Scale                *int            `json:"scale"`
	PriceHint            int             `json:"priceHint"`
	CurrentTradingPeriod *PeriodBounds   `json:"currentTradingPeriod"`
	TradingPeriods       *TradingPeriods `json:"tradingPeriods"`
	DataGranularity      string          `json:"dataGranularity"`
	Range                string          `json:"range"`
	ValidRanges          []string        `json:"validRanges"`
}

// PeriodBounds holds the pre, regular and post session windows of a single
// trading day.
type PeriodBounds struct {
	Pre     *TradingPeriod `json:"pre"`
	Regular *TradingPeriod `json:"regular"`
	Post    *TradingPeriod `json:"post"`
}

// TradingPeriod is one session window.
type TradingPeriod struct {
	Timezone  string `json:"timezone"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	GMTOffset int64  `json:"gmtoffset"`
}

// TradingPeriods lists the session windows covered by the response. The
// endpoint serializes this either as a bare array of arrays (regular sessions
// only) or as an object with pre, regular and post keys, so decoding branches
// on the leading byte.
type TradingPeriods struct {
	Pre     [][]TradingPeriod
	Regular [][]TradingPeriod
	Post    [][]TradingPeriod
}

func (t *TradingPeriods) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &t.Regular)
	}
	var obj struct {
		Pre     [][]TradingPeriod `json:"pre"`
		Regular [][]TradingPeriod `json:"regular"`
		Post    [][]TradingPeriod `json:"post"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	t.Pre = obj.Pre
	t.Regular = obj.Regular
	t.Post = obj.Post
	return nil
}

func (t TradingPeriods) MarshalJSON() ([]byte, error) {
	if t.Pre == nil && t.Post == nil {
		return json.Marshal(t.Regular)
	}
	return json.Marshal(struct {
		Pre     [][]TradingPeriod `json:"pre"`
		Regular [][]TradingPeriod `json:"regular"`
		Post    [][]TradingPeriod `json:"post"`
	}{t.Pre, t.Regular, t.Post})
}

// Events holds the corporate actions reported alongside the price series,
// keyed by the timestamp of the action.
type Events struct {
	Dividends    map[string]Dividend    `json:"dividends"`
	Splits       map[string]Split       `json:"splits"`
	CapitalGains map[string]CapitalGain `json:"capitalGains"`
}

// Dividend is a single cash dividend.
type Dividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// Split is a single stock split.
type Split struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
	SplitRatio  string  `json:"splitRatio"`
}

// CapitalGain is a single capital gain distribution (funds only).
type CapitalGain struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// Indicators holds the parallel price arrays.
type Indicators struct {
	Quote    []QuoteColumns `json:"quote"`
	AdjClose []AdjClose     `json:"adjclose"`
}

// QuoteColumns is the column-oriented OHLCV block. Each slice runs parallel
// to the response's timestamp slice, with null entries for missing values.
type QuoteColumns struct {
	Open   []FuzzyFloat `json:"open"`
	High   []FuzzyFloat `json:"high"`
	Low    []FuzzyFloat `json:"low"`
	Close  []FuzzyFloat `json:"close"`
	Volume []*uint64    `json:"volume"`
}

// AdjClose is the dividend/split-adjusted close column.
type AdjClose struct {
	AdjClose []FuzzyFloat `json:"adjclose"`
}

// getChart fetches and validates one chart query.
func (c *Client) getChart(ctx context.Context, ticker string, query url.Values) (*ChartResponse, error) {
	fullURL := c.endpoints.Chart + "/" + url.PathEscape(ticker) + "?" + query.Encode()

	var resp ChartResponse
	if err := c.getJSON(ctx, fullURL, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Result == nil && resp.Chart.Error != nil {
		return nil, &APIError{
			Code:        resp.Chart.Error.Code,
			Description: resp.Chart.Error.Description,
		}
	}
	return &resp, nil
}

// GetLatestQuotes returns the most recent month of quotes at the given
// interval. The latest quote is the last valid entry of the series.
func (c *Client) GetLatestQuotes(ctx context.Context, ticker, interval string) (*ChartResponse, error) {
	return c.GetQuoteRange(ctx, ticker, interval, "1mo")
}

// GetQuoteRange returns quotes covering a named range such as "1d", "1mo" or
// "max" at the given interval.
func (c *Client) GetQuoteRange(ctx context.Context, ticker, interval, rng string) (*ChartResponse, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("interval", interval)
	q.Set("range", rng)
	q.Set("events", chartEvents)
	return c.getChart(ctx, ticker, q)
}

// GetQuoteHistory returns daily quotes between start and end.
func (c *Client) GetQuoteHistory(ctx context.Context, ticker string, start, end time.Time) (*ChartResponse, error) {
	return c.GetQuoteHistoryInterval(ctx, ticker, start, end, "1d")
}

// GetQuoteHistoryInterval returns quotes between start and end at the given
// interval, regular sessions only.
func (c *Client) GetQuoteHistoryInterval(ctx context.Context, ticker string, start, end time.Time, interval string) (*ChartResponse, error) {
	return c.GetQuoteHistoryIntervalPrePost(ctx, ticker, start, end, interval, false)
}

// GetQuoteHistoryIntervalPrePost returns quotes between start and end at the
// given interval, optionally including pre and post market sessions.
func (c *Client) GetQuoteHistoryIntervalPrePost(ctx context.Context, ticker string, start, end time.Time, interval string, prepost bool) (*ChartResponse, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", interval)
	q.Set("includePrePost", strconv.FormatBool(prepost))
	q.Set("events", chartEvents)
	return c.getChart(ctx, ticker, q)
}

// GetQuotePeriodInterval returns quotes for a named period at the given
// interval, optionally including pre and post market sessions.
func (c *Client) GetQuotePeriodInterval(ctx context.Context, ticker, period, interval string, prepost bool) (*ChartResponse, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("period", period)
	q.Set("interval", interval)
	q.Set("includePrePost", strconv.FormatBool(prepost))
	q.Set("events", chartEvents)
	return c.getChart(ctx, ticker, q)
}
