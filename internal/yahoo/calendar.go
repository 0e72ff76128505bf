package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxEventLimit is the largest page size the visualization endpoint accepts.
const maxEventLimit = 250

// FinancialEvent is one calendar entry (earnings report, shareholder
// meeting or conference call) for an instrument.
type FinancialEvent struct {
	Date            time.Time
	EventType       string
	EPSEstimate     *float64
	ReportedEPS     *float64
	SurprisePercent *float64
	Timezone        *string
}

// calendarResponse is the envelope of the visualization endpoint.
type calendarResponse struct {
	Finance struct {
		Result []struct {
			Documents []calendarDocument `json:"documents"`
		} `json:"result"`
		Error *ResponseError `json:"error"`
	} `json:"finance"`
}

// calendarDocument is a columnar table: column labels plus untyped rows.
type calendarDocument struct {
	Columns []struct {
		Label string `json:"label"`
	} `json:"columns"`
	Rows [][]any `json:"rows"`
}

// calendarQuery is the request body of the visualization endpoint.
type calendarQuery struct {
	Size  uint32 `json:"size"`
	Query struct {
		Operator string   `json:"operator"`
		Operands []string `json:"operands"`
	} `json:"query"`
	SortField     string   `json:"sortField"`
	SortType      string   `json:"sortType"`
	EntityIDType  string   `json:"entityIdType"`
	IncludeFields []string `json:"includeFields"`
}

func newCalendarQuery(ticker string, limit uint32) calendarQuery {
	q := calendarQuery{
		Size:         limit,
		SortField:    "startdatetime",
		SortType:     "DESC",
		EntityIDType: "earnings",
		IncludeFields: []string{
			"startdatetime",
			"timeZoneShortName",
			"epsestimate",
			"epsactual",
			"epssurprisepct",
			"eventtype",
		},
	}
	q.Query.Operator = "eq"
	q.Query.Operands = []string{"ticker", ticker}
	return q
}

// GetFinancialEvents returns up to limit calendar events for the ticker,
// most recent first. The endpoint caps pages at 250 entries; larger limits
// are clamped.
func (c *Client) GetFinancialEvents(ctx context.Context, ticker string, limit uint32) ([]FinancialEvent, error) {
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrNoResult)
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	body, err := json.Marshal(newCalendarQuery(ticker, limit))
	if err != nil {
		return nil, fmt.Errorf("encode calendar query: %w", err)
	}

	for attempt := 0; ; attempt++ {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		q := url.Values{}
		q.Set("lang", "en-US")
		q.Set("region", "US")
		q.Set("crumb", c.currentCrumb())
		fullURL := c.endpoints.Calendar + "?" + q.Encode()

		resp, retry, err := c.postCalendar(ctx, fullURL, body)
		if err != nil {
			if retry && attempt < c.authRetries {
				c.invalidateCrumb()
				continue
			}
			return nil, err
		}

		if respErr := resp.Finance.Error; respErr != nil {
			if strings.Contains(respErr.Description, "Invalid Crumb") {
				if attempt < c.authRetries {
					c.invalidateCrumb()
					continue
				}
				return nil, fmt.Errorf("%w: %s", ErrInvalidCrumb, respErr.Description)
			}
			return nil, &APIError{Code: respErr.Code, Description: respErr.Description}
		}

		return parseCalendar(resp)
	}
}

// postCalendar performs one POST attempt. retry reports whether the failure
// is an authorization or parse failure worth a session refresh.
func (c *Client) postCalendar(ctx context.Context, fullURL string, body []byte) (*calendarResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, false, &RateLimitError{Context: fullURL}
	case httpResp.StatusCode == http.StatusUnauthorized:
		return nil, true, fmt.Errorf("%w: calendar", ErrUnauthorized)
	case httpResp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: calendar", ErrUnauthorized)
	case httpResp.StatusCode != http.StatusOK:
		return nil, false, &StatusError{StatusCode: httpResp.StatusCode, URL: fullURL}
	}

	var resp calendarResponse
	if err := decode(raw, &resp); err != nil {
		// An expired session sometimes manifests as a non-JSON body, so
		// a parse failure is worth one refresh.
		return nil, true, err
	}
	return &resp, false, nil
}

// parseCalendar flattens the columnar document into events. The column
// order is not fixed, so lookups go through a label index built once per
// response.
func parseCalendar(resp *calendarResponse) ([]FinancialEvent, error) {
	events := []FinancialEvent{}
	if len(resp.Finance.Result) == 0 {
		return events, nil
	}
	result := resp.Finance.Result[0]
	if len(result.Documents) == 0 {
		return events, nil
	}
	doc := result.Documents[0]
	if len(doc.Columns) == 0 {
		return nil, ErrDataInconsistency
	}

	index := make(map[string]int, len(doc.Columns))
	for i, col := range doc.Columns {
		index[col.Label] = i
	}

	for _, row := range doc.Rows {
		ev, err := parseCalendarRow(row, index)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseCalendarRow(row []any, index map[string]int) (FinancialEvent, error) {
	cell := func(label string) any {
		i, ok := index[label]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	dateStr, ok := cell("Event Start Date").(string)
	if !ok {
		return FinancialEvent{}, &MissingFieldError{Field: "Event Start Date"}
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		date, err = time.Parse("2006-01-02T15:04:05", dateStr)
		if err != nil {
			return FinancialEvent{}, &DeserializeError{
				Err: fmt.Errorf("event date %q: %w", dateStr, err),
			}
		}
	}

	ev := FinancialEvent{
		Date:      date,
		EventType: eventTypeName(cell("Event Type")),
	}
	if v, ok := cell("EPS Estimate").(float64); ok {
		ev.EPSEstimate = &v
	}
	if v, ok := cell("Reported EPS").(float64); ok {
		ev.ReportedEPS = &v
	}
	if v, ok := cell("Surprise (%)").(float64); ok {
		ev.SurprisePercent = &v
	}
	if v, ok := cell("Timezone short name").(string); ok {
		ev.Timezone = &v
	}
	return ev, nil
}

// eventTypeName maps the endpoint's numeric event type codes to names.
func eventTypeName(v any) string {
	var code string
	switch t := v.(type) {
	case string:
		code = t
	case float64:
		code = strconv.FormatInt(int64(t), 10)
	default:
		return "Unknown"
	}
	switch code {
	case "1":
		return "Call"
	case "2":
		return "Earnings"
	case "11":
		return "Meeting"
	}
	return code
}

// GetEarningsOnly returns the earnings reports for the ticker, filtering
// out meetings and calls.
func (c *Client) GetEarningsOnly(ctx context.Context, ticker string, limit uint32) ([]FinancialEvent, error) {
	all, err := c.GetFinancialEvents(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}
	earnings := make([]FinancialEvent, 0, len(all))
	for _, ev := range all {
		if ev.EventType == "Earnings" {
			earnings = append(earnings, ev)
		}
	}
	return earnings, nil
}
