package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const chartBody = `{
  "chart": {
    "result": [
      {
        "meta": {
          "currency": "USD",
          "symbol": "AAPL",
          "exchangeName": "NMS",
          "instrumentType": "EQUITY",
          "firstTradeDate": 345479400,
          "regularMarketTime": 1700254801,
          "gmtoffset": -18000,
          "timezone": "EST",
          "exchangeTimezoneName": "America/New_York",
          "regularMarketPrice": 189.71,
          "chartPreviousClose": 188.01,
          "priceHint": 2,
          "dataGranularity": "1d",
          "range": "1mo",
          "validRanges": ["1d", "5d", "1mo"]
        },
        "timestamp": [1700145000, 1700231400],
        "events": {
          "dividends": {
            "1699538600": {"amount": 0.24, "date": 1699538600}
          }
        },
        "indicators": {
          "quote": [
            {
              "open": [185.8, 189.5],
              "high": [186.0, "Infinity"],
              "low": [184.2, 188.6],
              "close": [185.6, null],
              "volume": [54412900, null]
            }
          ],
          "adjclose": [
            {"adjclose": [185.4, null]}
          ]
        }
      }
    ],
    "error": null
  }
}`

func TestGetQuoteRange(t *testing.T) {
	t.Run("decodes and assembles", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v8/finance/chart/AAPL" {
				t.Errorf("path = %q, want %q", r.URL.Path, "/v8/finance/chart/AAPL")
			}
			q := r.URL.Query()
			if q.Get("interval") != "1d" {
				t.Errorf("interval = %q, want %q", q.Get("interval"), "1d")
			}
			if q.Get("range") != "1mo" {
				t.Errorf("range = %q, want %q", q.Get("range"), "1mo")
			}
			if q.Get("events") != "div|split|capitalGains" {
				t.Errorf("events = %q, want %q", q.Get("events"), "div|split|capitalGains")
			}
			w.Write([]byte(chartBody))
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		resp, err := c.GetQuoteRange(context.Background(), "AAPL", "1d", "1mo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Second point has a null close and must be dropped.
		quotes, err := resp.Quotes()
		if err != nil {
			t.Fatalf("Quotes: %v", err)
		}
		if len(quotes) != 1 {
			t.Fatalf("len(quotes) = %d, want 1", len(quotes))
		}
		if quotes[0].Close != 185.6 {
			t.Errorf("Close = %v, want 185.6", quotes[0].Close)
		}
		if quotes[0].AdjClose != 185.4 {
			t.Errorf("AdjClose = %v, want 185.4", quotes[0].AdjClose)
		}

		meta, err := resp.Metadata()
		if err != nil {
			t.Fatalf("Metadata: %v", err)
		}
		if meta.Symbol != "AAPL" {
			t.Errorf("Symbol = %q, want %q", meta.Symbol, "AAPL")
		}
		if !meta.RegularMarketPrice.Valid || meta.RegularMarketPrice.Float64 != 189.71 {
			t.Errorf("RegularMarketPrice = %+v, want 189.71", meta.RegularMarketPrice)
		}

		divs := resp.Dividends()
		if len(divs) != 1 || divs[0].Amount != 0.24 {
			t.Errorf("Dividends = %+v, want one 0.24 entry", divs)
		}
	})

	t.Run("embedded error becomes APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetQuoteRange(context.Background(), "GONE", "1d", "1mo")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T: %v", err, err)
		}
		if apiErr.Code != "Not Found" {
			t.Errorf("Code = %q, want %q", apiErr.Code, "Not Found")
		}
	})
}

func TestGetQuoteHistoryParams(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	t.Run("period bounds and default interval", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("period1") != "1704067200" {
				t.Errorf("period1 = %q, want 1704067200", q.Get("period1"))
			}
			if q.Get("period2") != "1706745599" {
				t.Errorf("period2 = %q, want 1706745599", q.Get("period2"))
			}
			if q.Get("interval") != "1d" {
				t.Errorf("interval = %q, want 1d", q.Get("interval"))
			}
			if q.Get("includePrePost") != "false" {
				t.Errorf("includePrePost = %q, want false", q.Get("includePrePost"))
			}
			w.Write([]byte(chartBody))
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		if _, err := c.GetQuoteHistory(context.Background(), "AAPL", start, end); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("prepost flag", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("includePrePost") != "true" {
				t.Errorf("includePrePost = %q, want true", r.URL.Query().Get("includePrePost"))
			}
			w.Write([]byte(chartBody))
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetQuoteHistoryIntervalPrePost(context.Background(), "AAPL", start, end, "5m", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("period interval query", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("period") != "5d" {
				t.Errorf("period = %q, want 5d", q.Get("period"))
			}
			if q.Get("interval") != "15m" {
				t.Errorf("interval = %q, want 15m", q.Get("interval"))
			}
			w.Write([]byte(chartBody))
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetQuotePeriodInterval(context.Background(), "AAPL", "5d", "15m", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestTradingPeriodsDecode(t *testing.T) {
	t.Run("array form fills regular", func(t *testing.T) {
		var tp TradingPeriods
		data := `[[{"timezone":"EST","start":1700231400,"end":1700254800,"gmtoffset":-18000}]]`
		if err := json.Unmarshal([]byte(data), &tp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tp.Regular) != 1 || len(tp.Regular[0]) != 1 {
			t.Fatalf("Regular = %+v, want one session", tp.Regular)
		}
		if tp.Regular[0][0].Timezone != "EST" {
			t.Errorf("Timezone = %q, want EST", tp.Regular[0][0].Timezone)
		}
		if tp.Pre != nil || tp.Post != nil {
			t.Error("Pre/Post should stay nil for the array form")
		}
	})

	t.Run("object form fills all sessions", func(t *testing.T) {
		var tp TradingPeriods
		data := `{
			"pre":     [[{"timezone":"EST","start":1,"end":2,"gmtoffset":0}]],
			"regular": [[{"timezone":"EST","start":2,"end":3,"gmtoffset":0}]],
			"post":    [[{"timezone":"EST","start":3,"end":4,"gmtoffset":0}]]
		}`
		if err := json.Unmarshal([]byte(data), &tp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tp.Pre) != 1 || len(tp.Regular) != 1 || len(tp.Post) != 1 {
			t.Fatalf("sessions = %+v, want all three", tp)
		}
		if tp.Regular[0][0].Start != 2 {
			t.Errorf("Regular start = %d, want 2", tp.Regular[0][0].Start)
		}
	})

	t.Run("null leaves zero value", func(t *testing.T) {
		var tp TradingPeriods
		if err := json.Unmarshal([]byte(`null`), &tp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tp.Pre != nil || tp.Regular != nil || tp.Post != nil {
			t.Errorf("expected zero value, got %+v", tp)
		}
	})
}
