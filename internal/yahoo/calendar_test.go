package yahoo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// calendarBody has its columns deliberately out of includeFields order to
// exercise the label index.
const calendarBody = `{
  "finance": {
    "result": [
      {
        "documents": [
          {
            "columns": [
              {"label": "Event Type"},
              {"label": "Event Start Date"},
              {"label": "EPS Estimate"},
              {"label": "Reported EPS"},
              {"label": "Surprise (%)"},
              {"label": "Timezone short name"}
            ],
            "rows": [
              [2, "2024-02-01T21:00:00Z", 2.1, 2.18, 3.8, "EST"],
              [11, "2024-02-28T17:00:00Z", null, null, null, "EST"],
              [1, "2024-05-02T21:00:00Z", 1.5, null, null, null]
            ]
          }
        ],
        "error": null
      }
    ],
    "error": null
  }
}`

func calendarSession(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cookie":
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
		case "/v1/test/getcrumb":
			w.Write([]byte("cal-crumb"))
		default:
			handler(w, r)
		}
	}))
}

func TestGetFinancialEvents(t *testing.T) {
	t.Run("parses events and maps type codes", func(t *testing.T) {
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1/finance/visualization", r.URL.Path)
			require.Equal(t, "cal-crumb", r.URL.Query().Get("crumb"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var q calendarQuery
			require.NoError(t, json.Unmarshal(body, &q))
			require.EqualValues(t, 100, q.Size)
			require.Equal(t, []string{"ticker", "AAPL"}, q.Query.Operands)

			w.Write([]byte(calendarBody))
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		events, err := c.GetFinancialEvents(context.Background(), "AAPL", 100)
		require.NoError(t, err)
		require.Len(t, events, 3)

		require.Equal(t, "Earnings", events[0].EventType)
		require.Equal(t, time.Date(2024, 2, 1, 21, 0, 0, 0, time.UTC), events[0].Date)
		require.NotNil(t, events[0].EPSEstimate)
		require.Equal(t, 2.1, *events[0].EPSEstimate)
		require.Equal(t, 3.8, *events[0].SurprisePercent)

		require.Equal(t, "Meeting", events[1].EventType)
		require.Nil(t, events[1].EPSEstimate)

		require.Equal(t, "Call", events[2].EventType)
		require.Nil(t, events[2].Timezone)
	})

	t.Run("limit clamped to endpoint maximum", func(t *testing.T) {
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var q calendarQuery
			require.NoError(t, json.Unmarshal(body, &q))
			require.EqualValues(t, maxEventLimit, q.Size)
			w.Write([]byte(calendarBody))
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetFinancialEvents(context.Background(), "AAPL", 5000)
		require.NoError(t, err)
	})

	t.Run("empty ticker rejected without a request", func(t *testing.T) {
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetFinancialEvents(context.Background(), "", 10)
		require.Error(t, err)
	})

	t.Run("401 triggers one crumb refresh", func(t *testing.T) {
		var dataCalls int32
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&dataCalls, 1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(calendarBody))
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		events, err := c.GetFinancialEvents(context.Background(), "AAPL", 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		require.EqualValues(t, 2, dataCalls)
	})

	t.Run("429 is terminal", func(t *testing.T) {
		var dataCalls int32
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&dataCalls, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetFinancialEvents(context.Background(), "AAPL", 10)
		var rle *RateLimitError
		require.ErrorAs(t, err, &rle)
		require.EqualValues(t, 1, dataCalls)
	})

	t.Run("missing date column fails", func(t *testing.T) {
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"finance":{"result":[{"documents":[{"columns":[{"label":"Event Type"}],"rows":[[2]]}]}],"error":null}}`))
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetFinancialEvents(context.Background(), "AAPL", 10)
		var mfe *MissingFieldError
		require.ErrorAs(t, err, &mfe)
		require.Equal(t, "Event Start Date", mfe.Field)
	})

	t.Run("no documents yields empty slice", func(t *testing.T) {
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"finance":{"result":[],"error":null}}`))
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		events, err := c.GetFinancialEvents(context.Background(), "AAPL", 10)
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Empty(t, events)
	})

	t.Run("document without columns is inconsistent", func(t *testing.T) {
		srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"finance":{"result":[{"documents":[{"columns":[],"rows":[]}]}],"error":null}}`))
		})
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetFinancialEvents(context.Background(), "AAPL", 10)
		require.ErrorIs(t, err, ErrDataInconsistency)
	})
}

func TestGetEarningsOnly(t *testing.T) {
	srv := calendarSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(calendarBody))
	})
	defer srv.Close()

	c := newTestClient(t, srv)
	events, err := c.GetEarningsOnly(context.Background(), "AAPL", 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Earnings", events[0].EventType)
}

func TestEventTypeName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{float64(1), "Call"},
		{float64(2), "Earnings"},
		{float64(11), "Meeting"},
		{"2", "Earnings"},
		{"Conference", "Conference"},
		{float64(99), "99"},
		{nil, "Unknown"},
	}
	for _, tt := range tests {
		if got := eventTypeName(tt.in); got != tt.want {
			t.Errorf("eventTypeName(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
