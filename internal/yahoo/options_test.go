package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const optionChainBody = `{
  "optionChain": {
    "result": [
      {
        "underlyingSymbol": "AAPL",
        "expirationDates": [1708041600, 1708646400],
        "strikes": [180.0, 185.0, 190.0],
        "hasMiniOptions": false,
        "options": [
          {
            "expirationDate": 1708041600,
            "hasMiniOptions": false,
            "calls": [
              {
                "contractSymbol": "AAPL240216C00185000",
                "strike": 185.0,
                "currency": "USD",
                "lastPrice": 6.15,
                "change": 0.45,
                "percentChange": 7.89,
                "volume": 1200,
                "openInterest": 9500,
                "bid": 6.10,
                "ask": 6.20,
                "contractSize": "REGULAR",
                "expiration": 1708041600,
                "lastTradeDate": 1707954300,
                "impliedVolatility": 0.2312,
                "inTheMoney": true
              }
            ],
            "puts": [
              {
                "contractSymbol": "AAPL240216P00185000",
                "strike": 185.0,
                "lastPrice": 1.05,
                "change": -0.12,
                "percentChange": -10.26,
                "bid": 1.02,
                "ask": 1.08,
                "expiration": 1708041600,
                "impliedVolatility": 0.1998,
                "inTheMoney": false
              }
            ]
          }
        ]
      }
    ],
    "error": null
  }
}`

func TestGetOptionChain(t *testing.T) {
	t.Run("decodes contracts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				w.Write([]byte("opt-crumb"))
			case "/v7/finance/options/AAPL":
				if r.URL.Query().Get("crumb") != "opt-crumb" {
					t.Errorf("crumb = %q, want opt-crumb", r.URL.Query().Get("crumb"))
				}
				w.Write([]byte(optionChainBody))
			default:
				t.Errorf("unexpected path %q", r.URL.Path)
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		chain, err := c.GetOptionChain(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chain.UnderlyingSymbol != "AAPL" {
			t.Errorf("UnderlyingSymbol = %q, want AAPL", chain.UnderlyingSymbol)
		}
		if len(chain.Strikes) != 3 {
			t.Errorf("len(Strikes) = %d, want 3", len(chain.Strikes))
		}
		if len(chain.Options) != 1 {
			t.Fatalf("len(Options) = %d, want 1", len(chain.Options))
		}

		call := chain.Options[0].Calls[0]
		if call.ContractSymbol != "AAPL240216C00185000" {
			t.Errorf("ContractSymbol = %q", call.ContractSymbol)
		}
		if !call.InTheMoney {
			t.Error("InTheMoney = false, want true")
		}
		if call.Volume == nil || *call.Volume != 1200 {
			t.Errorf("Volume = %v, want 1200", call.Volume)
		}

		put := chain.Options[0].Puts[0]
		if put.Volume != nil {
			t.Errorf("put Volume = %v, want nil", put.Volume)
		}
		if !put.LastPrice.Valid || put.LastPrice.Float64 != 1.05 {
			t.Errorf("put LastPrice = %+v, want 1.05", put.LastPrice)
		}
	})

	t.Run("empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/cookie":
				http.SetCookie(w, &http.Cookie{Name: "A3", Value: "tok", Path: "/"})
			case "/v1/test/getcrumb":
				w.Write([]byte("opt-crumb"))
			default:
				w.Write([]byte(`{"optionChain":{"result":[],"error":null}}`))
			}
		}))
		defer srv.Close()

		c := newTestClient(t, srv)
		_, err := c.GetOptionChain(context.Background(), "AAPL")
		if !errors.Is(err, ErrNoQuotes) {
			t.Fatalf("expected ErrNoQuotes, got %v", err)
		}
	})
}
