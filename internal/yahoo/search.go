package yahoo

import (
	"context"
	"net/url"

	"github.com/google/uuid"
)

// SearchResultOpt is the raw envelope of the search endpoint. Fields the
// endpoint omits for some instrument types stay nil.
type SearchResultOpt struct {
	Count  uint32         `json:"count"`
	Quotes []QuoteItemOpt `json:"quotes"`
	News   []NewsItem     `json:"news"`
}

// QuoteItemOpt is one matched instrument with per-field optionality.
type QuoteItemOpt struct {
	Exchange       *string  `json:"exchange"`
	ShortName      *string  `json:"shortname"`
	QuoteType      *string  `json:"quoteType"`
	Symbol         *string  `json:"symbol"`
	Index          *string  `json:"index"`
	Score          *float64 `json:"score"`
	TypeDisplay    *string  `json:"typeDisp"`
	LongName       *string  `json:"longname"`
	IsYahooFinance *bool    `json:"isYahooFinance"`
}

// SearchResult is the defaulted form of a search response: missing strings
// become empty and missing numbers become zero.
type SearchResult struct {
	Count  uint32
	Quotes []QuoteItem
	News   []NewsItem
}

// QuoteItem is one matched instrument with defaults applied.
type QuoteItem struct {
	Exchange       string
	ShortName      string
	QuoteType      string
	Symbol         string
	Index          string
	Score          float64
	TypeDisplay    string
	LongName       string
	IsYahooFinance bool
}

// NewsItem is one news article attached to a search response.
type NewsItem struct {
	UUID                uuid.UUID `json:"uuid"`
	Title               string    `json:"title"`
	Publisher           string    `json:"publisher"`
	Link                string    `json:"link"`
	ProviderPublishTime uint64    `json:"providerPublishTime"`
	Type                string    `json:"type"`
}

func (q QuoteItemOpt) defaulted() QuoteItem {
	item := QuoteItem{}
	if q.Exchange != nil {
		item.Exchange = *q.Exchange
	}
	if q.ShortName != nil {
		item.ShortName = *q.ShortName
	}
	if q.QuoteType != nil {
		item.QuoteType = *q.QuoteType
	}
	if q.Symbol != nil {
		item.Symbol = *q.Symbol
	}
	if q.Index != nil {
		item.Index = *q.Index
	}
	if q.Score != nil {
		item.Score = *q.Score
	}
	if q.TypeDisplay != nil {
		item.TypeDisplay = *q.TypeDisplay
	}
	if q.LongName != nil {
		item.LongName = *q.LongName
	}
	if q.IsYahooFinance != nil {
		item.IsYahooFinance = *q.IsYahooFinance
	}
	return item
}

// SearchTickerOpt matches instruments by name or symbol and returns the raw
// response with per-field optionality preserved.
func (c *Client) SearchTickerOpt(ctx context.Context, query string) (*SearchResultOpt, error) {
	q := url.Values{}
	q.Set("q", query)

	var resp SearchResultOpt
	if err := c.getJSON(ctx, c.endpoints.Search+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchTicker matches instruments by name or symbol, substituting zero
// values for fields the endpoint omitted.
func (c *Client) SearchTicker(ctx context.Context, query string) (*SearchResult, error) {
	opt, err := c.SearchTickerOpt(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{
		Count:  opt.Count,
		Quotes: make([]QuoteItem, 0, len(opt.Quotes)),
		News:   opt.News,
	}
	for _, q := range opt.Quotes {
		result.Quotes = append(result.Quotes, q.defaulted())
	}
	return result, nil
}
