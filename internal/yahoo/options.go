package yahoo

import (
	"context"
	"net/url"
)

// OptionChainResponse is the envelope of the v7 options endpoint.
type OptionChainResponse struct {
	OptionChain OptionChainResult `json:"optionChain"`
}

// OptionChainResult carries the chain blocks or an embedded error.
type OptionChainResult struct {
	Result []OptionChain  `json:"result"`
	Error  *ResponseError `json:"error"`
}

func (r *OptionChainResponse) embeddedError() *ResponseError {
	if r.OptionChain.Result == nil && r.OptionChain.Error != nil {
		return r.OptionChain.Error
	}
	return nil
}

// OptionChain is the full chain for one underlying.
type OptionChain struct {
	UnderlyingSymbol string         `json:"underlyingSymbol"`
	ExpirationDates  []int64        `json:"expirationDates"`
	Strikes          []float64      `json:"strikes"`
	HasMiniOptions   bool           `json:"hasMiniOptions"`
	Options          []OptionQuotes `json:"options"`
}

// OptionQuotes holds the call and put contracts for one expiration.
type OptionQuotes struct {
	ExpirationDate int64            `json:"expirationDate"`
	HasMiniOptions bool             `json:"hasMiniOptions"`
	Calls          []OptionContract `json:"calls"`
	Puts           []OptionContract `json:"puts"`
}

// OptionContract is one listed contract.
type OptionContract struct {
	ContractSymbol    string     `json:"contractSymbol"`
	Strike            float64    `json:"strike"`
	Currency          *string    `json:"currency"`
	LastPrice         FuzzyFloat `json:"lastPrice"`
	Change            FuzzyFloat `json:"change"`
	PercentChange     FuzzyFloat `json:"percentChange"`
	Volume            *uint64    `json:"volume"`
	OpenInterest      *uint64    `json:"openInterest"`
	Bid               FuzzyFloat `json:"bid"`
	Ask               FuzzyFloat `json:"ask"`
	ContractSize      *string    `json:"contractSize"`
	Expiration        int64      `json:"expiration"`
	LastTradeDate     *int64     `json:"lastTradeDate"`
	ImpliedVolatility FuzzyFloat `json:"impliedVolatility"`
	InTheMoney        bool       `json:"inTheMoney"`
}

// GetOptionChain returns the option chain for the underlying symbol.
func (c *Client) GetOptionChain(ctx context.Context, symbol string) (*OptionChain, error) {
	var resp OptionChainResponse
	err := c.getWithCrumb(ctx, c.endpoints.Options+"/"+url.PathEscape(symbol), url.Values{}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.OptionChain.Result == nil {
		return nil, ErrNoResult
	}
	if len(resp.OptionChain.Result) == 0 {
		return nil, ErrNoQuotes
	}
	return &resp.OptionChain.Result[0], nil
}
