package yahoo

import (
	"sort"
)

// Quote is one assembled OHLCV bar. Bars whose close is missing are dropped
// during assembly; any other missing column defaults to zero.
type Quote struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    uint64  `json:"volume"`
	Close     float64 `json:"close"`
	AdjClose  float64 `json:"adjclose"`
}

// checkConsistency verifies that every price column of every result block
// runs parallel to its timestamp slice.
func (b *ChartBlock) checkConsistency() error {
	n := len(b.Timestamp)
	if n == 0 {
		return ErrNoQuotes
	}
	if b.Indicators == nil || len(b.Indicators.Quote) == 0 {
		return ErrDataInconsistency
	}
	for _, q := range b.Indicators.Quote {
		if len(q.Open) != n || len(q.High) != n || len(q.Low) != n ||
			len(q.Close) != n || len(q.Volume) != n {
			return ErrDataInconsistency
		}
	}
	for _, a := range b.Indicators.AdjClose {
		if len(a.AdjClose) != n {
			return ErrDataInconsistency
		}
	}
	return nil
}

// quoteAt assembles the bar at index i, or false when the close at i is
// missing.
func (b *ChartBlock) quoteAt(i int) (Quote, bool) {
	cols := b.Indicators.Quote[0]
	if !cols.Close[i].Valid {
		return Quote{}, false
	}

	q := Quote{
		Timestamp: b.Timestamp[i],
		Open:      cols.Open[i].Float64,
		High:      cols.High[i].Float64,
		Low:       cols.Low[i].Float64,
		Close:     cols.Close[i].Float64,
	}
	if cols.Volume[i] != nil {
		q.Volume = *cols.Volume[i]
	}
	if len(b.Indicators.AdjClose) > 0 && b.Indicators.AdjClose[0].AdjClose[i].Valid {
		q.AdjClose = b.Indicators.AdjClose[0].AdjClose[i].Float64
	}
	return q, true
}

// firstBlock validates every result block and returns the first one.
func (r *ChartResponse) firstBlock() (*ChartBlock, error) {
	if r.Chart.Result == nil {
		return nil, ErrNoResult
	}
	if len(r.Chart.Result) == 0 {
		return nil, ErrNoQuotes
	}
	for _, b := range r.Chart.Result {
		if err := b.checkConsistency(); err != nil {
			return nil, err
		}
	}
	return r.Chart.Result[0], nil
}

// Quotes assembles the bar series of the first result block, skipping
// entries whose close is missing.
func (r *ChartResponse) Quotes() ([]Quote, error) {
	block, err := r.firstBlock()
	if err != nil {
		return nil, err
	}
	quotes := make([]Quote, 0, len(block.Timestamp))
	for i := range block.Timestamp {
		if q, ok := block.quoteAt(i); ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// LastQuote returns the most recent bar with a valid close.
func (r *ChartResponse) LastQuote() (Quote, error) {
	block, err := r.firstBlock()
	if err != nil {
		return Quote{}, err
	}
	for i := len(block.Timestamp) - 1; i >= 0; i-- {
		if q, ok := block.quoteAt(i); ok {
			return q, nil
		}
	}
	return Quote{}, ErrNoQuotes
}

// Metadata returns the first result block's metadata without requiring a
// consistent price series.
func (r *ChartResponse) Metadata() (*Metadata, error) {
	if r.Chart.Result == nil {
		return nil, ErrNoResult
	}
	if len(r.Chart.Result) == 0 {
		return nil, ErrNoQuotes
	}
	return &r.Chart.Result[0].Meta, nil
}

func (r *ChartResponse) events() *Events {
	if r.Chart.Result == nil || len(r.Chart.Result) == 0 {
		return nil
	}
	return r.Chart.Result[0].Events
}

// Dividends returns the first block's dividends in ascending date order. The
// result is empty, never nil, when the response carries none.
func (r *ChartResponse) Dividends() []Dividend {
	out := []Dividend{}
	if ev := r.events(); ev != nil {
		for _, d := range ev.Dividends {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Splits returns the first block's splits in ascending date order.
func (r *ChartResponse) Splits() []Split {
	out := []Split{}
	if ev := r.events(); ev != nil {
		for _, s := range ev.Splits {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CapitalGains returns the first block's capital gain distributions in
// ascending date order.
func (r *ChartResponse) CapitalGains() []CapitalGain {
	out := []CapitalGain{}
	if ev := r.events(); ev != nil {
		for _, g := range ev.CapitalGains {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
