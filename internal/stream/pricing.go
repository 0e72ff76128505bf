package stream

import (
	"encoding/base64"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// MarketHours identifies the session a pricing update belongs to.
type MarketHours int64

const (
	PreMarket MarketHours = iota
	RegularMarket
	PostMarket
	ExtendedHoursMarket
)

// String returns a readable session name.
func (m MarketHours) String() string {
	switch m {
	case PreMarket:
		return "pre"
	case RegularMarket:
		return "regular"
	case PostMarket:
		return "post"
	case ExtendedHoursMarket:
		return "extended"
	default:
		return fmt.Sprintf("unknown(%d)", int64(m))
	}
}

// PricingUpdate is a decoded live quote frame from the streamer.
type PricingUpdate struct {
	ID            string // Symbol, e.g. "AAPL"
	Price         float64
	Time          int64 // Exchange timestamp, milliseconds
	Currency      string
	Exchange      string
	QuoteType     int64
	MarketHours   MarketHours
	ChangePercent float64
	DayVolume     int64
	DayHigh       float64
	DayLow        float64
	Change        float64
	OpenPrice     float64
	PreviousClose float64
	LastSize      int64
	Bid           float64
	BidSize       int64
	Ask           float64
	AskSize       int64
	PriceHint     int64
}

// Streamer frame field numbers. The streamer encodes updates as a
// protobuf message wrapped in base64; fields not listed here are skipped.
const (
	fieldID            = 1
	fieldPrice         = 2
	fieldTime          = 3
	fieldCurrency      = 4
	fieldExchange      = 5
	fieldQuoteType     = 6
	fieldMarketHours   = 7
	fieldChangePercent = 8
	fieldDayVolume     = 9
	fieldDayHigh       = 10
	fieldDayLow        = 11
	fieldChange        = 12
	fieldOpenPrice     = 15
	fieldPreviousClose = 16
	fieldLastSize      = 22
	fieldBid           = 23
	fieldBidSize       = 24
	fieldAsk           = 25
	fieldAskSize       = 26
	fieldPriceHint     = 27
)

// DecodePricing decodes a base64-encoded pricing frame.
func DecodePricing(frame []byte) (*PricingUpdate, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(frame)))
	n, err := base64.StdEncoding.Decode(raw, frame)
	if err != nil {
		return nil, fmt.Errorf("decode pricing frame: %w", err)
	}
	return decodePricingBytes(raw[:n])
}

// decodePricingBytes walks the raw wire format with protowire. The message
// is a flat set of scalar fields, so no generated code is involved.
func decodePricingBytes(data []byte) (*PricingUpdate, error) {
	u := &PricingUpdate{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("pricing frame: bad field tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		field := int(num)

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("pricing frame: bad varint in field %d: %w", field, protowire.ParseError(n))
			}
			data = data[n:]
			u.setVarint(field, v)

		case protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, fmt.Errorf("pricing frame: truncated fixed32 in field %d: %w", field, protowire.ParseError(n))
			}
			data = data[n:]
			u.setFloat(field, float64(math.Float32frombits(bits)))

		case protowire.BytesType:
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("pricing frame: truncated bytes in field %d: %w", field, protowire.ParseError(n))
			}
			data = data[n:]
			u.setString(field, string(b))

		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, fmt.Errorf("pricing frame: truncated fixed64 in field %d: %w", field, protowire.ParseError(n))
			}
			data = data[n:]

		default:
			return nil, fmt.Errorf("pricing frame: unsupported wire type %d in field %d", typ, field)
		}
	}

	return u, nil
}

// setVarint assigns a varint-encoded field. Timestamps and sizes use
// zigzag encoding; enums are plain varints.
func (u *PricingUpdate) setVarint(field int, v uint64) {
	switch field {
	case fieldTime:
		u.Time = protowire.DecodeZigZag(v)
	case fieldQuoteType:
		u.QuoteType = int64(v)
	case fieldMarketHours:
		u.MarketHours = MarketHours(v)
	case fieldDayVolume:
		u.DayVolume = protowire.DecodeZigZag(v)
	case fieldLastSize:
		u.LastSize = protowire.DecodeZigZag(v)
	case fieldBidSize:
		u.BidSize = protowire.DecodeZigZag(v)
	case fieldAskSize:
		u.AskSize = protowire.DecodeZigZag(v)
	case fieldPriceHint:
		u.PriceHint = protowire.DecodeZigZag(v)
	}
}

func (u *PricingUpdate) setFloat(field int, v float64) {
	switch field {
	case fieldPrice:
		u.Price = v
	case fieldChangePercent:
		u.ChangePercent = v
	case fieldDayHigh:
		u.DayHigh = v
	case fieldDayLow:
		u.DayLow = v
	case fieldChange:
		u.Change = v
	case fieldOpenPrice:
		u.OpenPrice = v
	case fieldPreviousClose:
		u.PreviousClose = v
	case fieldBid:
		u.Bid = v
	case fieldAsk:
		u.Ask = v
	}
}

func (u *PricingUpdate) setString(field int, v string) {
	switch field {
	case fieldID:
		u.ID = v
	case fieldCurrency:
		u.Currency = v
	case fieldExchange:
		u.Exchange = v
	}
}
