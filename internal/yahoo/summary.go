package yahoo

import (
	"context"
	"net/url"
	"strings"
)

// summaryModules selects the quoteSummary modules fetched by GetTickerInfo.
var summaryModules = []string{
	"assetProfile",
	"summaryDetail",
	"defaultKeyStatistics",
	"quoteType",
	"financialData",
}

// SummaryResponse is the envelope of the quoteSummary endpoint.
type SummaryResponse struct {
	QuoteSummary SummaryResult `json:"quoteSummary"`
}

// SummaryResult carries the requested module blocks or an embedded error.
type SummaryResult struct {
	Result []TickerInfo   `json:"result"`
	Error  *ResponseError `json:"error"`
}

func (r *SummaryResponse) embeddedError() *ResponseError {
	if r.QuoteSummary.Result == nil && r.QuoteSummary.Error != nil {
		return r.QuoteSummary.Error
	}
	return nil
}

// TickerInfo groups the module blocks for one instrument. Blocks the
// endpoint does not provide for the instrument type stay nil.
type TickerInfo struct {
	AssetProfile         *AssetProfile         `json:"assetProfile"`
	SummaryDetail        *SummaryDetail        `json:"summaryDetail"`
	DefaultKeyStatistics *DefaultKeyStatistics `json:"defaultKeyStatistics"`
	QuoteType            *QuoteType            `json:"quoteType"`
	FinancialData        *FinancialData        `json:"financialData"`
}

// AssetProfile describes the company behind an equity.
type AssetProfile struct {
	Address1                 *string          `json:"address1"`
	City                     *string          `json:"city"`
	State                    *string          `json:"state"`
	Zip                      *string          `json:"zip"`
	Country                  *string          `json:"country"`
	Phone                    *string          `json:"phone"`
	Website                  *string          `json:"website"`
	Industry                 *string          `json:"industry"`
	Sector                   *string          `json:"sector"`
	LongBusinessSummary      *string          `json:"longBusinessSummary"`
	FullTimeEmployees        *uint32          `json:"fullTimeEmployees"`
	CompanyOfficers          []CompanyOfficer `json:"companyOfficers"`
	AuditRisk                *uint16          `json:"auditRisk"`
	BoardRisk                *uint16          `json:"boardRisk"`
	CompensationRisk         *uint16          `json:"compensationRisk"`
	ShareHolderRightsRisk    *uint16          `json:"shareHolderRightsRisk"`
	OverallRisk              *uint16          `json:"overallRisk"`
	GovernanceEpochDate      *uint32          `json:"governanceEpochDate"`
	CompensationAsOfEpochDate *uint32         `json:"compensationAsOfEpochDate"`
	IRWebsite                *string          `json:"irWebsite"`
	MaxAge                   *uint32          `json:"maxAge"`
}

// CompanyOfficer is one entry of the assetProfile officer list.
type CompanyOfficer struct {
	Name       string        `json:"name"`
	Age        *uint32       `json:"age"`
	Title      string        `json:"title"`
	YearBorn   *uint32       `json:"yearBorn"`
	FiscalYear *uint32       `json:"fiscalYear"`
	TotalPay   *WrappedValue `json:"totalPay"`
}

// WrappedValue is the raw/formatted pair some summary fields use.
type WrappedValue struct {
	Raw     *int64  `json:"raw"`
	Fmt     *string `json:"fmt"`
	LongFmt *string `json:"longFmt"`
}

// SummaryDetail is the summaryDetail module. Ratio fields use FuzzyFloat
// since the endpoint spells unbounded ratios as the string "Infinity".
type SummaryDetail struct {
	MaxAge                       *int64     `json:"maxAge"`
	PriceHint                    *int64     `json:"priceHint"`
	PreviousClose                *float64   `json:"previousClose"`
	Open                         *float64   `json:"open"`
	DayLow                       *float64   `json:"dayLow"`
	DayHigh                      *float64   `json:"dayHigh"`
	RegularMarketPreviousClose   *float64   `json:"regularMarketPreviousClose"`
	RegularMarketOpen            *float64   `json:"regularMarketOpen"`
	RegularMarketDayLow          *float64   `json:"regularMarketDayLow"`
	RegularMarketDayHigh         *float64   `json:"regularMarketDayHigh"`
	DividendRate                 *float64   `json:"dividendRate"`
	DividendYield                *float64   `json:"dividendYield"`
	ExDividendDate               *int64     `json:"exDividendDate"`
	PayoutRatio                  *float64   `json:"payoutRatio"`
	FiveYearAvgDividendYield     *float64   `json:"fiveYearAvgDividendYield"`
	Beta                         *float64   `json:"beta"`
	TrailingPE                   FuzzyFloat `json:"trailingPE"`
	ForwardPE                    FuzzyFloat `json:"forwardPE"`
	Volume                       *uint64    `json:"volume"`
	RegularMarketVolume          *uint64    `json:"regularMarketVolume"`
	AverageVolume                *uint64    `json:"averageVolume"`
	AverageVolume10Days          *uint64    `json:"averageVolume10days"`
	AverageDailyVolume10Day      *uint64    `json:"averageDailyVolume10Day"`
	Bid                          *float64   `json:"bid"`
	Ask                          *float64   `json:"ask"`
	BidSize                      *int64     `json:"bidSize"`
	AskSize                      *int64     `json:"askSize"`
	MarketCap                    *uint64    `json:"marketCap"`
	FiftyTwoWeekLow              *float64   `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh             *float64   `json:"fiftyTwoWeekHigh"`
	PriceToSalesTrailing12Months FuzzyFloat `json:"priceToSalesTrailing12Months"`
	FiftyDayAverage              *float64   `json:"fiftyDayAverage"`
	TwoHundredDayAverage         *float64   `json:"twoHundredDayAverage"`
	TrailingAnnualDividendRate   *float64   `json:"trailingAnnualDividendRate"`
	TrailingAnnualDividendYield  FuzzyFloat `json:"trailingAnnualDividendYield"`
	Currency                     *string    `json:"currency"`
	FromCurrency                 *string    `json:"fromCurrency"`
	ToCurrency                   *string    `json:"toCurrency"`
	LastMarket                   *string    `json:"lastMarket"`
	CoinMarketCapLink            *string    `json:"coinMarketCapLink"`
	Algorithm                    *string    `json:"algorithm"`
	Tradeable                    *bool      `json:"tradeable"`
	ExpireDate                   *uint32    `json:"expireDate"`
	StrikePrice                  *uint32    `json:"strikePrice"`
	OpenInterest                 FuzzyFloat `json:"openInterest"`
}

// DefaultKeyStatistics is the defaultKeyStatistics module.
type DefaultKeyStatistics struct {
	MaxAge                       *int64     `json:"maxAge"`
	PriceHint                    *uint64    `json:"priceHint"`
	EnterpriseValue              *int64     `json:"enterpriseValue"`
	ForwardPE                    FuzzyFloat `json:"forwardPE"`
	ProfitMargins                *float64   `json:"profitMargins"`
	FloatShares                  *uint64    `json:"floatShares"`
	SharesOutstanding            *uint64    `json:"sharesOutstanding"`
	SharesShort                  *uint64    `json:"sharesShort"`
	SharesShortPriorMonth        *uint64    `json:"sharesShortPriorMonth"`
	SharesShortPreviousMonthDate *uint64    `json:"sharesShortPreviousMonthDate"`
	DateShortInterest            *int64     `json:"dateShortInterest"`
	SharesPercentSharesOut       *float64   `json:"sharesPercentSharesOut"`
	HeldPercentInsiders          *float64   `json:"heldPercentInsiders"`
	HeldPercentInstitutions      *float64   `json:"heldPercentInstitutions"`
	ShortRatio                   *float64   `json:"shortRatio"`
	ShortPercentOfFloat          *float64   `json:"shortPercentOfFloat"`
	Beta                         *float64   `json:"beta"`
	ImpliedSharesOutstanding     *uint64    `json:"impliedSharesOutstanding"`
	Category                     *string    `json:"category"`
	BookValue                    *float64   `json:"bookValue"`
	PriceToBook                  *float64   `json:"priceToBook"`
	FundFamily                   *string    `json:"fundFamily"`
	FundInceptionDate            *uint32    `json:"fundInceptionDate"`
	LegalType                    *string    `json:"legalType"`
	LastFiscalYearEnd            *int64     `json:"lastFiscalYearEnd"`
	NextFiscalYearEnd            *int64     `json:"nextFiscalYearEnd"`
	MostRecentQuarter            *int64     `json:"mostRecentQuarter"`
	EarningsQuarterlyGrowth      *float64   `json:"earningsQuarterlyGrowth"`
	NetIncomeToCommon            *int64     `json:"netIncomeToCommon"`
	TrailingEPS                  *float64   `json:"trailingEps"`
	ForwardEPS                   *float64   `json:"forwardEps"`
	LastSplitFactor              *string    `json:"lastSplitFactor"`
	LastSplitDate                *int64     `json:"lastSplitDate"`
	EnterpriseToRevenue          *float64   `json:"enterpriseToRevenue"`
	EnterpriseToEBITDA           *float64   `json:"enterpriseToEbitda"`
	FiftyTwoWeekChange           *float64   `json:"52WeekChange"`
	SandP52WeekChange            *float64   `json:"SandP52WeekChange"`
	LastDividendValue            *float64   `json:"lastDividendValue"`
	LastDividendDate             *int64     `json:"lastDividendDate"`
	LatestShareClass             *string    `json:"latestShareClass"`
	LeadInvestor                 *string    `json:"leadInvestor"`
}

// QuoteType is the quoteType module.
type QuoteType struct {
	Exchange              *string `json:"exchange"`
	QuoteType             *string `json:"quoteType"`
	Symbol                *string `json:"symbol"`
	UnderlyingSymbol      *string `json:"underlyingSymbol"`
	ShortName             *string `json:"shortName"`
	LongName              *string `json:"longName"`
	FirstTradeDateEpochUTC *int64 `json:"firstTradeDateEpochUtc"`
	TimezoneFullName      *string `json:"timeZoneFullName"`
	TimezoneShortName     *string `json:"timeZoneShortName"`
	UUID                  *string `json:"uuid"`
	MessageBoardID        *string `json:"messageBoardId"`
	GMTOffsetMilliseconds *int64  `json:"gmtOffSetMilliseconds"`
	MaxAge                *int64  `json:"maxAge"`
}

// FinancialData is the financialData module.
type FinancialData struct {
	MaxAge                  *int64   `json:"maxAge"`
	CurrentPrice            *float64 `json:"currentPrice"`
	TargetHighPrice         *float64 `json:"targetHighPrice"`
	TargetLowPrice          *float64 `json:"targetLowPrice"`
	TargetMeanPrice         *float64 `json:"targetMeanPrice"`
	TargetMedianPrice       *float64 `json:"targetMedianPrice"`
	RecommendationMean      *float64 `json:"recommendationMean"`
	RecommendationKey       *string  `json:"recommendationKey"`
	NumberOfAnalystOpinions *uint64  `json:"numberOfAnalystOpinions"`
	TotalCash               *uint64  `json:"totalCash"`
	TotalCashPerShare       *float64 `json:"totalCashPerShare"`
	EBITDA                  *int64   `json:"ebitda"`
	TotalDebt               *uint64  `json:"totalDebt"`
	QuickRatio              *float64 `json:"quickRatio"`
	CurrentRatio            *float64 `json:"currentRatio"`
	TotalRevenue            *int64   `json:"totalRevenue"`
	DebtToEquity            *float64 `json:"debtToEquity"`
	RevenuePerShare         *float64 `json:"revenuePerShare"`
	ReturnOnAssets          *float64 `json:"returnOnAssets"`
	ReturnOnEquity          *float64 `json:"returnOnEquity"`
	GrossProfits            *int64   `json:"grossProfits"`
	FreeCashflow            *int64   `json:"freeCashflow"`
	OperatingCashflow       *int64   `json:"operatingCashflow"`
	EarningsGrowth          *float64 `json:"earningsGrowth"`
	RevenueGrowth           *float64 `json:"revenueGrowth"`
	GrossMargins            *float64 `json:"grossMargins"`
	EBITDAMargins           *float64 `json:"ebitdaMargins"`
	OperatingMargins        *float64 `json:"operatingMargins"`
	ProfitMargins           *float64 `json:"profitMargins"`
	FinancialCurrency       *string  `json:"financialCurrency"`
}

// GetTickerInfo returns the instrument's profile, key statistics and
// financial data modules.
func (c *Client) GetTickerInfo(ctx context.Context, symbol string) (*TickerInfo, error) {
	q := url.Values{}
	q.Set("modules", strings.Join(summaryModules, ","))

	var resp SummaryResponse
	err := c.getWithCrumb(ctx, c.endpoints.Summary+"/"+url.PathEscape(symbol), q, &resp)
	if err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Result == nil {
		return nil, ErrNoResult
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, ErrNoQuotes
	}
	return &resp.QuoteSummary.Result[0], nil
}
