package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// QuoteSummary carries the fundamentals modules for one symbol. Every field
// is optional; a well-formed but sparse payload is not an error.
type QuoteSummary struct {
	LongName  string
	ShortName string

	MarketCap        *float64
	Volume           *float64
	FiftyTwoWeekHigh *float64
	FiftyTwoWeekLow  *float64
	TrailingPE       *float64
	DividendYield    *float64

	TotalRevenue    *float64
	GrossProfit     *float64
	OperatingMargin *float64
	ReturnOnEquity  *float64
	DebtToEquity    *float64
	CurrentRatio    *float64
}

// rawValue is Yahoo's {raw, fmt} number wrapper; only raw matters here.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (r *rawValue) ptr() *float64 {
	if r == nil {
		return nil
	}
	return r.Raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				MarketCap        *rawValue `json:"marketCap"`
				Volume           *rawValue `json:"volume"`
				FiftyTwoWeekHigh *rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  *rawValue `json:"fiftyTwoWeekLow"`
				TrailingPE       *rawValue `json:"trailingPE"`
				DividendYield    *rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			FinancialData struct {
				TotalRevenue     *rawValue `json:"totalRevenue"`
				GrossProfits     *rawValue `json:"grossProfits"`
				OperatingMargins *rawValue `json:"operatingMargins"`
				ReturnOnEquity   *rawValue `json:"returnOnEquity"`
				DebtToEquity     *rawValue `json:"debtToEquity"`
				CurrentRatio     *rawValue `json:"currentRatio"`
			} `json:"financialData"`
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// GetQuoteSummary retrieves the summaryDetail, financialData and price
// modules for a symbol. An empty result set returns a zero summary, not an
// error: sparse fundamentals are normal for thinly covered listings.
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string) (QuoteSummary, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryDetail%%2CfinancialData%%2Cprice",
		c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return QuoteSummary{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return QuoteSummary{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	var body quoteSummaryResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		if res.StatusCode != http.StatusOK {
			return QuoteSummary{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
		}
		return QuoteSummary{}, fmt.Errorf("decoding quoteSummary response: %w", err)
	}
	if body.QuoteSummary.Error != nil {
		return QuoteSummary{}, fmt.Errorf("quoteSummary error for %s: %s", symbol, body.QuoteSummary.Error.Description)
	}
	if res.StatusCode != http.StatusOK {
		return QuoteSummary{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	if len(body.QuoteSummary.Result) == 0 {
		return QuoteSummary{}, nil
	}

	r := body.QuoteSummary.Result[0]
	return QuoteSummary{
		LongName:  r.Price.LongName,
		ShortName: r.Price.ShortName,

		MarketCap:        r.SummaryDetail.MarketCap.ptr(),
		Volume:           r.SummaryDetail.Volume.ptr(),
		FiftyTwoWeekHigh: r.SummaryDetail.FiftyTwoWeekHigh.ptr(),
		FiftyTwoWeekLow:  r.SummaryDetail.FiftyTwoWeekLow.ptr(),
		TrailingPE:       r.SummaryDetail.TrailingPE.ptr(),
		DividendYield:    r.SummaryDetail.DividendYield.ptr(),

		TotalRevenue:    r.FinancialData.TotalRevenue.ptr(),
		GrossProfit:     r.FinancialData.GrossProfits.ptr(),
		OperatingMargin: r.FinancialData.OperatingMargins.ptr(),
		ReturnOnEquity:  r.FinancialData.ReturnOnEquity.ptr(),
		DebtToEquity:    r.FinancialData.DebtToEquity.ptr(),
		CurrentRatio:    r.FinancialData.CurrentRatio.ptr(),
	}, nil
}
