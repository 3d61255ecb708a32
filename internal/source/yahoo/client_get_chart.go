package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Chart is the parsed daily price series for a symbol.
type Chart struct {
	Symbol             string
	Currency           string
	LongName           string
	ShortName          string
	RegularMarketPrice *float64
	PreviousClose      *float64
	Candles            []Candle
}

// Candle is one day of chart data. Rows whose close was null upstream are
// dropped during parsing.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Currency           string   `json:"currency"`
		Symbol             string   `json:"symbol"`
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// GetChart retrieves daily candles for a symbol over a range such as "1y".
func (c *Client) GetChart(ctx context.Context, symbol, rng string) (Chart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return Chart{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Chart{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	// Yahoo reports unknown symbols as a JSON error payload, often with a
	// non-200 status. Decode first so the description survives.
	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		if res.StatusCode != http.StatusOK {
			return Chart{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
		}
		return Chart{}, fmt.Errorf("decoding chart response: %w", err)
	}
	if body.Chart.Error != nil {
		return Chart{}, fmt.Errorf("chart error for %s: %s", symbol, body.Chart.Error.Description)
	}
	if res.StatusCode != http.StatusOK {
		return Chart{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	if len(body.Chart.Result) == 0 {
		return Chart{}, fmt.Errorf("no chart results for %s", symbol)
	}

	r := body.Chart.Result[0]
	out := Chart{
		Symbol:             r.Meta.Symbol,
		Currency:           r.Meta.Currency,
		LongName:           r.Meta.LongName,
		ShortName:          r.Meta.ShortName,
		RegularMarketPrice: r.Meta.RegularMarketPrice,
		PreviousClose:      r.Meta.ChartPreviousClose,
	}
	if len(r.Indicators.Quote) == 0 {
		return out, nil
	}
	q := r.Indicators.Quote[0]
	out.Candles = make([]Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		cndl := Candle{Timestamp: ts, Close: *q.Close[i]}
		cndl.Open, cndl.High, cndl.Low = cndl.Close, cndl.Close, cndl.Close
		if i < len(q.Open) && q.Open[i] != nil {
			cndl.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			cndl.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			cndl.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			cndl.Volume = *q.Volume[i]
		}
		out.Candles = append(out.Candles, cndl)
	}
	return out, nil
}
