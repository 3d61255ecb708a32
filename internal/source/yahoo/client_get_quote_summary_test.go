package yahoo_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	yahoo "stockboard/internal/source/yahoo"
)

const quoteSummaryBody = `{
  "quoteSummary": {
    "result": [{
      "summaryDetail": {
        "marketCap": {"raw": 2500000000000, "fmt": "2.5T"},
        "volume": {"raw": 52500000, "fmt": "52.5M"},
        "fiftyTwoWeekHigh": {"raw": 199.62},
        "fiftyTwoWeekLow": {"raw": 124.17},
        "trailingPE": {"raw": 28.91},
        "dividendYield": {"raw": 0.0044}
      },
      "financialData": {
        "totalRevenue": {"raw": 383290000000},
        "grossProfits": {"raw": 169150000000},
        "operatingMargins": {"raw": 0.3021},
        "returnOnEquity": {"raw": 1.4725},
        "debtToEquity": {"raw": 176.35},
        "currentRatio": {"raw": 0.988}
      },
      "price": {"longName": "Apple Inc.", "shortName": "Apple"}
    }],
    "error": null
  }
}`

func TestGetQuoteSummary(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Contains(t, req.URL.Path, "/v10/finance/quoteSummary/AAPL")
			require.Contains(t, req.URL.RawQuery, "modules=")

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(quoteSummaryBody)),
			}, nil
		}).
		Times(1)

	client := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	sum, err := client.GetQuoteSummary(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Equal(t, "Apple Inc.", sum.LongName)
	require.NotNil(t, sum.MarketCap)
	require.InEpsilon(t, 2.5e12, *sum.MarketCap, 0.0001)
	require.NotNil(t, sum.DividendYield)
	require.InEpsilon(t, 0.0044, *sum.DividendYield, 0.0001)
	require.NotNil(t, sum.CurrentRatio)
	require.InEpsilon(t, 0.988, *sum.CurrentRatio, 0.0001)
}

func TestGetQuoteSummary_SparseModulesAreNotAnError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// well-formed but empty: unknown fundamentals are absent fields, not a
	// fetch failure
	body := `{"quoteSummary":{"result":[{"summaryDetail":{},"financialData":{},"price":{}}],"error":null}}`
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
			}, nil
		}).
		Times(1)

	client := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	sum, err := client.GetQuoteSummary(context.Background(), "OBSCURE")
	require.NoError(t, err)
	require.Nil(t, sum.MarketCap)
	require.Nil(t, sum.TrailingPE)
	require.Nil(t, sum.TotalRevenue)
}

func TestGetQuoteSummary_EmptyResultSet(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	body := `{"quoteSummary":{"result":[],"error":null}}`
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
			}, nil
		}).
		Times(1)

	client := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	sum, err := client.GetQuoteSummary(context.Background(), "OBSCURE")
	require.NoError(t, err)
	require.Equal(t, yahoo.QuoteSummary{}, sum)
}
