// Package oanda fetches historical candles from the OANDA v20 REST API,
// used to seed backtest data files.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/breaker/market"
)

const (
	// PracticeURL is OANDA's practice/demo environment.
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is OANDA's live trading environment.
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Granularity is the candle timeframe in OANDA's notation.
type Granularity string

const (
	M1  Granularity = "M1"
	M5  Granularity = "M5"
	M15 Granularity = "M15"
	M30 Granularity = "M30"
	H1  Granularity = "H1"
	H4  Granularity = "H4"
	D   Granularity = "D"
)

// PriceComponent selects which quote side the candles are built from.
type PriceComponent string

const (
	MidPrice PriceComponent = "M"
	BidPrice PriceComponent = "B"
	AskPrice PriceComponent = "A"
)

// Client is a minimal OANDA v20 API client for candle downloads.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(token string, practice bool) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CandlesRequest holds the parameters for one candle fetch. Count and the
// From/To range are mutually exclusive; Count wins when both are set.
type CandlesRequest struct {
	Instrument  string
	Price       PriceComponent // default MidPrice
	Granularity Granularity    // default H1
	Count       int            // max 5000
	From        *time.Time
	To          *time.Time
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Mid      candleData `json:"mid,omitempty"`
	Bid      candleData `json:"bid,omitempty"`
	Ask      candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// GetCandles fetches historical candles. Incomplete candles (the still
// forming one at the end of a range) are dropped.
func (c *Client) GetCandles(ctx context.Context, req CandlesRequest) ([]market.Candle, error) {
	if req.Instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if req.Price == "" {
		req.Price = MidPrice
	}
	if req.Granularity == "" {
		req.Granularity = H1
	}

	params := url.Values{}
	params.Set("price", string(req.Price))
	params.Set("granularity", string(req.Granularity))
	switch {
	case req.Count > 0:
		if req.Count > 5000 {
			return nil, fmt.Errorf("count cannot exceed 5000")
		}
		params.Set("count", strconv.Itoa(req.Count))
	default:
		if req.From != nil {
			params.Set("from", req.From.Format(time.RFC3339))
		}
		if req.To != nil {
			params.Set("to", req.To.Format(time.RFC3339))
		}
	}

	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, req.Instrument, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candles := make([]market.Candle, 0, len(apiResp.Candles))
	for _, ac := range apiResp.Candles {
		if !ac.Complete {
			continue
		}

		t, err := time.Parse(time.RFC3339, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("parse time %s: %w", ac.Time, err)
		}

		var data candleData
		switch req.Price {
		case BidPrice:
			data = ac.Bid
		case AskPrice:
			data = ac.Ask
		default:
			data = ac.Mid
		}

		candle, err := toCandle(data, t, ac.Volume)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func toCandle(d candleData, t time.Time, volume int) (market.Candle, error) {
	var c market.Candle
	var err error
	if c.Open, err = strconv.ParseFloat(d.O, 64); err != nil {
		return c, fmt.Errorf("parse open price: %w", err)
	}
	if c.High, err = strconv.ParseFloat(d.H, 64); err != nil {
		return c, fmt.Errorf("parse high price: %w", err)
	}
	if c.Low, err = strconv.ParseFloat(d.L, 64); err != nil {
		return c, fmt.Errorf("parse low price: %w", err)
	}
	if c.Close, err = strconv.ParseFloat(d.C, 64); err != nil {
		return c, fmt.Errorf("parse close price: %w", err)
	}
	c.Time = t
	c.Volume = float64(volume)
	return c, nil
}
