package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	maxRetries   = 3
	retryBackoff = time.Second
)

// Client talks to the OKX public and trade REST APIs. Market-data reads are
// retried with exponential backoff; order submission is issued exactly once
// (a timed-out order may still have been placed, retrying risks duplicates).
type Client struct {
	cfg *config.Config

	http     *http.Client
	wsDialer *websocket.Dialer

	apiKey    string
	apiSecret string
	passph    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.Exchange.Timeout},
		wsDialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		apiKey:    cfg.Exchange.APIKey,
		apiSecret: cfg.Exchange.APISecret,
		passph:    cfg.Exchange.Passphrase,
	}
}

// instID maps a BASE/QUOTE pair to the OKX instrument id (BTC/USDT -> BTC-USDT).
func instID(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

func symbolOf(instId string) string {
	return strings.ReplaceAll(instId, "-", "/")
}

// barCode maps a monitor timeframe to the OKX bar parameter.
var barCode = map[string]string{
	"1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1H", "4h": "4H", "1d": "1D",
}

func withRetry[T any](ctx context.Context, label string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}
		delay := retryBackoff << (attempt - 1)
		logger.Warn("%s attempt %d failed: %v, retry in %s", label, attempt, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, errors.Wrapf(lastErr, "%s failed after %d attempts", label, maxRetries)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Exchange.RestURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return errors.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

// FetchPrice returns the current ticker for a BASE/QUOTE pair.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (models.PricePoint, error) {
	path := "/api/v5/market/ticker?instId=" + instID(symbol)

	return withRetry(ctx, fmt.Sprintf("fetchPrice(%s)", symbol), func() (models.PricePoint, error) {
		var r struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data []struct {
				Last    string `json:"last"`
				High24h string `json:"high24h"`
				Low24h  string `json:"low24h"`
				Vol24h  string `json:"vol24h"`
				TS      string `json:"ts"`
			} `json:"data"`
		}
		if err := c.get(ctx, path, &r); err != nil {
			return models.PricePoint{}, err
		}
		if r.Code != "0" || len(r.Data) == 0 {
			return models.PricePoint{}, errors.Errorf("ticker error: code=%s msg=%s", r.Code, r.Msg)
		}

		d := r.Data[0]
		last, err := strconv.ParseFloat(d.Last, 64)
		if err != nil {
			return models.PricePoint{}, errors.Wrap(err, "parse last")
		}
		high, _ := strconv.ParseFloat(d.High24h, 64)
		low, _ := strconv.ParseFloat(d.Low24h, 64)
		vol, _ := strconv.ParseFloat(d.Vol24h, 64)
		ts := time.Now()
		if ms, err := strconv.ParseInt(d.TS, 10, 64); err == nil {
			ts = time.UnixMilli(ms)
		}
		return models.PricePoint{
			Symbol:    symbol,
			Last:      last,
			High:      high,
			Low:       low,
			Volume:    vol,
			Timestamp: ts,
		}, nil
	})
}

// FetchCandles returns up to limit closed candles for the given timeframe in
// chronological order.
func (c *Client) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	bar, ok := barCode[timeframe]
	if !ok {
		return nil, errors.Errorf("unsupported timeframe %q", timeframe)
	}
	path := fmt.Sprintf("/api/v5/market/candles?instId=%s&bar=%s&limit=%d", instID(symbol), bar, limit)

	return withRetry(ctx, fmt.Sprintf("fetchCandles(%s,%s)", symbol, timeframe), func() ([]models.Candle, error) {
		var r struct {
			Code string     `json:"code"`
			Msg  string     `json:"msg"`
			Data [][]string `json:"data"`
		}
		if err := c.get(ctx, path, &r); err != nil {
			return nil, err
		}
		if r.Code != "0" {
			return nil, errors.Errorf("candles error: code=%s msg=%s", r.Code, r.Msg)
		}

		// OKX returns newest first.
		candles := make([]models.Candle, 0, len(r.Data))
		for i := len(r.Data) - 1; i >= 0; i-- {
			row := r.Data[i]
			if len(row) < 6 {
				continue
			}
			ms, err := strconv.ParseInt(row[0], 10, 64)
			if err != nil {
				continue
			}
			open, err1 := strconv.ParseFloat(row[1], 64)
			high, err2 := strconv.ParseFloat(row[2], 64)
			low, err3 := strconv.ParseFloat(row[3], 64)
			closep, err4 := strconv.ParseFloat(row[4], 64)
			vol, err5 := strconv.ParseFloat(row[5], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
				continue
			}
			candles = append(candles, models.Candle{
				Timestamp: time.UnixMilli(ms),
				Open:      open,
				High:      high,
				Low:       low,
				Close:     closep,
				Volume:    vol,
			})
		}
		return candles, nil
	})
}

// FetchBalance returns the non-zero balances of the trading account.
func (c *Client) FetchBalance(ctx context.Context) ([]models.Balance, error) {
	return withRetry(ctx, "fetchBalance", func() ([]models.Balance, error) {
		data, err := c.signedRequest(ctx, http.MethodGet, "/api/v5/account/balance", nil)
		if err != nil {
			return nil, err
		}

		var r struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data []struct {
				Details []struct {
					Ccy       string `json:"ccy"`
					AvailBal  string `json:"availBal"`
					FrozenBal string `json:"frozenBal"`
					Eq        string `json:"eq"`
				} `json:"details"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(data, &r); err != nil {
			return nil, errors.Wrap(err, "decode balance")
		}
		if r.Code != "0" || len(r.Data) == 0 {
			return nil, errors.Errorf("balance error: code=%s msg=%s", r.Code, r.Msg)
		}

		var balances []models.Balance
		for _, d := range r.Data[0].Details {
			free, _ := strconv.ParseFloat(d.AvailBal, 64)
			used, _ := strconv.ParseFloat(d.FrozenBal, 64)
			total, _ := strconv.ParseFloat(d.Eq, 64)
			if total == 0 {
				continue
			}
			balances = append(balances, models.Balance{
				Currency: d.Ccy,
				Free:     free,
				Used:     used,
				Total:    total,
			})
		}
		return balances, nil
	})
}
