package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

func (c *Client) sign(ts, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(ts + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Client) signedRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return nil, errors.New("exchange credentials not configured")
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Exchange.RestURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", c.sign(ts, method, path, string(payload)))
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passph)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// ExecuteTrade submits one market order. The submission is never retried:
// after a timeout the order may still have been accepted, and a retry would
// risk a duplicate position.
func (c *Client) ExecuteTrade(ctx context.Context, side models.Side, symbol string, qty float64) (models.TradeResult, error) {
	if qty <= 0 {
		return models.TradeResult{}, errors.Errorf("executeTrade: qty %v must be positive", qty)
	}

	order := map[string]string{
		"instId":  instID(symbol),
		"tdMode":  "cash",
		"side":    strings.ToLower(string(side)),
		"ordType": "market",
		"sz":      strconv.FormatFloat(qty, 'f', -1, 64),
	}
	payload, err := sonic.Marshal(order)
	if err != nil {
		return models.TradeResult{}, errors.Wrap(err, "executeTrade marshal")
	}

	const path = "/api/v5/trade/order"
	data, err := c.signedRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return models.TradeResult{}, errors.Wrap(err, "executeTrade")
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			OrdID string `json:"ordId"`
			SCode string `json:"sCode"`
			SMsg  string `json:"sMsg"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return models.TradeResult{}, errors.Wrapf(err, "executeTrade decode: %s", string(data))
	}
	if len(r.Data) > 0 && r.Data[0].SCode != "" && r.Data[0].SCode != "0" {
		return models.TradeResult{}, errors.Errorf("order rejected: sCode=%s sMsg=%s", r.Data[0].SCode, r.Data[0].SMsg)
	}
	if r.Code != "0" || len(r.Data) == 0 || r.Data[0].OrdID == "" {
		return models.TradeResult{}, errors.Errorf("order error: code=%s msg=%s", r.Code, r.Msg)
	}

	result := models.TradeResult{
		OrderID: r.Data[0].OrdID,
		Side:    side,
		Symbol:  symbol,
		Qty:     qty,
		Status:  "live",
	}

	// Best effort: read back fill state. The order itself is already placed,
	// so a failure here only leaves the fill fields empty.
	if filled, avg, status, err := c.orderState(ctx, symbol, result.OrderID); err != nil {
		logger.Warn("executeTrade: order %s placed but fill lookup failed: %v", result.OrderID, err)
	} else {
		result.Filled = filled
		result.Average = avg
		result.Status = status
	}

	logger.Info("trade ok: %s %s qty=%v filled=%v status=%s",
		side, symbol, qty, result.Filled, result.Status)
	return result, nil
}

func (c *Client) orderState(ctx context.Context, symbol, ordID string) (filled, avg float64, status string, err error) {
	path := "/api/v5/trade/order?instId=" + instID(symbol) + "&ordId=" + ordID
	data, err := c.signedRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, 0, "", err
	}

	var r struct {
		Code string `json:"code"`
		Data []struct {
			AccFillSz string `json:"accFillSz"`
			AvgPx     string `json:"avgPx"`
			State     string `json:"state"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return 0, 0, "", errors.Wrap(err, "decode order state")
	}
	if r.Code != "0" || len(r.Data) == 0 {
		return 0, 0, "", errors.Errorf("order state error: code=%s", r.Code)
	}
	filled, _ = strconv.ParseFloat(r.Data[0].AccFillSz, 64)
	avg, _ = strconv.ParseFloat(r.Data[0].AvgPx, 64)
	return filled, avg, r.Data[0].State, nil
}
