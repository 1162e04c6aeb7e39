package service

import (
	"context"
	"strconv"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// StreamTicker opens one websocket subscription for the tickers channel of
// every symbol and pushes price points until ctx is cancelled. The
// connection is re-dialed with backoff on any error; a keepalive ping every
// 20s stops the server from dropping an idle connection.
func (c *Client) StreamTicker(ctx context.Context, symbols []string) <-chan models.PricePoint {
	ch := make(chan models.PricePoint)

	go func() {
		defer close(ch)

		if len(symbols) == 0 {
			return
		}

		args := make([]map[string]string, 0, len(symbols))
		for _, sym := range symbols {
			args = append(args, map[string]string{
				"channel": "tickers",
				"instId":  instID(sym),
			})
		}

		backoff := time.Second
		const maxBackoff = 30 * time.Second

		for {
			if ctx.Err() != nil {
				return
			}

			logger.Info("ws connect tickers, %d symbols", len(symbols))
			conn, _, err := c.wsDialer.DialContext(ctx, c.cfg.Exchange.WSURL, nil)
			if err != nil {
				logger.Warn("ws dial error: %v", err)
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return
				}
				if backoff *= 2; backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			backoff = time.Second

			sub := map[string]any{"op": "subscribe", "args": args}
			if err := conn.WriteJSON(sub); err != nil {
				logger.Warn("ws subscribe error: %v", err)
				_ = conn.Close()
				continue
			}

			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(20 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-stopPing:
						return
					case <-t.C:
						_ = conn.WriteMessage(websocket.TextMessage, []byte("ping"))
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					logger.Warn("ws read error: %v", err)
					_ = conn.Close()
					close(stopPing)
					break
				}

				var frame struct {
					Arg struct {
						Channel string `json:"channel"`
						InstID  string `json:"instId"`
					} `json:"arg"`
					Data []struct {
						Last    string `json:"last"`
						High24h string `json:"high24h"`
						Low24h  string `json:"low24h"`
						Vol24h  string `json:"vol24h"`
						TS      string `json:"ts"`
					} `json:"data"`
				}
				if err := sonic.Unmarshal(msg, &frame); err != nil {
					continue
				}
				if frame.Arg.Channel != "tickers" || len(frame.Data) == 0 {
					continue
				}

				for _, d := range frame.Data {
					last, err := strconv.ParseFloat(d.Last, 64)
					if err != nil || last <= 0 {
						continue
					}
					high, _ := strconv.ParseFloat(d.High24h, 64)
					low, _ := strconv.ParseFloat(d.Low24h, 64)
					vol, _ := strconv.ParseFloat(d.Vol24h, 64)
					ts := time.Now()
					if ms, err := strconv.ParseInt(d.TS, 10, 64); err == nil {
						ts = time.UnixMilli(ms)
					}

					p := models.PricePoint{
						Symbol:    symbolOf(frame.Arg.InstID),
						Last:      last,
						High:      high,
						Low:       low,
						Volume:    vol,
						Timestamp: ts,
					}
					select {
					case ch <- p:
					case <-ctx.Done():
						_ = conn.Close()
						close(stopPing)
						return
					}
				}
			}
		}
	}()

	return ch
}
