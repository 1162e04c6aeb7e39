package models

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Signal is the persisted unit of signal history. It is created once per
// qualifying evaluation and never mutated after it has been handed to the
// store; trade fields are attached before persistence.
type Signal struct {
	ID        string    `json:"id"`
	Side      Side      `json:"side"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Target    float64   `json:"target"`
	StopLoss  float64   `json:"stopLoss"`
	RiskPct   float64   `json:"riskPct"`
	Strength  int       `json:"strength"`
	Reasons   []string  `json:"reasons"`
	Timestamp time.Time `json:"timestamp"`

	AutoTraded  bool         `json:"autoTraded,omitempty"`
	TradeResult *TradeResult `json:"tradeResult,omitempty"`
	TradeError  string       `json:"tradeError,omitempty"`
}

// TradeResult is the trimmed outcome of a market order attached to an
// auto-traded signal.
type TradeResult struct {
	OrderID string  `json:"id"`
	Side    Side    `json:"side"`
	Symbol  string  `json:"symbol"`
	Qty     float64 `json:"qty"`
	Filled  float64 `json:"filled"`
	Average float64 `json:"average"`
	Status  string  `json:"status"`
}

// SignalStats summarizes the stored history, optionally for one symbol.
type SignalStats struct {
	TotalBuy     int        `json:"totalBuy"`
	TotalSell    int        `json:"totalSell"`
	LastSignalAt *time.Time `json:"lastSignalAt"`
	HistoryCount int        `json:"historyCount"`
}

// Balance is one currency entry of the exchange account.
type Balance struct {
	Currency string  `json:"currency"`
	Free     float64 `json:"free"`
	Used     float64 `json:"used"`
	Total    float64 `json:"total"`
}
