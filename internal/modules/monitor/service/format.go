package service

import (
	"fmt"
	"strings"
	"time"

	"signal_bot/internal/models"
)

// FormatSignal renders a signal as the multi-line notification text sent to
// chat listeners.
func FormatSignal(sig models.Signal) string {
	var b strings.Builder

	emoji := "🟢"
	if sig.Side == models.SideSell {
		emoji = "🔴"
	}
	fmt.Fprintf(&b, "%s %s %s\n", emoji, sig.Side, sig.Symbol)
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(sig.Price))
	fmt.Fprintf(&b, "Target: %s\n", formatPrice(sig.Target))
	fmt.Fprintf(&b, "Stop loss: %s\n", formatPrice(sig.StopLoss))
	fmt.Fprintf(&b, "Risk: %.1f%%\n", sig.RiskPct)
	fmt.Fprintf(&b, "Strength: %d\n", sig.Strength)
	for _, r := range sig.Reasons {
		fmt.Fprintf(&b, "• %s\n", r)
	}
	if sig.AutoTraded && sig.TradeResult != nil {
		fmt.Fprintf(&b, "Auto-trade: order %s (%s)\n", sig.TradeResult.OrderID, sig.TradeResult.Status)
	} else if sig.TradeError != "" {
		fmt.Fprintf(&b, "Auto-trade failed: %s\n", sig.TradeError)
	}
	b.WriteString(sig.Timestamp.Format(time.RFC3339))
	return b.String()
}

// formatPrice keeps more precision for sub-unit prices so cheap pairs do not
// collapse to 0.00.
func formatPrice(v float64) string {
	if v != 0 && v < 1 {
		return fmt.Sprintf("%.6f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
