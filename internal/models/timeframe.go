package models

// Candle timeframes the monitor accepts, coarsest last.
var validTimeframes = []string{"1m", "3m", "5m", "15m", "30m", "1h", "4h", "1d"}

// confirmTimeframe maps a timeframe to the coarser one used for
// higher-timeframe confirmation.
var confirmTimeframe = map[string]string{
	"1m":  "5m",
	"3m":  "15m",
	"5m":  "15m",
	"15m": "1h",
	"30m": "4h",
	"1h":  "4h",
	"4h":  "1d",
	"1d":  "1d",
}

// ValidTimeframes returns the fixed timeframe set.
func ValidTimeframes() []string {
	out := make([]string, len(validTimeframes))
	copy(out, validTimeframes)
	return out
}

func IsValidTimeframe(tf string) bool {
	for _, v := range validTimeframes {
		if v == tf {
			return true
		}
	}
	return false
}

// ConfirmTimeframe returns the confirmation timeframe for tf. Unknown
// timeframes map to themselves.
func ConfirmTimeframe(tf string) string {
	if c, ok := confirmTimeframe[tf]; ok {
		return c
	}
	return tf
}
