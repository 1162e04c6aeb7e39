package service

import "signal_bot/internal/models"

const windowCap = 100

// priceWindow keeps the most recent observations for one symbol. Older
// entries are discarded once the cap is reached.
type priceWindow struct {
	points []models.PricePoint
}

func (w *priceWindow) push(p models.PricePoint) {
	w.points = append(w.points, p)
	if len(w.points) > windowCap {
		w.points = w.points[len(w.points)-windowCap:]
	}
}

// lasts returns the closing prices in chronological order.
func (w *priceWindow) lasts() []float64 {
	out := make([]float64, len(w.points))
	for i, p := range w.points {
		out[i] = p.Last
	}
	return out
}

// highLow returns the extremes and the latest price of the window.
func (w *priceWindow) highLow() (high, low, current float64, ok bool) {
	if len(w.points) == 0 {
		return 0, 0, 0, false
	}
	high, low = w.points[0].Last, w.points[0].Last
	for _, p := range w.points[1:] {
		if p.Last > high {
			high = p.Last
		}
		if p.Last < low {
			low = p.Last
		}
	}
	return high, low, w.points[len(w.points)-1].Last, true
}
