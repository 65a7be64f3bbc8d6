package engine

import "LeadPull/internal/domain/models"

// candleRing is a fixed-capacity ordered candle history. Pushing beyond
// capacity evicts the oldest entry, so the ring always holds the most
// recent `cap` candles in arrival order.
type candleRing struct {
	buf   []models.Candle
	start int
	count int
}

func newCandleRing(capacity int) *candleRing {
	return &candleRing{buf: make([]models.Candle, capacity)}
}

func (r *candleRing) push(c models.Candle) {
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = c
		r.count++
		return
	}
	r.buf[r.start] = c
	r.start = (r.start + 1) % len(r.buf)
}

func (r *candleRing) len() int { return r.count }

// slice returns the history oldest-first as a fresh slice.
func (r *candleRing) slice() []models.Candle {
	out := make([]models.Candle, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
