package scoring

import (
	"fmt"
	"math"
	"sort"

	"LeadPull/internal/domain/models"
)

// S/R proximity and acceptance thresholds, as fractions of the level.
const (
	srProximityPct  = 0.01
	srAcceptancePct = 0.005
)

// SRThresholds scores the price against the per-horizon support/resistance
// levels. The check depends on the invoking stage:
//
//	Q2: price within 1% of any level (sudden interest)
//	Q3: price pushed more than 0.5% beyond a level (acceptance of a break)
//	Q1: any horizon carries a historical breach flag
//
// All horizons are iterated and every observation is accumulated in the
// explanation payload.
func SRThresholds(price float64, levels map[models.Horizon]models.SRLevel, ctx Context, points float64) models.MetricResult {
	var (
		awarded float64
		met     bool
	)
	details := []string{}
	analyzed := make([]string, 0, len(levels))

	horizons := make([]models.Horizon, 0, len(levels))
	for h := range levels {
		horizons = append(horizons, h)
	}
	sort.Slice(horizons, func(i, j int) bool { return horizons[i].Window() < horizons[j].Window() })

	for _, h := range horizons {
		lvl := levels[h]
		analyzed = append(analyzed, string(h))

		switch ctx {
		case ContextQ2:
			if proximity(price, lvl.Support) < srProximityPct || proximity(price, lvl.Resistance) < srProximityPct {
				met = true
				details = append(details, fmt.Sprintf("%s proximity detected", h))
			}
		case ContextQ3:
			if price > lvl.Resistance*(1+srAcceptancePct) || price < lvl.Support*(1-srAcceptancePct) {
				met = true
				details = append(details, fmt.Sprintf("%s break confirmed (>0.5%%)", h))
			}
		case ContextQ1:
			if lvl.Breached {
				met = true
				details = append(details, fmt.Sprintf("%s historical breach found", h))
			}
		}
	}
	if met {
		awarded = points
	}

	return models.MetricResult{
		Points: awarded,
		Status: met,
		Raw: map[string]any{
			"current_price":   price,
			"logic_applied":   string(ctx),
			"observations":    details,
			"levels_analyzed": analyzed,
		},
	}
}

// proximity is |price-level|/level, or +Inf for a non-positive level so a
// degenerate level can never pass the closeness check.
func proximity(price, level float64) float64 {
	if level <= 0 {
		return math.Inf(1)
	}
	return math.Abs(price-level) / level
}
