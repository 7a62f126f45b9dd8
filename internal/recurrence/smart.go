package recurrence

import (
	"fmt"
	"sort"
	"time"
)

const (
	// SmartHistoryWindow caps how many recent completions feed the interval
	// estimate. Callers fetching history for the smart variant should load
	// at most this many records.
	SmartHistoryWindow = 6
	// smartSmoothing weights recent gaps when learning is enabled. Anything
	// in 0.3–0.5 behaves reasonably; 0.4 is the shipped default.
	smartSmoothing = 0.4

	day = 24 * time.Hour
)

// nextSmart projects the next occurrence of an adaptive rule. With fewer
// than two completions the base interval steps forward from the anchor;
// otherwise the interval is estimated from the recent gap history and
// projected from the most recent completion.
func (r Rule) nextSmart(anchor, after time.Time, history []time.Time) (time.Time, error) {
	hist := recentCompletions(history)

	if len(hist) < 2 {
		if r.BaseMonths <= 0 {
			return time.Time{}, fmt.Errorf("%w: smart rule needs baseMonths or at least two completions", ErrConfig)
		}
		cand := AddMonths(anchor, r.BaseMonths)
		for !cand.After(after) {
			cand = AddMonths(cand, r.BaseMonths)
		}
		return cand, nil
	}

	interval := r.effectiveInterval(hist)
	if interval <= 0 {
		// Degenerate history (identical timestamps); fall back to the prior.
		if r.BaseMonths <= 0 {
			return time.Time{}, fmt.Errorf("%w: completion history is not increasing and no baseMonths set", ErrConfig)
		}
		interval = time.Duration(r.BaseMonths) * 30 * day
	}

	last := hist[len(hist)-1]
	cand := last.Add(interval)
	if !cand.After(after) {
		steps := after.Sub(last) / interval
		cand = last.Add((steps + 1) * interval)
		if !cand.After(after) { // after fell exactly on a step boundary
			cand = cand.Add(interval)
		}
	}
	return cand, nil
}

// effectiveInterval estimates the gap between occurrences from completion
// history. With learning enabled, gaps are exponentially smoothed so recent
// behaviour dominates; otherwise it is the plain mean.
func (r Rule) effectiveInterval(hist []time.Time) time.Duration {
	gaps := make([]float64, 0, len(hist)-1)
	for i := 1; i < len(hist); i++ {
		gaps = append(gaps, hist[i].Sub(hist[i-1]).Hours()/24)
	}

	var est float64
	if r.LearningEnabled {
		est = gaps[0]
		for _, g := range gaps[1:] {
			est = smartSmoothing*g + (1-smartSmoothing)*est
		}
	} else {
		for _, g := range gaps {
			est += g
		}
		est /= float64(len(gaps))
	}
	return time.Duration(est * 24 * float64(time.Hour))
}

// Window is the ± flexibility range around a projected occurrence. The point
// estimate from Next stays authoritative; callers render the range.
func (r Rule) Window(projected time.Time) (earliest, latest time.Time) {
	flex := time.Duration(r.FlexibilityDays) * day
	return projected.Add(-flex), projected.Add(flex)
}

// recentCompletions sorts the history ascending and keeps the trailing
// window. The input slice is not modified.
func recentCompletions(history []time.Time) []time.Time {
	hist := append([]time.Time(nil), history...)
	sort.Slice(hist, func(i, j int) bool { return hist[i].Before(hist[j]) })
	if len(hist) > SmartHistoryWindow {
		hist = hist[len(hist)-SmartHistoryWindow:]
	}
	return hist
}
