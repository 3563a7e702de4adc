package domain

import (
	"sort"
	"strings"
	"time"
)

// window.go — realized-daily-P&L windowing and summary statistics. The daily
// series is built from the trade history by DailyRealized or supplied by an
// upstream job; the rest of the file only filters and summarizes it.

// dateLayout is the calendar-day format of the daily series.
const dateLayout = "2006-01-02"

// DailyPnl is one row of the realized-daily-P&L series.
type DailyPnl struct {
	Date        string // YYYY-MM-DD
	RealizedPnl float64
	PnlToDate   *float64 // cumulative, nil when the upstream job skipped it
}

// DailyRealized folds a trade history into the per-day realized P&L series,
// ascending by date, with the running cumulative filled into PnlToDate. It
// walks the same weighted-average-cost basis as ReducePositions and attributes
// each sell's realized delta to the UTC calendar day of the fill.
func DailyRealized(trades []Trade) []DailyPnl {
	ordered := make([]Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	type basis struct{ size, avgCost float64 }
	bases := make(map[PositionKey]*basis)
	byDate := make(map[string]float64)

	for _, t := range ordered {
		if !t.AccountingEligible() {
			continue
		}
		key := PositionKey{
			MarketKey: t.MarketKey,
			Outcome:   strings.ToLower(strings.TrimSpace(t.Outcome)),
		}
		b, ok := bases[key]
		if !ok {
			b = &basis{}
			bases[key] = b
		}

		switch t.Side {
		case SideSell:
			day := t.Timestamp.UTC().Format(dateLayout)
			byDate[day] += (t.Price - b.avgCost) * t.Size
			b.size -= t.Size
		default:
			newSize := b.size + t.Size
			if newSize > 0 {
				b.avgCost = (b.avgCost*b.size + t.Price*t.Size) / newSize
			} else {
				b.avgCost = 0
			}
			b.size = newSize
		}
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	rows := make([]DailyPnl, 0, len(dates))
	var cum float64
	for _, d := range dates {
		cum += byDate[d]
		running := cum
		rows = append(rows, DailyPnl{Date: d, RealizedPnl: byDate[d], PnlToDate: &running})
	}
	return rows
}

// Window selects how far back the daily series is filtered.
type Window string

const (
	Window1D  Window = "1D"
	Window7D  Window = "7D"
	Window30D Window = "30D"
	Window3M  Window = "3M"
	Window6M  Window = "6M"
	WindowAll Window = "ALL"
)

// Days returns the window length in calendar days, 0 meaning unbounded.
func (w Window) Days() int {
	switch w {
	case Window1D:
		return 1
	case Window7D:
		return 7
	case Window30D:
		return 30
	case Window3M:
		return 90
	case Window6M:
		return 180
	default:
		return 0
	}
}

// FilterWindow returns the rows inside the selected window, ascending by
// date. The anchor is the latest row's date — unless that date is today, a
// prior row exists, and the window is wider than 1D, in which case the anchor
// steps back one row so a partial, still-accumulating today bucket does not
// skew short multi-day windows. The 1D view deliberately keeps today.
func FilterWindow(rows []DailyPnl, w Window, now time.Time) []DailyPnl {
	if len(rows) == 0 {
		return rows
	}

	sorted := make([]DailyPnl, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	days := w.Days()
	if days == 0 {
		return sorted
	}

	anchorIdx := len(sorted) - 1
	today := now.UTC().Format(dateLayout)
	if sorted[anchorIdx].Date == today && anchorIdx > 0 && w != Window1D {
		anchorIdx--
	}

	anchor, err := time.ParseInLocation(dateLayout, sorted[anchorIdx].Date, time.UTC)
	if err != nil {
		return sorted
	}
	start := anchor.AddDate(0, 0, -(days - 1)).Format(dateLayout)
	end := sorted[anchorIdx].Date

	out := make([]DailyPnl, 0, days)
	for _, r := range sorted {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out
}

// WindowSummary are the headline statistics over a windowed series.
type WindowSummary struct {
	TotalPnl    float64
	AvgDaily    float64
	DaysUp      int
	DaysDown    int
	DaysActive  int
	MaxDrawdown float64 // peak-to-trough of cumulative realized P&L, <= 0
}

// Summarize computes the window statistics. Empty input yields zeros.
func Summarize(rows []DailyPnl) WindowSummary {
	var s WindowSummary
	var cum, peak float64
	for _, r := range rows {
		s.TotalPnl += r.RealizedPnl
		if r.RealizedPnl > 0 {
			s.DaysUp++
		} else if r.RealizedPnl < 0 {
			s.DaysDown++
		}
		if r.RealizedPnl != 0 {
			s.DaysActive++
		}

		cum += r.RealizedPnl
		if cum > peak {
			peak = cum
		}
		if dd := cum - peak; dd < s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}
	if len(rows) > 0 {
		s.AvgDaily = s.TotalPnl / float64(len(rows))
	}
	return s
}

// BuildTrendLine fits an ordinary least-squares line over the series index
// and returns the fitted value at each index. Inputs of length ≤ 1 come back
// unchanged (the slope is undefined).
func BuildTrendLine(values []float64) []float64 {
	n := len(values)
	if n <= 1 {
		return values
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return values
	}
	slope := (float64(n)*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / float64(n)

	out := make([]float64, n)
	for i := range out {
		out[i] = intercept + slope*float64(i)
	}
	return out
}
