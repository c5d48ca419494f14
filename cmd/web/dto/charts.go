package dto

// StatCard is one number on a stats grid.
type StatCard struct {
	Value string
	Label string
}

// Bar is one bar of a horizontal bar chart. Width is a percentage of the
// largest bar.
type Bar struct {
	Label string
	Count int
	Width float64
}

type Chart struct {
	Title string
	Bars  []Bar
}

// Empty reports whether there is nothing to draw.
func (c Chart) Empty() bool {
	return len(c.Bars) == 0
}

// AnalyticsView is a stats grid followed by charts.
type AnalyticsView struct {
	Cards  []StatCard
	Charts []Chart
}
