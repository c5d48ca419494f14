package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dto"
)

const notAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// formatCount groups digits, e.g. 12,480.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

var dateLayouts = []string{
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// shortDate renders an API timestamp as YYYY-MM-DD. Unknown formats are shown as sent.
func shortDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return notAvailable
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// statusClass is the badge class for a status, e.g. "In Progress" -> "status-in-progress".
func statusClass(status string) string {
	return "status-" + strings.Replace(strings.ToLower(status), " ", "-", 1)
}

// NextStatus is the status the admin toggle switches to.
func NextStatus(current string) string {
	if current == "active" {
		return "suspended"
	}
	return "active"
}

func toggleLabel(current string) string {
	if current == "active" {
		return "Suspend"
	}
	return "Activate"
}

// BadgeClass maps an availability value to its badge class.
func BadgeClass(availability string) string {
	switch availability {
	case "Not Available":
		return "badge-not-available"
	case "Open to Opportunities":
		return "badge-open"
	default:
		return "badge-available"
	}
}

func stars(rating int) string {
	if rating <= 0 {
		return notAvailable
	}
	return strings.Repeat("⭐", rating)
}

func years(n int) string {
	return fmt.Sprintf("%d years", n)
}

// buildChart scales every bar against the largest count. limit <= 0 keeps all buckets.
func buildChart(title string, buckets []directoryclient.Bucket, limit int) dto.Chart {
	if limit > 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}
	chart := dto.Chart{Title: title, Bars: make([]dto.Bar, 0, len(buckets))}
	for _, b := range buckets {
		width := 0.0
		if peak > 0 {
			width = float64(b.Count) / float64(peak) * 100
		}
		chart.Bars = append(chart.Bars, dto.Bar{Label: b.Label(), Count: b.Count, Width: width})
	}
	return chart
}
