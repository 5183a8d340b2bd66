package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dateLayout     = "Jan 2, 2006"
	dayLabelLayout = "Mon Jan 02 2006"
	unknownDate    = "Unknown"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders n with thousands separators, e.g. 12,345
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatDate renders t as "Jun 28, 2023"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return unknownDate
	}
	return t.Format(dateLayout)
}

// FormatAverage renders a per-day average with four decimals
func FormatAverage(count, days int) string {
	if days <= 0 {
		return "0.0000"
	}
	return fmt.Sprintf("%.4f", float64(count)/float64(days))
}

// FormatAge renders the calendar distance between start and end, e.g. "(3Y,2M) ago".
// Days are shown only for accounts younger than one month.
func FormatAge(start, end time.Time) string {
	if start.IsZero() {
		return "(0D) ago"
	}
	start = start.In(end.Location())

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day()

	if days < 0 {
		months--
		// day 0 of the current month is the last day of the previous one
		days += time.Date(end.Year(), end.Month(), 0, 0, 0, 0, 0, end.Location()).Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	var parts []string
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%dY", years))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%dM", months))
	}
	if years == 0 && months == 0 {
		parts = append(parts, fmt.Sprintf("%dD", days))
	}

	return "(" + strings.Join(parts, ",") + ") ago"
}
