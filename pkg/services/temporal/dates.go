package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Excel serials outside this window are treated as plain numbers, not dates.
const (
	minSerial = 20000 // 1954-10-03
	maxSerial = 80000 // 2119-01-10
)

var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"01/2006",
	"1/2006",
	"2006-01",
}

// monthTokens maps accent-free, lower-case month words to their month.
var monthTokens = map[string]time.Month{
	"janeiro": time.January, "fevereiro": time.February, "marco": time.March,
	"abril": time.April, "maio": time.May, "junho": time.June, "julho": time.July,
	"agosto": time.August, "setembro": time.September, "outubro": time.October,
	"novembro": time.November, "dezembro": time.December,
	"jan": time.January, "fev": time.February, "mar": time.March, "abr": time.April,
	"mai": time.May, "jun": time.June, "jul": time.July, "ago": time.August,
	"set": time.September, "out": time.October, "oct": time.October,
	"nov": time.November, "dez": time.December,
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var (
	separators = regexp.MustCompile(`[\s\-/.]+`)
	deWord     = regexp.MustCompile(`\bde\b`)
)

// fold lower-cases s and strips diacritics so "Março" and "MARCO" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// ParseMonthName reads labels such as "Abril 2025", "abr-25", "Março de 2024" or
// "set/23" as the first day of that month. A 4-digit year is tried first, then a
// 2-digit one.
func ParseMonthName(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = deWord.ReplaceAllString(fold(strings.TrimSpace(s)), " ")
	fields := strings.Fields(separators.ReplaceAllString(s, " "))
	if len(fields) != 2 {
		return time.Time{}, false
	}
	month, ok := monthTokens[fields[0]]
	if !ok {
		return time.Time{}, false
	}
	year, ok := parseYear(fields[1])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}

func parseYear(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	switch len(s) {
	case 4:
		return n, true
	case 2:
		// Same pivot as strptime's %y.
		if n < 69 {
			return 2000 + n, true
		}
		return 1900 + n, true
	}
	return 0, false
}

// ParseDate reads any date-like index value: time.Time, Excel serial numbers,
// ISO and day-first strings, or month-name labels.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case float64:
		return fromSerial(x)
	case int:
		return fromSerial(float64(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromSerial(f)
		}
		return ParseMonthName(s)
	}
	return time.Time{}, false
}

func fromSerial(f float64) (time.Time, bool) {
	if f < minSerial || f > maxSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
