package daybucket

import (
	"fmt"
	"regexp"
	"strconv"
)

var grouped = regexp.MustCompile(`^\((.+)\)(?:(\d+)-(\d+)|<= (\d+)|> (\d+)) dias$`)

// openEnd is the upper bound given to "> n dias" when sorting.
const openEnd = 99999

// GroupByContext prefixes each interval label with the nearest preceding
// non-interval label, so "0-30 dias" under "Vencidos" becomes
// "(Vencidos)0-30 dias". Intervals with no preceding context are left as is.
func GroupByContext(labels []string) []string {
	out := make([]string, len(labels))
	context := ""
	for i, l := range labels {
		out[i] = l
		if !IsInterval(l) {
			context = l
			continue
		}
		if context != "" {
			out[i] = fmt.Sprintf("(%s)%s", context, l)
		}
	}
	return out
}

// Bucket is a parsed context-grouped interval label.
type Bucket struct {
	Group string
	Start int
	End   int
}

// ParseGrouped splits "(Group)a-b dias" into its group and bounds. "<= n" spans
// 0..n and "> n" spans n..openEnd.
func ParseGrouped(label string) (Bucket, bool) {
	m := grouped.FindStringSubmatch(label)
	if m == nil {
		return Bucket{}, false
	}
	b := Bucket{Group: m[1]}
	switch {
	case m[2] != "":
		b.Start, _ = strconv.Atoi(m[2])
		b.End, _ = strconv.Atoi(m[3])
	case m[4] != "":
		b.End, _ = strconv.Atoi(m[4])
	default:
		b.Start, _ = strconv.Atoi(m[5])
		b.End = openEnd
	}
	return b, true
}
