package templates

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Row is one runner's best result for one config.
type Row struct {
	Runner     string
	Test       string
	Items      int64
	Stages     int
	Duration   time.Duration
	UpdateRate float64
}

func (r Row) rate() string {
	return humanize.Comma(int64(r.UpdateRate))
}

// bar draws a rate relative to the fastest one as a run of blocks.
func bar(rate, fastest float64, width int) string {
	if fastest <= 0 {
		return ""
	}
	n := int(rate / fastest * float64(width))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func fastest(rows []Row, test string) float64 {
	var f float64
	for _, r := range rows {
		if r.Test == test {
			f = max(f, r.UpdateRate)
		}
	}
	return f
}

func tests(rows []Row) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range rows {
		if !seen[r.Test] {
			seen[r.Test] = true
			out = append(out, r.Test)
		}
	}
	return out
}
