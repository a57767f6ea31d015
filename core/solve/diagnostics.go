package solve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode"

	"github.com/google/shlex"
)

const (
	resultToken = "Success"
	columnWidth = 10
)

// PeriodCount holds the optimisation outcomes recorded for one period.
type PeriodCount struct {
	Period  int
	Success int
	Failure int
}

// Total is the number of optimisations recorded for the period.
func (p PeriodCount) Total() int { return p.Success + p.Failure }

// Summary is the per-period trailer for periods [0, len(Periods)).
type Summary struct {
	Periods []PeriodCount
}

// Tally accumulates outcomes per period. Periods in [0, numPeriods) live in
// a dense slice; periods beyond that range are kept aside and never emitted.
type Tally struct {
	counts []PeriodCount
	seen   []bool
	extra  map[int]*PeriodCount
}

// NewTally returns an empty tally for periods [0, numPeriods).
func NewTally(numPeriods int) *Tally {
	if numPeriods < 0 {
		numPeriods = 0
	}
	t := &Tally{
		counts: make([]PeriodCount, numPeriods),
		seen:   make([]bool, numPeriods),
		extra:  map[int]*PeriodCount{},
	}
	for p := range t.counts {
		t.counts[p].Period = p
	}
	return t
}

// open initialises period on its first header and returns its counter.
func (t *Tally) open(period int) *PeriodCount {
	if period < len(t.counts) {
		if !t.seen[period] {
			t.seen[period] = true
			t.counts[period] = PeriodCount{Period: period}
		}
		return &t.counts[period]
	}
	if c, ok := t.extra[period]; ok {
		return c
	}
	c := &PeriodCount{Period: period}
	t.extra[period] = c
	return c
}

// Count returns the outcomes accumulated for period, in range or not.
func (t *Tally) Count(period int) PeriodCount {
	if period >= 0 && period < len(t.counts) {
		return t.counts[period]
	}
	if c, ok := t.extra[period]; ok {
		return *c
	}
	return PeriodCount{Period: period}
}

// Summary returns one row per period in [0, numPeriods). Periods never seen
// report zero.
func (t *Tally) Summary() Summary {
	s := Summary{Periods: make([]PeriodCount, len(t.counts))}
	copy(s.Periods, t.counts)
	return s
}

// ParseDiagnostics reads a diagnostic log. Header lines start with an
// upper-case token followed by the period; result lines start with
// "Success" followed by True or False and belong to the last header.
// Counts are reported for periods [0, numPeriods).
//
//gocyclo:ignore
func ParseDiagnostics(r io.Reader, numPeriods int) (*Tally, error) {
	tally := NewTally(numPeriods)
	var current *PeriodCount
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		fail := func(reason string) error {
			return &DiagnosticsParseError{Line: line, Text: text, Reason: reason}
		}
		tokens, err := shlex.Split(text)
		if err != nil {
			return nil, fail(err.Error())
		}
		if len(tokens) == 0 {
			continue
		}
		switch {
		case isUpper(tokens[0]):
			if len(tokens) < 2 {
				return nil, fail("header without period")
			}
			period, err := strconv.Atoi(tokens[1])
			if err != nil || period < 0 {
				return nil, fail("invalid period " + strconv.Quote(tokens[1]))
			}
			current = tally.open(period)
		case tokens[0] == resultToken:
			if current == nil {
				return nil, fail("result before any header")
			}
			if len(tokens) < 2 {
				return nil, fail("result without outcome")
			}
			switch tokens[1] {
			case "True":
				current.Success++
			case "False":
				current.Failure++
			default:
				return nil, fail("invalid outcome " + strconv.Quote(tokens[1]))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tally, nil
}

// WriteSummary writes the SUMMARY trailer.
func WriteSummary(w io.Writer, s Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "SUMMARY\n\n")
	fmt.Fprintf(bw, "%*s %*s %*s %*s\n\n",
		columnWidth, "Period", columnWidth, "Total", columnWidth, "Success", columnWidth, "Failure")
	for _, p := range s.Periods {
		fmt.Fprintf(bw, "%*d %*d %*d %*d\n",
			columnWidth, p.Period, columnWidth, p.Total(), columnWidth, p.Success, columnWidth, p.Failure)
	}
	return bw.Flush()
}

// SummarizeAmbiguity parses the diagnostic log at path and appends the
// summary for periods [0, numPeriods) to the same file.
func SummarizeAmbiguity(path string, numPeriods int) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open diagnostic log: %w", err)
	}
	tally, err := ParseDiagnostics(f, numPeriods)
	_ = f.Close()
	if err != nil {
		return Summary{}, err
	}
	summary := tally.Summary()

	out, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return Summary{}, fmt.Errorf("append diagnostic log: %w", err)
	}
	if err := WriteSummary(out, summary); err != nil {
		_ = out.Close()
		return Summary{}, fmt.Errorf("write summary: %w", err)
	}
	return summary, out.Close()
}

// isUpper reports whether s has at least one cased rune and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
