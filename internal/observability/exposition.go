package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type familyKind string

const (
	kindCounter   familyKind = "counter"
	kindGauge     familyKind = "gauge"
	kindHistogram familyKind = "histogram"
)

// family is one metric name with all of its labelled series, written in the Prometheus text
// format. Series are emitted in label order so scrapes diff cleanly.
type family struct {
	name    string
	help    string
	kind    familyKind
	labels  []string
	buckets []float64

	mu     sync.Mutex
	series map[string]*series
}

// series holds a counter or gauge value, or a histogram's cumulative bucket counts.
type series struct {
	value  float64
	counts []uint64
	sum    float64
	total  uint64
}

func newCounter(name, help string, labels ...string) *family {
	return &family{name: name, help: help, kind: kindCounter, labels: labels, series: map[string]*series{}}
}

func newGauge(name, help string, labels ...string) *family {
	return &family{name: name, help: help, kind: kindGauge, labels: labels, series: map[string]*series{}}
}

func newHistogram(name, help string, buckets []float64, labels ...string) *family {
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &family{name: name, help: help, kind: kindHistogram, labels: labels, buckets: b, series: map[string]*series{}}
}

// at returns the series for the label values, creating it. Callers hold f.mu.
func (f *family) at(values []string) *series {
	key := f.labelSet(values)
	s, ok := f.series[key]
	if !ok {
		s = &series{}
		if f.kind == kindHistogram {
			s.counts = make([]uint64, len(f.buckets))
		}
		f.series[key] = s
	}
	return s
}

func (f *family) add(v float64, values ...string) {
	f.mu.Lock()
	f.at(values).value += v
	f.mu.Unlock()
}

func (f *family) set(v float64, values ...string) {
	f.mu.Lock()
	f.at(values).value = v
	f.mu.Unlock()
}

func (f *family) observe(v float64, values ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.at(values)
	s.sum += v
	s.total++
	for i, upper := range f.buckets {
		if v <= upper {
			s.counts[i]++
		}
	}
}

func (f *family) write(w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind); err != nil {
		return err
	}
	keys := make([]string, 0, len(f.series))
	for k := range f.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := f.series[k]
		if f.kind != kindHistogram {
			if _, err := fmt.Fprintf(w, "%s%s %s\n", f.name, k, formatFloat(s.value)); err != nil {
				return err
			}
			continue
		}
		for i, upper := range f.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", f.name, withBound(k, formatFloat(upper)), s.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %s\n%s_count%s %d\n",
			f.name, withBound(k, "+Inf"), s.total,
			f.name, k, formatFloat(s.sum),
			f.name, k, s.total); err != nil {
			return err
		}
	}
	return nil
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// labelSet renders {a="x",b="y"}. Missing values read as "unknown".
func (f *family) labelSet(values []string) string {
	if len(f.labels) == 0 {
		return ""
	}
	parts := make([]string, len(f.labels))
	for i, name := range f.labels {
		v := "unknown"
		if i < len(values) {
			v = values[i]
		}
		parts[i] = name + `="` + labelEscaper.Replace(v) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// withBound appends the le label used by histogram buckets.
func withBound(set, le string) string {
	bound := `le="` + le + `"`
	if set == "" {
		return "{" + bound + "}"
	}
	return strings.TrimSuffix(set, "}") + "," + bound + "}"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
