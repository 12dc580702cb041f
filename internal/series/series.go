package series

import "fmt"

// Set accumulates samples for a fixed list of variables over simulated
// time. One time column is shared by all variables, so every column always
// has the same length. Columns are append-only; windows are views into
// them, never copies.
type Set struct {
	names []string
	times []int64
	data  map[string][]float64
}

// View is a read-only window over a Set. The slices alias the Set's
// backing arrays; callers must not mutate them.
type View struct {
	Times  []int64
	Values map[string][]float64
}

func NewSet(names []string) *Set {
	data := make(map[string][]float64, len(names))
	for _, name := range names {
		data[name] = make([]float64, 0)
	}
	return &Set{
		names: append([]string(nil), names...),
		times: make([]int64, 0),
		data:  data,
	}
}

func (s *Set) Names() []string { return s.names }
func (s *Set) Len() int        { return len(s.times) }

// Append records one sample per variable at time now. values follows the
// Set's name order.
func (s *Set) Append(now int64, values []float64) error {
	if len(values) != len(s.names) {
		return fmt.Errorf("series: got %d values for %d variables", len(values), len(s.names))
	}
	s.times = append(s.times, now)
	for i, name := range s.names {
		s.data[name] = append(s.data[name], values[i])
	}
	return nil
}

// Window returns the last min(n, Len) points of every column, or the full
// series when n == 0.
func (s *Set) Window(n int) View {
	start := 0
	if n > 0 && n < len(s.times) {
		start = len(s.times) - n
	}
	values := make(map[string][]float64, len(s.names))
	for _, name := range s.names {
		values[name] = s.data[name][start:]
	}
	return View{Times: s.times[start:], Values: values}
}

// ValueExtent returns the min and max over every value of every variable in
// the full accumulated series. ok is false when no samples exist.
func (s *Set) ValueExtent() (min, max float64, ok bool) {
	if len(s.times) == 0 {
		return 0, 0, false
	}
	first := true
	for _, name := range s.names {
		for _, v := range s.data[name] {
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max, true
}

// TimeExtent returns the first and last recorded times. Times are
// non-decreasing as reported by the driver.
func (s *Set) TimeExtent() (min, max int64, ok bool) {
	if len(s.times) == 0 {
		return 0, 0, false
	}
	return s.times[0], s.times[len(s.times)-1], true
}
