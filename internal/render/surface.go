package render

import (
	"sync"
	"time"
)

// Surface is a live drawing target for time-series charts. It owns axis
// state between Clear and Flush; drawing operations stage data and Flush
// renders everything at once.
type Surface interface {
	SetTitle(title string)
	Clear()
	DrawSeries(label, style string, times []int64, values []float64)
	SetLegend(location string)
	SetLabels(xLabel, yLabel string)
	SetXLimits(min, max float64)
	SetYLimits(min, max float64)
	// AutoYLimits is the extent the surface would use on its own for the
	// currently staged data, before any SetYLimits override.
	AutoYLimits() (min, max float64, ok bool)
	IntegerTimeTicks(on bool)
	Flush() error
	// Pause blocks for d while the surface processes pending output.
	Pause(d time.Duration)
	SaveFrame(path string) error
	Closed() bool
	Close() error
}

var (
	registryMu sync.Mutex
	registry   = make(map[Surface]struct{})
)

// Register records a surface as open. Implementations call it when they
// are created and Unregister from Close.
func Register(s Surface) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s] = struct{}{}
}

// Unregister removes a surface from the open set.
func Unregister(s Surface) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, s)
}

// OpenCount reports the number of currently open surfaces.
func OpenCount() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(registry)
}
