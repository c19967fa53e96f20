package stats

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const gigabyte = 1 << 30

// EnableMemoryStatistics starts a goroutine that periodically logs memory
// usage and number of goroutines of the process until ctx is done.
func EnableMemoryStatistics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				LogMemoryStatistics()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// LogMemoryStatistics logs memory statistics read from the go runtime.
func LogMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.WithField("goroutines", runtime.NumGoroutine()).Infof(
		"total allocated: %.3fGB, heap allocated: %.3fGB, "+
			"allocated objects: %d, freed objects: %d",
		float64(memStats.TotalAlloc)/gigabyte,
		float64(memStats.HeapAlloc)/gigabyte,
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpMetrics appends the metrics collected by the given gatherer to the
// file at path.
func DumpMetrics(gatherer prometheus.Gatherer, path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	families, err := gatherer.Gather()
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	for _, f := range families {
		if _, err := writer.WriteString(f.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
