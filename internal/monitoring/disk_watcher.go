package monitoring

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

const highUsageThreshold = 90.0

// DiskWatcher periodically checks usage of the volume holding the uploads
// and warns when it runs low on space.
type DiskWatcher struct {
	path   string
	ticker *time.Ticker
	done   chan bool
}

// NewDiskWatcher creates a watcher for the volume containing path.
func NewDiskWatcher(path string) *DiskWatcher {
	return &DiskWatcher{
		path: path,
		done: make(chan bool),
	}
}

// Run starts the periodic checks.
func (w *DiskWatcher) Run() {
	log.Info().Str("path", w.path).Msg("Starting upload volume watcher...")
	w.ticker = time.NewTicker(5 * time.Minute)
	defer w.ticker.Stop()

	// Run once immediately on start
	w.check()

	for {
		select {
		case <-w.done:
			log.Info().Msg("Stopping upload volume watcher.")
			return
		case <-w.ticker.C:
			w.check()
		}
	}
}

// Stop halts the periodic checks.
func (w *DiskWatcher) Stop() {
	w.done <- true
}

func (w *DiskWatcher) check() {
	usage, err := disk.Usage(w.path)
	if err != nil {
		log.Warn().Err(err).Str("path", w.path).Msg("DiskWatcher: failed to read volume usage")
		return
	}
	if usage.UsedPercent >= highUsageThreshold {
		log.Warn().
			Float64("used_percent", usage.UsedPercent).
			Uint64("free_bytes", usage.Free).
			Msg("DiskWatcher: upload volume is running low on space")
	}
}

// StorageStats returns usage of the volume containing path, for the admin
// stats endpoint.
func StorageStats(path string) (*disk.UsageStat, error) {
	return disk.Usage(path)
}
