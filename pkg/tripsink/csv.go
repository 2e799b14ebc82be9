// Package tripsink persists simulated trips: append-only CSV logs, a Postgres
// table, or memory.
package tripsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ChicagoDave/citytraffic/pkg/simulation"
)

// Columns is the header of both trip logs.
var Columns = []string{"id", "type", "wheel_count", "from", "to", "path", "hour", "day", "congestion_penalty"}

// Record renders a trip as one CSV row in Columns order.
func Record(t simulation.Trip) []string {
	return []string{
		t.ID,
		t.Type,
		strconv.Itoa(t.WheelCount),
		t.From,
		t.To,
		t.Path,
		strconv.Itoa(t.Hour),
		strconv.Itoa(t.Day),
		strconv.FormatFloat(t.CongestionPenalty, 'f', -1, 64),
	}
}

// CSV appends vehicle and pedestrian trips to two separate files.
type CSV struct {
	mu          sync.Mutex
	vehicles    *csvLog
	pedestrians *csvLog
}

type csvLog struct {
	path string
	f    *os.File
	w    *csv.Writer
	rows int
}

// OpenCSV opens, or creates, the two logs for appending. A header row is
// written only to files that are new or empty.
func OpenCSV(vehiclesPath, pedestriansPath string) (*CSV, error) {
	v, err := openLog(vehiclesPath)
	if err != nil {
		return nil, err
	}
	p, err := openLog(pedestriansPath)
	if err != nil {
		v.f.Close()
		return nil, err
	}
	return &CSV{vehicles: v, pedestrians: p}, nil
}

func openLog(path string) (*csvLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening trip log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat trip log: %w", err)
	}
	l := &csvLog{path: path, f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.w.Write(Columns); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header to %s: %w", path, err)
		}
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header to %s: %w", path, err)
		}
	}
	return l, nil
}

// WriteTrips appends the batch, routing each trip to its log, and flushes.
func (c *CSV) WriteTrips(_ context.Context, trips []simulation.Trip) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range trips {
		l := c.vehicles
		if t.Pedestrian() {
			l = c.pedestrians
		}
		if err := l.w.Write(Record(t)); err != nil {
			return fmt.Errorf("writing %s: %w", l.path, err)
		}
		l.rows++
	}
	for _, l := range []*csvLog{c.vehicles, c.pedestrians} {
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			return fmt.Errorf("flushing %s: %w", l.path, err)
		}
	}
	return nil
}

// Close flushes and closes both files.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for _, l := range []*csvLog{c.vehicles, c.pedestrians} {
		l.w.Flush()
		if err := l.w.Error(); err != nil && first == nil {
			first = err
		}
		if err := l.f.Close(); err != nil && first == nil {
			first = err
		}
		log.WithFields(log.Fields{"file": l.path, "rows": l.rows}).Debug("trip log closed")
	}
	return first
}
