package tinydb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    dumpCounter   prometheus.Counter
//	    dumpHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDump(records, bytes int, duration time.Duration, err error) {
//	    p.dumpCounter.Inc()
//	    p.dumpHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordAdd is called after each Add. err is ErrDupeFound for rejected duplicates.
	RecordAdd(duration time.Duration, err error)

	// RecordRemove is called after each Remove.
	RecordRemove(duration time.Duration, err error)

	// RecordQuery is called after each Query with whether a record was found.
	RecordQuery(duration time.Duration, found bool)

	// RecordDump is called after each Dump.
	// records and bytes describe the written snapshot.
	RecordDump(records, bytes int, duration time.Duration, err error)

	// RecordLoad is called after each Load.
	RecordLoad(records, bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)            {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)         {}
func (NoopMetricsCollector) RecordQuery(time.Duration, bool)           {}
func (NoopMetricsCollector) RecordDump(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount       atomic.Int64
	AddErrors      atomic.Int64
	RemoveCount    atomic.Int64
	RemoveErrors   atomic.Int64
	QueryCount     atomic.Int64
	QueryMisses    atomic.Int64
	DumpCount      atomic.Int64
	DumpErrors     atomic.Int64
	DumpBytes      atomic.Int64
	DumpTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadRecords    atomic.Int64
	LoadTotalNanos atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(duration time.Duration, found bool) {
	b.QueryCount.Add(1)
	if !found {
		b.QueryMisses.Add(1)
	}
}

// RecordDump implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDump(records, bytes int, duration time.Duration, err error) {
	b.DumpCount.Add(1)
	b.DumpTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DumpErrors.Add(1)
		return
	}
	b.DumpBytes.Add(int64(bytes))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(records, bytes int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadRecords.Add(int64(records))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:     b.AddCount.Load(),
		AddErrors:    b.AddErrors.Load(),
		RemoveCount:  b.RemoveCount.Load(),
		RemoveErrors: b.RemoveErrors.Load(),
		QueryCount:   b.QueryCount.Load(),
		QueryMisses:  b.QueryMisses.Load(),
		DumpCount:    b.DumpCount.Load(),
		DumpErrors:   b.DumpErrors.Load(),
		DumpBytes:    b.DumpBytes.Load(),
		DumpAvgNanos: avg(b.DumpTotalNanos.Load(), b.DumpCount.Load()),
		LoadCount:    b.LoadCount.Load(),
		LoadErrors:   b.LoadErrors.Load(),
		LoadRecords:  b.LoadRecords.Load(),
		LoadAvgNanos: avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount     int64
	AddErrors    int64
	RemoveCount  int64
	RemoveErrors int64
	QueryCount   int64
	QueryMisses  int64
	DumpCount    int64
	DumpErrors   int64
	DumpBytes    int64
	DumpAvgNanos int64
	LoadCount    int64
	LoadErrors   int64
	LoadRecords  int64
	LoadAvgNanos int64
}
