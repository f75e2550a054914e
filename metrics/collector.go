package metrics

import "time"

// Collector wraps metrics and provides helper methods for one generation run.
type Collector struct {
	now func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector() *Collector {
	return &Collector{now: time.Now}
}

// AddPartitions adds generated partition statements for a table.
func (c *Collector) AddPartitions(table string, count int) {
	PartitionsGeneratedTotal.WithLabelValues(table).Add(float64(count))
}

// AddIndexes adds generated index statements for a table.
func (c *Collector) AddIndexes(table string, count int) {
	IndexesGeneratedTotal.WithLabelValues(table).Add(float64(count))
}

// SetOutputLines sets the output lines gauge.
func (c *Collector) SetOutputLines(count int) {
	OutputLines.Set(float64(count))
}

// SetYears sets the covered years gauge.
func (c *Collector) SetYears(count int) {
	Years.Set(float64(count))
}

// MarkSuccess records the current time as the last successful generation.
func (c *Collector) MarkSuccess() {
	LastSuccessTimestamp.Set(float64(c.now().Unix()))
}
