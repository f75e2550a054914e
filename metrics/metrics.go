package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the generator metrics. It is separate from the default registry
// so exported files carry no Go runtime or process metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// PartitionsGeneratedTotal tracks partition statements generated per table.
var PartitionsGeneratedTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Name: "partitiongen_partitions_generated_total",
		Help: "Total partition statements generated",
	},
	[]string{"table"},
)

// IndexesGeneratedTotal tracks index statements generated per table.
var IndexesGeneratedTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Name: "partitiongen_indexes_generated_total",
		Help: "Total index statements generated",
	},
	[]string{"table"},
)

// OutputLines tracks the line count of the last written migration.
var OutputLines = factory.NewGauge(
	prometheus.GaugeOpts{
		Name: "partitiongen_output_lines",
		Help: "Lines in the last generated migration",
	},
)

// Years tracks the number of years covered by the last generation.
var Years = factory.NewGauge(
	prometheus.GaugeOpts{
		Name: "partitiongen_years",
		Help: "Years covered by the last generated migration",
	},
)

// LastSuccessTimestamp tracks when a migration was last written successfully.
var LastSuccessTimestamp = factory.NewGauge(
	prometheus.GaugeOpts{
		Name: "partitiongen_last_success_timestamp_seconds",
		Help: "Unix time of the last successful generation",
	},
)
