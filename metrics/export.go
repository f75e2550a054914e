package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// WriteTextfile writes the generator metrics in the text exposition format,
// for pickup by the node_exporter textfile collector.
// The file is written to a temporary name and renamed into place.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}

// Pusher sends the generator metrics to a Prometheus Pushgateway.
// Use this when the generator runs as a batch job with no local node_exporter.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher creates a Pusher for the gateway at url, grouping metrics under job.
// Example url: "http://pushgateway:9091"
func NewPusher(url, job string) *Pusher {
	return &Pusher{
		pusher: push.New(url, job).Gatherer(Registry),
	}
}

// Push replaces all metrics previously pushed under the job.
func (p *Pusher) Push(ctx context.Context) error {
	return p.pusher.PushContext(ctx)
}
