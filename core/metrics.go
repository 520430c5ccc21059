package core

import "context"

// NopMetricsRecorder discards every observation. It backs services built
// without WithMetricsRecorder so instrumentation calls need no nil checks.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// cloneTags keeps recorder implementations from mutating caller-owned tag
// maps between the counter and histogram emissions of one operation.
func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
