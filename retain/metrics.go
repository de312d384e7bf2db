package retain

// NoopMetrics is a Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Admit()                {}
func (NoopMetrics) Release(ReleaseReason) {}

var _ Metrics = NoopMetrics{}
