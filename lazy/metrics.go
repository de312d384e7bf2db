package lazy

// NoopMetrics is a Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()       {}
func (NoopMetrics) Compute()   {}
func (NoopMetrics) Fail()      {}
func (NoopMetrics) Reclaimed() {}

var _ Metrics = NoopMetrics{}
