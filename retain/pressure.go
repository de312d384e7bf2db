package retain

import (
	"runtime/metrics"
	"time"

	"go.uber.org/zap"
)

// heapObjectsMetric is the live+unswept heap object bytes reported by the runtime.
const heapObjectsMetric = "/memory/classes/heap/objects:bytes"

// watch periodically sweeps idle references and reacts to heap pressure.
// It exits when Close closes p.stop.
func (p *Pool) watch() {
	defer close(p.done)

	t := time.NewTicker(p.opt.CheckEvery)
	defer t.Stop()

	sample := []metrics.Sample{{Name: heapObjectsMetric}}
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
		}

		if p.opt.IdleTTL > 0 {
			if n := p.sweepIdle(); n > 0 {
				p.log.Debug("released idle references", zap.Int("released", n))
			}
		}
		if p.opt.HeapLimit > 0 {
			p.checkHeap(sample)
		}
	}
}

// checkHeap releases half of the retained references when the live heap is
// above HeapLimit. The collector does the actual reclaiming on its next cycle.
func (p *Pool) checkHeap(sample []metrics.Sample) {
	metrics.Read(sample)
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return
	}
	heap := sample[0].Value.Uint64()
	if heap <= p.opt.HeapLimit {
		return
	}
	entries := p.Len()
	if entries == 0 {
		return
	}
	n := p.Shrink((entries + 1) / 2)
	p.log.Info("heap above limit, released references",
		zap.Uint64("heap_bytes", heap),
		zap.Uint64("limit_bytes", p.opt.HeapLimit),
		zap.Int("released", n),
		zap.Int("remaining", entries-n),
	)
}
