package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yushengtzou/sensorpipe/internal/handoff"
	"github.com/yushengtzou/sensorpipe/internal/msgq"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

// drainQueue takes readings until the queue is empty and returns how many
// were emitted.
func (p *Pipeline) drainQueue(ctx context.Context) int {
	n := 0
	for {
		r, err := p.readings.TryGet()
		if err != nil {
			if n > 0 {
				p.logger.Debug("queue drained", "count", n)
			}
			return n
		}
		p.emit(ctx, r, pathQueue)
		n++
	}
}

func (p *Pipeline) runDrainConsumer(ctx context.Context) error {
	return task.Every(ctx, p.clock, task.Fixed(p.cfg.Queue.DrainInterval), func(ctx context.Context) {
		p.drainQueue(ctx)
	})
}

// runBlockingConsumer waits for each reading. A wait that times out is
// the normal idle case.
func (p *Pipeline) runBlockingConsumer(ctx context.Context) error {
	for {
		gctx, cancel := withOptionalTimeout(ctx, p.cfg.Queue.GetTimeout)
		r, err := p.readings.Get(gctx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, msgq.ErrTimeout) {
				p.logger.Debug("no reading within timeout", "timeout", p.cfg.Queue.GetTimeout)
				continue
			}
			return fmt.Errorf("taking reading: %w", err)
		}

		p.emit(ctx, r, pathQueue)
	}
}

// runSignalConsumer waits for the signal and takes the latest reading.
func (p *Pipeline) runSignalConsumer(ctx context.Context) error {
	for {
		wctx, cancel := withOptionalTimeout(ctx, p.cfg.SignalWaitTimeout)
		r, err := p.signal.WaitAndTake(wctx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, handoff.ErrTimeout) {
				p.logger.Debug("no reading signalled within timeout", "timeout", p.cfg.SignalWaitTimeout)
				continue
			}
			return fmt.Errorf("taking signalled reading: %w", err)
		}

		p.emit(ctx, r, pathSignal)
	}
}

// emit records r as the latest consumed reading and hands it to every
// sink. Sink failures are logged and never stop the consumer.
func (p *Pipeline) emit(ctx context.Context, r Reading, path string) {
	lctx, cancel := p.lockContext(ctx)
	err := p.latest.Store(lctx, r)
	cancel()
	if err != nil {
		p.logger.Warn("recording latest reading failed", "seq", r.Seq, "error", err)
	} else {
		p.haveLatest.Store(true)
	}

	for _, s := range p.sinks {
		if err := s.Emit(ctx, r); err != nil {
			p.rec.RecordSinkError(s.Name())
			p.logger.Warn("sink rejected reading", "sink", s.Name(), "seq", r.Seq, "error", err)
		}
	}

	p.consumed.Add(1)
	p.rec.RecordReading(r.Sensor, path)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
