package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yushengtzou/sensorpipe/internal/msgq"
	"github.com/yushengtzou/sensorpipe/internal/peripheral"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

// sample reads the sensor once. Failures are logged and counted; ok is
// false when there is nothing to hand off.
func (p *Pipeline) sample(ctx context.Context) (Reading, bool) {
	name := p.sensor.Name()

	v, err := p.sensor.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Reading{}, false
		}
		p.sensorErrors.Add(1)
		p.rec.RecordSensorError(name)
		if errors.Is(err, peripheral.ErrSequenceDone) {
			p.logger.Debug("sensor sequence exhausted", "sensor", name)
		} else {
			p.logger.Error("sensor read failed", "sensor", name, "error", err)
		}
		return Reading{}, false
	}

	return Reading{
		Seq:     p.seq.Add(1),
		TraceID: uuid.New(),
		Sensor:  name,
		Value:   v,
		TakenAt: p.clock.Now(),
	}, true
}

// sampleToQueue takes one reading and offers it to the queue. A full queue
// drops the new reading.
func (p *Pipeline) sampleToQueue(ctx context.Context) {
	r, ok := p.sample(ctx)
	if !ok {
		return
	}

	if err := p.readings.TryPut(r); err != nil {
		if errors.Is(err, msgq.ErrFull) {
			p.logger.Warn("queue full", "sensor", r.Sensor, "seq", r.Seq)
			return
		}
		p.logger.Error("queue put failed", "seq", r.Seq, "error", err)
	}
}

// sampleToSignal takes one reading and publishes it, replacing any reading
// the consumer has not taken yet.
func (p *Pipeline) sampleToSignal(ctx context.Context) {
	r, ok := p.sample(ctx)
	if !ok {
		return
	}

	lctx, cancel := p.lockContext(ctx)
	defer cancel()
	if err := p.signal.Publish(lctx, r); err != nil && ctx.Err() == nil {
		p.logger.Error("publishing reading failed", "seq", r.Seq, "error", err)
	}
}

func (p *Pipeline) runQueueProducer(ctx context.Context) error {
	return task.Every(ctx, p.clock, task.Fixed(p.cfg.Sensor.SamplePeriod), p.sampleToQueue)
}

func (p *Pipeline) runSignalProducer(ctx context.Context) error {
	return task.Every(ctx, p.clock, task.Fixed(p.cfg.Sensor.SamplePeriod), p.sampleToSignal)
}
