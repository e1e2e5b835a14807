package pipeline

import (
	"context"

	"github.com/yushengtzou/sensorpipe/internal/task"
)

func (p *Pipeline) runHeartbeat(ctx context.Context) error {
	return task.Every(ctx, p.clock, task.Fixed(p.beatCfg.Interval), p.beat)
}

// beat logs and publishes one health snapshot.
func (p *Pipeline) beat(ctx context.Context) {
	h := p.Health()
	p.rec.RecordHeartbeat()
	p.logger.Info("heartbeat",
		"uptime_s", h.UptimeSeconds,
		"readings", h.Readings,
		"dropped", h.Dropped,
		"tasks_running", h.TasksRunning,
	)

	if p.healthPub == nil {
		return
	}
	if err := p.healthPub.PublishHealth(ctx, h); err != nil && ctx.Err() == nil {
		p.logger.Warn("publishing health failed", "error", err)
	}
}

// Health returns the current heartbeat payload. It takes no locks.
func (p *Pipeline) Health() Health {
	now := p.clock.Now()

	var dropped uint64
	switch {
	case p.readings != nil:
		dropped = p.readings.Stats().Drops
	case p.signal != nil:
		dropped = p.signal.Stats().Coalesced
	}

	running := 0
	for _, info := range p.tasks.Snapshot() {
		if info.Status == task.StatusRunning {
			running++
		}
	}

	return Health{
		Device:        p.device,
		UptimeSeconds: int64(now.Sub(p.started).Seconds()),
		Readings:      p.consumed.Load(),
		Dropped:       dropped,
		SensorErrors:  p.sensorErrors.Load(),
		BlinkPeriodMS: p.lastPeriod.Load(),
		TasksRunning:  running,
		Timestamp:     now.UTC(),
	}
}
