package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yushengtzou/sensorpipe/internal/shared"
	"github.com/yushengtzou/sensorpipe/internal/task"
)

// controlLoop returns the task loop reading control lines from c. The loop
// ends quietly when the source is exhausted.
func (p *Pipeline) controlLoop(c ControlSource) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if closer, ok := c.Lines.(io.Closer); ok {
			defer closer.Close() //nolint:errcheck // nothing left to report to
		}

		for {
			line, err := c.Lines.ReadLine(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if errors.Is(err, io.EOF) {
					p.logger.Info("control source closed", "source", c.Name)
					return nil
				}
				return fmt.Errorf("reading %s control line: %w", c.Name, err)
			}

			if err := p.applyControl(ctx, line); err != nil {
				p.logger.Warn("control command rejected", "source", c.Name, "line", line, "error", err)
			}
		}
	}
}

// applyControl handles one control line. Only the first character counts:
// "+" lengthens the blink period by one step and "-" shortens it.
func (p *Pipeline) applyControl(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var delta int8
	direction := "up"
	switch line[0] {
	case '+':
		delta = 1
	case '-':
		delta = -1
		direction = "down"
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	if p.deltas != nil {
		if err := p.deltas.TryPut(delta); err != nil {
			return fmt.Errorf("queueing period change: %w", err)
		}
		p.rec.RecordControl(direction)
		return nil
	}

	period, err := p.adjustPeriod(ctx, delta)
	if err != nil {
		return err
	}
	p.rec.RecordControl(direction)
	p.logger.Info("blink period changed", "period_ms", period)
	return nil
}

// adjustPeriod moves the shared blink period by delta steps, clamped to the
// configured bounds.
func (p *Pipeline) adjustPeriod(ctx context.Context, delta int8) (int32, error) {
	lctx, cancel := p.lockContext(ctx)
	defer cancel()

	period, err := shared.Adjust(lctx, p.period, int32(delta)*p.blinkCfg.StepMS, p.blinkCfg.MinMS, p.blinkCfg.MaxMS)
	if err != nil {
		return 0, fmt.Errorf("adjusting blink period: %w", err)
	}
	p.lastPeriod.Store(period)
	return period, nil
}

// blinkPeriod returns the period for the next blink cycle. In queue control
// mode it first applies at most one pending delta. A lock failure falls
// back to the last period seen.
func (p *Pipeline) blinkPeriod(ctx context.Context) int32 {
	if p.deltas != nil {
		if delta, err := p.deltas.TryGet(); err == nil {
			period, err := p.adjustPeriod(ctx, delta)
			if err != nil {
				p.logger.Warn("applying queued period change failed", "error", err)
				return p.lastPeriod.Load()
			}
			p.logger.Info("blink period changed", "period_ms", period)
			return period
		}
	}

	lctx, cancel := p.lockContext(ctx)
	defer cancel()

	period, err := p.period.Load(lctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("reading blink period failed", "error", err)
		}
		return p.lastPeriod.Load()
	}
	p.lastPeriod.Store(period)
	return period
}

// runBlink toggles the LED once per blink period.
func (p *Pipeline) runBlink(ctx context.Context) error {
	level := 0
	period := func() time.Duration {
		return time.Duration(p.blinkPeriod(ctx)) * time.Millisecond
	}

	return task.Every(ctx, p.clock, period, func(ctx context.Context) {
		next := level ^ 1
		if err := p.led.Set(ctx, next); err != nil {
			if ctx.Err() == nil {
				p.logger.Warn("led toggle failed", "level", next, "error", err)
			}
			return
		}
		level = next
	})
}
