package pipeline

import (
	"context"
	"fmt"
)

// eventButton is the Event kind for debounced presses.
const eventButton = "button"

// onButton is the deferred work run once the button has been quiet for the
// debounce window.
func (p *Pipeline) onButton(ctx context.Context) error {
	level, err := p.buttonPin.Get(ctx)
	if err != nil {
		return fmt.Errorf("reading button: %w", err)
	}
	if level == 0 {
		p.logger.Debug("button released within debounce window")
		return nil
	}

	p.logger.Info("doing some work")
	p.presses.Add(1)
	p.rec.RecordButtonPress()

	e := Event{Kind: eventButton, Value: level, At: p.clock.Now()}
	for _, s := range p.events {
		if err := s.Event(ctx, e); err != nil {
			p.rec.RecordSinkError(s.Name())
			p.logger.Warn("event sink rejected event", "sink", s.Name(), "kind", e.Kind, "error", err)
		}
	}
	return nil
}
