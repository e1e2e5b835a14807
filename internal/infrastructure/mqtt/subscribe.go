package mqtt

import (
	"fmt"
	"strings"
)

// Subscribe registers a handler for messages on the specified topic.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "sensorpipe/command/+/blink" matches any device
//   - # (multi-level): "sensorpipe/#" matches all sensorpipe topics
//
// Handlers run on paho's goroutines and must not block. Subscriptions are
// tracked and restored by handleConnect after a reconnect.
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.track(subscription{topic: topic, qos: qos, handler: handler})

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.untrack(topic)
		return fmt.Errorf("%w: %s: timeout after %v", ErrSubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.untrack(topic)
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}

	return nil
}

// SubscribeCommands subscribes to this node's blink command topic and hands
// every non-empty payload line to push. push must not block; a false return
// means the line was dropped and is reported back as ErrCommandDropped.
//
// Example:
//
//	feed := peripheral.NewLineFeed(16)
//	err := client.SubscribeCommands(feed.Push)
func (c *Client) SubscribeCommands(push func(line string) bool) error {
	if push == nil {
		return fmt.Errorf("%w: push cannot be nil", ErrSubscribeFailed)
	}
	return c.Subscribe(c.topics.BlinkCommand(), byte(c.cfg.QoS), commandHandler(push))
}

// UnsubscribeCommands removes the blink command subscription. It is a no-op
// when the subscription does not exist.
func (c *Client) UnsubscribeCommands() error {
	topic := c.topics.BlinkCommand()
	if !c.HasSubscription(topic) {
		return nil
	}
	return c.Unsubscribe(topic)
}

// commandHandler splits a command payload into lines. A payload such as
// "+\n+\n-" carries three commands.
func commandHandler(push func(line string) bool) MessageHandler {
	return func(_ string, payload []byte) error {
		var total, dropped int
		for line := range strings.SplitSeq(string(payload), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			total++
			if !push(line) {
				dropped++
			}
		}
		if dropped > 0 {
			return fmt.Errorf("%w: %d of %d lines", ErrCommandDropped, dropped, total)
		}
		return nil
	}
}

// Unsubscribe removes a subscription and stops receiving messages for a topic.
// Messages already in flight may still be delivered.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.untrack(topic)

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

func (c *Client) track(sub subscription) {
	c.subMu.Lock()
	c.subscriptions[sub.topic] = sub
	c.subMu.Unlock()
}

func (c *Client) untrack(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether topic is tracked. Only the exact topic
// string is compared, not wildcard matches.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
