package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type HandlerFunc func(ctx context.Context, body []byte) error

// ErrConsumerClosed reports that the broker closed the delivery channel, as
// opposed to the caller cancelling its context.
var ErrConsumerClosed = errors.New("delivery channel closed")

// ConsumeWithRetry processes deliveries from queueName until ctx is cancelled
// or the channel closes. Failed deliveries are republished with an
// incremented x-retry-count after retryDelay; once maxRetries is exhausted
// the delivery is rejected into the dead-letter queue.
func (c *Client) ConsumeWithRetry(ctx context.Context, queueName string, handler HandlerFunc, maxRetries int, retryDelay time.Duration) error {
	msgs, err := c.ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
			c.handleDelivery(ctx, queueName, msg, handler, maxRetries, retryDelay)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, queueName string, msg amqp.Delivery, handler HandlerFunc, maxRetries int, retryDelay time.Duration) {
	if err := handler(ctx, msg.Body); err == nil {
		_ = msg.Ack(false)
		return
	}

	attempt := deliveryAttempt(msg.Headers)
	if attempt >= maxRetries {
		// Rejected without requeue, so the dead-letter config takes it.
		_ = msg.Nack(false, false)
		return
	}

	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retry-count"] = attempt + 1

	select {
	case <-ctx.Done():
		// Shutting down mid-retry; hand the delivery back untouched.
		_ = msg.Nack(false, true)
		return
	case <-time.After(retryDelay):
	}

	if err := c.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers:     headers,
		Timestamp:   time.Now(),
	}); err != nil {
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// deliveryAttempt reads x-retry-count, tolerating the integer widths amqp
// clients encode it as.
func deliveryAttempt(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers["x-retry-count"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}
