package client

import (
	"context"
	"time"
)

// NotificationPoller polls the unread count on a fixed interval. Failures
// back off by doubling up to Ceiling; the first successful poll snaps the
// cadence back to Interval. A failed poll reports a zero count and an empty
// list, so a stale badge never outlives the connection.
type NotificationPoller struct {
	Client   *Client
	Interval time.Duration
	Ceiling  time.Duration

	// OnCount receives every successful unread count, including repeats,
	// and zero after a failed poll.
	OnCount func(count int)
	// OnNotifications, when set, makes each successful poll also fetch the
	// notification list.
	OnNotifications func(notifications []Notification)
	// OnError is optional; polling continues either way.
	OnError func(err error)
}

// Run blocks until ctx is cancelled.
func (p *NotificationPoller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ceiling := p.Ceiling
	if ceiling < interval {
		ceiling = interval
	}

	delay := interval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		count, err := p.Client.UnreadNotificationCount(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if p.OnError != nil {
				p.OnError(err)
			}
			if p.OnCount != nil {
				p.OnCount(0)
			}
			if p.OnNotifications != nil {
				p.OnNotifications(nil)
			}
			delay *= 2
			if delay > ceiling {
				delay = ceiling
			}
		} else {
			delay = interval
			if p.OnCount != nil {
				p.OnCount(count)
			}
			if p.OnNotifications != nil {
				if notifications, err := p.Client.Notifications(ctx); err == nil {
					p.OnNotifications(notifications)
				}
			}
		}

		timer.Reset(delay)
	}
}
