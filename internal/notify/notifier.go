package notify

import (
	"context"
	"log"
	"time"

	"highxofy/internal/baseline/application/eventbus"
	"highxofy/internal/baseline/application/events"
)

// RunMessage summarises one finished calculation.
type RunMessage struct {
	SubjectID string    `json:"subject_id"`
	Records   int       `json:"records"`
	Defined   int       `json:"defined"`
	Undefined int       `json:"undefined"`
	FirstAt   time.Time `json:"first_at"`
	LastAt    time.Time `json:"last_at"`
}

// Notifier sends run notifications.
type Notifier interface {
	Notify(ctx context.Context, msg RunMessage) error
}

// Subscribe sends a RunMessage for every BaselineCalculated event. Delivery
// failures are logged and never fail the calculation.
func Subscribe(bus eventbus.EventBus, notifier Notifier, logger *log.Logger) {
	if bus == nil || notifier == nil {
		return
	}
	eventbus.On(bus, func(ctx context.Context, evt events.BaselineCalculated) error {
		msg := RunMessage{
			SubjectID: evt.SubjectID,
			Records:   evt.Records,
			Defined:   evt.Defined,
			Undefined: evt.Records - evt.Defined,
			FirstAt:   evt.FirstAt,
			LastAt:    evt.LastAt,
		}
		if err := notifier.Notify(ctx, msg); err != nil && logger != nil {
			logger.Printf("notify_failed subject=%s err=%v", evt.SubjectID, err)
		}
		return nil
	})
}
