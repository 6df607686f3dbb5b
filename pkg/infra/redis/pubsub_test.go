package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/pkg/logger"
)

type countingDispatcher struct{ count int }

func (d *countingDispatcher) Dispatch(context.Context, *alert.Notification) error {
	d.count++
	return nil
}

func nopLogger() logger.Logger { return logger.NewNopLogger() }

func TestPublishDelivery(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	ps := NewPubSub(client, "delivery")

	sub := ps.Subscribe(ctx)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	event := &DeliveryEvent{OrderID: "A1", Key: "A1-ref_field_1=Done", Status: "SENT", Timestamp: 1}
	if err := ps.PublishDelivery(ctx, event); err != nil {
		t.Fatalf("PublishDelivery: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got DeliveryEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.OrderID != "A1" || got.Status != "SENT" {
			t.Fatalf("event = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery event")
	}
}
