package worker

import (
	"context"
	"testing"
	"time"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/business/delivery"
	"oip/dpnotify/internal/domains"
	"oip/dpnotify/internal/domains/common"
	"oip/dpnotify/internal/framework"
	"oip/dpnotify/pkg/config"
	"oip/dpnotify/pkg/logger"
	"oip/dpnotify/pkg/mailer"
)

type chanMailer struct{ ch chan *mailer.Message }

func (m *chanMailer) Send(_ context.Context, msg *mailer.Message) error {
	m.ch <- msg
	return nil
}

func testWorkerConfig(queue string) []config.WorkerConfig {
	return []config.WorkerConfig{{
		Name:      "mail",
		QueueName: queue,
		Subscriber: config.SubscriberConfig{
			Threads:      1,
			Timeout:      20 * time.Millisecond,
			ErrorBackoff: 10 * time.Millisecond,
		},
		Processor: config.ProcessorConfig{
			Threads:    2,
			BufferSize: 4,
			Timeout:    time.Second,
		},
	}}
}

func TestPipelineDeliversDispatchedNotification(t *testing.T) {
	log := logger.NewNopLogger()
	source := framework.NewMemorySource(8)
	m := &chanMailer{ch: make(chan *mailer.Message, 4)}

	proc := domains.GetProcess(log, &common.Services{Mail: delivery.NewMailService(m, log)})
	mgr, err := NewManagerInstance(testWorkerConfig("alerts"), source, proc, log)
	if err != nil {
		t.Fatalf("NewManagerInstance: %v", err)
	}
	go mgr.Start()
	defer mgr.Shutdown()

	n := alert.NewNotifier(
		alert.NewMemoryFieldCache(),
		alert.NewMemoryNotifiedSet(0),
		delivery.NewQueueDispatcher(source, "alerts", time.Minute, log),
		alert.NewRecipientBook("qa@x.com", "", "pack@x.com"),
		alert.KeyFormatTagged,
		log,
	)

	out, err := n.HandleSnapshot(context.Background(), &alert.OrderSnapshot{
		ID:     "A1",
		Fields: alert.FieldValues{"Done", "", "Done"},
	})
	if err != nil || out.Kind != alert.Dispatched {
		t.Fatalf("HandleSnapshot = %+v, %v", out, err)
	}

	select {
	case msg := <-m.ch:
		if msg.Subject != "🔍 QA Double Check marked Done for Order #A1" {
			t.Fatalf("subject = %q", msg.Subject)
		}
		if len(msg.To) != 2 {
			t.Fatalf("to = %v", msg.To)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for mail")
	}
}

func TestManagerShutdownDrainsAndIsIdempotent(t *testing.T) {
	log := logger.NewNopLogger()
	source := framework.NewMemorySource(8)
	m := &chanMailer{ch: make(chan *mailer.Message, 8)}
	proc := domains.GetProcess(log, &common.Services{Mail: delivery.NewMailService(m, log)})

	mgr, err := NewManagerInstance(testWorkerConfig("alerts"), source, proc, log)
	if err != nil {
		t.Fatalf("NewManagerInstance: %v", err)
	}

	done := make(chan struct{})
	go func() {
		mgr.Start()
		close(done)
	}()

	mgr.Shutdown()
	mgr.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after Shutdown")
	}
}

func TestNewManagerInstanceValidates(t *testing.T) {
	log := logger.NewNopLogger()
	if _, err := NewManagerInstance(nil, framework.NewMemorySource(1), nil, log); err == nil {
		t.Fatalf("expected error without workers")
	}
	cfgs := testWorkerConfig("alerts")
	cfgs[0].Processor.Threads = 0
	if _, err := NewManagerInstance(cfgs, framework.NewMemorySource(1), nil, log); err == nil {
		t.Fatalf("expected error for zero threads")
	}
}
