package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"oip/dpnotify/internal/framework"
	"oip/dpnotify/pkg/config"
	"oip/dpnotify/pkg/lmstfyx"
	"oip/dpnotify/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx        context.Context
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	mu         sync.Mutex
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager，按配置为每个队列创建 Worker
func NewManagerInstance(
	workerCfgs []config.WorkerConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) (*ManagerInstance, error) {
	if len(workerCfgs) == 0 {
		return nil, fmt.Errorf("at least one worker is required")
	}

	m := &ManagerInstance{
		ctx:        context.Background(),
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		workers:    make([]Worker, 0, len(workerCfgs)),
		logger:     log,
	}

	for _, wc := range workerCfgs {
		if wc.Subscriber.Threads <= 0 || wc.Processor.Threads <= 0 {
			return nil, fmt.Errorf("worker %s: threads must be positive", wc.Name)
		}

		subCfg := &framework.SubscriberConfig{
			QueueName:    wc.QueueName,
			Concurrency:  wc.Subscriber.Threads,
			Rate:         wc.Subscriber.Rate,
			Timeout:      wc.Subscriber.Timeout,
			TTR:          wc.Subscriber.TTR,
			ErrorBackoff: wc.Subscriber.ErrorBackoff,
		}
		procCfg := &framework.ProcessorConfig{
			Concurrency: wc.Processor.Threads,
			BufferSize:  wc.Processor.BufferSize,
			Timeout:     wc.Processor.Timeout,
		}

		m.workers = append(m.workers, NewWorkerInstance(m.ctx, wc.Name, subCfg, procCfg, source, proc, log))
	}

	return m, nil
}

// Start 启动所有 Worker，阻塞直到 Shutdown
func (m *ManagerInstance) Start() error {
	m.mu.Lock()
	if m.closing.Load() {
		m.mu.Unlock()
		return nil
	}
	for _, w := range m.workers {
		w.Start()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}
	m.mu.Unlock()

	m.logger.Infof(m.ctx, "[Manager] Start success, workers: %d", len(m.workers))

	<-m.shutdownCh
	return nil
}

// Shutdown 优雅退出，可重复调用
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	m.mu.Lock()
	for _, w := range m.workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", w.GetName())
		w.Shutdown()
	}
	m.mu.Unlock()

	close(m.shutdownCh)
	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}
