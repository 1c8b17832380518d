package rembg

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chaos-io/bgstudio/util"
)

// Status 最近一次自检的结果
type Status struct {
	Backend   string    `json:"backend"`
	Ready     bool      `json:"ready"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Monitor 按 cron 表达式定期对抠图后端做自检
// 只记录后端是否可用，不缓存任何请求数据
type Monitor struct {
	backend string
	remover Remover
	timeout time.Duration
	cron    *cron.Cron

	mu     sync.RWMutex
	status Status
}

func NewMonitor(backend string, remover Remover, timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Monitor{
		backend: backend,
		remover: remover,
		timeout: timeout,
		cron:    cron.New(),
		status:  Status{Backend: backend},
	}
}

// Start 先同步检查一次，再按 schedule 定期检查
func (m *Monitor) Start(schedule string) error {
	m.Check(context.Background())

	if _, err := m.cron.AddFunc(schedule, func() {
		m.Check(context.Background())
	}); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Check 执行一次自检，后端没有实现 Pinger 时视为可用
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	st := Status{Backend: m.backend, Ready: true, CheckedAt: time.Now()}
	if p, ok := m.remover.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			st.Ready = false
			st.Error = err.Error()
			util.Logger.Warn("rembg backend not ready", zap.String("backend", m.backend), zap.Error(err))
		}
	}

	m.mu.Lock()
	m.status = st
	m.mu.Unlock()
	return st
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
