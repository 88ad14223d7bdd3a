package player

import (
	"context"
	"sync"
	"time"
)

// Scheduler 进度同步调度器。按固定节拍驱动回调，只在本地播放
// 进行时运行：播放停止时调度随之停止，节拍天然暂停。
type Scheduler struct {
	interval time.Duration
	tick     func()

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewScheduler 创建调度器，不自动启动
func NewScheduler(interval time.Duration, tick func()) *Scheduler {
	return &Scheduler{interval: interval, tick: tick}
}

// Start 启动节拍循环，已在运行时是空操作
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop 停止节拍循环，未在运行时是空操作
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Running 返回节拍循环是否在运行
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}
