package player

import (
	"sync"
	"time"

	"MusicRoom/logger"
	"MusicRoom/model"
)

// ClockPlayback 以挂钟时间模拟走带的播放原语。不做任何音频解码，
// 用于无声运行客户端（进度上报、自动切歌等行为与真实播放一致）。
type ClockPlayback struct {
	mu        sync.Mutex
	url       string
	loaded    bool
	playing   bool
	base      float64 // 暂停时累计到的位置
	startedAt time.Time
	readyFn   func()
}

// NewClockPlayback 创建模拟播放原语
func NewClockPlayback() *ClockPlayback {
	return &ClockPlayback{}
}

// Load 加载媒体URL。模拟实现立即就绪。
func (p *ClockPlayback) Load(url string) {
	p.mu.Lock()
	p.url = url
	p.loaded = true
	p.playing = false
	p.base = 0
	readyFn := p.readyFn
	p.readyFn = nil
	p.mu.Unlock()

	logger.Debug("clock playback loaded", logger.String("url", url))

	if readyFn != nil {
		readyFn()
	}
}

// Play 开始或继续计时
func (p *ClockPlayback) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return
	}
	p.playing = true
	p.startedAt = time.Now()
}

// Pause 停止计时并累计位置
func (p *ClockPlayback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}
	p.base += time.Since(p.startedAt).Seconds()
	p.playing = false
}

// Seek 直接跳到目标位置，模拟实现总是接受
func (p *ClockPlayback) Seek(position, _ float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.base = position
	p.startedAt = time.Now()
	return true
}

// CurrentTime 当前位置（秒）
func (p *ClockPlayback) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return p.base + time.Since(p.startedAt).Seconds()
	}
	return p.base
}

// Duration 模拟实现不解析媒体，时长未知
func (p *ClockPlayback) Duration() float64 {
	return 0
}

// Buffered 模拟实现没有缓冲信息
func (p *ClockPlayback) Buffered() []model.BufferRange {
	return nil
}

// CurrentURL 当前加载的媒体URL
func (p *ClockPlayback) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// OnReady 注册就绪回调，已加载时立即调用
func (p *ClockPlayback) OnReady(fn func()) {
	p.mu.Lock()
	loaded := p.loaded
	if !loaded {
		p.readyFn = fn
	}
	p.mu.Unlock()

	if loaded {
		fn()
	}
}
