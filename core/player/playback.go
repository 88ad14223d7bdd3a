package player

import (
	"MusicRoom/model"
)

// Playback 平台播放原语的抽象。解码与渲染对本模块完全不透明，
// 控制器只依赖加载、走带控制和时钟读取。
type Playback interface {
	// Load 加载媒体URL并开始准备，替换当前媒体
	Load(url string)
	// Play 开始或继续播放
	Play()
	// Pause 暂停播放
	Pause()
	// Seek 跳转到指定位置（秒）。返回false表示本次跳转未被接受，
	// 调用方可择机重试。
	Seek(position, tolerance float64) bool
	// CurrentTime 当前播放位置（秒）
	CurrentTime() float64
	// Duration 当前媒体总时长（秒），未知时返回0
	Duration() float64
	// Buffered 已缓冲的时间区间
	Buffered() []model.BufferRange
	// CurrentURL 当前加载的媒体URL，未加载时为空串
	CurrentURL() string
	// OnReady 注册就绪回调，媒体可播放时调用一次。
	// 注册时媒体已就绪的立即调用。
	OnReady(fn func())
}

// NowPlayingInfo 系统"正在播放"面板的展示信息
type NowPlayingInfo struct {
	Title    string
	Artist   string
	Duration float64
	Elapsed  float64
	Playing  bool
}

// NowPlayingSink 系统"正在播放"展示的抽象出口
type NowPlayingSink interface {
	// Update 整体刷新展示信息
	Update(info NowPlayingInfo)
	// UpdateElapsed 只刷新已播放时长
	UpdateElapsed(seconds float64)
}

// NopNowPlaying 空实现，用于不接入系统展示的场景
type NopNowPlaying struct{}

func (NopNowPlaying) Update(NowPlayingInfo) {}
func (NopNowPlaying) UpdateElapsed(float64) {}
