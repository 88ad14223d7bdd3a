package player

import (
	"context"
	"errors"
	"math"
	"time"

	"MusicRoom/core/channel"
	"MusicRoom/logger"
	"MusicRoom/model"
)

var (
	// ErrNoSession 没有可寻址的活跃会话，无法发出会话指令
	ErrNoSession = errors.New("player: no active session")
	// ErrEmptyQueue 待播队列为空，无法切歌
	ErrEmptyQueue = errors.New("player: queue is empty")
)

// TransportState 本地走带状态镜像
type TransportState int

const (
	StatePaused TransportState = iota
	StatePlaying
)

// Transport 出站消息通道的抽象，由订阅监督器实现
type Transport interface {
	Send(msg *channel.Message) error
}

// 进度上报的节拍分频：每5拍上报一次，解耦本地UI刷新与网络流量
const syncEveryTicks = 5

// 跳转未被接受时的重试间隔
var seekRetryDelay = 50 * time.Millisecond

// Controller 播放同步控制器。维护会话快照推导出的当前/待播内容、
// 本地走带状态镜像和进度视图。
//
// 所有可变状态只在Run的单个循环里修改：服务端推送、用户操作和
// 进度调度器三个并发来源都通过命令通道串行化进来。
type Controller struct {
	cmds chan func()

	playback   Playback
	nowPlaying NowPlayingSink
	resolver   Resolver
	transport  Transport

	scheduler *Scheduler

	// 以下字段仅在Run循环内读写
	session   *model.PlayerSession
	current   *Content
	queued    []Content
	state     TransportState
	quality   model.Quality
	progress  model.TrackProgress
	scrubbing bool
	tickCount int
	advancing bool // 曲目播完自动切歌的防重入标记
	repeatOn  bool
	seekGen   uint64 // 停止播放时递增，挂起的跳转重试随之失效
}

// NewController 创建控制器，Run被调用前不处理任何命令
func NewController(playback Playback, nowPlaying NowPlayingSink, resolver Resolver, transport Transport, quality model.Quality) *Controller {
	c := &Controller{
		cmds:       make(chan func(), 64),
		playback:   playback,
		nowPlaying: nowPlaying,
		resolver:   resolver,
		transport:  transport,
		quality:    quality,
		state:      StatePaused,
	}
	c.scheduler = NewScheduler(time.Second, c.Tick)
	return c
}

// Run 启动命令循环，阻塞到ctx取消。必须且只能有一个Run在运行。
func (c *Controller) Run(ctx context.Context) {
	defer c.scheduler.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.cmds:
			fn()
		}
	}
}

// do 投递命令并等待执行完成，用于需要同步结果的调用
func (c *Controller) do(fn func()) {
	done := make(chan struct{})
	c.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// post 投递命令但不等待，用于回调上下文（避免在循环内自投递时死锁）
func (c *Controller) post(fn func()) {
	c.cmds <- fn
}

// ---------- 派生状态读取 ----------

// CurrentContent 当前内容（队列首项），无会话或队列为空时为nil
func (c *Controller) CurrentContent() *Content {
	var content *Content
	c.do(func() {
		if c.current != nil {
			cp := *c.current
			content = &cp
		}
	})
	return content
}

// QueuedContent 待播队列的内容视图
func (c *Controller) QueuedContent() []Content {
	var queued []Content
	c.do(func() {
		queued = append([]Content(nil), c.queued...)
	})
	return queued
}

// Progress 本地观测的播放进度
func (c *Controller) Progress() model.TrackProgress {
	var progress model.TrackProgress
	c.do(func() {
		progress = c.progress
	})
	return progress
}

// State 本地走带状态
func (c *Controller) State() TransportState {
	var state TransportState
	c.do(func() {
		state = c.state
	})
	return state
}

// Quality 当前音质偏好
func (c *Controller) Quality() model.Quality {
	var quality model.Quality
	c.do(func() {
		quality = c.quality
	})
	return quality
}

// RepeatOn 会话是否处于单曲循环模式
func (c *Controller) RepeatOn() bool {
	var repeat bool
	c.do(func() {
		repeat = c.repeatOn
	})
	return repeat
}

// ---------- 权威快照 ----------

// AssignSession 应用服务端下发的会话快照（推送或重新拉取）。
// 永远整体替换：当前/待播内容从新快照完整重算，乐观修改被覆盖。
func (c *Controller) AssignSession(session *model.PlayerSession) {
	c.do(func() {
		c.applyAuthoritativeSnapshot(session)
	})
}

func (c *Controller) applyAuthoritativeSnapshot(session *model.PlayerSession) {
	prev := c.current

	c.session = session
	c.current, c.queued = DeriveContent(session, c.resolver)
	c.repeatOn = session != nil && session.Mode == model.SessionModeRepeat
	c.advancing = false

	if c.current == nil {
		c.stopLocal()
		c.progress = model.TrackProgress{}
		c.nowPlaying.Update(NowPlayingInfo{})
		return
	}

	// 会话曲目变化时，进度以快照携带的值为准
	if prev == nil || prev.SessionTrackID != c.current.SessionTrackID {
		c.resetProgress(c.current)
	}

	switch c.current.State {
	case model.TrackStatePaused, model.TrackStateStopped:
		// 状态已经是权威的，只停本地播放，不发任何消息
		c.stopLocal()

	case model.TrackStatePlaying:
		trackChanged := prev == nil || prev.TrackID != c.current.TrackID
		if trackChanged {
			c.playback.Pause()
			c.startPlayback(c.current)
		} else if c.state != StatePlaying {
			c.startPlayback(c.current)
		}
		c.state = StatePlaying
	}

	c.updateNowPlaying()
}

// resetProgress 将进度视图重置为内容携带的进度与文件时长
func (c *Controller) resetProgress(content *Content) {
	value := content.Progress
	progress := model.TrackProgress{Value: &value}
	if f := content.File(c.quality); f != nil && f.Duration > 0 {
		total := f.Duration
		progress.Total = &total
	}
	c.progress = progress
}

// stopLocal 停止本地播放与进度调度，不产生出站消息。
// 同时让所有在途的跳转重试失效：暂停后到达的过期回调不能再恢复播放。
func (c *Controller) stopLocal() {
	c.playback.Pause()
	c.scheduler.Stop()
	c.state = StatePaused
	c.seekGen++
}

// startPlayback 按当前音质启动内容的本地播放。
// 同一URL已加载时直接继续播放，否则重新加载；携带进度的内容
// 在媒体就绪后先精确跳转再播放。
func (c *Controller) startPlayback(content *Content) {
	file := content.File(c.quality)
	if file == nil {
		logger.Warn("no playable file for track",
			logger.Int64("trackId", content.TrackID),
			logger.String("quality", string(c.quality)))
		return
	}

	if c.playback.CurrentURL() == file.File {
		c.playback.Play()
		c.scheduler.Start()
		return
	}

	c.playback.Load(file.File)

	if content.Progress > 0 {
		tag := content.SessionTrackID
		gen := c.seekGen
		position := content.Progress
		c.playback.OnReady(func() {
			c.post(func() {
				c.seekWithRetry(gen, tag, position)
			})
		})
	} else {
		c.playback.Play()
	}

	c.scheduler.Start()
}

// seekWithRetry 执行带标签的跳转。跳转未被接受时延迟重试；
// 重试到达时会话曲目已更换、或本地播放已在此期间停止过（代次不再
// 匹配）则直接丢弃，避免过期回调在状态前进后把播放拉回去。
func (c *Controller) seekWithRetry(gen uint64, sessionTrackID int64, position float64) {
	if gen != c.seekGen || c.current == nil || c.current.SessionTrackID != sessionTrackID {
		logger.Debug("stale seek discarded",
			logger.Int64("sessionTrackId", sessionTrackID))
		return
	}

	if !c.playback.Seek(position, 0) {
		time.AfterFunc(seekRetryDelay, func() {
			c.post(func() {
				c.seekWithRetry(gen, sessionTrackID, position)
			})
		})
		return
	}

	if c.state == StatePlaying {
		c.playback.Play()
	}
}

// ---------- 用户操作 ----------

// CreateSession 请求服务端从歌单创建新会话
func (c *Controller) CreateSession(playlistID int64, shuffle bool) error {
	msg, err := channel.NewCreateSession(playlistID, shuffle)
	if err != nil {
		return err
	}
	return c.transport.Send(msg)
}

// Forward 切到下一首：本地乐观轮转队列并立即起播，然后通知服务端。
// 服务端之后的权威快照会覆盖本地结果，乐观修改可自我修正。
func (c *Controller) Forward() error {
	var err error
	c.do(func() {
		err = c.forward()
	})
	return err
}

func (c *Controller) forward() error {
	if c.current == nil || c.session == nil {
		return ErrNoSession
	}
	if len(c.queued) == 0 {
		return ErrEmptyQueue
	}

	prevTrackID := c.current.SessionTrackID

	c.playback.Pause()

	// 旧的当前内容轮到队尾，与Backward互为逆操作
	old := *c.current
	next := c.queued[0]
	c.queued = append(c.queued[1:], old)
	c.setCurrentLocal(&next)

	msg, err := channel.NewSessionCommand(channel.EventPlayNextTrack, c.session.ID, prevTrackID)
	if err != nil {
		return err
	}
	return c.transport.Send(msg)
}

// Backward 切到上一首，轮转方向与Forward相反
func (c *Controller) Backward() error {
	var err error
	c.do(func() {
		err = c.backward()
	})
	return err
}

func (c *Controller) backward() error {
	if c.current == nil || c.session == nil {
		return ErrNoSession
	}
	if len(c.queued) == 0 {
		return ErrEmptyQueue
	}

	prevTrackID := c.current.SessionTrackID

	c.playback.Pause()

	// 旧的当前内容回到队首，队尾项成为当前内容
	old := *c.current
	last := c.queued[len(c.queued)-1]
	c.queued = append([]Content{old}, c.queued[:len(c.queued)-1]...)
	c.setCurrentLocal(&last)

	msg, err := channel.NewSessionCommand(channel.EventPlayPreviousTrack, c.session.ID, prevTrackID)
	if err != nil {
		return err
	}
	return c.transport.Send(msg)
}

// setCurrentLocal 应用本地乐观切换：重置进度并立即起播新内容
func (c *Controller) setCurrentLocal(content *Content) {
	c.current = content
	c.advancing = false
	c.resetProgress(content)
	c.startPlayback(content)
	c.state = StatePlaying
	c.updateNowPlaying()
}

// Pause 暂停：先上报精确停止位置，再停本地播放，最后发暂停指令
func (c *Controller) Pause() error {
	var err error
	c.do(func() {
		err = c.pause()
	})
	return err
}

func (c *Controller) pause() error {
	if c.current == nil || c.session == nil {
		return ErrNoSession
	}

	position := c.playback.CurrentTime()
	if math.IsNaN(position) || math.IsInf(position, 0) || position < 0 {
		position = 0
	}

	syncMsg, err := channel.NewSyncTrack(c.session.ID, int(position))
	if err != nil {
		return err
	}
	if err := c.transport.Send(syncMsg); err != nil {
		return err
	}

	c.stopLocal()
	c.updateNowPlaying()

	msg, err := channel.NewSessionCommand(channel.EventPauseTrack, c.session.ID, c.current.SessionTrackID)
	if err != nil {
		return err
	}
	return c.transport.Send(msg)
}

// Resume 恢复播放：本地立即起播，然后通知服务端
func (c *Controller) Resume() error {
	var err error
	c.do(func() {
		err = c.resume()
	})
	return err
}

func (c *Controller) resume() error {
	if c.current == nil || c.session == nil {
		return ErrNoSession
	}

	c.startPlayback(c.current)
	c.state = StatePlaying
	c.updateNowPlaying()

	msg, err := channel.NewSessionCommand(channel.EventResumeTrack, c.session.ID, c.current.SessionTrackID)
	if err != nil {
		return err
	}
	return c.transport.Send(msg)
}

// PlayTrack 请求立即播放会话中的指定曲目
func (c *Controller) PlayTrack(sessionTrackID int64) error {
	var err error
	c.do(func() {
		err = c.sendTrackCommand(channel.EventPlayTrack, sessionTrackID)
	})
	return err
}

// DelayPlayTrack 请求将会话中的指定曲目排到下一首
func (c *Controller) DelayPlayTrack(sessionTrackID int64) error {
	var err error
	c.do(func() {
		err = c.sendTrackCommand(channel.EventDelayPlayTrack, sessionTrackID)
	})
	return err
}

func (c *Controller) sendTrackCommand(event channel.Event, sessionTrackID int64) error {
	if c.session == nil {
		return ErrNoSession
	}

	msg, err := channel.NewSessionCommand(event, c.session.ID, sessionTrackID)
	if err != nil {
		return err
	}
	return c.transport.Send(msg)
}

// Shuffle 请求打乱队列。打乱是尽力而为的：发送失败只记日志，
// 不打断播放，也不向调用方报错。
func (c *Controller) Shuffle() error {
	var err error
	c.do(func() {
		err = c.shuffle()
	})
	return err
}

func (c *Controller) shuffle() error {
	if c.current == nil || c.session == nil {
		return ErrNoSession
	}

	msg, err := channel.NewSessionCommand(channel.EventShuffle, c.session.ID, c.current.SessionTrackID)
	if err != nil {
		return err
	}
	if err := c.transport.Send(msg); err != nil {
		logger.Warn("shuffle send failed", logger.ErrorField(err))
	}
	return nil
}

// SetQuality 切换音质偏好。不通知服务端；正在播放时就地停止并
// 以新音质的文件变体从同一位置继续，强制重新选择文件。
func (c *Controller) SetQuality(quality model.Quality) {
	c.do(func() {
		if quality == c.quality {
			return
		}
		c.quality = quality

		if c.state != StatePlaying || c.current == nil {
			return
		}

		file := c.current.File(quality)
		if file == nil || c.playback.CurrentURL() == file.File {
			return
		}

		position := c.playback.CurrentTime()
		tag := c.current.SessionTrackID
		gen := c.seekGen

		c.playback.Pause()
		c.playback.Load(file.File)
		c.playback.OnReady(func() {
			c.post(func() {
				c.seekWithRetry(gen, tag, position)
			})
		})
	})
}

// ---------- 进度与调度 ----------

// BeginScrub 用户开始拖动进度条，期间挂起进度刷新与上报
func (c *Controller) BeginScrub() {
	c.do(func() {
		c.scrubbing = true
	})
}

// EndScrub 拖动结束：本地跳转到目标位置，并立即上报一次进度
// （不等下一个上报节拍）。
func (c *Controller) EndScrub(position float64) {
	c.do(func() {
		c.scrubbing = false

		value := position
		c.progress.Value = &value

		if c.current != nil {
			c.seekWithRetry(c.seekGen, c.current.SessionTrackID, position)
		}

		if c.session == nil {
			return
		}
		c.sendSyncBestEffort(int(position))
	})
}

// Tick 进度调度器的节拍入口，按播放原语的时钟每秒调用一次
func (c *Controller) Tick() {
	c.do(func() {
		c.tick()
	})
}

func (c *Controller) tick() {
	if c.current == nil {
		return
	}

	value := c.playback.CurrentTime()
	total := c.playback.Duration()
	if total <= 0 {
		if f := c.current.File(c.quality); f != nil {
			total = f.Duration
		}
	}

	if !c.scrubbing {
		prevSeconds := c.progress.Seconds()

		v := value
		progress := model.TrackProgress{Value: &v, Buffers: c.playback.Buffered()}
		if total > 0 {
			t := total
			progress.Total = &t
		}
		c.progress = progress

		if int(value) != prevSeconds {
			c.nowPlaying.UpdateElapsed(value)
		}
	}

	// 播放到头：停掉节拍循环后自动切歌，防重入标记保证只切一次
	if total > 0 && value >= total && !c.advancing {
		c.advancing = true
		c.scheduler.Stop()
		switch err := c.forward(); {
		case err == nil:
		case errors.Is(err, ErrNoSession), errors.Is(err, ErrEmptyQueue):
			logger.Debug("auto advance skipped", logger.ErrorField(err))
		default:
			// 本地轮转已完成，只是服务端通知没发出去
			logger.Warn("auto advance notify failed", logger.ErrorField(err))
		}
		return
	}

	c.tickCount++
	if c.tickCount < syncEveryTicks {
		return
	}
	c.tickCount = 0

	if c.scrubbing || c.session == nil {
		return
	}
	c.sendSyncBestEffort(int(value))
}

// sendSyncBestEffort 上报进度。上报是尽力而为的：失败只记日志，
// 绝不打断播放。
func (c *Controller) sendSyncBestEffort(progress int) {
	msg, err := channel.NewSyncTrack(c.session.ID, progress)
	if err != nil {
		logger.Warn("sync track encode failed", logger.ErrorField(err))
		return
	}
	if err := c.transport.Send(msg); err != nil {
		logger.Warn("sync track send failed", logger.ErrorField(err))
	}
}

// updateNowPlaying 刷新系统"正在播放"展示
func (c *Controller) updateNowPlaying() {
	if c.current == nil {
		c.nowPlaying.Update(NowPlayingInfo{})
		return
	}

	info := NowPlayingInfo{
		Title:   c.current.Title,
		Artist:  c.current.Artist,
		Elapsed: c.playback.CurrentTime(),
		Playing: c.state == StatePlaying,
	}
	if f := c.current.File(c.quality); f != nil {
		info.Duration = f.Duration
	}
	c.nowPlaying.Update(info)
}
