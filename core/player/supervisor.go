package player

import (
	"fmt"
	"sync"

	"MusicRoom/core/auth"
	"MusicRoom/core/channel"
	"MusicRoom/logger"
)

// Supervisor 订阅监督器。保证每个主题同时只有一个活跃接收循环；
// 循环因传输或解码错误自然终止后，由下一次Ensure调用按需恢复，
// 不做自动退避重连。
type Supervisor struct {
	baseURL  string
	creds    auth.Provider
	deviceID string

	mu        sync.Mutex
	player    *channel.Channel
	event     *channel.Channel
	playlists *channel.Channel
	playlist  map[int64]*channel.Channel
}

// NewSupervisor 创建订阅监督器
func NewSupervisor(baseURL string, creds auth.Provider, deviceID string) *Supervisor {
	return &Supervisor{
		baseURL:  baseURL,
		creds:    creds,
		deviceID: deviceID,
		playlist: make(map[int64]*channel.Channel),
	}
}

// ensure 保证指定主题有活跃的接收循环。已订阅时是空操作；
// 通道不存在或循环已死时重新建立连接再订阅（死循环通常意味着
// 底层连接已不可用，复用旧连接只会立即再失败一次）。
func (s *Supervisor) ensure(ch *channel.Channel, topic string, handler func(*channel.Message)) (*channel.Channel, error) {
	if ch != nil && ch.IsSubscribed() {
		return ch, nil
	}

	if ch != nil {
		ch.Close()
		logger.Info("reopening dead channel", logger.String("topic", topic))
	}

	fresh, err := channel.Open(s.baseURL, topic, s.creds, s.deviceID)
	if err != nil {
		return nil, err
	}
	fresh.Subscribe(handler)
	return fresh, nil
}

// EnsurePlayer 保证播放会话主题已订阅
func (s *Supervisor) EnsurePlayer(handler func(*channel.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.ensure(s.player, channel.TopicPlayer, handler)
	if err != nil {
		return err
	}
	s.player = ch
	return nil
}

// EnsureEvent 保证通用事件主题已订阅。事件通道与播放通道使用同一
// 消息契约，可作为进度上报的备用传输。
func (s *Supervisor) EnsureEvent(handler func(*channel.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.ensure(s.event, channel.TopicEvent, handler)
	if err != nil {
		return err
	}
	s.event = ch
	return nil
}

// EnsurePlaylists 保证歌单列表主题已订阅
func (s *Supervisor) EnsurePlaylists(handler func(*channel.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.ensure(s.playlists, channel.TopicPlaylists, handler)
	if err != nil {
		return err
	}
	s.playlists = ch
	return nil
}

// EnsurePlaylist 保证单个歌单主题已订阅
func (s *Supervisor) EnsurePlaylist(playlistID int64, handler func(*channel.Message)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.ensure(s.playlist[playlistID], channel.PlaylistTopic(playlistID), handler)
	if err != nil {
		return err
	}
	s.playlist[playlistID] = ch
	return nil
}

// Send 通过当前已订阅的传输发送播放主题消息。播放通道和事件通道
// 是同一契约下可互换的两条传输，选用当前订阅存活的那条，从不假设
// 两条同时有效。两条都没有活跃订阅时立即报错，不在死连接上尝试。
func (s *Supervisor) Send(msg *channel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil && s.player.IsSubscribed() {
		return s.player.Send(msg)
	}
	if s.event != nil && s.event.IsSubscribed() {
		return s.event.Send(msg)
	}
	return fmt.Errorf("%w: no live channel", channel.ErrTransport)
}

// Close 关闭全部通道，接收循环随之终止
func (s *Supervisor) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Close()
	}
	if s.event != nil {
		s.event.Close()
	}
	if s.playlists != nil {
		s.playlists.Close()
	}
	for _, ch := range s.playlist {
		ch.Close()
	}
}
