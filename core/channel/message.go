package channel

import (
	"encoding/json"
	"fmt"

	"MusicRoom/model"
)

// Event 消息事件类型，对应信封中的event字段
type Event string

const (
	// 客户端 -> 服务端
	EventCreateSession     Event = "create_session"      // 从歌单创建会话
	EventPlayTrack         Event = "play_track"          // 立即播放指定曲目
	EventDelayPlayTrack    Event = "delay_play_track"    // 将曲目排到下一首
	EventPlayNextTrack     Event = "play_next_track"     // 切到下一首
	EventPlayPreviousTrack Event = "play_previous_track" // 切到上一首
	EventPauseTrack        Event = "pause_track"         // 暂停
	EventResumeTrack       Event = "resume_track"        // 恢复播放
	EventShuffle           Event = "shuffle"             // 打乱队列
	EventSyncTrack         Event = "sync_track"          // 上报播放进度

	// 服务端 -> 客户端
	EventSession          Event = "session"           // 会话快照
	EventSessionChanged   Event = "session_changed"   // 会话变更推送
	EventPlaylistsChanged Event = "playlists_changed" // 歌单列表变更推送
	EventPlaylistChanged  Event = "playlist_changed"  // 单个歌单变更推送
)

// Message WebSocket消息信封。Payload按Event区分结构，
// 双方向都使用同一信封格式。
type Message struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SessionCommand 针对会话内曲目的指令载荷
type SessionCommand struct {
	PlayerSessionID int64 `json:"player_session_id"`
	TrackID         int64 `json:"track_id"`
}

// CreateSessionPayload 创建会话的指令载荷
type CreateSessionPayload struct {
	PlaylistID int64 `json:"playlist_id"`
	Shuffle    bool  `json:"shuffle"`
}

// SyncTrackPayload 进度上报载荷，进度按整秒传输
type SyncTrackPayload struct {
	PlayerSessionID int64 `json:"player_session_id"`
	Progress        int   `json:"progress"`
}

// PlaylistsChangedPayload 歌单列表变更载荷
type PlaylistsChangedPayload struct {
	OwnPlaylists []model.Playlist `json:"own_playlists"`
}

// PlaylistChangedPayload 单个歌单变更载荷
type PlaylistChangedPayload struct {
	Playlist model.Playlist `json:"playlist"`
}

// NewMessage 构造带类型载荷的消息
func NewMessage(event Event, payload interface{}) (*Message, error) {
	msg := &Message{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// NewSessionCommand 构造会话内曲目指令
func NewSessionCommand(event Event, playerSessionID, trackID int64) (*Message, error) {
	return NewMessage(event, SessionCommand{
		PlayerSessionID: playerSessionID,
		TrackID:         trackID,
	})
}

// NewCreateSession 构造创建会话指令
func NewCreateSession(playlistID int64, shuffle bool) (*Message, error) {
	return NewMessage(EventCreateSession, CreateSessionPayload{
		PlaylistID: playlistID,
		Shuffle:    shuffle,
	})
}

// NewSyncTrack 构造进度上报消息
func NewSyncTrack(playerSessionID int64, progress int) (*Message, error) {
	return NewMessage(EventSyncTrack, SyncTrackPayload{
		PlayerSessionID: playerSessionID,
		Progress:        progress,
	})
}

// Session 解出会话快照载荷。服务端下发null表示会话不存在，返回nil。
func (m *Message) Session() (*model.PlayerSession, error) {
	if m.Event != EventSession && m.Event != EventSessionChanged {
		return nil, fmt.Errorf("%w: unexpected event %q for session payload", ErrDecoding, m.Event)
	}

	if len(m.Payload) == 0 || string(m.Payload) == "null" {
		return nil, nil
	}

	var session model.PlayerSession
	if err := json.Unmarshal(m.Payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return &session, nil
}

// Playlists 解出歌单列表变更载荷
func (m *Message) Playlists() ([]model.Playlist, error) {
	var payload PlaylistsChangedPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return payload.OwnPlaylists, nil
}

// Playlist 解出单个歌单变更载荷
func (m *Message) Playlist() (*model.Playlist, error) {
	var payload PlaylistChangedPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return &payload.Playlist, nil
}
