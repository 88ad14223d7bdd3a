package model

// SessionTrackState 队列曲目的播放状态，由服务端下发，是本地播放的唯一权威信号
type SessionTrackState string

const (
	TrackStateStopped SessionTrackState = "stopped"
	TrackStatePlaying SessionTrackState = "playing"
	TrackStatePaused  SessionTrackState = "paused"
)

// SessionMode 会话播放模式
type SessionMode string

const (
	SessionModeNormal SessionMode = "normal" // 按队列顺序播放
	SessionModeRepeat SessionMode = "repeat" // 单曲循环
)

// SessionTrack 会话队列中的一项，ID由服务端分配，会话期间保持稳定
type SessionTrack struct {
	ID    int64             `json:"id"`
	State SessionTrackState `json:"state"`
	Track int64             `json:"track"` // 曲目ID
	// Progress 播放进度（秒），为空表示从头播放
	Progress   *float64 `json:"progress,omitempty"`
	VotesCount int      `json:"votes_count,omitempty"`
	Order      int      `json:"order,omitempty"`
}

// PlayerSession 服务端权威的播放会话。每次下发都是完整快照，
// 队列首项就是"当前曲目"，其余为待播队列。
type PlayerSession struct {
	ID         int64          `json:"id"`
	Playlist   int64          `json:"playlist"`
	Mode       SessionMode    `json:"mode"`
	TrackQueue []SessionTrack `json:"track_queue"`
}
