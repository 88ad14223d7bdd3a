package player

import (
	"MusicRoom/model"
)

// Resolver 曲目与艺术家的解析接口，由目录提供者实现
type Resolver interface {
	TrackByID(id int64) (*model.Track, bool)
	ArtistByID(id int64) (*model.Artist, bool)
}

// Content 会话曲目与其解析后曲目信息合并出的扁平视图。
// 同时保留会话ID与会话曲目ID，用于寻址后续出站指令。
type Content struct {
	TrackID  int64
	Title    string
	Artist   string
	MP3File  *model.TrackFile
	FlacFile *model.TrackFile
	Progress float64

	PlayerSessionID int64
	SessionTrackID  int64
	State           model.SessionTrackState
}

// File 按音质偏好选择文件变体，目标变体缺失时回落到另一变体
func (c *Content) File(quality model.Quality) *model.TrackFile {
	if quality == model.QualityStandard {
		if c.MP3File != nil {
			return c.MP3File
		}
		return c.FlacFile
	}
	if c.FlacFile != nil {
		return c.FlacFile
	}
	return c.MP3File
}

// resolveContent 将单个会话曲目解析为内容视图，曲目或艺术家缺失时跳过
func resolveContent(session *model.PlayerSession, st model.SessionTrack, resolver Resolver) *Content {
	track, ok := resolver.TrackByID(st.Track)
	if !ok {
		return nil
	}
	artist, ok := resolver.ArtistByID(track.Artist)
	if !ok {
		return nil
	}

	progress := 0.0
	if st.Progress != nil {
		progress = *st.Progress
	}

	return &Content{
		TrackID:         track.ID,
		Title:           track.Name,
		Artist:          artist.Name,
		MP3File:         track.FileByExtension(model.ExtensionMP3),
		FlacFile:        track.FileByExtension(model.ExtensionFLAC),
		Progress:        progress,
		PlayerSessionID: session.ID,
		SessionTrackID:  st.ID,
		State:           st.State,
	}
}

// DeriveContent 从会话快照推导当前内容和待播队列。
// 纯函数：结果只取决于传入的快照，与任何历史推导无关；
// 每次会话赋值都整体重算，从不增量修补。
func DeriveContent(session *model.PlayerSession, resolver Resolver) (*Content, []Content) {
	if session == nil || len(session.TrackQueue) == 0 {
		return nil, nil
	}

	current := resolveContent(session, session.TrackQueue[0], resolver)

	queued := make([]Content, 0, len(session.TrackQueue)-1)
	for _, st := range session.TrackQueue[1:] {
		if content := resolveContent(session, st, resolver); content != nil {
			queued = append(queued, *content)
		}
	}

	return current, queued
}
