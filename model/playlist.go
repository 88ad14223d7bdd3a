package model

// PlaylistType 歌单类型
type PlaylistType string

const (
	PlaylistTypeDefault   PlaylistType = "default"   // 系统默认歌单，如"收藏"
	PlaylistTypeCustom    PlaylistType = "custom"    // 用户创建的歌单
	PlaylistTypeTemporary PlaylistType = "temporary" // 系统临时歌单，不在列表中展示
)

// PlaylistAccessType 歌单访问权限
type PlaylistAccessType string

const (
	PlaylistAccessPublic  PlaylistAccessType = "public"
	PlaylistAccessPrivate PlaylistAccessType = "private"
)

// PlaylistTrack 歌单中的曲目引用
type PlaylistTrack struct {
	ID    int64 `json:"id"`
	Track int64 `json:"track"` // 曲目ID
	Order int   `json:"order"`
}

// Playlist 歌单
type Playlist struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Type       PlaylistType       `json:"type"`
	AccessType PlaylistAccessType `json:"access_type"`
	Tracks     []PlaylistTrack    `json:"tracks,omitempty"`
}
