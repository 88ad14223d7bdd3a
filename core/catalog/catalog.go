package catalog

import (
	"context"
	"sync"

	"MusicRoom/cache"
	"MusicRoom/logger"
	"MusicRoom/model"
)

// 实体快照在缓存中的名称
const (
	entityTracks       = "tracks"
	entityArtists      = "artists"
	entityPlaylists    = "playlists:all"
	entityOwnPlaylists = "playlists:own"
	entitySession      = "player_session"
)

// Provider 目录实体提供者。每类实体先走REST拉取，失败时回落到
// 上一次成功的本地快照；两者都没有时按空目录处理，不向上层报错。
type Provider struct {
	client *Client

	mu           sync.RWMutex
	tracks       map[int64]model.Track
	artists      map[int64]model.Artist
	playlists    []model.Playlist
	ownPlaylists []model.Playlist
}

// NewProvider 创建目录提供者
func NewProvider(client *Client) *Provider {
	return &Provider{
		client:  client,
		tracks:  make(map[int64]model.Track),
		artists: make(map[int64]model.Artist),
	}
}

// Refresh 拉取全部目录实体，每类实体独立降级
func (p *Provider) Refresh(ctx context.Context) {
	p.refreshTracks(ctx)
	p.refreshArtists(ctx)
	p.refreshPlaylists(ctx)
	p.refreshOwnPlaylists(ctx)
}

// fetchWithFallback 通用的"拉取、落缓存、失败回落"流程
func fetchWithFallback[T any](ctx context.Context, c *Client, path, entityName string) []T {
	var fetched []T
	err := c.get(ctx, path, &fetched)
	if err == nil {
		if cerr := cache.SaveEntity(ctx, entityName, fetched); cerr != nil {
			logger.Debug("entity snapshot save skipped",
				logger.String("entity", entityName),
				logger.ErrorField(cerr))
		}
		return fetched
	}
	logger.Warn("catalog fetch failed, falling back to cached snapshot",
		logger.String("entity", entityName),
		logger.ErrorField(err))

	var cached []T
	found, err := cache.LoadEntity(ctx, entityName, &cached)
	if err != nil || !found {
		return nil
	}
	return cached
}

func (p *Provider) refreshTracks(ctx context.Context) {
	tracks := fetchWithFallback[model.Track](ctx, p.client, "/api/tracks/", entityTracks)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracks = make(map[int64]model.Track, len(tracks))
	for _, t := range tracks {
		p.tracks[t.ID] = t
	}
}

func (p *Provider) refreshArtists(ctx context.Context) {
	artists := fetchWithFallback[model.Artist](ctx, p.client, "/api/artists/", entityArtists)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.artists = make(map[int64]model.Artist, len(artists))
	for _, a := range artists {
		p.artists[a.ID] = a
	}
}

func (p *Provider) refreshPlaylists(ctx context.Context) {
	playlists := fetchWithFallback[model.Playlist](ctx, p.client, "/api/playlists/", entityPlaylists)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.playlists = playlists
}

func (p *Provider) refreshOwnPlaylists(ctx context.Context) {
	playlists := fetchWithFallback[model.Playlist](ctx, p.client, "/api/playlists/own/", entityOwnPlaylists)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.ownPlaylists = playlists
}

// PlayerSession 拉取当前会话，失败时回落到缓存快照，
// 两者都没有时返回nil（"无播放"状态）。
func (p *Provider) PlayerSession(ctx context.Context) *model.PlayerSession {
	var session *model.PlayerSession
	err := p.client.get(ctx, "/api/player-session/", &session)
	if err == nil {
		p.SaveSession(ctx, session)
		return session
	}
	logger.Warn("player session fetch failed, falling back to cached snapshot",
		logger.ErrorField(err))

	var cached *model.PlayerSession
	found, err := cache.LoadEntity(ctx, entitySession, &cached)
	if err != nil || !found {
		return nil
	}
	return cached
}

// SaveSession 保存会话快照，会话为nil时清除快照
func (p *Provider) SaveSession(ctx context.Context, session *model.PlayerSession) {
	var err error
	if session == nil {
		err = cache.DeleteEntity(ctx, entitySession)
	} else {
		err = cache.SaveEntity(ctx, entitySession, session)
	}
	if err != nil {
		logger.Debug("session snapshot save skipped", logger.ErrorField(err))
	}
}

// TrackByID 按ID查找曲目
func (p *Provider) TrackByID(id int64) (*model.Track, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.tracks[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

// ArtistByID 按ID查找艺术家
func (p *Provider) ArtistByID(id int64) (*model.Artist, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	a, ok := p.artists[id]
	if !ok {
		return nil, false
	}
	return &a, true
}

// Playlists 返回全部可见歌单
func (p *Provider) Playlists() []model.Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playlists
}

// OwnPlaylists 返回当前用户的歌单
func (p *Provider) OwnPlaylists() []model.Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ownPlaylists
}

// ApplyPlaylistsChanged 应用服务端推送的歌单列表变更
func (p *Provider) ApplyPlaylistsChanged(ctx context.Context, ownPlaylists []model.Playlist) {
	p.mu.Lock()
	p.ownPlaylists = ownPlaylists
	p.mu.Unlock()

	if err := cache.SaveEntity(ctx, entityOwnPlaylists, ownPlaylists); err != nil {
		logger.Debug("own playlists snapshot save skipped", logger.ErrorField(err))
	}
}

// ApplyPlaylistChanged 应用服务端推送的单个歌单变更，
// 同步修补两份歌单列表中的对应项。
func (p *Provider) ApplyPlaylistChanged(ctx context.Context, playlist model.Playlist) {
	p.mu.Lock()
	replaced := false
	for i := range p.playlists {
		if p.playlists[i].ID == playlist.ID {
			p.playlists[i] = playlist
			replaced = true
		}
	}
	ownReplaced := false
	for i := range p.ownPlaylists {
		if p.ownPlaylists[i].ID == playlist.ID {
			p.ownPlaylists[i] = playlist
			ownReplaced = true
		}
	}
	playlists := p.playlists
	ownPlaylists := p.ownPlaylists
	p.mu.Unlock()

	if replaced {
		if err := cache.SaveEntity(ctx, entityPlaylists, playlists); err != nil {
			logger.Debug("playlists snapshot save skipped", logger.ErrorField(err))
		}
	}
	if ownReplaced {
		if err := cache.SaveEntity(ctx, entityOwnPlaylists, ownPlaylists); err != nil {
			logger.Debug("own playlists snapshot save skipped", logger.ErrorField(err))
		}
	}
}
