package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"MusicRoom/core/auth"
	"MusicRoom/model"

	. "github.com/smartystreets/goconvey/convey"
)

// catalogServer 提供固定目录数据的测试服务器，可整体切换为失败模式
type catalogServer struct {
	*httptest.Server
	failing atomic.Bool
	auth    atomic.Value // 最近一次请求的Authorization头
}

func newCatalogServer() *catalogServer {
	s := &catalogServer{}
	mux := http.NewServeMux()

	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.auth.Store(r.Header.Get("Authorization"))
			if s.failing.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("/api/tracks/", serve(`[
		{"id":5,"name":"Song A","artist":1,"files":[
			{"id":51,"file":"http://files/5.mp3","extension":"mp3","duration":180}
		]},
		{"id":6,"name":"Song B","artist":2,"files":[]}
	]`))
	mux.HandleFunc("/api/artists/", serve(`[
		{"id":1,"name":"Artist One"},
		{"id":2,"name":"Artist Two"}
	]`))
	mux.HandleFunc("/api/playlists/", serve(`[
		{"id":7,"name":"Everyone","type":"default","access_type":"public"},
		{"id":8,"name":"Mine","type":"custom","access_type":"private"}
	]`))
	mux.HandleFunc("/api/playlists/own/", serve(`[
		{"id":8,"name":"Mine","type":"custom","access_type":"private"}
	]`))
	mux.HandleFunc("/api/player-session/", serve(`{
		"id":1,"playlist":8,"mode":"normal",
		"track_queue":[{"id":10,"state":"playing","track":5,"progress":30}]
	}`))

	s.Server = httptest.NewServer(mux)
	return s
}

func newTestProvider(server *catalogServer) *Provider {
	return NewProvider(NewClient(server.URL, auth.NewTokenProvider("cat-token", "")))
}

func TestProviderRefresh(t *testing.T) {
	server := newCatalogServer()
	defer server.Close()

	Convey("Given a refreshed provider", t, func() {
		p := newTestProvider(server)
		p.Refresh(context.Background())

		Convey("Requests carry the bearer token", func() {
			So(server.auth.Load(), ShouldEqual, "Bearer cat-token")
		})

		Convey("Tracks and artists are resolvable by id", func() {
			track, ok := p.TrackByID(5)
			So(ok, ShouldBeTrue)
			So(track.Name, ShouldEqual, "Song A")
			So(len(track.Files), ShouldEqual, 1)
			So(track.Files[0].Extension, ShouldEqual, model.ExtensionMP3)

			artist, ok := p.ArtistByID(1)
			So(ok, ShouldBeTrue)
			So(artist.Name, ShouldEqual, "Artist One")

			_, ok = p.TrackByID(999)
			So(ok, ShouldBeFalse)
		})

		Convey("Playlists are split into all and own", func() {
			So(len(p.Playlists()), ShouldEqual, 2)
			own := p.OwnPlaylists()
			So(len(own), ShouldEqual, 1)
			So(own[0].Name, ShouldEqual, "Mine")
		})
	})
}

func TestProviderDegradesWithoutBackend(t *testing.T) {
	server := newCatalogServer()
	defer server.Close()

	Convey("Fetch failures without a cache degrade to an empty catalog", t, func() {
		server.failing.Store(true)
		p := newTestProvider(server)
		p.Refresh(context.Background())

		_, ok := p.TrackByID(5)
		So(ok, ShouldBeFalse)
		So(len(p.Playlists()), ShouldEqual, 0)
		So(p.PlayerSession(context.Background()), ShouldBeNil)
	})
}

func TestProviderPlayerSession(t *testing.T) {
	server := newCatalogServer()
	defer server.Close()

	Convey("The current session is fetched as a full snapshot", t, func() {
		p := newTestProvider(server)

		session := p.PlayerSession(context.Background())
		So(session, ShouldNotBeNil)
		So(session.ID, ShouldEqual, 1)
		So(len(session.TrackQueue), ShouldEqual, 1)
		So(session.TrackQueue[0].State, ShouldEqual, model.TrackStatePlaying)
		So(*session.TrackQueue[0].Progress, ShouldEqual, 30)
	})
}

func TestApplyPlaylistChanges(t *testing.T) {
	server := newCatalogServer()
	defer server.Close()

	Convey("Given a refreshed provider", t, func() {
		p := newTestProvider(server)
		p.Refresh(context.Background())

		Convey("A playlists_changed push replaces the own list", func() {
			p.ApplyPlaylistsChanged(context.Background(), []model.Playlist{
				{ID: 9, Name: "Fresh", Type: model.PlaylistTypeCustom},
			})

			own := p.OwnPlaylists()
			So(len(own), ShouldEqual, 1)
			So(own[0].Name, ShouldEqual, "Fresh")
		})

		Convey("A playlist_changed push patches the matching entry in both lists", func() {
			p.ApplyPlaylistChanged(context.Background(), model.Playlist{
				ID: 8, Name: "Renamed", Type: model.PlaylistTypeCustom,
			})

			all := p.Playlists()
			var fromAll *model.Playlist
			for i := range all {
				if all[i].ID == 8 {
					fromAll = &all[i]
				}
			}
			So(fromAll, ShouldNotBeNil)
			So(fromAll.Name, ShouldEqual, "Renamed")

			own := p.OwnPlaylists()
			So(own[0].Name, ShouldEqual, "Renamed")
		})
	})
}
