package channel

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMessageEnvelope(t *testing.T) {
	Convey("Commands are wrapped in the event envelope", t, func() {
		msg, err := NewSessionCommand(EventPlayNextTrack, 1, 10)
		So(err, ShouldBeNil)

		data, err := json.Marshal(msg)
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual,
			`{"event":"play_next_track","payload":{"player_session_id":1,"track_id":10}}`)
	})

	Convey("Messages without payload omit the field", t, func() {
		msg, err := NewMessage(EventShuffle, nil)
		So(err, ShouldBeNil)

		data, err := json.Marshal(msg)
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, `{"event":"shuffle"}`)
	})
}

func TestSessionPayload(t *testing.T) {
	Convey("A session payload decodes into the full snapshot", t, func() {
		var msg Message
		err := json.Unmarshal([]byte(`{
			"event": "session_changed",
			"payload": {
				"id": 1, "playlist": 8, "mode": "normal",
				"track_queue": [
					{"id":10,"state":"playing","track":5,"progress":30},
					{"id":11,"state":"stopped","track":6}
				]
			}
		}`), &msg)
		So(err, ShouldBeNil)

		session, err := msg.Session()
		So(err, ShouldBeNil)
		So(session.ID, ShouldEqual, 1)
		So(len(session.TrackQueue), ShouldEqual, 2)
		So(*session.TrackQueue[0].Progress, ShouldEqual, 30)
		So(session.TrackQueue[1].Progress, ShouldBeNil)
	})

	Convey("A null payload means no active session", t, func() {
		msg := Message{Event: EventSession, Payload: json.RawMessage(`null`)}

		session, err := msg.Session()
		So(err, ShouldBeNil)
		So(session, ShouldBeNil)
	})

	Convey("Session decoding rejects foreign events", t, func() {
		msg := Message{Event: EventShuffle, Payload: json.RawMessage(`{}`)}

		_, err := msg.Session()
		So(errors.Is(err, ErrDecoding), ShouldBeTrue)
	})

	Convey("Malformed payloads are decoding errors", t, func() {
		msg := Message{Event: EventSession, Payload: json.RawMessage(`{"id":"nope"}`)}

		_, err := msg.Session()
		So(errors.Is(err, ErrDecoding), ShouldBeTrue)
	})
}

func TestPlaylistPayloads(t *testing.T) {
	Convey("playlists_changed carries the own playlist list", t, func() {
		msg := Message{
			Event: EventPlaylistsChanged,
			Payload: json.RawMessage(`{"own_playlists":[
				{"id":8,"name":"Mine","type":"custom","access_type":"private"}
			]}`),
		}

		playlists, err := msg.Playlists()
		So(err, ShouldBeNil)
		So(len(playlists), ShouldEqual, 1)
		So(playlists[0].Name, ShouldEqual, "Mine")
	})

	Convey("playlist_changed carries a single playlist", t, func() {
		msg := Message{
			Event:   EventPlaylistChanged,
			Payload: json.RawMessage(`{"playlist":{"id":8,"name":"Mine"}}`),
		}

		playlist, err := msg.Playlist()
		So(err, ShouldBeNil)
		So(playlist.ID, ShouldEqual, 8)
	})
}

func TestSyncTrackPayload(t *testing.T) {
	Convey("Progress reports are sent in whole seconds", t, func() {
		msg, err := NewSyncTrack(1, 42)
		So(err, ShouldBeNil)
		So(msg.Event, ShouldEqual, EventSyncTrack)

		var payload SyncTrackPayload
		So(json.Unmarshal(msg.Payload, &payload), ShouldBeNil)
		So(payload.PlayerSessionID, ShouldEqual, 1)
		So(payload.Progress, ShouldEqual, 42)
	})
}
