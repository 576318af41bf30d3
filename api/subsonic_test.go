package api

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestSubsonic(server *httptest.Server, credential string) *Subsonic {
	session := &sessionStub{creds: Credentials{
		Server:     server.URL,
		Account:    "alice",
		Credential: credential,
	}}
	return NewSubsonic(session, server.Client(), nil, "", "")
}

func okEnvelope(payload map[string]any) map[string]any {
	inner := map[string]any{"status": "ok"}
	for k, v := range payload {
		inner[k] = v
	}
	return map[string]any{"subsonic-response": inner}
}

func failedEnvelope(message string) map[string]any {
	return map[string]any{"subsonic-response": map[string]any{
		"status": "failed",
		"error":  map[string]any{"code": 70, "message": message},
	}}
}

func TestSubsonic_TokenAuthParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(okEnvelope(nil))
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "hunter2")
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}

	for _, key := range []string{"u", "t", "s", "v", "c", "f"} {
		if !gotQuery.Has(key) {
			t.Fatalf("missing auth parameter %q in %v", key, gotQuery)
		}
	}
	if gotQuery.Get("u") != "alice" || gotQuery.Get("c") != DefaultClientID || gotQuery.Get("f") != "json" {
		t.Fatalf("auth params = %v", gotQuery)
	}
	wantToken := fmt.Sprintf("%x", md5.Sum([]byte("hunter2"+gotQuery.Get("s"))))
	if gotQuery.Get("t") != wantToken {
		t.Fatalf("token = %q, want md5(password+salt) = %q", gotQuery.Get("t"), wantToken)
	}
}

func TestSubsonic_EnvelopeFailureIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(failedEnvelope("not found"))
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "pw")
	_, err := s.Album(context.Background(), "al-404")

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Album error = %v, want *RemoteError", err)
	}
	if remote.Message != "not found" {
		t.Fatalf("message = %q, want %q", remote.Message, "not found")
	}
}

func TestSubsonic_AuthenticateMapsRejectionToAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(failedEnvelope("Wrong username or password"))
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "")
	_, err := s.Authenticate(context.Background(), server.URL, "alice", "wrong")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Authenticate error = %v, want *AuthError", err)
	}
	if authErr.Message != "Wrong username or password" {
		t.Fatalf("message = %q", authErr.Message)
	}
}

func TestSubsonic_AuthenticateReturnsCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(okEnvelope(nil))
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "")
	token, err := s.Authenticate(context.Background(), server.URL, "alice", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if token != "hunter2" {
		t.Fatalf("token = %q, want the credential back", token)
	}
}

func TestSubsonic_ArtistMergesConcurrentFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/getArtist.view":
			_ = json.NewEncoder(w).Encode(okEnvelope(map[string]any{
				"artist": map[string]any{
					"id": "ar-1", "name": "Abba", "albumCount": 2,
					"album": []map[string]any{{"id": "al-1", "name": "Arrival", "year": 1976}},
				},
			}))
		case "/rest/getArtistInfo2.view":
			_ = json.NewEncoder(w).Encode(okEnvelope(map[string]any{
				"artistInfo2": map[string]any{
					"biography":     "Swedish pop group.",
					"similarArtist": []map[string]any{{"id": "ar-2", "name": "Roxette"}},
				},
			}))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "pw")
	ar, err := s.Artist(context.Background(), "ar-1")
	if err != nil {
		t.Fatalf("Artist returned error: %v", err)
	}
	if ar.Description != "Swedish pop group." {
		t.Fatalf("description = %q, want merged biography", ar.Description)
	}
	if len(ar.Similar) != 1 || ar.Similar[0].Name != "Roxette" {
		t.Fatalf("similar = %#v", ar.Similar)
	}
	if len(ar.Albums) != 1 || ar.Albums[0].ID != "al-1" {
		t.Fatalf("albums = %#v", ar.Albums)
	}
}

func TestSubsonic_ArtistFailsWhollyWhenEitherFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/getArtist.view":
			_ = json.NewEncoder(w).Encode(okEnvelope(map[string]any{
				"artist": map[string]any{"id": "ar-1", "name": "Abba"},
			}))
		case "/rest/getArtistInfo2.view":
			_ = json.NewEncoder(w).Encode(failedEnvelope("info unavailable"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "pw")
	ar, err := s.Artist(context.Background(), "ar-1")
	if err == nil {
		t.Fatalf("Artist = %#v, want error when the info fetch fails", ar)
	}
	if ar != nil {
		t.Fatalf("Artist returned partial result %#v alongside error", ar)
	}
}

func TestSubsonic_DecodesNamespacedPayloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/getAlbumList2.view":
			if r.URL.Query().Get("type") != "newest" {
				t.Errorf("type = %q, want newest", r.URL.Query().Get("type"))
			}
			_ = json.NewEncoder(w).Encode(okEnvelope(map[string]any{
				"albumList2": map[string]any{
					"album": []map[string]any{{"id": "al-1", "name": "Arrival", "starred": "2023-01-01T00:00:00Z"}},
				},
			}))
		case "/rest/getPodcasts.view":
			_ = json.NewEncoder(w).Encode(okEnvelope(map[string]any{
				"podcasts": map[string]any{
					"channel": []map[string]any{{
						"id": "pc-1", "title": "Daily News",
						"episode": []map[string]any{
							{"id": "ep-2", "title": "Tuesday", "status": "completed", "streamId": "st-2"},
							{"id": "ep-1", "title": "Monday", "status": "skipped"},
						},
					}},
				},
			}))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	s := newTestSubsonic(server, "pw")

	albums, err := s.AlbumList(context.Background(), "newest", 20, 0, "")
	if err != nil {
		t.Fatalf("AlbumList returned error: %v", err)
	}
	if len(albums) != 1 || albums[0].ID != "al-1" || !bool(albums[0].Starred) {
		t.Fatalf("albums = %#v", albums)
	}

	channels, err := s.Podcasts(context.Background())
	if err != nil {
		t.Fatalf("Podcasts returned error: %v", err)
	}
	if len(channels) != 1 || len(channels[0].Episodes) != 2 {
		t.Fatalf("channels = %#v", channels)
	}
	if channels[0].Episodes[0].Status != "completed" || channels[0].Episodes[0].StreamID != "st-2" {
		t.Fatalf("episode = %#v", channels[0].Episodes[0])
	}
}

func TestSubsonic_ResourceURLsAreSigned(t *testing.T) {
	session := &sessionStub{creds: Credentials{
		Server:     "https://music.example.com",
		Account:    "alice",
		Credential: "hunter2",
	}}
	s := NewSubsonic(session, nil, nil, "", "")

	raw := s.StreamURL("tr-9")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("StreamURL returned unparsable URL %q: %v", raw, err)
	}
	if !strings.HasSuffix(u.Path, "/rest/stream.view") {
		t.Fatalf("path = %q", u.Path)
	}
	q := u.Query()
	if q.Get("id") != "tr-9" || q.Get("u") != "alice" || !q.Has("t") || !q.Has("s") {
		t.Fatalf("stream URL query = %v, want signed credentials", q)
	}

	if got := s.CoverArtURL(""); got != "" {
		t.Fatalf("CoverArtURL(\"\") = %q, want empty", got)
	}
	cover, _ := url.Parse(s.CoverArtURL("co-1"))
	if cover.Query().Get("size") != "300" {
		t.Fatalf("cover URL query = %v", cover.Query())
	}
}

func TestSubsonic_RegisterUnsupported(t *testing.T) {
	s := NewSubsonic(&sessionStub{}, nil, nil, "", "")
	err := s.Register(context.Background(), "https://x", "Alice", "alice", "pw")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Register error = %v, want ErrUnsupported", err)
	}
}
