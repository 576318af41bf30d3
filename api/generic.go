package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// Generic speaks the plain-REST dialect: a {success: bool} envelope with
// the payload at the top level, bearer-token auth in a header, and
// unversioned rest/<name> endpoints. It is the only dialect with login and
// registration endpoints of its own; podcasts and library scans are not
// part of it.
type Generic struct {
	p    *pipeline
	http Doer
}

var _ Adapter = (*Generic)(nil)

// NewGeneric builds the Generic-REST adapter around the given session.
// A nil client or logger falls back to a default http.Client and a no-op
// logger.
func NewGeneric(session SessionSource, client Doer, log *zap.Logger) *Generic {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	g := &Generic{http: client}
	g.p = &pipeline{
		session: session,
		http:    client,
		log:     log,
		decorate: func(creds Credentials, q url.Values, h http.Header) {
			if creds.Credential != "" {
				h.Set("Authorization", "Bearer "+creds.Credential)
			}
		},
		unwrap: unwrapGeneric,
	}
	return g
}

type genericError struct {
	Message string `json:"message"`
}

type genericEnvelope struct {
	Success bool          `json:"success"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Error   *genericError `json:"error"`
}

func (e *genericEnvelope) failureMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Status
}

// unwrapGeneric validates the success flag and hands the whole body back:
// this dialect keeps the payload next to the flag rather than under a key.
func unwrapGeneric(body []byte) (json.RawMessage, error) {
	var env genericEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: "decode envelope", Err: err}
	}
	if !env.Success {
		return nil, &RemoteError{Message: env.failureMessage()}
	}
	return json.RawMessage(body), nil
}

// Authenticate posts credentials to the login endpoint. A rejected login
// comes back as *AuthError carrying the server's message; session state is
// the caller's concern.
func (g *Generic) Authenticate(ctx context.Context, server, account, credential string) (string, error) {
	env, err := g.postForm(ctx, server, "rest/login", map[string]string{
		"email":    account,
		"password": credential,
	})
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", &AuthError{Message: env.failureMessage()}
	}
	if env.AccessToken == "" {
		return "", &TransportError{Op: "rest/login", Err: fmt.Errorf("login accepted but no access token returned")}
	}
	return env.AccessToken, nil
}

// Register creates an account against the registration endpoint, with the
// same envelope contract as login.
func (g *Generic) Register(ctx context.Context, server, name, account, credential string) error {
	env, err := g.postForm(ctx, server, "rest/register", map[string]string{
		"name":     name,
		"email":    account,
		"password": credential,
	})
	if err != nil {
		return err
	}
	if !env.Success {
		return &AuthError{Message: env.failureMessage()}
	}
	return nil
}

// Verify introspects the stored bearer token with an authenticated ping.
func (g *Generic) Verify(ctx context.Context) error {
	return g.Ping(ctx)
}

type authEnvelope struct {
	genericEnvelope
	AccessToken string `json:"access_token"`
}

// postForm runs the auth endpoints outside the pipeline: they target an
// explicit server address and carry no bearer token yet.
func (g *Generic) postForm(ctx context.Context, server, endpoint string, fields map[string]string) (*authEnvelope, error) {
	buf, err := json.Marshal(fields)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(server, endpoint), bytes.NewReader(buf))
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	var env authEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: endpoint, Err: err}
	}
	return &env, nil
}

func (g *Generic) Ping(ctx context.Context) error {
	_, err := g.p.fetch(ctx, "rest/ping", nil)
	return err
}

func (g *Generic) Genres(ctx context.Context) ([]Genre, error) {
	raw, err := g.p.fetch(ctx, "rest/getGenres", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (g *Generic) AlbumList(ctx context.Context, listType string, size, offset int, genre string) ([]Album, error) {
	params := url.Values{}
	params.Set("type", listType)
	params.Set("size", strconv.Itoa(size))
	params.Set("offset", strconv.Itoa(offset))
	if genre != "" {
		params.Set("genre", genre)
	}
	raw, err := g.p.fetch(ctx, "rest/getAlbumList", params)
	if err != nil {
		return nil, err
	}
	var out struct {
		Albums []Album `json:"albums"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Albums, nil
}

func (g *Generic) SongsByGenre(ctx context.Context, genre string, count, offset int) ([]Track, error) {
	params := url.Values{}
	params.Set("genre", genre)
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(offset))
	raw, err := g.p.fetch(ctx, "rest/getSongsByGenre", params)
	if err != nil {
		return nil, err
	}
	var out struct {
		Songs []Track `json:"songs"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Songs, nil
}

func (g *Generic) Artists(ctx context.Context) ([]Index, error) {
	raw, err := g.p.fetch(ctx, "rest/getArtists", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Artists struct {
			Index []Index `json:"index"`
		} `json:"artists"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Artists.Index, nil
}

// Artist is a single fetch on this dialect; the record already carries the
// description and embedded albums.
func (g *Generic) Artist(ctx context.Context, id string) (*Artist, error) {
	raw, err := g.p.fetch(ctx, "rest/getArtist", idParams(id))
	if err != nil {
		return nil, err
	}
	var out struct {
		Artist Artist `json:"artist"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out.Artist, nil
}

func (g *Generic) Album(ctx context.Context, id string) (*Album, error) {
	raw, err := g.p.fetch(ctx, "rest/getAlbum", idParams(id))
	if err != nil {
		return nil, err
	}
	var out struct {
		Album Album `json:"album"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out.Album, nil
}

func (g *Generic) Playlists(ctx context.Context) ([]Playlist, error) {
	raw, err := g.p.fetch(ctx, "rest/getPlaylists", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Playlists []Playlist `json:"playlists"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Playlists, nil
}

func (g *Generic) Playlist(ctx context.Context, id string) (*Playlist, error) {
	raw, err := g.p.fetch(ctx, "rest/getPlaylist", idParams(id))
	if err != nil {
		return nil, err
	}
	var out struct {
		Playlist Playlist `json:"playlist"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out.Playlist, nil
}

func (g *Generic) CreatePlaylist(ctx context.Context, name string) error {
	_, err := g.p.fetch(ctx, "rest/createPlaylist", url.Values{"name": {name}})
	return err
}

func (g *Generic) RenamePlaylist(ctx context.Context, id, name string) error {
	params := url.Values{}
	params.Set("playlistId", id)
	params.Set("name", name)
	_, err := g.p.fetch(ctx, "rest/updatePlaylist", params)
	return err
}

func (g *Generic) DeletePlaylist(ctx context.Context, id string) error {
	_, err := g.p.fetch(ctx, "rest/deletePlaylist", idParams(id))
	return err
}

func (g *Generic) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	params.Set("songIdToAdd", trackID)
	_, err := g.p.fetch(ctx, "rest/updatePlaylist", params)
	return err
}

func (g *Generic) RemoveFromPlaylist(ctx context.Context, playlistID, index string) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	params.Set("songIndexToRemove", index)
	_, err := g.p.fetch(ctx, "rest/updatePlaylist", params)
	return err
}

func (g *Generic) RandomSongs(ctx context.Context, size int) ([]Track, error) {
	raw, err := g.p.fetch(ctx, "rest/getRandomSongs", url.Values{"size": {strconv.Itoa(size)}})
	if err != nil {
		return nil, err
	}
	var out struct {
		RandomSongs []Track `json:"randomSongs"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.RandomSongs, nil
}

func (g *Generic) Starred(ctx context.Context) (*Starred, error) {
	raw, err := g.p.fetch(ctx, "rest/getStarred", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Starred Starred `json:"starred"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out.Starred, nil
}

func (g *Generic) SetStar(ctx context.Context, kind StarKind, id string, on bool) error {
	endpoint := "rest/star"
	if !on {
		endpoint = "rest/unstar"
	}
	_, err := g.p.fetch(ctx, endpoint, starParams(kind, id))
	return err
}

func (g *Generic) Search(ctx context.Context, query string) (*SearchResult, error) {
	raw, err := g.p.fetch(ctx, "rest/search3", url.Values{"query": {query}})
	if err != nil {
		return nil, err
	}
	var out struct {
		SearchResult3 SearchResult `json:"searchResult3"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out.SearchResult3, nil
}

func (g *Generic) Scrobble(ctx context.Context, id string) error {
	_, err := g.p.fetch(ctx, "rest/scrobble", idParams(id))
	return err
}

func (g *Generic) Podcasts(ctx context.Context) ([]Podcast, error) {
	return nil, ErrUnsupported
}

func (g *Generic) StartScan(ctx context.Context) error {
	return ErrUnsupported
}

// The reference server authorizes resource fetches without per-URL
// credentials; the bearer token stays in headers for API calls only.

func (g *Generic) StreamURL(id string) string {
	if id == "" {
		return ""
	}
	creds := g.p.session.Credentials()
	return joinURL(creds.Server, "rest/stream") + "?" + url.Values{"id": {id}, "format": {"raw"}}.Encode()
}

func (g *Generic) CoverArtURL(id string) string {
	if id == "" {
		return ""
	}
	creds := g.p.session.Credentials()
	return joinURL(creds.Server, "rest/getCoverArt") + "?" + url.Values{"id": {id}, "size": {"300"}}.Encode()
}

func (g *Generic) DownloadURL(id string) string {
	if id == "" {
		return ""
	}
	creds := g.p.session.Credentials()
	return joinURL(creds.Server, "rest/download") + "?" + url.Values{"id": {id}}.Encode()
}

func idParams(id string) url.Values {
	return url.Values{"id": {id}}
}

// starParams populates exactly one identifier parameter for the target
// type.
func starParams(kind StarKind, id string) url.Values {
	params := url.Values{}
	switch kind {
	case StarAlbum:
		params.Set("albumId", id)
	case StarArtist:
		params.Set("artistId", id)
	default:
		params.Set("id", id)
	}
	return params
}
