package api

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	// DefaultClientID identifies this client to Subsonic servers.
	DefaultClientID = "melodex"
	// DefaultAPIVersion is the Subsonic protocol version requested.
	DefaultAPIVersion = "1.16.1"
)

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randSeq(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// authToken derives the salted token the Subsonic API expects instead of a
// plaintext password.
func authToken(credential string) (token, salt string) {
	salt = randSeq(8)
	token = fmt.Sprintf("%x", md5.Sum([]byte(credential+salt)))
	return token, salt
}

// Subsonic speaks the namespaced-envelope dialect: every response is
// nested under "subsonic-response" with a string status, endpoints are
// versioned rest/<name>.view calls, and credentials travel as query
// parameters on every request. This dialect additionally offers artist
// biographies, podcast channels and a library rescan trigger.
type Subsonic struct {
	p          *pipeline
	http       Doer
	session    SessionSource
	clientID   string
	apiVersion string
}

var _ Adapter = (*Subsonic)(nil)

// NewSubsonic builds the Subsonic adapter around the given session. Empty
// clientID or apiVersion fall back to the defaults; nil client or logger
// fall back to a default http.Client and a no-op logger.
func NewSubsonic(session SessionSource, client Doer, log *zap.Logger, clientID, apiVersion string) *Subsonic {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if clientID == "" {
		clientID = DefaultClientID
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	s := &Subsonic{http: client, session: session, clientID: clientID, apiVersion: apiVersion}
	s.p = &pipeline{
		session: session,
		http:    client,
		log:     log,
		decorate: func(creds Credentials, q url.Values, h http.Header) {
			s.signParams(q, creds.Account, creds.Credential)
		},
		unwrap: unwrapSubsonic,
	}
	return s
}

// signParams adds the account, token auth and client identity parameters
// every Subsonic request carries.
func (s *Subsonic) signParams(q url.Values, account, credential string) {
	token, salt := authToken(credential)
	q.Set("u", account)
	q.Set("t", token)
	q.Set("s", salt)
	q.Set("v", s.apiVersion)
	q.Set("c", s.clientID)
	q.Set("f", "json")
}

type subsonicError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// unwrapSubsonic peels the namespaced envelope and returns the inner
// object; the payload key inside it varies per call.
func unwrapSubsonic(body []byte) (json.RawMessage, error) {
	var outer struct {
		Response json.RawMessage `json:"subsonic-response"`
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, &TransportError{Op: "decode envelope", Err: err}
	}
	if len(outer.Response) == 0 {
		return nil, &TransportError{Op: "decode envelope", Err: fmt.Errorf("missing subsonic-response wrapper")}
	}
	var env struct {
		Status string         `json:"status"`
		Error  *subsonicError `json:"error"`
	}
	if err := json.Unmarshal(outer.Response, &env); err != nil {
		return nil, &TransportError{Op: "decode envelope", Err: err}
	}
	if env.Status != "ok" {
		msg := env.Status
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, &RemoteError{Message: msg}
	}
	return outer.Response, nil
}

// Authenticate validates the credential with a signed ping against the
// explicit server address. The dialect has no token exchange: the
// credential itself becomes the session token once the server accepts it.
func (s *Subsonic) Authenticate(ctx context.Context, server, account, credential string) (string, error) {
	q := url.Values{}
	s.signParams(q, account, credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(server, "rest/ping.view")+"?"+q.Encode(), nil)
	if err != nil {
		return "", &TransportError{Op: "rest/ping.view", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", &TransportError{Op: "rest/ping.view", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "rest/ping.view", Err: err}
	}
	if _, err := unwrapSubsonic(body); err != nil {
		if remote, ok := err.(*RemoteError); ok {
			return "", &AuthError{Message: remote.Message}
		}
		return "", err
	}
	return credential, nil
}

// Register is not part of the Subsonic API; accounts are provisioned on
// the server.
func (s *Subsonic) Register(ctx context.Context, server, name, account, credential string) error {
	return ErrUnsupported
}

// Verify introspects the stored credential with a signed ping.
func (s *Subsonic) Verify(ctx context.Context) error {
	return s.Ping(ctx)
}

func (s *Subsonic) Ping(ctx context.Context) error {
	_, err := s.p.fetch(ctx, "rest/ping.view", nil)
	return err
}

func (s *Subsonic) Genres(ctx context.Context) ([]Genre, error) {
	raw, err := s.p.fetch(ctx, "rest/getGenres.view", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Genres struct {
			Genre []Genre `json:"genre"`
		} `json:"genres"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Genres.Genre, nil
}

func (s *Subsonic) AlbumList(ctx context.Context, listType string, size, offset int, genre string) ([]Album, error) {
	params := url.Values{}
	params.Set("type", listType)
	params.Set("size", strconv.Itoa(size))
	params.Set("offset", strconv.Itoa(offset))
	if genre != "" {
		params.Set("genre", genre)
	}
	raw, err := s.p.fetch(ctx, "rest/getAlbumList2.view", params)
	if err != nil {
		return nil, err
	}
	var out struct {
		AlbumList2 struct {
			Album []Album `json:"album"`
		} `json:"albumList2"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.AlbumList2.Album, nil
}

func (s *Subsonic) SongsByGenre(ctx context.Context, genre string, count, offset int) ([]Track, error) {
	params := url.Values{}
	params.Set("genre", genre)
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(offset))
	raw, err := s.p.fetch(ctx, "rest/getSongsByGenre.view", params)
	if err != nil {
		return nil, err
	}
	var out struct {
		SongsByGenre struct {
			Song []Track `json:"song"`
		} `json:"songsByGenre"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.SongsByGenre.Song, nil
}

func (s *Subsonic) Artists(ctx context.Context) ([]Index, error) {
	raw, err := s.p.fetch(ctx, "rest/getArtists.view", nil)
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

// Artist fetches the core record and the extended info concurrently and
// merges them. Both requests must succeed; a failure on either side fails
// the whole lookup so callers never see a partial merge.
func (s *Subsonic) Artist(ctx context.Context, id string) (*Artist, error) {
	params := idParams(id)

	var core Artist
	var info ArtistInfo

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		raw, err := s.p.fetch(ctx, "rest/getArtist.view", params)
		if err != nil {
			return err
		}
		var out struct {
			Artist Artist `json:"artist"`
		}
		if err := decode(raw, &out); err != nil {
			return err
		}
		core = out.Artist
		return nil
	})
	p.Go(func(ctx context.Context) error {
		raw, err := s.p.fetch(ctx, "rest/getArtistInfo2.view", params)
		if err != nil {
			return err
		}
		var out struct {
			ArtistInfo2 ArtistInfo `json:"artistInfo2"`
		}
		if err := decode(raw, &out); err != nil {
			return err
		}
		info = out.ArtistInfo2
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	if core.Description == "" {
		core.Description = info.Biography
	}
	if len(core.Similar) == 0 {
		core.Similar = info.Similar
	}
	return &core, nil
}

func (s *Subsonic) Album(ctx context.Context, id string) (*Album, error) {
	raw, err := s.p.fetch(ctx, "rest/getAlbum.view", idParams(id))
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

func (s *Subsonic) Playlists(ctx context.Context) ([]Playlist, error) {
	raw, err := s.p.fetch(ctx, "rest/getPlaylists.view", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Playlists struct {
			Playlist []Playlist `json:"playlist"`
		} `json:"playlists"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Playlists.Playlist, nil
}

func (s *Subsonic) Playlist(ctx context.Context, id string) (*Playlist, error) {
	raw, err := s.p.fetch(ctx, "rest/getPlaylist.view", idParams(id))
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

func (s *Subsonic) CreatePlaylist(ctx context.Context, name string) error {
	_, err := s.p.fetch(ctx, "rest/createPlaylist.view", url.Values{"name": {name}})
	return err
}

func (s *Subsonic) RenamePlaylist(ctx context.Context, id, name string) error {
	params := url.Values{}
	params.Set("playlistId", id)
	params.Set("name", name)
	_, err := s.p.fetch(ctx, "rest/updatePlaylist.view", params)
	return err
}

func (s *Subsonic) DeletePlaylist(ctx context.Context, id string) error {
	_, err := s.p.fetch(ctx, "rest/deletePlaylist.view", idParams(id))
	return err
}

func (s *Subsonic) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	params.Set("songIdToAdd", trackID)
	_, err := s.p.fetch(ctx, "rest/updatePlaylist.view", params)
	return err
}

func (s *Subsonic) RemoveFromPlaylist(ctx context.Context, playlistID, index string) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	params.Set("songIndexToRemove", index)
	_, err := s.p.fetch(ctx, "rest/updatePlaylist.view", params)
	return err
}

func (s *Subsonic) RandomSongs(ctx context.Context, size int) ([]Track, error) {
	raw, err := s.p.fetch(ctx, "rest/getRandomSongs.view", url.Values{"size": {strconv.Itoa(size)}})
	if err != nil {
		return nil, err
	}
	var out struct {
		RandomSongs struct {
			Song []Track `json:"song"`
		} `json:"randomSongs"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.RandomSongs.Song, nil
}

func (s *Subsonic) Starred(ctx context.Context) (*Starred, error) {
	raw, err := s.p.fetch(ctx, "rest/getStarred2.view", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Starred2 Starred `json:"starred2"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return &out.Starred2, nil
}

func (s *Subsonic) SetStar(ctx context.Context, kind StarKind, id string, on bool) error {
	endpoint := "rest/star.view"
	if !on {
		endpoint = "rest/unstar.view"
	}
	_, err := s.p.fetch(ctx, endpoint, starParams(kind, id))
	return err
}

func (s *Subsonic) Search(ctx context.Context, query string) (*SearchResult, error) {
	raw, err := s.p.fetch(ctx, "rest/search3.view", url.Values{"query": {query}})
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

func (s *Subsonic) Scrobble(ctx context.Context, id string) error {
	_, err := s.p.fetch(ctx, "rest/scrobble.view", idParams(id))
	return err
}

func (s *Subsonic) Podcasts(ctx context.Context) ([]Podcast, error) {
	raw, err := s.p.fetch(ctx, "rest/getPodcasts.view", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Podcasts struct {
			Channel []Podcast `json:"channel"`
		} `json:"podcasts"`
	}
	if err := decode(raw, &out); err != nil {
		return nil, err
	}
	return out.Podcasts.Channel, nil
}

func (s *Subsonic) StartScan(ctx context.Context) error {
	_, err := s.p.fetch(ctx, "rest/startScan.view", nil)
	return err
}

// Resource URLs are signed with the same token parameters as API calls so
// a media element can fetch them directly.

func (s *Subsonic) StreamURL(id string) string {
	if id == "" {
		return ""
	}
	return s.resourceURL("rest/stream.view", idParams(id))
}

func (s *Subsonic) CoverArtURL(id string) string {
	if id == "" {
		return ""
	}
	params := idParams(id)
	params.Set("size", "300")
	return s.resourceURL("rest/getCoverArt.view", params)
}

func (s *Subsonic) DownloadURL(id string) string {
	if id == "" {
		return ""
	}
	return s.resourceURL("rest/download.view", idParams(id))
}

func (s *Subsonic) resourceURL(endpoint string, params url.Values) string {
	creds := s.session.Credentials()
	s.signParams(params, creds.Account, creds.Credential)
	return joinURL(creds.Server, endpoint) + "?" + params.Encode()
}
