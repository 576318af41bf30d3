// Package library is the public surface of the catalog client: one method
// per operation, composing the session-aware protocol adapter with the
// normalizer. Errors from the adapter propagate untouched; presentation is
// the caller's concern.
package library

import (
	"context"
	"fmt"
	"sort"

	"github.com/melodex/melodex/api"
	"github.com/melodex/melodex/domain"
)

// AlbumSort names a browse order for album listings.
type AlbumSort string

const (
	SortAlphabetical   AlbumSort = "a-z"
	SortRecentlyAdded  AlbumSort = "recently-added"
	SortRecentlyPlayed AlbumSort = "recently-played"
	SortMostPlayed     AlbumSort = "most-played"
	SortRandom         AlbumSort = "random"
)

// listTypes maps browse orders onto the wire tokens both dialects accept.
var listTypes = map[AlbumSort]string{
	SortAlphabetical:   "alphabeticalByName",
	SortRecentlyAdded:  "newest",
	SortRecentlyPlayed: "recent",
	SortMostPlayed:     "frequent",
	SortRandom:         "random",
}

// RandomPlaylistID is the sentinel Playlist accepts for a synthetic
// playlist built from a random-track fetch; no server playlist lookup
// happens for it.
const RandomPlaylistID = "random"

const randomTrackCount = 200

// Catalog is the catalog client facade.
type Catalog struct {
	api api.Adapter
}

func NewCatalog(adapter api.Adapter) *Catalog {
	return &Catalog{api: adapter}
}

func (c *Catalog) Ping(ctx context.Context) error {
	return c.api.Ping(ctx)
}

// Genres lists all genres, sorted by album count descending. Ties keep the
// server's relative order.
func (c *Catalog) Genres(ctx context.Context) ([]domain.Genre, error) {
	raw, err := c.api.Genres(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Genre, len(raw))
	for i, g := range raw {
		out[i] = normalizeGenre(g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AlbumCount > out[j].AlbumCount
	})
	return out, nil
}

func (c *Catalog) Albums(ctx context.Context, order AlbumSort, size, offset int) ([]domain.Album, error) {
	listType, ok := listTypes[order]
	if !ok {
		return nil, fmt.Errorf("unknown album sort %q", order)
	}
	raw, err := c.api.AlbumList(ctx, listType, size, offset, "")
	if err != nil {
		return nil, err
	}
	return normalizeAlbums(c.api, raw), nil
}

func (c *Catalog) AlbumsByGenre(ctx context.Context, genre string, size, offset int) ([]domain.Album, error) {
	raw, err := c.api.AlbumList(ctx, "byGenre", size, offset, genre)
	if err != nil {
		return nil, err
	}
	return normalizeAlbums(c.api, raw), nil
}

func (c *Catalog) TracksByGenre(ctx context.Context, genre string, size, offset int) ([]domain.Track, error) {
	raw, err := c.api.SongsByGenre(ctx, genre, size, offset)
	if err != nil {
		return nil, err
	}
	return normalizeTracks(c.api, raw), nil
}

// Artists flattens the server's alphabetical buckets into one listing.
func (c *Catalog) Artists(ctx context.Context) ([]domain.Artist, error) {
	buckets, err := c.api.Artists(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Artist
	for _, bucket := range buckets {
		out = append(out, normalizeArtists(c.api, bucket.Artists)...)
	}
	return out, nil
}

func (c *Catalog) ArtistDetails(ctx context.Context, id string) (*domain.Artist, error) {
	raw, err := c.api.Artist(ctx, id)
	if err != nil {
		return nil, err
	}
	ar := normalizeArtist(c.api, *raw)
	return &ar, nil
}

func (c *Catalog) AlbumDetails(ctx context.Context, id string) (*domain.Album, error) {
	raw, err := c.api.Album(ctx, id)
	if err != nil {
		return nil, err
	}
	al := normalizeAlbum(c.api, *raw)
	return &al, nil
}

func (c *Catalog) Playlists(ctx context.Context) ([]domain.Playlist, error) {
	raw, err := c.api.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Playlist, len(raw))
	for i, pl := range raw {
		out[i] = normalizePlaylist(c.api, pl)
	}
	return out, nil
}

// Playlist fetches one playlist with its tracks. The RandomPlaylistID
// sentinel synthesizes a virtual playlist named "Random" from a
// random-track fetch instead.
func (c *Catalog) Playlist(ctx context.Context, id string) (*domain.Playlist, error) {
	if id == RandomPlaylistID {
		tracks, err := c.RandomTracks(ctx)
		if err != nil {
			return nil, err
		}
		return &domain.Playlist{
			ID:        id,
			Name:      "Random",
			SongCount: len(tracks),
			Tracks:    tracks,
		}, nil
	}
	raw, err := c.api.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}
	pl := normalizePlaylist(c.api, *raw)
	return &pl, nil
}

// CreatePlaylist creates a playlist and returns the refreshed listing.
func (c *Catalog) CreatePlaylist(ctx context.Context, name string) ([]domain.Playlist, error) {
	if err := c.api.CreatePlaylist(ctx, name); err != nil {
		return nil, err
	}
	return c.Playlists(ctx)
}

func (c *Catalog) EditPlaylist(ctx context.Context, id, name string) error {
	return c.api.RenamePlaylist(ctx, id, name)
}

func (c *Catalog) DeletePlaylist(ctx context.Context, id string) error {
	return c.api.DeletePlaylist(ctx, id)
}

func (c *Catalog) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	return c.api.AddToPlaylist(ctx, playlistID, trackID)
}

// RemoveFromPlaylist removes the entry at the given position; playlists
// address removals by index, not track id.
func (c *Catalog) RemoveFromPlaylist(ctx context.Context, playlistID, index string) error {
	return c.api.RemoveFromPlaylist(ctx, playlistID, index)
}

func (c *Catalog) RandomTracks(ctx context.Context) ([]domain.Track, error) {
	raw, err := c.api.RandomSongs(ctx, randomTrackCount)
	if err != nil {
		return nil, err
	}
	return normalizeTracks(c.api, raw), nil
}

// Starred fetches the three favorite collections from the combined
// endpoint and normalizes each independently.
func (c *Catalog) Starred(ctx context.Context) (*domain.Starred, error) {
	raw, err := c.api.Starred(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Starred{
		Artists: normalizeArtists(c.api, raw.Artists),
		Albums:  normalizeAlbums(c.api, raw.Albums),
		Tracks:  normalizeTracks(c.api, raw.Tracks),
	}, nil
}

func (c *Catalog) Star(ctx context.Context, kind api.StarKind, id string) error {
	return c.api.SetStar(ctx, kind, id, true)
}

func (c *Catalog) Unstar(ctx context.Context, kind api.StarKind, id string) error {
	return c.api.SetStar(ctx, kind, id, false)
}

func (c *Catalog) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	raw, err := c.api.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{
		Artists: normalizeArtists(c.api, raw.Artists),
		Albums:  normalizeAlbums(c.api, raw.Albums),
		Tracks:  normalizeTracks(c.api, raw.Tracks),
	}, nil
}

// Scrobble reports a playback event. Fire-and-forget from the caller's
// point of view; the returned error only signals delivery failure.
func (c *Catalog) Scrobble(ctx context.Context, id string) error {
	return c.api.Scrobble(ctx, id)
}

func (c *Catalog) Podcasts(ctx context.Context) ([]domain.Podcast, error) {
	raw, err := c.api.Podcasts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Podcast, len(raw))
	for i, ch := range raw {
		out[i] = normalizePodcast(c.api, ch)
	}
	return out, nil
}

// RefreshLibrary triggers a server-side rescan where the dialect offers
// one; api.ErrUnsupported otherwise.
func (c *Catalog) RefreshLibrary(ctx context.Context) error {
	return c.api.StartScan(ctx)
}

// DownloadURL mints a download link without a raw entity in hand.
func (c *Catalog) DownloadURL(id string) string {
	return c.api.DownloadURL(id)
}
