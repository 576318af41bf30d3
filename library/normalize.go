package library

import (
	"regexp"
	"sort"

	"github.com/melodex/melodex/api"
	"github.com/melodex/melodex/domain"
)

// URLBuilder mints self-authorizing resource URLs for the active dialect.
type URLBuilder interface {
	StreamURL(id string) string
	CoverArtURL(id string) string
	DownloadURL(id string) string
}

// Anchor markup shows up in biographies served by both dialects; links are
// useless outside a browser so they are removed wholesale, matching case-
// and attribute-insensitively, non-greedy.
var anchorTags = regexp.MustCompile(`(?is)<a[^>]*>.*?</a>`)

func stripAnchors(text string) string {
	return anchorTags.ReplaceAllString(text, "")
}

const unnamedPlaylist = "(Unnamed)"

// Normalization converts raw wire payloads into the stable domain model.
// Every function is pure and tolerant of absent optional fields: a missing
// cover-art or stream identifier yields an absent URL, never an error.

func normalizeTrack(u URLBuilder, raw api.Track) domain.Track {
	t := domain.Track{
		ID:       raw.ID,
		Title:    raw.Title,
		Duration: raw.Duration,
		Starred:  bool(raw.Starred),
		Track:    raw.Track,
		Album:    raw.Album,
		AlbumID:  raw.AlbumID,
		Artist:   raw.Artist,
		ArtistID: raw.ArtistID,
		Playable: true,
	}
	if raw.ID != "" {
		t.StreamURL = u.StreamURL(raw.ID)
	}
	if raw.CoverArt != "" {
		t.CoverArtURL = u.CoverArtURL(raw.CoverArt)
	}
	return t
}

func normalizeTracks(u URLBuilder, raws []api.Track) []domain.Track {
	out := make([]domain.Track, len(raws))
	for i, raw := range raws {
		out[i] = normalizeTrack(u, raw)
	}
	return out
}

func normalizeAlbum(u URLBuilder, raw api.Album) domain.Album {
	al := domain.Album{
		ID:       raw.ID,
		Name:     raw.Name,
		Artist:   raw.Artist,
		ArtistID: raw.ArtistID,
		Year:     raw.Year,
		Starred:  bool(raw.Starred),
		GenreID:  raw.Genre,
		Tracks:   normalizeTracks(u, raw.Songs),
	}
	if raw.CoverArt != "" {
		al.CoverArtURL = u.CoverArtURL(raw.CoverArt)
	}
	return al
}

func normalizeAlbums(u URLBuilder, raws []api.Album) []domain.Album {
	out := make([]domain.Album, len(raws))
	for i, raw := range raws {
		out[i] = normalizeAlbum(u, raw)
	}
	return out
}

// normalizeArtist expands embedded albums, newest year first, and similar
// artists one level deep. The server payload is tree-shaped, so the
// recursion is bounded by the payload itself.
func normalizeArtist(u URLBuilder, raw api.Artist) domain.Artist {
	ar := domain.Artist{
		ID:          raw.ID,
		Name:        raw.Name,
		AlbumCount:  raw.AlbumCount,
		Starred:     bool(raw.Starred),
		Description: stripAnchors(raw.Description),
	}
	if len(raw.Albums) > 0 {
		ar.Albums = normalizeAlbums(u, raw.Albums)
		sort.SliceStable(ar.Albums, func(i, j int) bool {
			return ar.Albums[i].Year > ar.Albums[j].Year
		})
	}
	for _, sim := range raw.Similar {
		ar.SimilarArtists = append(ar.SimilarArtists, normalizeArtist(u, sim))
	}
	return ar
}

func normalizeArtists(u URLBuilder, raws []api.Artist) []domain.Artist {
	out := make([]domain.Artist, len(raws))
	for i, raw := range raws {
		out[i] = normalizeArtist(u, raw)
	}
	return out
}

func normalizePlaylist(u URLBuilder, raw api.Playlist) domain.Playlist {
	pl := domain.Playlist{
		ID:        raw.ID,
		Name:      raw.Name,
		Changed:   raw.Changed,
		SongCount: raw.SongCount,
		Tracks:    normalizeTracks(u, raw.Entries),
	}
	if pl.Name == "" {
		pl.Name = unnamedPlaylist
	}
	// An empty playlist has no meaningful cover.
	if raw.CoverArt != "" && raw.SongCount > 0 {
		pl.CoverArtURL = u.CoverArtURL(raw.CoverArt)
	}
	return pl
}

func normalizeGenre(raw api.Genre) domain.Genre {
	return domain.Genre{
		ID:         raw.Value,
		Name:       raw.Value,
		AlbumCount: raw.AlbumCount,
		TrackCount: raw.SongCount,
	}
}

// normalizePodcast maps a channel and its episodes. Episodes arrive newest
// first and get reverse-index track numbers, so the first episode carries
// the highest number. Playability follows the server's processing status,
// and the stream URL comes from the episode's stream identifier, which
// exists only once processing finished.
func normalizePodcast(u URLBuilder, raw api.Podcast) domain.Podcast {
	p := domain.Podcast{
		ID:          raw.ID,
		Name:        raw.Title,
		Description: stripAnchors(raw.Description),
	}
	if raw.CoverArt != "" {
		p.CoverArtURL = u.CoverArtURL(raw.CoverArt)
	}
	total := len(raw.Episodes)
	for i, ep := range raw.Episodes {
		tr := normalizeTrack(u, ep.Track)
		tr.Track = total - i
		tr.Playable = ep.Status == "completed"
		tr.StreamURL = ""
		if ep.StreamID != "" {
			tr.StreamURL = u.StreamURL(ep.StreamID)
		}
		p.Episodes = append(p.Episodes, tr)
	}
	return p
}
