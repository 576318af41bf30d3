package api

import "bytes"

// Flag normalizes the "starred" marker across dialects: Generic-REST
// serves a boolean while Subsonic serves a timestamp string. Anything
// non-empty and non-false counts as set; malformed values never error.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "", "null", "false", `""`, "0":
		*f = false
	default:
		*f = true
	}
	return nil
}

// Track is the raw wire shape for songs and playlist entries. Both
// dialects use the same field names for it.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"` // in seconds
	Starred  Flag   `json:"starred"`
	Track    int    `json:"track"`
	Album    string `json:"album"`
	AlbumID  string `json:"albumId"`
	Artist   string `json:"artist"`
	ArtistID string `json:"artistId"`
	CoverArt string `json:"coverArt"`
}

type Album struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Artist    string  `json:"artist"`
	ArtistID  string  `json:"artistId"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Starred   Flag    `json:"starred"`
	CoverArt  string  `json:"coverArt"`
	SongCount int     `json:"songCount"`
	Songs     []Track `json:"song"`
}

type Artist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumCount  int      `json:"albumCount"`
	Starred     Flag     `json:"starred"`
	CoverArt    string   `json:"coverArt"`
	Description string   `json:"description"`
	Albums      []Album  `json:"album"`
	Similar     []Artist `json:"similarArtist"`
}

// ArtistInfo carries the extended fields getArtistInfo2 returns on
// Subsonic servers; the adapter merges them into the core Artist record.
type ArtistInfo struct {
	Biography string   `json:"biography"`
	Similar   []Artist `json:"similarArtist"`
}

type Playlist struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Changed   string  `json:"changed"`
	SongCount int     `json:"songCount"`
	CoverArt  string  `json:"coverArt"`
	Entries   []Track `json:"entry"`
}

// Genre carries its name in the value field on the wire.
type Genre struct {
	Value      string `json:"value"`
	SongCount  int    `json:"songCount"`
	AlbumCount int    `json:"albumCount"`
}

// Episode is a podcast episode: track-shaped plus processing state. The
// stream identifier differs from the episode identifier until the server
// has finished downloading the episode.
type Episode struct {
	Track
	StreamID    string `json:"streamId"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type Podcast struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverArt    string    `json:"coverArt"`
	Episodes    []Episode `json:"episode"`
}

// Index is one alphabetical artist bucket from the artist listing.
type Index struct {
	Name    string   `json:"name"`
	Artists []Artist `json:"artist"`
}

type SearchResult struct {
	Artists []Artist `json:"artist"`
	Albums  []Album  `json:"album"`
	Tracks  []Track  `json:"song"`
}

type Starred struct {
	Artists []Artist `json:"artist"`
	Albums  []Album  `json:"album"`
	Tracks  []Track  `json:"song"`
}
