package domain

// Track represents a single playable item in the catalog. Podcast episodes
// are track-shaped; for them Playable reports whether the server has
// finished processing the episode.
type Track struct {
	ID          string
	Title       string
	Duration    int // in seconds
	Starred     bool
	Track       int
	Album       string
	AlbumID     string
	Artist      string
	ArtistID    string
	CoverArtURL string
	StreamURL   string
	Playable    bool
}

// Album groups tracks in the order the server returned them, which is
// typically disc and track order.
type Album struct {
	ID          string
	Name        string
	Artist      string
	ArtistID    string
	Year        int
	Starred     bool
	GenreID     string
	CoverArtURL string
	Tracks      []Track
}

// Artist carries the artist record plus its albums, newest year first.
// SimilarArtists is populated one level deep when the server provides it.
type Artist struct {
	ID             string
	Name           string
	AlbumCount     int
	Description    string
	Starred        bool
	Albums         []Album
	SimilarArtists []Artist
}

// Playlist is a named track sequence. Name is never empty; unnamed server
// playlists get a placeholder.
type Playlist struct {
	ID          string
	Name        string
	Changed     string
	SongCount   int
	CoverArtURL string
	Tracks      []Track
}

// Genre is a browse bucket with collection counts.
type Genre struct {
	ID         string
	Name       string
	AlbumCount int
	TrackCount int
}

// Podcast is a channel with its episodes, newest first.
type Podcast struct {
	ID          string
	Name        string
	Description string
	CoverArtURL string
	Episodes    []Track
}

// SearchResult holds three independent result sequences with no
// cross-referencing between them.
type SearchResult struct {
	Artists []Artist
	Albums  []Album
	Tracks  []Track
}

// Starred holds the user's favorites, fetched from one combined endpoint.
type Starred struct {
	Artists []Artist
	Albums  []Album
	Tracks  []Track
}
