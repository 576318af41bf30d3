package library

import (
	"context"
	"fmt"
	"testing"

	"github.com/melodex/melodex/api"
)

// adapterStub overrides just the calls a test needs; anything else panics
// through the embedded nil interface, which is exactly what we want when a
// facade method reaches for an endpoint it should not.
type adapterStub struct {
	api.Adapter

	genres  []api.Genre
	buckets []api.Index
	tracks  []api.Track

	albumListTypes []string
	albumGenres    []string
	playlistCalls  []string
	randomSizes    []int
	starCalls      []string
	scanCalls      int
}

func (a *adapterStub) StreamURL(id string) string   { return "" }
func (a *adapterStub) CoverArtURL(id string) string { return "" }
func (a *adapterStub) DownloadURL(id string) string { return "dl:" + id }

func (a *adapterStub) Genres(ctx context.Context) ([]api.Genre, error) {
	return a.genres, nil
}

func (a *adapterStub) Artists(ctx context.Context) ([]api.Index, error) {
	return a.buckets, nil
}

func (a *adapterStub) AlbumList(ctx context.Context, listType string, size, offset int, genre string) ([]api.Album, error) {
	a.albumListTypes = append(a.albumListTypes, listType)
	a.albumGenres = append(a.albumGenres, genre)
	return nil, nil
}

func (a *adapterStub) Playlist(ctx context.Context, id string) (*api.Playlist, error) {
	a.playlistCalls = append(a.playlistCalls, id)
	return &api.Playlist{ID: id, Name: "Mix", SongCount: 1, Entries: []api.Track{{ID: "tr-1"}}}, nil
}

func (a *adapterStub) RandomSongs(ctx context.Context, size int) ([]api.Track, error) {
	a.randomSizes = append(a.randomSizes, size)
	return a.tracks, nil
}

func (a *adapterStub) SetStar(ctx context.Context, kind api.StarKind, id string, on bool) error {
	a.starCalls = append(a.starCalls, fmt.Sprintf("%s:%s:%v", kind, id, on))
	return nil
}

func (a *adapterStub) StartScan(ctx context.Context) error {
	a.scanCalls++
	return nil
}

func TestCatalog_GenresSortedByAlbumCountDescending(t *testing.T) {
	stub := &adapterStub{genres: []api.Genre{
		{Value: "Jazz", AlbumCount: 5},
		{Value: "Rock", AlbumCount: 9},
		{Value: "Pop", AlbumCount: 5},
	}}
	c := NewCatalog(stub)

	genres, err := c.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres returned error: %v", err)
	}
	wantOrder := []string{"Rock", "Jazz", "Pop"}
	for i, want := range wantOrder {
		if genres[i].Name != want {
			t.Fatalf("genres[%d] = %s, want %s (ties keep server order)", i, genres[i].Name, want)
		}
	}
}

func TestCatalog_AlbumSortTokens(t *testing.T) {
	tests := []struct {
		order AlbumSort
		want  string
	}{
		{SortAlphabetical, "alphabeticalByName"},
		{SortRecentlyAdded, "newest"},
		{SortRecentlyPlayed, "recent"},
		{SortMostPlayed, "frequent"},
		{SortRandom, "random"},
	}
	stub := &adapterStub{}
	c := NewCatalog(stub)
	for _, test := range tests {
		if _, err := c.Albums(context.Background(), test.order, 20, 0); err != nil {
			t.Fatalf("Albums(%s) returned error: %v", test.order, err)
		}
	}
	for i, test := range tests {
		if stub.albumListTypes[i] != test.want {
			t.Errorf("Albums(%s) sent type %q, want %q", test.order, stub.albumListTypes[i], test.want)
		}
	}
}

func TestCatalog_AlbumsRejectsUnknownSort(t *testing.T) {
	stub := &adapterStub{}
	c := NewCatalog(stub)
	if _, err := c.Albums(context.Background(), AlbumSort("loudest"), 20, 0); err == nil {
		t.Fatal("Albums accepted an unknown sort order")
	}
	if len(stub.albumListTypes) != 0 {
		t.Fatalf("adapter was called %d times for an invalid sort", len(stub.albumListTypes))
	}
}

func TestCatalog_AlbumsByGenre(t *testing.T) {
	stub := &adapterStub{}
	c := NewCatalog(stub)
	if _, err := c.AlbumsByGenre(context.Background(), "Jazz", 20, 0); err != nil {
		t.Fatalf("AlbumsByGenre returned error: %v", err)
	}
	if stub.albumListTypes[0] != "byGenre" || stub.albumGenres[0] != "Jazz" {
		t.Fatalf("sent type %q genre %q", stub.albumListTypes[0], stub.albumGenres[0])
	}
}

func TestCatalog_RandomPlaylistIsSynthetic(t *testing.T) {
	stub := &adapterStub{tracks: []api.Track{{ID: "tr-1"}, {ID: "tr-2"}}}
	c := NewCatalog(stub)

	pl, err := c.Playlist(context.Background(), RandomPlaylistID)
	if err != nil {
		t.Fatalf("Playlist returned error: %v", err)
	}
	if len(stub.playlistCalls) != 0 {
		t.Fatalf("server playlist lookups = %v, want none for the sentinel", stub.playlistCalls)
	}
	if len(stub.randomSizes) != 1 || stub.randomSizes[0] != randomTrackCount {
		t.Fatalf("random fetches = %v, want one of %d", stub.randomSizes, randomTrackCount)
	}
	if pl.ID != RandomPlaylistID || pl.Name != "Random" || pl.SongCount != 2 {
		t.Fatalf("playlist = %#v", pl)
	}
}

func TestCatalog_RegularPlaylistHitsServer(t *testing.T) {
	stub := &adapterStub{}
	c := NewCatalog(stub)

	pl, err := c.Playlist(context.Background(), "pl-7")
	if err != nil {
		t.Fatalf("Playlist returned error: %v", err)
	}
	if len(stub.playlistCalls) != 1 || stub.playlistCalls[0] != "pl-7" {
		t.Fatalf("playlist lookups = %v", stub.playlistCalls)
	}
	if pl.Name != "Mix" || len(pl.Tracks) != 1 {
		t.Fatalf("playlist = %#v", pl)
	}
}

func TestCatalog_StarAndUnstar(t *testing.T) {
	stub := &adapterStub{}
	c := NewCatalog(stub)

	if err := c.Star(context.Background(), api.StarAlbum, "al-1"); err != nil {
		t.Fatalf("Star returned error: %v", err)
	}
	if err := c.Unstar(context.Background(), api.StarAlbum, "al-1"); err != nil {
		t.Fatalf("Unstar returned error: %v", err)
	}
	want := []string{"album:al-1:true", "album:al-1:false"}
	if len(stub.starCalls) != 2 || stub.starCalls[0] != want[0] || stub.starCalls[1] != want[1] {
		t.Fatalf("star calls = %v, want %v", stub.starCalls, want)
	}
}

func TestCatalog_ArtistsFlattensBuckets(t *testing.T) {
	stub := &adapterStub{buckets: []api.Index{
		{Name: "A", Artists: []api.Artist{{ID: "ar-1", Name: "Abba"}}},
		{Name: "B", Artists: []api.Artist{{ID: "ar-2", Name: "Beck"}, {ID: "ar-3", Name: "Björk"}}},
	}}
	c := NewCatalog(stub)

	artists, err := c.Artists(context.Background())
	if err != nil {
		t.Fatalf("Artists returned error: %v", err)
	}
	if len(artists) != 3 || artists[0].Name != "Abba" || artists[2].Name != "Björk" {
		t.Fatalf("artists = %#v", artists)
	}
}

func TestCatalog_RefreshLibrary(t *testing.T) {
	stub := &adapterStub{}
	c := NewCatalog(stub)
	if err := c.RefreshLibrary(context.Background()); err != nil {
		t.Fatalf("RefreshLibrary returned error: %v", err)
	}
	if stub.scanCalls != 1 {
		t.Fatalf("scan calls = %d", stub.scanCalls)
	}
}

func TestCatalog_DownloadURLPassthrough(t *testing.T) {
	c := NewCatalog(&adapterStub{})
	if got := c.DownloadURL("tr-5"); got != "dl:tr-5" {
		t.Fatalf("DownloadURL = %q", got)
	}
}
