package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/melodex/melodex/api"
	"github.com/melodex/melodex/auth"
	"github.com/melodex/melodex/cache"
	"github.com/melodex/melodex/config"
	"github.com/melodex/melodex/library"
	"github.com/melodex/melodex/store"
)

const usage = `usage: melodex <command> [args]

commands:
  login <server> <account> <password>   log in and remember the session
  logout                                forget the remembered session
  ping                                  check server and session
  genres                                list genres
  albums [a-z|recently-added|recently-played|most-played|random]
  artists                               list artists
  artist <id>                           show one artist with albums
  playlists                             list playlists
  playlist <id|random>                  show one playlist
  starred                               list favorites
  search <query>                        search artists, albums and tracks
  podcasts                              list podcast channels
  scan                                  trigger a library rescan
`

func formatDuration(seconds int) string {
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

type app struct {
	session *auth.Session
	service *auth.Service
	catalog *library.Catalog
	lists   *cache.Playlists
	cfg     *config.Config
}

func newApp(logger *zap.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	st, err := store.NewFile(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	session := auth.Restore(st, cfg.Server.URL)
	httpClient := &http.Client{Timeout: cfg.Client.GetHTTPTimeout()}

	var adapter api.Adapter
	switch cfg.Server.Dialect {
	case config.DialectREST:
		adapter = api.NewGeneric(session, httpClient, logger)
	default:
		adapter = api.NewSubsonic(session, httpClient, logger, cfg.Client.ID, cfg.Client.APIVersion)
	}

	catalog := library.NewCatalog(adapter)
	return &app{
		session: session,
		service: auth.NewService(session, st, adapter),
		catalog: catalog,
		lists:   cache.NewPlaylists(catalog),
		cfg:     cfg,
	}, nil
}

func main() {
	logger := zap.NewNop()
	if os.Getenv("MELODEX_DEBUG") != "" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := run(os.Args[1:], logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, logger *zap.Logger) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.service.Logout()
	}

	// Everything else needs a live session.
	if !a.service.Probe(ctx) {
		return fmt.Errorf("no valid session; run: melodex login <server> <account> <password>")
	}

	switch cmd {
	case "ping":
		fmt.Println("ok:", a.session.Server())
		return nil
	case "genres":
		return a.genres(ctx)
	case "albums":
		order := library.SortRecentlyAdded
		if len(rest) > 0 {
			order = library.AlbumSort(rest[0])
		}
		return a.albums(ctx, order)
	case "artists":
		return a.artists(ctx)
	case "artist":
		if len(rest) != 1 {
			return fmt.Errorf("usage: melodex artist <id>")
		}
		return a.artist(ctx, rest[0])
	case "playlists":
		return a.playlists(ctx)
	case "playlist":
		if len(rest) != 1 {
			return fmt.Errorf("usage: melodex playlist <id|random>")
		}
		return a.playlist(ctx, rest[0])
	case "starred":
		return a.starred(ctx)
	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("usage: melodex search <query>")
		}
		return a.search(ctx, strings.Join(rest, " "))
	case "podcasts":
		return a.podcasts(ctx)
	case "scan":
		return a.catalog.RefreshLibrary(ctx)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: melodex login <server> <account> <password>")
	}
	a.session.SetServer(args[0])
	if err := a.service.Login(ctx, args[1], args[2], true); err != nil {
		return err
	}
	fmt.Println("logged in as", a.session.Account())
	return a.lists.Refresh(ctx)
}

func (a *app) genres(ctx context.Context) error {
	genres, err := a.catalog.Genres(ctx)
	if err != nil {
		return err
	}
	for _, g := range genres {
		fmt.Printf("%-30s %4d albums %5d tracks\n", g.Name, g.AlbumCount, g.TrackCount)
	}
	return nil
}

func (a *app) albums(ctx context.Context, order library.AlbumSort) error {
	albums, err := a.catalog.Albums(ctx, order, a.cfg.Client.PageSize, 0)
	if err != nil {
		return err
	}
	for _, al := range albums {
		fmt.Printf("%-8s %-40s %-24s %d\n", al.ID, al.Name, al.Artist, al.Year)
	}
	return nil
}

func (a *app) artists(ctx context.Context) error {
	artists, err := a.catalog.Artists(ctx)
	if err != nil {
		return err
	}
	for _, ar := range artists {
		fmt.Printf("%-8s %-40s %d albums\n", ar.ID, ar.Name, ar.AlbumCount)
	}
	return nil
}

func (a *app) artist(ctx context.Context, id string) error {
	ar, err := a.catalog.ArtistDetails(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(ar.Name)
	if ar.Description != "" {
		fmt.Println(ar.Description)
	}
	for _, al := range ar.Albums {
		fmt.Printf("  %d  %s\n", al.Year, al.Name)
	}
	for _, sim := range ar.SimilarArtists {
		fmt.Println("  similar:", sim.Name)
	}
	return nil
}

func (a *app) playlists(ctx context.Context) error {
	if err := a.lists.Refresh(ctx); err != nil {
		return err
	}
	for _, pl := range a.lists.All() {
		fmt.Printf("%-8s %-40s %d tracks\n", pl.ID, pl.Name, pl.SongCount)
	}
	return nil
}

func (a *app) playlist(ctx context.Context, id string) error {
	pl, err := a.catalog.Playlist(ctx, id)
	if err != nil {
		return err
	}
	fmt.Println(pl.Name)
	for _, tr := range pl.Tracks {
		fmt.Printf("  %-40s %-24s %s\n", tr.Title, tr.Artist, formatDuration(tr.Duration))
	}
	return nil
}

func (a *app) starred(ctx context.Context) error {
	st, err := a.catalog.Starred(ctx)
	if err != nil {
		return err
	}
	for _, ar := range st.Artists {
		fmt.Println("artist:", ar.Name)
	}
	for _, al := range st.Albums {
		fmt.Println("album: ", al.Name)
	}
	for _, tr := range st.Tracks {
		fmt.Println("track: ", tr.Title)
	}
	return nil
}

func (a *app) search(ctx context.Context, query string) error {
	result, err := a.catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	for _, ar := range result.Artists {
		fmt.Println("artist:", ar.Name)
	}
	for _, al := range result.Albums {
		fmt.Printf("album:  %s - %s\n", al.Name, al.Artist)
	}
	for _, tr := range result.Tracks {
		fmt.Printf("track:  %s - %s (%s)\n", tr.Title, tr.Artist, formatDuration(tr.Duration))
	}
	return nil
}

func (a *app) podcasts(ctx context.Context) error {
	channels, err := a.catalog.Podcasts(ctx)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		fmt.Println(ch.Name)
		for _, ep := range ch.Episodes {
			marker := " "
			if !ep.Playable {
				marker = "*"
			}
			fmt.Printf("  %3d%s %s\n", ep.Track, marker, ep.Title)
		}
	}
	return nil
}
