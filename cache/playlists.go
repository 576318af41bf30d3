// Package cache keeps the playlist listing warm for the UI layer, mirroring
// the mutations the catalog performs so most reads never hit the server.
package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/melodex/melodex/domain"
)

// Source is the slice of the catalog the cache consumes.
type Source interface {
	Playlists(ctx context.Context) ([]domain.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) ([]domain.Playlist, error)
	EditPlaylist(ctx context.Context, id, name string) error
	DeletePlaylist(ctx context.Context, id string) error
	AddToPlaylist(ctx context.Context, playlistID, trackID string) error
}

// Playlists caches the playlist listing, ordered by most recent change.
// The owning application calls Refresh after a successful login; nothing
// here watches session state.
type Playlists struct {
	mu     sync.RWMutex
	source Source
	items  []domain.Playlist
}

func NewPlaylists(source Source) *Playlists {
	return &Playlists{source: source}
}

// Refresh reloads the listing from the server.
func (p *Playlists) Refresh(ctx context.Context) error {
	list, err := p.source.Playlists(ctx)
	if err != nil {
		return err
	}
	p.replace(list)
	return nil
}

// All returns a copy of the cached listing.
func (p *Playlists) All() []domain.Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Playlist, len(p.items))
	copy(out, p.items)
	return out
}

// Create makes a playlist and stores the refreshed listing the catalog
// returns for creations.
func (p *Playlists) Create(ctx context.Context, name string) error {
	list, err := p.source.CreatePlaylist(ctx, name)
	if err != nil {
		return err
	}
	p.replace(list)
	return nil
}

// Rename renames on the server and patches the cached entry in place.
func (p *Playlists) Rename(ctx context.Context, id, name string) error {
	if err := p.source.EditPlaylist(ctx, id, name); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		if p.items[i].ID == id {
			p.items[i].Name = name
			break
		}
	}
	return nil
}

// Delete removes on the server and drops the cached entry.
func (p *Playlists) Delete(ctx context.Context, id string) error {
	if err := p.source.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.items[:0]
	for _, pl := range p.items {
		if pl.ID != id {
			kept = append(kept, pl)
		}
	}
	p.items = kept
	return nil
}

// AddTrack appends a track to a playlist. Track listings are fetched on
// demand, so there is nothing to patch locally.
func (p *Playlists) AddTrack(ctx context.Context, playlistID, trackID string) error {
	return p.source.AddToPlaylist(ctx, playlistID, trackID)
}

func (p *Playlists) replace(list []domain.Playlist) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Changed > list[j].Changed
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = list
}
