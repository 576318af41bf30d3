// Package auth holds the session state and lifecycle every request depends
// on: login, registration, logout and startup validation of a remembered
// credential.
package auth

import (
	"sync"

	"github.com/melodex/melodex/api"
	"github.com/melodex/melodex/store"
)

// Keys under which a remembered session is persisted.
const (
	keyServer     = "server"
	keyAccount    = "account"
	keyCredential = "credential"
)

// Session is the mutable connection state. Requests read a snapshot of it
// at dispatch time; mutation happens only through login, registration and
// logout, so last-write-wins on a concurrent mutation is acceptable.
type Session struct {
	mu             sync.RWMutex
	server         string
	account        string
	credential     string
	authenticated  bool
	justRegistered bool
	fixedServer    bool
}

// Restore builds a Session from persisted state. A non-empty fixedServer,
// coming from build or deployment configuration, wins over the stored
// address and keeps the address out of persistence from then on.
func Restore(st store.Store, fixedServer string) *Session {
	s := &Session{fixedServer: fixedServer != ""}
	s.server = fixedServer
	if s.server == "" {
		s.server = st.Get(keyServer)
	}
	s.account = st.Get(keyAccount)
	s.credential = st.Get(keyCredential)
	return s
}

// Credentials returns the snapshot the request pipeline reads once per
// dispatch.
func (s *Session) Credentials() api.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return api.Credentials{Server: s.server, Account: s.account, Credential: s.credential}
}

func (s *Session) Server() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server
}

func (s *Session) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// SetServer records the address to log in against. It has no effect when
// the address is fixed by configuration.
func (s *Session) SetServer(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fixedServer {
		s.server = addr
	}
}

// JustRegistered reports whether a registration succeeded since the last
// call; the flag is consumed by reading it.
func (s *Session) JustRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.justRegistered
	s.justRegistered = false
	return v
}

func (s *Session) establish(account, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.credential = credential
	s.authenticated = true
}

func (s *Session) markRegistered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.justRegistered = true
}

func (s *Session) markValidated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = ""
	s.credential = ""
	s.authenticated = false
	s.justRegistered = false
	if !s.fixedServer {
		s.server = ""
	}
}
