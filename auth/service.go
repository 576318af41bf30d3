package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/melodex/melodex/api"
	"github.com/melodex/melodex/store"
)

// Service drives the session lifecycle against one protocol adapter.
type Service struct {
	session *Session
	store   store.Store
	auth    api.Authenticator
}

func NewService(session *Session, st store.Store, authenticator api.Authenticator) *Service {
	return &Service{session: session, store: st, auth: authenticator}
}

func (s *Service) Session() *Session { return s.session }

// Login exchanges credentials for a session token. On rejection the
// session is left untouched and the server's message comes back as
// *api.AuthError. With remember set, the session fields are persisted;
// the server address is skipped when it is fixed by configuration.
func (s *Service) Login(ctx context.Context, account, credential string, remember bool) error {
	server := s.session.Server()
	token, err := s.auth.Authenticate(ctx, server, account, credential)
	if err != nil {
		return err
	}
	s.session.establish(account, token)

	if !remember {
		return nil
	}
	if !s.session.fixedServer {
		if err := s.store.Set(keyServer, server); err != nil {
			return errors.Wrap(err, "persist session")
		}
	}
	if err := s.store.Set(keyAccount, account); err != nil {
		return errors.Wrap(err, "persist session")
	}
	if err := s.store.Set(keyCredential, token); err != nil {
		return errors.Wrap(err, "persist session")
	}
	return nil
}

// Register creates an account with the same envelope contract as login and
// sets the one-shot just-registered flag the UI reads once.
func (s *Service) Register(ctx context.Context, name, account, credential string) error {
	if err := s.auth.Register(ctx, s.session.Server(), name, account, credential); err != nil {
		return err
	}
	s.session.markRegistered()
	return nil
}

// Probe reports whether the restored credential is still accepted by the
// server. This is a real introspection round trip with the stored
// credential; a session without one is invalid outright.
func (s *Service) Probe(ctx context.Context) bool {
	creds := s.session.Credentials()
	if creds.Credential == "" || creds.Server == "" {
		return false
	}
	if err := s.auth.Verify(ctx); err != nil {
		return false
	}
	s.session.markValidated()
	return true
}

// Logout clears in-memory and persisted session state unconditionally.
// Safe to call repeatedly.
func (s *Service) Logout() error {
	s.session.reset()
	return s.store.Clear()
}
