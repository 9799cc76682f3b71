package file

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-credentials/pkg/contexts"
	"github.com/goliatone/go-credentials/pkg/credentials"
	"github.com/goliatone/go-credentials/pkg/interfaces/logger"
	"github.com/goliatone/go-credentials/pkg/providers"
)

// Store is a file-backed mutable credential store. Reads come from the
// in-memory snapshot; every mutation persists before the snapshot swap, and
// Reload replaces the snapshot atomically so readers never observe a
// half-written state.
type Store struct {
	*providers.MemStore
	path   string
	logger logger.Logger
}

func newStore(owner contexts.Context, provider, path string, scopes []credentials.Scope, log logger.Logger) *Store {
	s := &Store{
		MemStore: providers.NewMemStore(owner, provider, scopes),
		path:     path,
		logger:   log,
	}
	s.Reload()
	return s
}

// Reload reads the backing file and swaps the snapshot in. A missing file is
// an empty store; malformed content degrades to an empty store with a logged
// diagnostic instead of propagating a parse failure to readers.
func (s *Store) Reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("credential store unreadable, treating as empty",
				logger.Field{Key: "path", Value: s.path},
				logger.Field{Key: "error", Value: err})
		}
		s.SetState(credentials.NewDomainMap())
		return
	}
	m, err := providers.UnmarshalState(data)
	if err != nil {
		s.logger.Error("credential store corrupt, treating as empty",
			logger.Field{Key: "path", Value: s.path},
			logger.Field{Key: "error", Value: err})
		s.SetState(credentials.NewDomainMap())
		return
	}
	s.SetState(m)
}

func (s *Store) save() error {
	data, err := providers.MarshalStateIndent(s.Snapshot())
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) AddCredential(domain string, c credentials.Credential) error {
	if err := s.MemStore.AddCredential(domain, c); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) UpdateCredential(domain string, c credentials.Credential) error {
	if err := s.MemStore.UpdateCredential(domain, c); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) RemoveCredential(domain, id string) error {
	if err := s.MemStore.RemoveCredential(domain, id); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) SetDomain(d credentials.Domain) error {
	if err := s.MemStore.SetDomain(d); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) Apply(strategy credentials.Strategy, incoming *credentials.DomainMap) error {
	if err := s.MemStore.Apply(strategy, incoming); err != nil {
		return err
	}
	return s.save()
}

func storeFileName(owner contexts.Context) string {
	kind := "root"
	id := "root"
	if owner != nil {
		kind = string(owner.Kind())
		id = owner.ID()
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
	return kind + "-" + sanitized + ".json"
}

func storePath(dir string, owner contexts.Context) string {
	return filepath.Join(dir, storeFileName(owner))
}
