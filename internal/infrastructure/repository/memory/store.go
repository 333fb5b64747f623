// Package memory is a transactional in-process Store used for local runs and tests.
// A transaction works on a private copy of the state that replaces the shared
// state only when fn succeeds; transactions are serialized.
package memory

import (
	"context"
	"sync"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

type state struct {
	folders    map[string]domain.StartupFolder
	subfolders map[string]domain.Subfolder
	documents  map[string]domain.Document
	users      map[string]domain.User
	audit      []domain.StatusChangeAudit
}

func newState() *state {
	return &state{
		folders:    make(map[string]domain.StartupFolder),
		subfolders: make(map[string]domain.Subfolder),
		documents:  make(map[string]domain.Document),
		users:      make(map[string]domain.User),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.folders {
		out.folders[k] = v
	}
	for k, v := range s.subfolders {
		out.subfolders[k] = copySubfolder(v)
	}
	for k, v := range s.documents {
		out.documents[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	out.audit = append(out.audit, s.audit...)
	return out
}

func copySubfolder(sf domain.Subfolder) domain.Subfolder {
	sf.AdditionalNotificationEmails = append([]string{}, sf.AdditionalNotificationEmails...)
	return sf
}

// access runs fn against a state. write reports whether fn mutates it.
type access func(write bool, fn func(st *state) error) error

type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ ports.Store = (*Store)(nil)

func NewStore(users ...domain.User) *Store {
	s := &Store{state: newState()}
	for _, u := range users {
		s.state.users[u.ID] = u
	}
	return s
}

// PutUser adds or replaces a directory entry.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, newRepositories(func(_ bool, op func(*state) error) error { return op(work) })); err != nil {
		return err
	}
	s.state = work
	return nil
}

// autocommit gives each repository call outside InTx its own transaction.
func (s *Store) autocommit(write bool, fn func(st *state) error) error {
	if !write {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Documents() ports.DocumentRepository {
	return &documentRepository{access: s.autocommit}
}

func (s *Store) Subfolders() ports.SubfolderRepository {
	return &subfolderRepository{access: s.autocommit}
}

func (s *Store) StartupFolders() ports.StartupFolderRepository {
	return &folderRepository{access: s.autocommit}
}

func (s *Store) Users() ports.UserDirectory {
	return &userDirectory{access: s.autocommit}
}

func (s *Store) Audit() ports.AuditLog {
	return &auditLog{access: s.autocommit}
}

type repositories struct {
	documents  *documentRepository
	subfolders *subfolderRepository
	folders    *folderRepository
	users      *userDirectory
	audit      *auditLog
}

func newRepositories(a access) *repositories {
	return &repositories{
		documents:  &documentRepository{access: a},
		subfolders: &subfolderRepository{access: a},
		folders:    &folderRepository{access: a},
		users:      &userDirectory{access: a},
		audit:      &auditLog{access: a},
	}
}

func (r *repositories) Documents() ports.DocumentRepository           { return r.documents }
func (r *repositories) Subfolders() ports.SubfolderRepository         { return r.subfolders }
func (r *repositories) StartupFolders() ports.StartupFolderRepository { return r.folders }
func (r *repositories) Users() ports.UserDirectory                    { return r.users }
func (r *repositories) Audit() ports.AuditLog                         { return r.audit }
