package memory

import (
	"context"
	"maps"
	"sync"

	"pethouse/internal/domain/pets"
	"pethouse/internal/domain/users"
	"pethouse/internal/domain/visits"
	"pethouse/internal/session"
)

// Store keeps every table in process memory for dev mode and tests. Repositories share it so that a
// pet delete can cascade into visits.
//
// Transactions are serialized by txMu and roll back by restoring a snapshot. Writes made outside a
// transaction also take txMu, so a rollback never discards them.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users      map[int64]users.User
	nextUserID int64

	pets      map[int64]pets.Pet
	nextPetID int64

	visits      map[int64]visits.Visit
	nextVisitID int64

	sessions map[string]session.Data
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]users.User),
		pets:     make(map[int64]pets.Pet),
		visits:   make(map[int64]visits.Visit),
		sessions: make(map[string]session.Data),
	}
}

func (s *Store) Users() users.Repository {
	return &usersRepo{s: s}
}

func (s *Store) Pets() pets.Repository {
	return &petsRepo{s: s}
}

func (s *Store) Visits() visits.Repository {
	return &visitsRepo{s: s}
}

func (s *Store) Sessions() session.Store {
	return &sessionStore{s: s}
}

var (
	_ pets.TxRunner   = (*Store)(nil)
	_ visits.TxRunner = (*Store)(nil)
)

func (s *Store) RunPets(ctx context.Context, fn func(repo pets.Repository) error) error {
	return s.runTx(func() error {
		return fn(&petsRepo{s: s, tx: true})
	})
}

func (s *Store) RunVisits(ctx context.Context, fn func(petRepo pets.Repository, repo visits.Repository) error) error {
	return s.runTx(func() error {
		return fn(&petsRepo{s: s, tx: true}, &visitsRepo{s: s, tx: true})
	})
}

type snapshot struct {
	pets        map[int64]pets.Pet
	nextPetID   int64
	visits      map[int64]visits.Visit
	nextVisitID int64
}

func (s *Store) runTx(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := snapshot{
		pets:        maps.Clone(s.pets),
		nextPetID:   s.nextPetID,
		visits:      maps.Clone(s.visits),
		nextVisitID: s.nextVisitID,
	}
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.pets = snap.pets
		s.nextPetID = snap.nextPetID
		s.visits = snap.visits
		s.nextVisitID = snap.nextVisitID
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite takes the data lock, plus the transaction lock when called outside a transaction.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}
