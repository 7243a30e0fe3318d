package pets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pethouse/internal/domain"
	"pethouse/internal/domain/guard"
	"pethouse/internal/platform/logger"
	"pethouse/internal/ports/auth"
)

type Service struct {
	repo     Repository
	tx       TxRunner
	photos   PhotoStore
	maxPhoto int64
	log      logger.Logger
	now      func() time.Time
}

type Options struct {
	MaxPhotoBytes int64
	Logger        logger.Logger
}

func NewService(repo Repository, tx TxRunner, photos PhotoStore, opts Options) *Service {
	if opts.MaxPhotoBytes <= 0 {
		opts.MaxPhotoBytes = DefaultMaxPhotoBytes
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		repo:     repo,
		tx:       tx,
		photos:   photos,
		maxPhoto: opts.MaxPhotoBytes,
		log:      opts.Logger,
		now:      time.Now,
	}
}

func (s *Service) MaxPhotoBytes() int64 {
	return s.maxPhoto
}

// List is scoped to the caller; admins see every pet.
func (s *Service) List(ctx context.Context, id auth.Identity) ([]Pet, error) {
	if !id.Valid() {
		return nil, domain.ErrUnauthenticated
	}
	owner := id.ID
	if id.IsAdmin() {
		owner = 0
	}
	items, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id auth.Identity, rawID string) (Pet, error) {
	return guard.AuthorizeAndLoad(ctx, id, guard.KindPet, rawID, Resolver(s.repo, false))
}

// Resolver adapts repo to the guard. forUpdate is only meaningful inside a transaction.
func Resolver(repo Repository, forUpdate bool) guard.Resolver[Pet] {
	return func(ctx context.Context, petID int64) (Pet, error) {
		return repo.GetByID(ctx, petID, forUpdate)
	}
}

func (s *Service) Create(ctx context.Context, id auth.Identity, in Input, photo *PhotoUpload) (Pet, error) {
	if !id.Valid() {
		return Pet{}, domain.ErrUnauthenticated
	}

	var p domain.Problems
	f := in.normalize(&p)
	ext := ValidatePhoto(photo, s.maxPhoto, &p)
	if err := p.Err(); err != nil {
		return Pet{}, err
	}

	pet := Pet{
		OwnerUserID: id.ID,
		CreatedAt:   s.now().UTC(),
	}
	f.apply(&pet)

	var staged *StagedPhoto
	if photo != nil {
		var err error
		staged, err = stagePhoto(ctx, s.photos, s.log, photo.Data, ext)
		if err != nil {
			return Pet{}, err
		}
		defer staged.Release(ctx)
		name := staged.Name()
		pet.Photo = &name
	}

	newID, err := s.repo.Create(ctx, pet)
	if err != nil {
		return Pet{}, fmt.Errorf("create pet: %w", err)
	}
	if staged != nil {
		staged.Keep()
	}

	pet.ID = newID
	return pet, nil
}

// Update authorizes, validates, stores a replacement photo if given and writes, all under the row lock.
// The previous photo is removed only after the new row is committed.
func (s *Service) Update(ctx context.Context, id auth.Identity, rawID string, in Input, photo *PhotoUpload) (Pet, error) {
	var (
		updated  Pet
		oldPhoto *string
		staged   *StagedPhoto
	)
	defer func() { staged.Release(ctx) }()

	err := s.tx.RunPets(ctx, func(repo Repository) error {
		current, err := guard.AuthorizeAndLoad(ctx, id, guard.KindPet, rawID, Resolver(repo, true))
		if err != nil {
			return err
		}

		var p domain.Problems
		f := in.normalize(&p)
		ext := ValidatePhoto(photo, s.maxPhoto, &p)
		if err := p.Err(); err != nil {
			return err
		}

		next := current
		f.apply(&next)

		if photo != nil {
			staged, err = stagePhoto(ctx, s.photos, s.log, photo.Data, ext)
			if err != nil {
				return err
			}
			name := staged.Name()
			next.Photo = &name
		}

		if err := repo.Update(ctx, next); err != nil {
			return fmt.Errorf("update pet %d: %w", next.ID, err)
		}

		updated = next
		oldPhoto = current.Photo
		return nil
	})
	if err != nil {
		return Pet{}, err
	}

	if staged != nil {
		staged.Keep()
		if oldPhoto != nil {
			s.removePhoto(ctx, *oldPhoto)
		}
	}
	return updated, nil
}

// Delete removes the pet, its visits and its photo file.
func (s *Service) Delete(ctx context.Context, id auth.Identity, rawID string) (Pet, error) {
	var deleted Pet
	err := s.tx.RunPets(ctx, func(repo Repository) error {
		current, err := guard.AuthorizeAndLoad(ctx, id, guard.KindPet, rawID, Resolver(repo, true))
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, current.ID); err != nil {
			return fmt.Errorf("delete pet %d: %w", current.ID, err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		return Pet{}, err
	}

	if deleted.Photo != nil {
		s.removePhoto(ctx, *deleted.Photo)
	}
	return deleted, nil
}

// CountFor counts the caller's own pets. Admins get their own count too; the dashboard is personal.
func (s *Service) CountFor(ctx context.Context, id auth.Identity) (int, error) {
	if !id.Valid() {
		return 0, domain.ErrUnauthenticated
	}
	n, err := s.repo.CountByOwner(ctx, id.ID)
	if err != nil {
		return 0, fmt.Errorf("count pets: %w", err)
	}
	return n, nil
}

func (s *Service) removePhoto(ctx context.Context, name string) {
	if err := s.photos.Remove(context.WithoutCancel(ctx), name); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.log.Warn("old photo not removed", map[string]any{"err": err, "photo": name})
	}
}
