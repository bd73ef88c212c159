package profile

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// Service is the explicit handle to the device profile. Every mutation is a
// full load-apply-save cycle run under one lock, so concurrent callers are
// applied one after another and never overwrite each other's changes.
type Service struct {
	store domain.ProfileStore
	newID func() string

	mu sync.Mutex
}

func NewService(store domain.ProfileStore) *Service {
	return &Service{
		store: store,
		newID: uuid.NewString,
	}
}

// WithIDGenerator overrides contact id generation. Meant for tests.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.newID = gen
	return s
}

// Init loads the stored profile at start-up. A corrupt blob is cleared so the
// user is not locked out; in that case (and when the slot is empty) Init
// returns nil, nil and the caller should route to onboarding.
func (s *Service) Init(ctx context.Context) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := observability.LoggerFromContext(ctx)

	p, err := s.store.Load(ctx)
	switch {
	case err == nil:
		log.Info("profile loaded", "contacts", len(p.EmergencyContacts), "onboarded", p.HasCompletedOnboarding)
		return p, nil
	case errors.Is(err, domain.ErrNotFound):
		log.Info("no stored profile")
		return nil, nil
	case errors.Is(err, domain.ErrCorruptData):
		log.Warn("stored profile is corrupt, clearing slot", "error", err)
		if cerr := s.store.Clear(ctx); cerr != nil {
			log.Error("failed to clear corrupt profile", "error", cerr)
			return nil, cerr
		}
		return nil, nil
	default:
		log.Error("failed to load profile", "error", err)
		return nil, err
	}
}

// SignIn creates a fresh default profile bound to identity and persists it.
func (s *Service) SignIn(ctx context.Context, identity string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := observability.LoggerFromContext(ctx)

	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, domain.Ef(domain.KindValidation, "sign in", "email or phone is required")
	}

	p := domain.NewProfile(identity)
	if err := s.store.Save(ctx, p); err != nil {
		log.Error("failed to save new profile", "error", err)
		return nil, err
	}

	log.Info("profile created")
	return p, nil
}

// SignUp behaves like SignIn: the identity is opaque and not verified here.
func (s *Service) SignUp(ctx context.Context, identity string) (*domain.Profile, error) {
	return s.SignIn(ctx, identity)
}

// SignOut deletes the stored profile.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to clear profile", "error", err)
		return err
	}
	observability.LoggerFromContext(ctx).Info("profile cleared")
	return nil
}

// Current returns the stored profile, or ErrNotFound. A corrupt blob is
// cleared and reported as ErrNotFound.
func (s *Service) Current(ctx context.Context) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, "current profile")
}

func (s *Service) AddContact(ctx context.Context, in domain.ContactInput) (*domain.Profile, error) {
	return s.mutate(ctx, "add contact", func(p *domain.Profile) (*domain.Profile, error) {
		return AddContact(p, in, s.newID)
	})
}

func (s *Service) UpdateContact(ctx context.Context, c domain.Contact) (*domain.Profile, error) {
	return s.mutate(ctx, "update contact", func(p *domain.Profile) (*domain.Profile, error) {
		return UpdateContact(p, c)
	})
}

func (s *Service) RemoveContact(ctx context.Context, id domain.ContactID) (*domain.Profile, error) {
	return s.mutate(ctx, "remove contact", func(p *domain.Profile) (*domain.Profile, error) {
		return RemoveContact(p, id)
	})
}

func (s *Service) ToggleCondition(ctx context.Context, id domain.ConditionID) (*domain.Profile, error) {
	return s.mutate(ctx, "toggle condition", func(p *domain.Profile) (*domain.Profile, error) {
		return ToggleCondition(p, id)
	})
}

func (s *Service) SetLocationPermission(ctx context.Context, granted bool) (*domain.Profile, error) {
	return s.mutate(ctx, "set location permission", func(p *domain.Profile) (*domain.Profile, error) {
		out := p.Clone()
		out.HasGrantedLocationPermission = granted
		return out, nil
	})
}

func (s *Service) CompleteOnboarding(ctx context.Context) (*domain.Profile, error) {
	return s.mutate(ctx, "complete onboarding", func(p *domain.Profile) (*domain.Profile, error) {
		out := p.Clone()
		out.HasCompletedOnboarding = true
		return out, nil
	})
}

// Patch lists the optional top-level fields UpdateProfile may change.
type Patch struct {
	Identity                     *string
	MedicalNotes                 *domain.MedicalNotes
	HasGrantedLocationPermission *bool
	HasCompletedOnboarding       *bool
}

// UpdateProfile applies a partial update; nil fields are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, patch Patch) (*domain.Profile, error) {
	return s.mutate(ctx, "update profile", func(p *domain.Profile) (*domain.Profile, error) {
		out := p.Clone()
		if patch.Identity != nil {
			out.Identity = strings.TrimSpace(*patch.Identity)
		}
		if patch.MedicalNotes != nil {
			out.MedicalNotes = *patch.MedicalNotes
		}
		if patch.HasGrantedLocationPermission != nil {
			out.HasGrantedLocationPermission = *patch.HasGrantedLocationPermission
		}
		if patch.HasCompletedOnboarding != nil {
			out.HasCompletedOnboarding = *patch.HasCompletedOnboarding
		}
		return out, nil
	})
}

// mutate runs one read-modify-write cycle. The lock is held until the save
// has completed, so the next mutation always starts from persisted state.
func (s *Service) mutate(
	ctx context.Context,
	op string,
	apply func(*domain.Profile) (*domain.Profile, error),
) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With("op", op)

	current, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}

	next, err := apply(current)
	if err != nil {
		log.Info("profile mutation rejected", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		log.Error("failed to save profile", "error", err)
		return nil, err
	}

	log.Info("profile updated")
	return next, nil
}

// load must be called with s.mu held.
func (s *Service) load(ctx context.Context, op string) (*domain.Profile, error) {
	p, err := s.store.Load(ctx)
	if err == nil {
		return p, nil
	}

	log := observability.LoggerFromContext(ctx).With("op", op)
	if errors.Is(err, domain.ErrCorruptData) {
		log.Warn("stored profile is corrupt, clearing slot", "error", err)
		if cerr := s.store.Clear(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, domain.E(domain.KindNotFound, op, err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		log.Error("failed to load profile", "error", err)
	}
	return nil, err
}
