// README: Account directory service: login resolution, profiles, and allow-list bookkeeping.
package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"breeze/internal/infra"
	"breeze/internal/types"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already approved")
	ErrNotApproved    = errors.New("email is not on the approved list")
	ErrBadRequest     = errors.New("bad request")
)

type Service struct {
	store    Store
	verifier infra.TokenVerifier

	// enforceAllowList gates resolveOrCreate on allow-list membership. Off by
	// default: open registration, with the allow-list kept as a provisioning
	// hint for the first-login role.
	enforceAllowList bool
}

func NewService(store Store, verifier infra.TokenVerifier, enforceAllowList bool) *Service {
	return &Service{store: store, verifier: verifier, enforceAllowList: enforceAllowList}
}

// Login verifies a Google ID token and resolves it to an application account,
// creating one on first sight of the email.
func (s *Service) Login(ctx context.Context, assertion string) (*Account, error) {
	identity, err := s.verifier.VerifyIDToken(ctx, assertion)
	if err != nil {
		return nil, err
	}
	return s.resolveOrCreate(ctx, identity)
}

func (s *Service) resolveOrCreate(ctx context.Context, identity *infra.Identity) (*Account, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		role := RoleCustomer
		entry, err := s.store.GetApprovedEmail(ctx, email)
		switch {
		case err == nil:
			role = entry.Role
		case errors.Is(err, ErrNotFound):
			if s.enforceAllowList {
				return nil, ErrNotApproved
			}
		default:
			return nil, err
		}

		now := time.Now()
		a := &Account{
			ID:        newID(),
			Name:      identity.Name,
			Email:     email,
			GoogleID:  identity.SubjectID,
			Role:      role,
			Approved:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Create(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	// Subsequent logins backfill the subject id and force approval. The role
	// is never changed here.
	changed := false
	if existing.GoogleID == "" {
		existing.GoogleID = identity.SubjectID
		changed = true
	}
	if !existing.Approved {
		existing.Approved = true
		changed = true
	}
	if changed {
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Account, error) {
	return s.store.GetByID(ctx, id)
}

type UpdateProfileCommand struct {
	Name    string
	Address *types.Address
	Phone   string
}

// UpdateProfile applies the non-empty fields of cmd to the account. Role and
// approval are not touchable through this path.
func (s *Service) UpdateProfile(ctx context.Context, id types.ID, cmd UpdateProfileCommand) (*Account, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name != "" {
		a.Name = cmd.Name
	}
	if cmd.Address != nil {
		a.Address = *cmd.Address
	}
	if cmd.Phone != "" {
		a.Phone = cmd.Phone
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	if !role.Valid() {
		return nil, ErrBadRequest
	}
	return s.store.ListByRole(ctx, role)
}

// IsRider reports whether the given id belongs to an account with the rider role.
// The order engine consults this when assigning riders.
func (s *Service) IsRider(ctx context.Context, id types.ID) (bool, error) {
	a, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Role == RoleRider, nil
}

func (s *Service) AddApprovedEmail(ctx context.Context, email string, role Role) (*ApprovedEmail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadRequest
	}
	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return nil, ErrBadRequest
	}

	if _, err := s.store.GetApprovedEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	e := &ApprovedEmail{
		ID:        newID(),
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertApprovedEmail(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListApprovedEmails(ctx context.Context) ([]ApprovedEmail, error) {
	return s.store.ListApprovedEmails(ctx)
}

func (s *Service) DeleteApprovedEmail(ctx context.Context, id types.ID) error {
	ok, err := s.store.DeleteApprovedEmail(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func newID() types.ID {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
