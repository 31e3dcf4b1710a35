// README: Account service tests (login resolution, allow-list, profiles).
package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"breeze/internal/infra"
	"breeze/internal/types"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	accounts map[types.ID]*Account
	approved map[string]*ApprovedEmail
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[types.ID]*Account),
		approved: make(map[string]*ApprovedEmail),
	}
}

func (f *fakeStore) GetByID(_ context.Context, id types.ID) (*Account, error) {
	if a, ok := f.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, a *Account) error {
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, a *Account) error {
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]Account, error) {
	var out []Account
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) ListByRole(_ context.Context, role Role) ([]Account, error) {
	var out []Account
	for _, a := range f.accounts {
		if a.Role == role {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetApprovedEmail(_ context.Context, email string) (*ApprovedEmail, error) {
	if e, ok := f.approved[email]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) InsertApprovedEmail(_ context.Context, e *ApprovedEmail) error {
	cp := *e
	f.approved[e.Email] = &cp
	return nil
}

func (f *fakeStore) ListApprovedEmails(_ context.Context) ([]ApprovedEmail, error) {
	var out []ApprovedEmail
	for _, e := range f.approved {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStore) DeleteApprovedEmail(_ context.Context, id types.ID) (bool, error) {
	for email, e := range f.approved {
		if e.ID == id {
			delete(f.approved, email)
			return true, nil
		}
	}
	return false, nil
}

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	identity *infra.Identity
	err      error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.Identity, error) {
	return s.identity, s.err
}

func TestLoginCreatesCustomerOnFirstSight(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &stubVerifier{identity: &infra.Identity{
		SubjectID: "google-sub-1",
		Email:     "New.User@Example.com",
		Name:      "New User",
	}}, false)

	a, err := svc.Login(context.Background(), "token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if a.Email != "new.user@example.com" {
		t.Errorf("email not lower-cased: %q", a.Email)
	}
	if a.Role != RoleCustomer {
		t.Errorf("role = %s, want customer", a.Role)
	}
	if !a.Approved {
		t.Error("new account should be approved")
	}
	if a.GoogleID != "google-sub-1" {
		t.Errorf("google id = %q", a.GoogleID)
	}
}

func TestLoginBackfillsSubjectAndForcesApproval(t *testing.T) {
	store := newFakeStore()
	store.accounts["acc1"] = &Account{
		ID:       "acc1",
		Name:     "Existing",
		Email:    "existing@example.com",
		Role:     RoleRider,
		Approved: false,
	}
	svc := NewService(store, &stubVerifier{identity: &infra.Identity{
		SubjectID: "google-sub-2",
		Email:     "existing@example.com",
		Name:      "Existing",
	}}, false)

	a, err := svc.Login(context.Background(), "token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if a.ID != "acc1" {
		t.Fatalf("resolved wrong account: %s", a.ID)
	}
	if a.GoogleID != "google-sub-2" {
		t.Error("google id not backfilled")
	}
	if !a.Approved {
		t.Error("approval not forced")
	}
	// The role must never change on login.
	if a.Role != RoleRider {
		t.Errorf("role changed to %s", a.Role)
	}
}

func TestLoginAllowListRoleHint(t *testing.T) {
	store := newFakeStore()
	store.approved["boss@example.com"] = &ApprovedEmail{ID: "ae1", Email: "boss@example.com", Role: RoleAdmin}
	svc := NewService(store, &stubVerifier{identity: &infra.Identity{
		SubjectID: "sub", Email: "boss@example.com", Name: "Boss",
	}}, false)

	a, err := svc.Login(context.Background(), "token")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if a.Role != RoleAdmin {
		t.Errorf("role = %s, want admin from allow-list", a.Role)
	}
}

func TestLoginEnforcedAllowListRejectsUnlisted(t *testing.T) {
	svc := NewService(newFakeStore(), &stubVerifier{identity: &infra.Identity{
		SubjectID: "sub", Email: "stranger@example.com", Name: "Stranger",
	}}, true)

	if _, err := svc.Login(context.Background(), "token"); !errors.Is(err, ErrNotApproved) {
		t.Errorf("expected ErrNotApproved, got %v", err)
	}
}

func TestLoginVerifierFailurePropagates(t *testing.T) {
	svc := NewService(newFakeStore(), &stubVerifier{err: infra.ErrInvalidAssertion}, false)
	if _, err := svc.Login(context.Background(), "bad"); !errors.Is(err, infra.ErrInvalidAssertion) {
		t.Errorf("expected ErrInvalidAssertion, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	store := newFakeStore()
	store.accounts["acc1"] = &Account{ID: "acc1", Name: "Old", Email: "a@example.com", Role: RoleCustomer, Phone: "111"}
	svc := NewService(store, &stubVerifier{}, false)

	addr := types.Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}
	a, err := svc.UpdateProfile(context.Background(), "acc1", UpdateProfileCommand{Name: "New", Address: &addr})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if a.Name != "New" {
		t.Errorf("name = %q", a.Name)
	}
	if a.Address != addr {
		t.Errorf("address = %+v", a.Address)
	}
	if a.Phone != "111" {
		t.Errorf("phone should be unchanged, got %q", a.Phone)
	}
}

func TestAddApprovedEmailDuplicate(t *testing.T) {
	svc := NewService(newFakeStore(), &stubVerifier{}, false)
	ctx := context.Background()

	e, err := svc.AddApprovedEmail(ctx, "Rider@Example.com", RoleRider)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.Email != "rider@example.com" {
		t.Errorf("email not normalised: %q", e.Email)
	}
	if time.Since(e.CreatedAt) > time.Minute {
		t.Error("created_at not set")
	}

	if _, err := svc.AddApprovedEmail(ctx, "rider@example.com", RoleRider); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAddApprovedEmailRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeStore(), &stubVerifier{}, false)
	if _, err := svc.AddApprovedEmail(context.Background(), "x@example.com", Role("superuser")); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestDeleteApprovedEmailNotFound(t *testing.T) {
	svc := NewService(newFakeStore(), &stubVerifier{}, false)
	if err := svc.DeleteApprovedEmail(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIsRider(t *testing.T) {
	store := newFakeStore()
	store.accounts["r1"] = &Account{ID: "r1", Email: "r@example.com", Role: RoleRider}
	store.accounts["c1"] = &Account{ID: "c1", Email: "c@example.com", Role: RoleCustomer}
	svc := NewService(store, &stubVerifier{}, false)
	ctx := context.Background()

	for _, tc := range []struct {
		id   types.ID
		want bool
	}{
		{"r1", true},
		{"c1", false},
		{"missing", false},
	} {
		got, err := svc.IsRider(ctx, tc.id)
		if err != nil {
			t.Fatalf("IsRider(%s): %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("IsRider(%s) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleCustomer, RoleRider, RoleAdmin} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	for _, r := range []Role{"", "superuser", Role(strings.ToUpper(string(RoleAdmin)))} {
		if r.Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}
