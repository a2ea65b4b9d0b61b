package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderDetails(ctx context.Context, authProvider, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, authProvider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserContact(ctx context.Context, userID, email, phone, updatedBy string) error {
	args := m.Called(ctx, userID, email, phone, updatedBy)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureRole(ctx context.Context, role domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockUserRepository) AssignRole(ctx context.Context, userID string, role domain.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockUserRepository) FindRolesForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

// --- Mock ClaimRepository (for failure injection) ---
type MockClaimRepository struct {
	mock.Mock
}

var _ portsrepo.ClaimRepositoryFacade = (*MockClaimRepository)(nil)

func (m *MockClaimRepository) FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindClaimsByLecturer(ctx context.Context, lecturerID string) ([]domain.Claim, error) {
	args := m.Called(ctx, lecturerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindClaimsByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) ListClaims(ctx context.Context, filter domain.ClaimFilter) (*domain.ClaimPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimPage), args.Error(1)
}

func (m *MockClaimRepository) ExistsForLecturerOnDay(ctx context.Context, lecturerID string, day time.Time) (bool, error) {
	args := m.Called(ctx, lecturerID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockClaimRepository) CreateClaim(ctx context.Context, claim domain.Claim, docs []domain.SupportingDocument) error {
	args := m.Called(ctx, claim, docs)
	return args.Error(0)
}

func (m *MockClaimRepository) UpdateClaimReview(ctx context.Context, claim domain.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) UpdatePendingClaim(ctx context.Context, claim domain.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) DeleteClaim(ctx context.Context, claimID string) ([]domain.SupportingDocument, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupportingDocument), args.Error(1)
}

func (m *MockClaimRepository) FindDocumentsByClaim(ctx context.Context, claimID string) ([]domain.SupportingDocument, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupportingDocument), args.Error(1)
}

func (m *MockClaimRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.SupportingDocument, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportingDocument), args.Error(1)
}

// --- Fake identity provider ---

type fakeIdentity struct {
	mu          sync.Mutex
	principals  map[string]domain.Principal
	invalidated []string
}

var _ portssvc.IdentitySvc = (*fakeIdentity)(nil)

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{principals: map[string]domain.Principal{}}
}

func (f *fakeIdentity) add(userID, name string, roles ...domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.principals[userID] = domain.Principal{UserID: userID, Name: name, Roles: roles}
}

func (f *fakeIdentity) ResolvePrincipal(_ context.Context, userID string) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.principals[userID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown user %s", apperrors.ErrUnauthorizedPrincipal, userID)
	}
	return &p, nil
}

func (f *fakeIdentity) HasRole(p domain.Principal, role domain.Role) bool { return p.HasRole(role) }

func (f *fakeIdentity) Landing(p domain.Principal) string {
	return domain.DefaultLandingTable.Landing(p)
}

func (f *fakeIdentity) Invalidate(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, userID)
}

// --- In-memory claim repository ---

// memoryClaimRepository mirrors the conditional updates of the Postgres repository.
type memoryClaimRepository struct {
	mu     sync.Mutex
	claims map[string]domain.Claim
	docs   map[string][]domain.SupportingDocument
}

var _ portsrepo.ClaimRepositoryFacade = (*memoryClaimRepository)(nil)

func newMemoryClaimRepository() *memoryClaimRepository {
	return &memoryClaimRepository{
		claims: map[string]domain.Claim{},
		docs:   map[string][]domain.SupportingDocument{},
	}
}

func (r *memoryClaimRepository) withDocs(c domain.Claim) domain.Claim {
	c.Documents = append([]domain.SupportingDocument{}, r.docs[c.ClaimID]...)
	return c
}

func (r *memoryClaimRepository) FindClaimByID(_ context.Context, claimID string) (*domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[claimID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c = r.withDocs(c)
	return &c, nil
}

func (r *memoryClaimRepository) sorted(keep func(domain.Claim) bool, oldestFirst bool) []domain.Claim {
	out := []domain.Claim{}
	for _, c := range r.claims {
		if keep(c) {
			out = append(out, r.withDocs(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if oldestFirst {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

func (r *memoryClaimRepository) FindClaimsByLecturer(_ context.Context, lecturerID string) ([]domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(c domain.Claim) bool { return c.LecturerID == lecturerID }, false), nil
}

func (r *memoryClaimRepository) FindClaimsByStatus(_ context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(c domain.Claim) bool { return c.Status == status }, false), nil
}

func (r *memoryClaimRepository) ListClaims(_ context.Context, filter domain.ClaimFilter) (*domain.ClaimPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claims := r.sorted(func(c domain.Claim) bool {
		if filter.Status != nil && c.Status != *filter.Status {
			return false
		}
		return filter.LecturerID == "" || c.LecturerID == filter.LecturerID
	}, filter.OldestFirst)
	if filter.Limit > 0 && len(claims) > filter.Limit {
		claims = claims[:filter.Limit]
	}
	return &domain.ClaimPage{Claims: claims}, nil
}

func (r *memoryClaimRepository) ExistsForLecturerOnDay(_ context.Context, lecturerID string, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if c.LecturerID == lecturerID && c.SubmissionDay.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryClaimRepository) CreateClaim(_ context.Context, claim domain.Claim, docs []domain.SupportingDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if c.LecturerID == claim.LecturerID && c.SubmissionDay.Equal(claim.SubmissionDay) {
			return apperrors.ErrDuplicateSubmission
		}
	}
	claim.Documents = nil
	r.claims[claim.ClaimID] = claim
	r.docs[claim.ClaimID] = append([]domain.SupportingDocument{}, docs...)
	return nil
}

func (r *memoryClaimRepository) UpdateClaimReview(_ context.Context, claim domain.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.claims[claim.ClaimID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Status != domain.ClaimStatusPending {
		return apperrors.ErrInvalidStateTransition
	}
	current.Status = claim.Status
	current.ReviewerID = claim.ReviewerID
	current.ReviewedAt = claim.ReviewedAt
	current.RejectionReason = claim.RejectionReason
	current.LastUpdatedAt = claim.LastUpdatedAt
	r.claims[claim.ClaimID] = current
	return nil
}

func (r *memoryClaimRepository) UpdatePendingClaim(_ context.Context, claim domain.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.claims[claim.ClaimID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Status != domain.ClaimStatusPending {
		return apperrors.ErrInvalidStateTransition
	}
	current.HoursWorked = claim.HoursWorked
	current.HourlyRate = claim.HourlyRate
	current.TotalAmount = claim.TotalAmount
	current.Notes = claim.Notes
	current.LastUpdatedAt = claim.LastUpdatedAt
	r.claims[claim.ClaimID] = current
	return nil
}

func (r *memoryClaimRepository) DeleteClaim(_ context.Context, claimID string) ([]domain.SupportingDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.claims[claimID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if current.Status != domain.ClaimStatusPending {
		return nil, apperrors.ErrInvalidStateTransition
	}
	docs := r.docs[claimID]
	delete(r.claims, claimID)
	delete(r.docs, claimID)
	return docs, nil
}

func (r *memoryClaimRepository) FindDocumentsByClaim(_ context.Context, claimID string) ([]domain.SupportingDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SupportingDocument{}, r.docs[claimID]...), nil
}

func (r *memoryClaimRepository) FindDocumentByID(_ context.Context, documentID string) (*domain.SupportingDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, docs := range r.docs {
		for _, d := range docs {
			if d.DocumentID == documentID {
				d := d
				return &d, nil
			}
		}
	}
	return nil, apperrors.ErrNotFound
}

// --- In-memory document store ---

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
	// failOn makes Save fail for a file with this name.
	failOn string
}

var _ portsrepo.DocumentStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Save(_ context.Context, r io.Reader, originalName string, maxBytes int64) (portsrepo.StoredObject, error) {
	if s.failOn != "" && originalName == s.failOn {
		return portsrepo.StoredObject{}, fmt.Errorf("%w: %s could not be stored", apperrors.ErrFileRejected, originalName)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return portsrepo.StoredObject{}, err
	}
	if int64(len(data)) > maxBytes {
		return portsrepo.StoredObject{}, apperrors.ErrFileRejected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	ref := fmt.Sprintf("obj-%d-%s", s.seq, strings.ToLower(originalName))
	s.objects[ref] = data
	return portsrepo.StoredObject{Reference: ref, ContentType: "application/octet-stream", SizeBytes: int64(len(data))}, nil
}

func (s *memoryStore) Open(_ context.Context, reference string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[reference]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Delete(_ context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, reference)
	return nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
