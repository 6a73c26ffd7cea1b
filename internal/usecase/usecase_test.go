package usecase_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/internal/repository/memory"
	"go-contact-review-backend/internal/usecase"
	"go-contact-review-backend/pkg/apperror"
	"go-contact-review-backend/pkg/logger"
	"go-contact-review-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// Mock Enrollers
type MockEnroller struct {
	mock.Mock
	target     domain.Target
	configured bool
}

func (m *MockEnroller) Target() domain.Target { return m.target }
func (m *MockEnroller) Configured() bool      { return m.configured }
func (m *MockEnroller) Enroll(ctx context.Context, contact *domain.Contact) bool {
	return m.Called(ctx, contact).Bool(0)
}

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

const sampleCSV = `name,email,What is your LinkedIn profile?,first_name,last_name
Ann Lee,ann@x.com,linkedin.com/in/ann?trk=1,,
,bad,,,
Bob Roy,bob@y.org,https://linkedin.com/in/bob,Bob,Roy
Carl,carl@invalid,linkedin.com/in/carl,,
`

func TestIngestCreatesSession(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewIngestUsecase(store, newValidator())

	result, err := uc.Ingest(context.Background(), "contacts.csv", []byte(sampleCSV))
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, 2, result.TotalContacts)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.SkippedReasons[domain.ErrMissingName.Error()])
	assert.Equal(t, 1, result.SkippedReasons[domain.ErrInvalidEmail.Error()])

	// Scenario from the source form export: tracking params stripped, scheme
	// enforced.
	require.Len(t, result.Contacts, 2)
	assert.Equal(t, "https://linkedin.com/in/ann", result.Contacts[0].LinkedInURL)
	assert.Equal(t, "Bob", result.Contacts[1].FirstName)

	session, err := store.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Len(t, session.Contacts, 2)
}

func TestIngestPreviewLimit(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewIngestUsecase(store, newValidator())

	csv := "name,email,What is your LinkedIn profile?\n"
	for i := 0; i < 8; i++ {
		csv += "Ann Lee,ann@x.com,linkedin.com/in/ann\n"
	}

	result, err := uc.Ingest(context.Background(), "many.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalContacts)
	assert.Len(t, result.Contacts, usecase.PreviewLimit)
}

func TestIngestRejectsNonCSVExtension(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewIngestUsecase(store, newValidator())

	_, err := uc.Ingest(context.Background(), "contacts.xlsx", []byte(sampleCSV))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
}

func TestIngestEmptyResult(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewIngestUsecase(store, newValidator())

	onlyInvalid := "name,email,What is your LinkedIn profile?\n,bad,\nX,,\n"
	_, err := uc.Ingest(context.Background(), "contacts.csv", []byte(onlyInvalid))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.ErrorIs(t, err, usecase.ErrNoValidContacts)

	// No session must leak into the store on the empty path.
	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestMalformedFile(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewIngestUsecase(store, newValidator())

	_, err := uc.Ingest(context.Background(), "broken.csv", []byte("name,email\n\"unterminated"))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Code)
	assert.ErrorIs(t, err, usecase.ErrMalformedFile)

	n, _ := store.Len(context.Background())
	assert.Zero(t, n)
}

func TestIngestMissingColumnsTreatedAsAbsent(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewIngestUsecase(store, newValidator())

	// No LinkedIn column at all: every row misses a required value, so the
	// file parses but yields the empty-result error rather than a parse one.
	_, err := uc.Ingest(context.Background(), "contacts.csv", []byte("name,email\nAnn,ann@x.com\n"))
	assert.ErrorIs(t, err, usecase.ErrNoValidContacts)
}

func seedSession(t *testing.T, store domain.SessionRepository) string {
	t.Helper()
	id, err := store.Create(context.Background(), []domain.Contact{
		{Name: "Ann Lee", Email: "ann@x.com", LinkedInURL: "https://linkedin.com/in/ann"},
		{Name: "Bob Roy", Email: "bob@y.org", LinkedInURL: "https://linkedin.com/in/bob"},
	})
	require.NoError(t, err)
	return id
}

func TestReviewSessionNotFound(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	uc := usecase.NewReviewUsecase(store)

	_, err := uc.Review(context.Background(), &domain.ReviewRequest{
		SessionID: "missing", AddToMailingList: true,
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestReviewIndexOutOfRange(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	id := seedSession(t, store)

	mailing := &MockEnroller{target: domain.TargetMailingList, configured: true}
	uc := usecase.NewReviewUsecase(store, mailing)

	_, err := uc.Review(context.Background(), &domain.ReviewRequest{
		SessionID: id, ContactIndex: 2, AddToMailingList: true,
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	// A rejected request must not touch the dispatch log.
	session, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, session.DispatchLog)
	mailing.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything)
}

func TestReviewMixedOutcomes(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	id := seedSession(t, store)

	// Mailing list unconfigured (fails closed, no call recorded via mock
	// return), CRM accepts.
	mailing := &MockEnroller{target: domain.TargetMailingList}
	mailing.On("Enroll", mock.Anything, mock.Anything).Return(false)
	crm := &MockEnroller{target: domain.TargetCRM, configured: true}
	crm.On("Enroll", mock.Anything, mock.Anything).Return(true)

	uc := usecase.NewReviewUsecase(store, mailing, crm)

	result, err := uc.Review(context.Background(), &domain.ReviewRequest{
		SessionID: id, ContactIndex: 0, AddToMailingList: true, AddToCRM: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.Equal(t, "Ann Lee", result.Contact.Name)
	assert.Equal(t, map[domain.Target]bool{
		domain.TargetMailingList: false,
		domain.TargetCRM:         true,
	}, result.Results)

	session, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, session.DispatchLog[0][domain.TargetMailingList])
	assert.True(t, session.DispatchLog[0][domain.TargetCRM])
}

func TestReviewOnlyRequestedTargets(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	id := seedSession(t, store)

	mailing := &MockEnroller{target: domain.TargetMailingList, configured: true}
	mailing.On("Enroll", mock.Anything, mock.Anything).Return(true)
	crm := &MockEnroller{target: domain.TargetCRM, configured: true}

	uc := usecase.NewReviewUsecase(store, mailing, crm)

	result, err := uc.Review(context.Background(), &domain.ReviewRequest{
		SessionID: id, ContactIndex: 0, AddToMailingList: true,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Results, domain.TargetMailingList)
	assert.NotContains(t, result.Results, domain.TargetCRM)
	crm.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything)
}

func TestReviewRedispatchOverwritesOnlyRequested(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	id := seedSession(t, store)

	mailing := &MockEnroller{target: domain.TargetMailingList, configured: true}
	mailing.On("Enroll", mock.Anything, mock.Anything).Return(true).Once()
	crm := &MockEnroller{target: domain.TargetCRM, configured: true}
	crm.On("Enroll", mock.Anything, mock.Anything).Return(false)

	uc := usecase.NewReviewUsecase(store, mailing, crm)
	ctx := context.Background()

	// First pass: mailing list only, succeeds.
	_, err := uc.Review(ctx, &domain.ReviewRequest{SessionID: id, ContactIndex: 0, AddToMailingList: true})
	require.NoError(t, err)

	// Second pass on the same contact: CRM only. The earlier mailing-list
	// outcome must stay untouched; CRM gets a fresh entry.
	_, err = uc.Review(ctx, &domain.ReviewRequest{SessionID: id, ContactIndex: 0, AddToCRM: true})
	require.NoError(t, err)

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, session.DispatchLog[0][domain.TargetMailingList])
	assert.False(t, session.DispatchLog[0][domain.TargetCRM])
	mailing.AssertNumberOfCalls(t, "Enroll", 1)
}

func TestReviewSequentialRedispatchLastWriteWins(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	id := seedSession(t, store)

	// There is deliberately no idempotence guard: two sequential dispatches
	// of the same (contact, target) both hit the remote and the second
	// outcome replaces the first in the log.
	mailing := &MockEnroller{target: domain.TargetMailingList, configured: true}
	mailing.On("Enroll", mock.Anything, mock.Anything).Return(true).Once()
	mailing.On("Enroll", mock.Anything, mock.Anything).Return(false).Once()

	uc := usecase.NewReviewUsecase(store, mailing)
	ctx := context.Background()
	req := &domain.ReviewRequest{SessionID: id, ContactIndex: 1, AddToMailingList: true}

	first, err := uc.Review(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Results[domain.TargetMailingList])

	second, err := uc.Review(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Results[domain.TargetMailingList])

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, session.DispatchLog[1][domain.TargetMailingList])
	mailing.AssertNumberOfCalls(t, "Enroll", 2)
}

func TestListContacts(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	id := seedSession(t, store)

	uc := usecase.NewReviewUsecase(store)

	listing, err := uc.ListContacts(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, listing.SessionID)
	assert.Equal(t, 2, listing.TotalContacts)
	assert.Len(t, listing.Contacts, 2)

	_, err = uc.ListContacts(context.Background(), "missing")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestHealthCheck(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()
	seedSession(t, store)

	uc := usecase.NewHealthUsecase(store, "memory", nil)
	status := uc.Check(context.Background())
	assert.Equal(t, "healthy", status["status"])
	assert.Equal(t, "memory", status["store"])
	assert.Equal(t, 1, status["sessions"])
}

func TestHealthCheckReportsBackendError(t *testing.T) {
	store := memory.NewSessionRepository(memory.Config{})
	defer store.Close()

	ping := func(context.Context) error { return errors.New("connection refused") }
	uc := usecase.NewHealthUsecase(store, "redis", ping)

	status := uc.Check(context.Background())
	assert.Equal(t, "degraded", status["status"])
	assert.Equal(t, "redis", status["store"])
	assert.Equal(t, "connection refused", status["store_error"])
}
