package services_test

import (
	"context"
	"time"

	"queens/internal/identity"
	"queens/internal/models"
	"queens/pkg/rabbitmq"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, email string, patch *models.User, fields []string) error {
	args := m.Called(ctx, email, patch, fields)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateAssignments(ctx context.Context, email string, assignments []models.Assignment) error {
	args := m.Called(ctx, email, assignments)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockJournalRepository is a mock implementation of repositories.JournalRepository
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, journal *models.Journal) error {
	args := m.Called(ctx, journal)
	return args.Error(0)
}

func (m *MockJournalRepository) GetByID(ctx context.Context, id string) (*models.Journal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Journal), args.Error(1)
}

func (m *MockJournalRepository) ListByEmail(ctx context.Context, email string, skip, limit int) ([]models.Journal, error) {
	args := m.Called(ctx, email, skip, limit)
	return args.Get(0).([]models.Journal), args.Error(1)
}

func (m *MockJournalRepository) UpdateEmotionAnalysis(ctx context.Context, id string, analysis *models.EmotionAnalysis) error {
	args := m.Called(ctx, id, analysis)
	return args.Error(0)
}

func (m *MockJournalRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOfferRepository is a mock implementation of repositories.OfferRepository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListActive(ctx context.Context, now time.Time, skill string, skip, limit int) ([]models.Offer, error) {
	args := m.Called(ctx, now, skill, skip, limit)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *MockOfferRepository) Update(ctx context.Context, offer *models.Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGateway is a mock implementation of identity.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Register(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Authenticate(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, token string) (*identity.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockGateway) Remove(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockCompleter is a mock LLM.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Model() string {
	return "test-model"
}

// MockAnalyzer is a mock emotion classifier.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (*models.EmotionAnalysis, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmotionAnalysis), args.Error(1)
}

// MockAssignmentSource is a mock Canvas client.
type MockAssignmentSource struct {
	mock.Mock
}

func (m *MockAssignmentSource) UpcomingAssignments(ctx context.Context, token string) ([]models.Assignment, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Assignment), args.Error(1)
}

// MockPublisher records published journal events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJournalCreated(ctx context.Context, evt rabbitmq.JournalCreated) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}
