package services

import (
	"context"
	"fmt"
	"time"

	"queens/internal/apperrors"
	"queens/internal/metrics"
	"queens/internal/models"
	"queens/internal/repositories"
	"queens/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// JournalService handles journal entries and their emotion annotations.
type JournalService struct {
	journalRepo repositories.JournalRepository
	userRepo    repositories.UserRepository
	analyzer    EmotionAnalyzer
	publisher   JournalPublisher // nil when no broker is configured
	metrics     metrics.Recorder
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	journalRepo repositories.JournalRepository,
	userRepo repositories.UserRepository,
	analyzer EmotionAnalyzer,
	publisher JournalPublisher,
	rec metrics.Recorder,
	log logrus.FieldLogger,
) *JournalService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &JournalService{
		journalRepo: journalRepo,
		userRepo:    userRepo,
		analyzer:    analyzer,
		publisher:   publisher,
		metrics:     rec,
		log:         log,
		now:         time.Now,
	}
}

// CreateJournal stores an entry owned by the caller and announces it.
func (s *JournalService) CreateJournal(ctx context.Context, caller string, req *models.JournalCreateRequest) (*models.Journal, error) {
	owner, err := s.userRepo.GetByEmail(ctx, normalizeEmail(caller))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := req.Date
	if date == "" {
		date = now.Format(models.JournalDateLayout)
	}
	journal := &models.Journal{
		ID:          uuid.New().String(),
		Email:       owner.Email,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		BgColor:     req.BgColor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.journalRepo.Create(ctx, journal); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		evt := rabbitmq.JournalCreated{JournalID: journal.ID, Email: journal.Email}
		if err := s.publisher.PublishJournalCreated(ctx, evt); err != nil {
			// The entry is stored; annotation can still be set through the API.
			s.log.WithError(err).WithField("journal_id", journal.ID).Warn("failed to publish journal.created")
		}
	}
	return journal, nil
}

// GetJournal returns one of the caller's entries.
func (s *JournalService) GetJournal(ctx context.Context, caller, id string) (*models.Journal, error) {
	journal, err := s.journalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if journal.Email != normalizeEmail(caller) {
		return nil, apperrors.Unauthorized("you may only read your own journals")
	}
	return journal, nil
}

// ListJournals returns a page of a user's entries, newest first.
func (s *JournalService) ListJournals(ctx context.Context, caller, email string, skip, limit int) ([]models.Journal, error) {
	email = normalizeEmail(email)
	if email != normalizeEmail(caller) {
		return nil, apperrors.Unauthorized("you may only read your own journals")
	}
	return s.journalRepo.ListByEmail(ctx, email, skip, limit)
}

// DeleteJournal removes one of the caller's entries.
func (s *JournalService) DeleteJournal(ctx context.Context, caller, id string) error {
	if _, err := s.GetJournal(ctx, caller, id); err != nil {
		return err
	}
	return s.journalRepo.Delete(ctx, id)
}

// UpdateEmotionAnalysis sets the annotation of one of the caller's entries.
func (s *JournalService) UpdateEmotionAnalysis(ctx context.Context, caller, id string, analysis *models.EmotionAnalysis) (*models.Journal, error) {
	journal, err := s.GetJournal(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if analysis.EntryID == "" {
		analysis.EntryID = journal.ID
	}
	if analysis.Timestamp.IsZero() {
		analysis.Timestamp = s.now().UTC()
	}
	if err := s.journalRepo.UpdateEmotionAnalysis(ctx, id, analysis); err != nil {
		return nil, fmt.Errorf("failed to update emotion analysis: %w", err)
	}
	journal.EmotionAnalysis = analysis
	return journal, nil
}

// AnalyzeText classifies free text without storing anything.
func (s *JournalService) AnalyzeText(ctx context.Context, content string) (*models.EmotionAnalysis, error) {
	analysis, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		s.metrics.RecordCollaboratorFailure("emotion")
		return nil, err
	}
	analysis.EntryID = uuid.New().String()
	s.log.WithField("dominant_emotion", analysis.DominantEmotion).Info("analyzed journal text")
	return analysis, nil
}

// AnnotateJournal handles a journal.created event by classifying the entry.
// Entries that already carry an annotation are left alone.
func (s *JournalService) AnnotateJournal(ctx context.Context, evt rabbitmq.JournalCreated) error {
	journal, err := s.journalRepo.GetByID(ctx, evt.JournalID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			s.log.WithField("journal_id", evt.JournalID).Info("journal deleted before annotation")
			return nil
		}
		return err
	}
	if journal.EmotionAnalysis != nil {
		return nil
	}

	analysis, err := s.analyzer.Analyze(ctx, journal.Description)
	if err != nil {
		s.metrics.RecordCollaboratorFailure("emotion")
		s.metrics.RecordJournalAnnotated(false)
		return err
	}
	analysis.EntryID = journal.ID
	if err := s.journalRepo.UpdateEmotionAnalysis(ctx, journal.ID, analysis); err != nil {
		s.metrics.RecordJournalAnnotated(false)
		return err
	}

	s.metrics.RecordJournalAnnotated(true)
	s.log.WithFields(logrus.Fields{
		"journal_id":       journal.ID,
		"dominant_emotion": analysis.DominantEmotion,
	}).Info("journal annotated")
	return nil
}

// GetInsights aggregates the emotion annotations of a user's entries.
// The email defaults to the caller.
func (s *JournalService) GetInsights(ctx context.Context, caller string, q *models.InsightsQuery) (*models.JournalInsights, error) {
	email := normalizeEmail(q.Email)
	if email == "" {
		email = normalizeEmail(caller)
	}
	if email != normalizeEmail(caller) {
		return nil, apperrors.Unauthorized("you may only read your own journals")
	}

	start, err := parseJournalDate(q.Start, "start")
	if err != nil {
		return nil, err
	}
	end, err := parseJournalDate(q.End, "end")
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, apperrors.Validation("end must not be before start", map[string]string{"end": "before start"})
	}

	journals, err := s.journalRepo.ListByEmail(ctx, email, 0, -1)
	if err != nil {
		return nil, err
	}
	return BuildInsights(journals, start, end), nil
}

func parseJournalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(models.JournalDateLayout, value)
	if err != nil {
		return nil, apperrors.Validation("dates must use MM-DD-YYYY", map[string]string{field: "format MM-DD-YYYY"})
	}
	return &t, nil
}
