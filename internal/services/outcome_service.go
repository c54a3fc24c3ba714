package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quality-service/internal/events"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
)

// OutcomeService recomputes learning outcome achievement after exam grading.
type OutcomeService interface {
	RecomputeAchievements(ctx context.Context, examID uint, triggeredBy uint) error
}

type outcomeService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewOutcomeService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher) OutcomeService {
	return &outcomeService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
	}
}

// AchievementUpdate is one recomputed percentage for a learning outcome.
type AchievementUpdate struct {
	OutcomeID      uint    `json:"outcome_id"`
	AchievementPct float64 `json:"achievement_pct"`
}

// ComputeAchievements derives the achievement percentage of each outcome from
// the exam questions mapped to it:
//
//	pct = sum(avg student points) / sum(attainable points) * 100
//
// An ungraded question contributes 0 to the numerator but its points still
// count in the denominator. Outcomes with no mapped questions, or whose
// mapped questions carry zero total points, produce no update and keep their
// stored value. The result is intentionally not rounded; presentation layers
// format it.
func ComputeAchievements(outcomes []*models.LearningOutcome, questions []models.ExamQuestion) []AchievementUpdate {
	updates := make([]AchievementUpdate, 0, len(outcomes))

	for _, outcome := range outcomes {
		totalPoints := 0
		totalAvg := 0.0
		matched := false

		for _, q := range questions {
			if q.LearningOutcomeID == nil || *q.LearningOutcomeID != outcome.ID {
				continue
			}
			matched = true
			totalPoints += q.Points
			if q.AvgStudentPoints != nil {
				totalAvg += *q.AvgStudentPoints
			}
		}

		if !matched || totalPoints == 0 {
			continue
		}

		updates = append(updates, AchievementUpdate{
			OutcomeID:      outcome.ID,
			AchievementPct: totalAvg / float64(totalPoints) * 100,
		})
	}

	return updates
}

// RecomputeAchievements reloads the exam and rewrites the achievement of
// every course outcome that has questions mapped in it. Each outcome is
// persisted on its own; one failed write does not roll back the others.
func (s *outcomeService) RecomputeAchievements(ctx context.Context, examID uint, triggeredBy uint) error {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to load exam %d: %w", examID, err)
	}

	outcomes, err := s.repo.Course().FindCourseOutcomes(ctx, exam.CourseID)
	if err != nil {
		return fmt.Errorf("failed to load outcomes for course %d: %w", exam.CourseID, err)
	}
	if len(outcomes) == 0 {
		s.logger.Debug("No learning outcomes to recompute", "exam_id", examID, "course_id", exam.CourseID)
		return nil
	}

	updates := ComputeAchievements(outcomes, exam.Questions)

	updatedIDs := make([]uint, 0, len(updates))
	var firstErr error
	for _, update := range updates {
		if err := s.repo.Course().UpdateOutcomeAchievement(ctx, update.OutcomeID, update.AchievementPct); err != nil {
			s.logger.Error("Failed to persist outcome achievement",
				"outcome_id", update.OutcomeID,
				"exam_id", examID,
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		updatedIDs = append(updatedIDs, update.OutcomeID)
	}

	skippedIDs := make([]uint, 0)
	updated := make(map[uint]bool, len(updates))
	for _, u := range updates {
		updated[u.OutcomeID] = true
	}
	for _, outcome := range outcomes {
		if !updated[outcome.ID] {
			skippedIDs = append(skippedIDs, outcome.ID)
		}
	}

	s.logger.Info("Recomputed outcome achievements",
		"exam_id", examID,
		"course_id", exam.CourseID,
		"updated", len(updatedIDs),
		"skipped", len(skippedIDs))

	if len(updatedIDs) > 0 {
		event := events.NewAchievementsRecomputedEvent(examID, exam.CourseID, updatedIDs, skippedIDs, triggeredBy)
		if err := s.publisher.PublishQualityEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish achievement event", "exam_id", examID, "error", err)
		}
	}

	return firstErr
}
