package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/logger"
	"github.com/yigit/academy/internal/pkg/tracing"
)

// CascadeReport describes what a tree delete removed.
// Without transactions a failure leaves the report partial and Failures
// names the step that stopped it.
type CascadeReport struct {
	CourseID       string         `json:"courseId"`
	WeekID         int            `json:"weekId,omitempty"`
	Course         *models.Course `json:"course,omitempty"`
	Week           *models.Week   `json:"week,omitempty"`
	WeeksDeleted   int            `json:"weeksDeleted"`
	LessonsDeleted int            `json:"lessonsDeleted"`
	Failures       []string       `json:"failures,omitempty"`
	Transactional  bool           `json:"transactional"`
}

// Complete reports whether every step succeeded
func (r *CascadeReport) Complete() bool {
	return len(r.Failures) == 0
}

// CascadeService deletes a course or week together with its children
type CascadeService interface {
	DeleteCourseTree(ctx context.Context, courseID string) (*CascadeReport, error)
	DeleteWeekTree(ctx context.Context, courseID string, weekID int) (*CascadeReport, error)
}

type cascadeServiceImpl struct {
	repos *repositories.Repositories
}

// NewCascadeService creates a new cascade service instance
func NewCascadeService(repos *repositories.Repositories) CascadeService {
	return &cascadeServiceImpl{repos: repos}
}

// step is one delete of a tree removal
type step struct {
	name string
	run  func(ctx context.Context) error
}

// execute runs steps in one transaction when the store has them, otherwise
// in order until the first failure. Children always go before parents, so a
// partial run never orphans anything it did not already delete.
func (s *cascadeServiceImpl) execute(ctx context.Context, report *CascadeReport, steps []step) error {
	if s.repos.Transactor.SupportsTransactions(ctx) {
		report.Transactional = true
		snapshot := *report
		err := s.repos.Transactor.WithTransaction(ctx, func(ctx context.Context) error {
			for _, st := range steps {
				if err := st.run(ctx); err != nil {
					return fmt.Errorf("%s: %w", st.name, err)
				}
			}
			return nil
		})
		if err != nil {
			// rolled back: nothing was deleted
			*report = snapshot
			report.Failures = []string{err.Error()}
		}
		return err
	}

	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", st.name, err))
			return fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return nil
}

func (s *cascadeServiceImpl) fail(op string, report *CascadeReport, err error) error {
	if apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return err
	}
	logger.Error().Err(err).Interface("report", report).Msg("Cascade delete incomplete")
	ce := apperrors.NewStoreError(op, err).(*apperrors.CustomError)
	return ce.WithDetails(map[string]interface{}{"report": report})
}

// DeleteCourseTree removes a course's lessons, then its weeks, then the course
func (s *cascadeServiceImpl) DeleteCourseTree(ctx context.Context, courseID string) (*CascadeReport, error) {
	if err := requireString("courseId", courseID); err != nil {
		return nil, err
	}
	ctx, span := tracing.Start(ctx, "CascadeService.DeleteCourseTree", attribute.String("courseId", courseID))
	defer span.End()

	exists, err := s.repos.CourseRepository.Exists(ctx, courseID)
	if err != nil {
		return nil, storeError("check course", err)
	}
	if !exists {
		return nil, apperrors.ErrCourseNotFound
	}

	report := &CascadeReport{CourseID: courseID}
	err = s.execute(ctx, report, []step{
		{"delete lessons", func(ctx context.Context) error {
			n, err := s.repos.LessonRepository.DeleteMany(ctx, models.LessonFilter{CourseID: courseID})
			report.LessonsDeleted = n
			return err
		}},
		{"delete weeks", func(ctx context.Context) error {
			n, err := s.repos.WeekRepository.DeleteMany(ctx, models.WeekFilter{CourseID: courseID})
			report.WeeksDeleted = n
			return err
		}},
		{"delete course", func(ctx context.Context) error {
			c, err := s.repos.CourseRepository.Delete(ctx, courseID)
			if err != nil {
				return mapRepoError("delete course", err, apperrors.ErrCourseNotFound, courseConflict)
			}
			report.Course = c
			return nil
		}},
	})

	span.SetAttributes(
		attribute.Int("weeksDeleted", report.WeeksDeleted),
		attribute.Int("lessonsDeleted", report.LessonsDeleted),
		attribute.Bool("transactional", report.Transactional),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cascade incomplete")
		return report, s.fail("delete course tree", report, err)
	}

	logger.Info().
		Str("courseId", courseID).
		Int("weeksDeleted", report.WeeksDeleted).
		Int("lessonsDeleted", report.LessonsDeleted).
		Bool("transactional", report.Transactional).
		Msg("Course tree deleted")
	return report, nil
}

// DeleteWeekTree removes a week's lessons, then the week
func (s *cascadeServiceImpl) DeleteWeekTree(ctx context.Context, courseID string, weekID int) (*CascadeReport, error) {
	if err := validateWeekKey(courseID, weekID); err != nil {
		return nil, err
	}
	ctx, span := tracing.Start(ctx, "CascadeService.DeleteWeekTree",
		attribute.String("courseId", courseID), attribute.Int("weekId", weekID))
	defer span.End()

	exists, err := s.repos.WeekRepository.Exists(ctx, courseID, weekID)
	if err != nil {
		return nil, storeError("check week", err)
	}
	if !exists {
		return nil, apperrors.ErrWeekNotFound
	}

	report := &CascadeReport{CourseID: courseID, WeekID: weekID}
	err = s.execute(ctx, report, []step{
		{"delete lessons", func(ctx context.Context) error {
			n, err := s.repos.LessonRepository.DeleteMany(ctx, inWeek(courseID, weekID))
			report.LessonsDeleted = n
			return err
		}},
		{"delete week", func(ctx context.Context) error {
			w, err := s.repos.WeekRepository.Delete(ctx, courseID, weekID)
			if err != nil {
				return mapRepoError("delete week", err, apperrors.ErrWeekNotFound, weekConflict)
			}
			report.Week = w
			report.WeeksDeleted = 1
			return nil
		}},
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cascade incomplete")
		return report, s.fail("delete week tree", report, err)
	}

	logger.Info().
		Str("courseId", courseID).
		Int("weekId", weekID).
		Int("lessonsDeleted", report.LessonsDeleted).
		Msg("Week tree deleted")
	return report, nil
}
