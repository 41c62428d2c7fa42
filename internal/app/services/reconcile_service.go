package services

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/logger"
	"github.com/yigit/academy/internal/pkg/tracing"
)

// maxParallelWeeks bounds concurrent lesson scans during reconcile
const maxParallelWeeks = 4

// WeekCounts is the recomputed cache of one week
type WeekCounts struct {
	WeekID      int  `json:"weekId"`
	LessonCount int  `json:"lessonCount"`
	Changed     bool `json:"changed"`
}

// ReconcileReport lists the caches rewritten for a course
type ReconcileReport struct {
	CourseID  string       `json:"courseId"`
	WeekCount int          `json:"weekCount"`
	Changed   bool         `json:"changed"`
	Weeks     []WeekCounts `json:"weeks"`
}

// ReconcileService recomputes the stored counters from children
type ReconcileService interface {
	ReconcileCourse(ctx context.Context, courseID string) (*ReconcileReport, error)
	ReconcileWeek(ctx context.Context, courseID string, weekID int) (*models.Week, error)
}

type reconcileServiceImpl struct {
	repos *repositories.Repositories
}

// NewReconcileService creates a new reconcile service instance
func NewReconcileService(repos *repositories.Repositories) ReconcileService {
	return &reconcileServiceImpl{repos: repos}
}

// lessonRefs lists a week's lessons in display order
func (s *reconcileServiceImpl) lessonRefs(ctx context.Context, courseID string, weekID int) ([]models.LessonRef, error) {
	lessons, err := s.repos.LessonRepository.List(ctx, inWeek(courseID, weekID))
	if err != nil {
		return nil, err
	}
	refs := make([]models.LessonRef, 0, len(lessons))
	for _, l := range lessons {
		refs = append(refs, l.Ref())
	}
	return refs, nil
}

// syncWeek writes refs onto w when its cached values differ
func (s *reconcileServiceImpl) syncWeek(ctx context.Context, w models.Week, refs []models.LessonRef) (*models.Week, bool, error) {
	if w.LessonCount == len(refs) && slices.Equal(w.LessonList, refs) {
		return &w, false, nil
	}
	count := len(refs)
	updated, err := s.repos.WeekRepository.Update(ctx, w.CourseID, w.WeekID, models.WeekPatch{
		LessonCount: &count,
		LessonList:  &refs,
		UpdatedAt:   helpers.Now(),
	})
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// ReconcileWeek rewrites one week's lessonCount and lessonList
func (s *reconcileServiceImpl) ReconcileWeek(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	if err := validateWeekKey(courseID, weekID); err != nil {
		return nil, err
	}
	week, err := s.repos.WeekRepository.Get(ctx, courseID, weekID)
	if err != nil {
		return nil, mapRepoError("get week", err, apperrors.ErrWeekNotFound, weekConflict)
	}
	refs, err := s.lessonRefs(ctx, courseID, weekID)
	if err != nil {
		return nil, storeError("list lessons", err)
	}
	updated, _, err := s.syncWeek(ctx, *week, refs)
	if err != nil {
		return nil, mapRepoError("update week", err, apperrors.ErrWeekNotFound, weekConflict)
	}
	return updated, nil
}

// ReconcileCourse rewrites weekCount and every week's lesson caches.
// Weeks are scanned concurrently.
func (s *reconcileServiceImpl) ReconcileCourse(ctx context.Context, courseID string) (*ReconcileReport, error) {
	if err := requireString("courseId", courseID); err != nil {
		return nil, err
	}
	ctx, span := tracing.Start(ctx, "ReconcileService.ReconcileCourse", attribute.String("courseId", courseID))
	defer span.End()

	course, err := s.repos.CourseRepository.Get(ctx, courseID)
	if err != nil {
		return nil, mapRepoError("get course", err, apperrors.ErrCourseNotFound, courseConflict)
	}
	weeks, err := s.repos.WeekRepository.List(ctx, models.WeekFilter{CourseID: courseID})
	if err != nil {
		return nil, storeError("list weeks", err)
	}

	report := &ReconcileReport{
		CourseID:  courseID,
		WeekCount: len(weeks),
		Weeks:     make([]WeekCounts, len(weeks)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWeeks)
	for i, w := range weeks {
		g.Go(func() error {
			refs, err := s.lessonRefs(gctx, courseID, w.WeekID)
			if err != nil {
				return err
			}
			_, changed, err := s.syncWeek(gctx, w, refs)
			if err != nil {
				return err
			}
			report.Weeks[i] = WeekCounts{WeekID: w.WeekID, LessonCount: len(refs), Changed: changed}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, storeError("reconcile weeks", err)
	}

	if course.WeekCount != len(weeks) {
		count := len(weeks)
		if _, err := s.repos.CourseRepository.Update(ctx, courseID, models.CoursePatch{
			WeekCount: &count,
			UpdatedAt: helpers.Now(),
		}); err != nil {
			return nil, mapRepoError("update course", err, apperrors.ErrCourseNotFound, courseConflict)
		}
		report.Changed = true
	}
	for _, wc := range report.Weeks {
		report.Changed = report.Changed || wc.Changed
	}

	span.SetAttributes(attribute.Int("weekCount", report.WeekCount), attribute.Bool("changed", report.Changed))
	logger.Info().Str("courseId", courseID).Int("weekCount", report.WeekCount).Bool("changed", report.Changed).Msg("Course counters reconciled")
	return report, nil
}
