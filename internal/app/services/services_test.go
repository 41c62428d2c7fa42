package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/app/repositories/memory"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/helpers"
)

func ptr[T any](v T) *T { return &v }

func newTestServices(t *testing.T, opts ...memory.Option) (*Services, *repositories.Repositories) {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore(opts...))
	return NewServices(repos, AdminCredentials{}, nil, nil), repos
}

func seedLesson(t *testing.T, svc *Services, lessonID, slug string) *models.Lesson {
	t.Helper()
	l, err := svc.Lesson.CreateLesson(context.Background(), &models.Lesson{
		CourseID: "sql",
		WeekID:   1,
		LessonID: lessonID,
		Slug:     slug,
		Title:    "Lesson " + lessonID,
	})
	require.NoError(t, err)
	return l
}

func TestCreateCourse_DuplicateCourseID(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestServices(t)

	_, err := svc.Course.CreateCourse(ctx, &models.Course{CourseID: "sql", Title: "SQL", Slug: "sql"})
	require.NoError(t, err)

	_, err = svc.Course.CreateCourse(ctx, &models.Course{CourseID: "sql", Title: "Other", Slug: "other"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	courses, err := repos.CourseRepository.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "SQL", courses[0].Title)
}

func TestCreateCourse_Defaults(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	restore := helpers.Now
	helpers.Now = func() time.Time { return fixed }
	t.Cleanup(func() { helpers.Now = restore })

	svc, _ := newTestServices(t)
	c, err := svc.Course.CreateCourse(context.Background(), &models.Course{CourseID: "sql", Title: "SQL", Slug: "sql"})
	require.NoError(t, err)

	assert.Equal(t, []string{}, c.Tags)
	assert.Equal(t, fixed, c.CreatedAt)
	assert.Equal(t, fixed, c.UpdatedAt)
}

func TestCreateCourse_Validation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		course *models.Course
		field  string
	}{
		{"missing courseId", &models.Course{Title: "SQL", Slug: "sql"}, "courseId"},
		{"missing title", &models.Course{CourseID: "sql", Slug: "sql"}, "title"},
		{"missing slug", &models.Course{CourseID: "sql", Title: "SQL"}, "slug"},
		{"rating out of range", &models.Course{CourseID: "sql", Title: "SQL", Slug: "sql", Rating: 6}, "rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Course.CreateCourse(ctx, tt.course)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, tt.field, apperrors.Field(err))
		})
	}
}

func TestCreateLesson_RequiredFields(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestServices(t)

	full := func() *models.Lesson {
		return &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "l1", Slug: "intro", Title: "Intro"}
	}
	tests := []struct {
		name   string
		mutate func(l *models.Lesson)
		field  string
	}{
		{"courseId", func(l *models.Lesson) { l.CourseID = "" }, "courseId"},
		{"weekId", func(l *models.Lesson) { l.WeekID = 0 }, "weekId"},
		{"lessonId", func(l *models.Lesson) { l.LessonID = "" }, "lessonId"},
		{"slug", func(l *models.Lesson) { l.Slug = "" }, "slug"},
		{"title", func(l *models.Lesson) { l.Title = "" }, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := full()
			tt.mutate(l)
			_, err := svc.Lesson.CreateLesson(ctx, l)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, tt.field, apperrors.Field(err))
		})
	}

	n, err := repos.LessonRepository.Count(ctx, models.LessonFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateLesson_Conflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	seedLesson(t, svc, "l1", "intro")

	_, err := svc.Lesson.CreateLesson(ctx, &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "l1", Slug: "other", Title: "X"})
	assert.Equal(t, apperrors.ErrLessonAlreadyExists, err)

	_, err = svc.Lesson.CreateLesson(ctx, &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "l2", Slug: "intro", Title: "X"})
	assert.Equal(t, apperrors.ErrLessonSlugTaken, err)

	// same ids in another week are independent
	_, err = svc.Lesson.CreateLesson(ctx, &models.Lesson{CourseID: "sql", WeekID: 2, LessonID: "l1", Slug: "intro", Title: "X"})
	assert.NoError(t, err)
}

func TestUpdateLesson_TitleWritesName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	l := seedLesson(t, svc, "l1", "intro")

	_, err := svc.Lesson.UpdateLesson(ctx, l.Key(), models.LessonPatch{Title: ptr("Joins")})
	require.NoError(t, err)

	got, err := svc.Lesson.GetLesson(ctx, l.Key())
	require.NoError(t, err)
	assert.Equal(t, "Joins", got.Title)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "Joins", wire["name"])
	assert.Equal(t, "Joins", wire["title"])
}

func TestUpdateLesson_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	l := seedLesson(t, svc, "l1", "intro")

	patch := models.LessonPatch{
		Title:          ptr("Joins"),
		Content:        ptr("<p>inner and outer</p>"),
		AttachmentsSet: true,
		Attachments:    []models.Attachment{{URL: "/uploads/a.pdf", Name: "a.pdf", Type: "pdf"}},
	}
	once, err := svc.Lesson.UpdateLesson(ctx, l.Key(), patch)
	require.NoError(t, err)
	twice, err := svc.Lesson.UpdateLesson(ctx, l.Key(), patch)
	require.NoError(t, err)

	once.UpdatedAt, twice.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, once, twice)
}

func TestUpdateLesson_SlugTakenKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	seedLesson(t, svc, "a", "intro")
	b := seedLesson(t, svc, "b", "basics")

	_, err := svc.Lesson.UpdateLesson(ctx, b.Key(), models.LessonPatch{Slug: ptr("intro")})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, apperrors.ErrLessonSlugTaken, err)

	got, err := svc.Lesson.GetLesson(ctx, b.Key())
	require.NoError(t, err)
	assert.Equal(t, "basics", got.Slug)
}

func TestUpdateLesson_Rename(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	seedLesson(t, svc, "a", "intro")
	b := seedLesson(t, svc, "b", "basics")

	_, err := svc.Lesson.UpdateLesson(ctx, b.Key(), models.LessonPatch{LessonID: ptr("a")})
	assert.Equal(t, apperrors.ErrLessonAlreadyExists, err)

	renamed, err := svc.Lesson.UpdateLesson(ctx, b.Key(), models.LessonPatch{LessonID: ptr("c")})
	require.NoError(t, err)
	assert.Equal(t, "c", renamed.LessonID)

	_, err = svc.Lesson.GetLesson(ctx, b.Key())
	assert.Equal(t, apperrors.ErrLessonNotFound, err)
}

func TestUpdateLesson_NotFound(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Lesson.UpdateLesson(context.Background(),
		models.LessonKey{CourseID: "sql", WeekID: 1, LessonID: "missing"}, models.LessonPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestListWeeks_FilterByCourse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)

	for _, w := range []models.Week{
		{CourseID: "sql", WeekID: 1, Slug: "w1"},
		{CourseID: "sql", WeekID: 2, Slug: "w2"},
		{CourseID: "power-bi", WeekID: 1, Slug: "w1"},
	} {
		_, err := svc.Week.CreateWeek(ctx, &w)
		require.NoError(t, err)
	}

	weeks, err := svc.Week.ListWeeks(ctx, models.WeekFilter{CourseID: "sql"})
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	for _, w := range weeks {
		assert.Equal(t, "sql", w.CourseID)
	}
}

func TestCreateWeek_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	_, err := svc.Week.CreateWeek(ctx, &models.Week{CourseID: "sql", WeekID: 1, Slug: "w1"})
	require.NoError(t, err)

	_, err = svc.Week.CreateWeek(ctx, &models.Week{CourseID: "sql", WeekID: 1, Slug: "again"})
	assert.Equal(t, apperrors.ErrWeekAlreadyExists, err)

	_, err = svc.Week.CreateWeek(ctx, &models.Week{CourseID: "sql", WeekID: -1, Slug: "w"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func seedTree(t *testing.T, svc *Services) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Course.CreateCourse(ctx, &models.Course{CourseID: "sql", Title: "SQL", Slug: "sql"})
	require.NoError(t, err)
	for _, weekID := range []int{1, 2} {
		_, err := svc.Week.CreateWeek(ctx, &models.Week{CourseID: "sql", WeekID: weekID, Slug: models.DefaultWeekSlug(weekID)})
		require.NoError(t, err)
		for _, id := range []string{"a", "b"} {
			_, err := svc.Lesson.CreateLesson(ctx, &models.Lesson{CourseID: "sql", WeekID: weekID, LessonID: id, Slug: id, Title: id})
			require.NoError(t, err)
		}
	}
}

func TestDeleteCourse_DoesNotCascade(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	seedTree(t, svc)

	deleted, err := svc.Course.DeleteCourse(ctx, "sql")
	require.NoError(t, err)
	assert.Equal(t, "sql", deleted.CourseID)

	_, err = svc.Course.GetCourse(ctx, "sql")
	assert.Equal(t, apperrors.ErrCourseNotFound, err)

	weeks, err := svc.Week.ListWeeks(ctx, models.WeekFilter{CourseID: "sql"})
	require.NoError(t, err)
	assert.Len(t, weeks, 2)
}

func TestDeleteCourseTree(t *testing.T) {
	for _, tc := range []struct {
		name          string
		opts          []memory.Option
		transactional bool
	}{
		{"transactional", nil, true},
		{"sequential", []memory.Option{memory.WithoutTransactions()}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, repos := newTestServices(t, tc.opts...)
			seedTree(t, svc)

			report, err := svc.Cascade.DeleteCourseTree(ctx, "sql")
			require.NoError(t, err)
			assert.True(t, report.Complete())
			assert.Equal(t, tc.transactional, report.Transactional)
			assert.Equal(t, 2, report.WeeksDeleted)
			assert.Equal(t, 4, report.LessonsDeleted)
			require.NotNil(t, report.Course)

			n, err := repos.LessonRepository.Count(ctx, models.LessonFilter{CourseID: "sql"})
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestDeleteCourseTree_Missing(t *testing.T) {
	svc, _ := newTestServices(t)
	_, err := svc.Cascade.DeleteCourseTree(context.Background(), "nope")
	assert.Equal(t, apperrors.ErrCourseNotFound, err)
}

// failingWeeks fails every bulk delete
type failingWeeks struct {
	repositories.WeekRepository
}

func (failingWeeks) DeleteMany(context.Context, models.WeekFilter) (int, error) {
	return 0, errors.New("connection reset")
}

func TestDeleteCourseTree_Failure(t *testing.T) {
	t.Run("transaction rolls back", func(t *testing.T) {
		ctx := context.Background()
		svc, repos := newTestServices(t)
		seedTree(t, svc)
		repos.WeekRepository = failingWeeks{repos.WeekRepository}
		cascade := NewCascadeService(repos)

		report, err := cascade.DeleteCourseTree(ctx, "sql")
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		require.NotNil(t, report)
		assert.False(t, report.Complete())
		assert.Zero(t, report.LessonsDeleted)

		n, err := repos.LessonRepository.Count(ctx, models.LessonFilter{CourseID: "sql"})
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("sequential stops at first failure", func(t *testing.T) {
		ctx := context.Background()
		svc, repos := newTestServices(t, memory.WithoutTransactions())
		seedTree(t, svc)
		repos.WeekRepository = failingWeeks{repos.WeekRepository}
		cascade := NewCascadeService(repos)

		report, err := cascade.DeleteCourseTree(ctx, "sql")
		require.Error(t, err)
		var ce *apperrors.CustomError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, report, ce.Details["report"])

		assert.Equal(t, 4, report.LessonsDeleted)
		assert.Zero(t, report.WeeksDeleted)
		assert.Nil(t, report.Course)
		require.Len(t, report.Failures, 1)
		assert.Contains(t, report.Failures[0], "delete weeks")

		// the course is still there
		_, err = repos.CourseRepository.Get(ctx, "sql")
		assert.NoError(t, err)
	})
}

func TestDeleteWeekTree(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestServices(t)
	seedTree(t, svc)

	report, err := svc.Cascade.DeleteWeekTree(ctx, "sql", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, report.LessonsDeleted)
	assert.Equal(t, 1, report.WeeksDeleted)

	n, err := repos.LessonRepository.Count(ctx, models.LessonFilter{CourseID: "sql"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.Cascade.DeleteWeekTree(ctx, "sql", 1)
	assert.Equal(t, apperrors.ErrWeekNotFound, err)
}

func TestReconcileCourse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	seedTree(t, svc)

	report, err := svc.Reconcile.ReconcileCourse(ctx, "sql")
	require.NoError(t, err)
	assert.True(t, report.Changed)
	assert.Equal(t, 2, report.WeekCount)

	course, err := svc.Course.GetCourse(ctx, "sql")
	require.NoError(t, err)
	assert.Equal(t, 2, course.WeekCount)

	week, err := svc.Week.GetWeek(ctx, "sql", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, week.LessonCount)
	assert.Equal(t, []models.LessonRef{{ID: "a", Title: "a"}, {ID: "b", Title: "b"}}, week.LessonList)

	again, err := svc.Reconcile.ReconcileCourse(ctx, "sql")
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestReconcileWeek(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestServices(t)
	seedTree(t, svc)

	_, err := svc.Lesson.DeleteLesson(ctx, models.LessonKey{CourseID: "sql", WeekID: 2, LessonID: "a"})
	require.NoError(t, err)

	week, err := svc.Reconcile.ReconcileWeek(ctx, "sql", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, week.LessonCount)
	assert.Equal(t, []models.LessonRef{{ID: "b", Title: "b"}}, week.LessonList)

	_, err = svc.Reconcile.ReconcileWeek(ctx, "sql", 9)
	assert.Equal(t, apperrors.ErrWeekNotFound, err)
}

func TestAdminLogin(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", SessionExp: time.Hour, TokenIssuer: "test"})
	svc := NewAdminAuthService("admin", hash, jwtService)
	ctx := context.Background()

	session, err := svc.Login(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)

	claims, err := svc.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)
	_, err = svc.Login(ctx, "root", "s3cret")
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)

	_, err = svc.Validate("garbage")
	assert.Equal(t, apperrors.ErrTokenInvalid, err)
}

func TestAdminLogin_NoHashConfigured(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", SessionExp: time.Hour})
	svc := NewAdminAuthService("admin", "", jwtService)

	_, err := svc.Login(context.Background(), "admin", "")
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)
}
