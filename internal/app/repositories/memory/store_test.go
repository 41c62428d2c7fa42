package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/dberrors"
)

func ptr[T any](v T) *T { return &v }

func TestCourseUniqueKey(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewStore())

	require.NoError(t, repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql", Title: "SQL"}))
	err := repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql", Title: "Again"})

	assert.True(t, dberrors.IsDuplicateKey(err))
	field, ok := repositories.DuplicateField(err)
	require.True(t, ok)
	assert.Equal(t, "courseId", field)

	c, err := repos.CourseRepository.Get(ctx, "sql")
	require.NoError(t, err)
	assert.Equal(t, "SQL", c.Title)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewStore())
	require.NoError(t, repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql", Tags: []string{"db"}}))

	c, err := repos.CourseRepository.Get(ctx, "sql")
	require.NoError(t, err)
	c.Tags[0] = "mutated"

	again, err := repos.CourseRepository.Get(ctx, "sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"db"}, again.Tags)
}

func TestLessonSlugAndRenameConflicts(t *testing.T) {
	ctx := context.Background()
	lessons := NewRepositories(NewStore()).LessonRepository

	require.NoError(t, lessons.Create(ctx, &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "a", Slug: "intro"}))
	require.NoError(t, lessons.Create(ctx, &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "b", Slug: "basics"}))

	err := lessons.Create(ctx, &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "c", Slug: "intro"})
	field, _ := repositories.DuplicateField(err)
	assert.Equal(t, "slug", field)

	// same slug in another week is fine
	require.NoError(t, lessons.Create(ctx, &models.Lesson{CourseID: "sql", WeekID: 2, LessonID: "a", Slug: "intro"}))

	keyB := models.LessonKey{CourseID: "sql", WeekID: 1, LessonID: "b"}
	_, err = lessons.Update(ctx, keyB, models.LessonPatch{Slug: ptr("intro")})
	field, _ = repositories.DuplicateField(err)
	assert.Equal(t, "slug", field)

	_, err = lessons.Update(ctx, keyB, models.LessonPatch{LessonID: ptr("a")})
	field, _ = repositories.DuplicateField(err)
	assert.Equal(t, "lessonId", field)

	b, err := lessons.Get(ctx, keyB)
	require.NoError(t, err)
	assert.Equal(t, "basics", b.Slug)

	renamed, err := lessons.Update(ctx, keyB, models.LessonPatch{LessonID: ptr("b2"), Slug: ptr("basics-2")})
	require.NoError(t, err)
	assert.Equal(t, "b2", renamed.LessonID)

	_, err = lessons.Get(ctx, keyB)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// the old slug is free again
	require.NoError(t, lessons.Create(ctx, &models.Lesson{CourseID: "sql", WeekID: 1, LessonID: "d", Slug: "basics"}))
}

func TestDeleteManyAndCount(t *testing.T) {
	ctx := context.Background()
	weeks := NewRepositories(NewStore()).WeekRepository

	for _, w := range []models.Week{{CourseID: "sql", WeekID: 1}, {CourseID: "sql", WeekID: 2}, {CourseID: "power-bi", WeekID: 1}} {
		w := w
		require.NoError(t, weeks.Create(ctx, &w))
	}

	n, err := weeks.Count(ctx, models.WeekFilter{CourseID: "sql"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = weeks.DeleteMany(ctx, models.WeekFilter{CourseID: "sql"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rest, err := weeks.List(ctx, models.WeekFilter{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "power-bi", rest[0].CourseID)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositories(store)
	require.NoError(t, repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql"}))

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := repos.CourseRepository.Delete(ctx, "sql"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := repos.CourseRepository.Exists(ctx, "sql")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRollbackKeepsWritesFromOutsideTheTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositories(store)
	require.NoError(t, repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql"}))

	done := make(chan error, 1)
	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := repos.CourseRepository.Delete(txCtx, "sql"); err != nil {
			return err
		}
		go func() {
			done <- repos.CourseRepository.Create(ctx, &models.Course{CourseID: "power-bi"})
		}()
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	for _, id := range []string{"sql", "power-bi"} {
		exists, err := repos.CourseRepository.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists, id)
	}
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositories(store)

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, store.WithTransaction(ctx, func(ctx context.Context) error {
			return repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql"})
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := repos.CourseRepository.Exists(ctx, "sql")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithoutTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(WithoutTransactions())
	repos := NewRepositories(store)
	require.NoError(t, repos.CourseRepository.Create(ctx, &models.Course{CourseID: "sql"}))

	assert.False(t, store.SupportsTransactions(ctx))
	_ = store.WithTransaction(ctx, func(ctx context.Context) error {
		_, _ = repos.CourseRepository.Delete(ctx, "sql")
		return errors.New("boom")
	})

	exists, err := repos.CourseRepository.Exists(ctx, "sql")
	require.NoError(t, err)
	assert.False(t, exists)
}
