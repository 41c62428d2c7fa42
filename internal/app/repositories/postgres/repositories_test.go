package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
)

func TestTranslateConstraintViolations(t *testing.T) {
	for constraint, field := range constraintFields {
		t.Run(constraint, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: "23505", ConstraintName: constraint}
			got, ok := repositories.DuplicateField(translate(fmt.Errorf("insert: %w", pgErr)))
			require.True(t, ok)
			assert.Equal(t, field, got)
		})
	}

	got, ok := repositories.DuplicateField(translate(&pgconn.PgError{Code: "23505", ConstraintName: "other"}))
	require.True(t, ok)
	assert.Equal(t, "key", got)
}

func TestTranslatePassThrough(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(pgx.ErrNoRows), repositories.ErrNotFound)

	boom := errors.New("boom")
	assert.Equal(t, boom, translate(boom))
	assert.Equal(t, "23503", translate(&pgconn.PgError{Code: "23503"}).(*pgconn.PgError).Code)
}

func TestLessonListQuery(t *testing.T) {
	week := 1
	sql, args, err := psql().Select("doc").From(lessonsTable).
		Where(lessonWhere(models.LessonFilter{CourseID: "sql", WeekID: &week, Slug: "intro"})).
		OrderBy("course_id", "week_id", "created_at", "lesson_id").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT doc FROM lesson_contents WHERE course_id = $1 AND slug = $2 AND week_id = $3 ORDER BY course_id, week_id, created_at, lesson_id",
		sql)
	assert.Equal(t, []any{"sql", "intro", 1}, args)
}

func TestEmptyFiltersMatchEverything(t *testing.T) {
	sql, args, err := psql().Select("doc").From(coursesTable).Where(courseWhere(models.CourseFilter{})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT doc FROM courses WHERE (1=1)", sql)
	assert.Empty(t, args)

	sql, args, err = psql().Select("doc").From(coursesTable).Where(courseWhere(models.CourseFilter{Slug: "sql-course"})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT doc FROM courses WHERE (doc->>'slug' = $1)", sql)
	assert.Equal(t, []any{"sql-course"}, args)
}

func TestDeleteReturnsDocument(t *testing.T) {
	sql, args, err := psql().Delete(weeksTable).
		Where(weekWhere(models.WeekFilter{CourseID: "sql"})).
		Suffix("RETURNING doc").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM course_weeks WHERE course_id = $1 RETURNING doc", sql)
	assert.Equal(t, []any{"sql"}, args)
}
