// Package postgres implements the repositories on PostgreSQL. Each table
// keeps the business key in columns and the full document in a JSONB doc.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/db"
	"github.com/yigit/academy/internal/pkg/dberrors"
)

// Table names
const (
	coursesTable = "courses"
	weeksTable   = "course_weeks"
	lessonsTable = "lesson_contents"
)

// Unique constraint names from migrations/001_init.sql
const (
	ConstraintCourseID   = "uniq_course_id"
	ConstraintWeekKey    = "uniq_course_week"
	ConstraintLessonKey  = "uniq_course_week_lesson"
	ConstraintLessonSlug = "uniq_course_week_slug"
)

var constraintFields = map[string]string{
	ConstraintCourseID:   "courseId",
	ConstraintWeekKey:    "weekId",
	ConstraintLessonKey:  "lessonId",
	ConstraintLessonSlug: "slug",
}

// NewRepositories returns the repository set backed by pg.
func NewRepositories(pg *db.PostgresDB) *repositories.Repositories {
	return &repositories.Repositories{
		Driver:           "postgres",
		CourseRepository: &CourseRepository{db: pg},
		WeekRepository:   &WeekRepository{db: pg},
		LessonRepository: &LessonRepository{db: pg},
		Transactor:       pg,
		Pinger:           pg,
	}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	for constraint, field := range constraintFields {
		if dberrors.IsDuplicateConstraintError(err, constraint) {
			return repositories.NewDuplicateKeyError(field, err)
		}
	}
	if dberrors.IsDuplicateKey(err) {
		return repositories.NewDuplicateKeyError("key", err)
	}
	return err
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func encode(v any) (string, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(doc), nil
}

func queryDocs[T any](ctx context.Context, q db.Querier, b squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func queryDoc[T any](ctx context.Context, q db.Querier, sql string, args []any) (*T, error) {
	var raw []byte
	if err := q.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return nil, translate(err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &v, nil
}

func getDoc[T any](ctx context.Context, q db.Querier, table string, where squirrel.Eq, forUpdate bool) (*T, error) {
	b := psql().Select("doc").From(table).Where(where).Limit(1)
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return queryDoc[T](ctx, q, sql, args)
}

func deleteDoc[T any](ctx context.Context, q db.Querier, table string, where squirrel.Eq) (*T, error) {
	sql, args, err := psql().Delete(table).Where(where).Suffix("RETURNING doc").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return queryDoc[T](ctx, q, sql, args)
}

func exists(ctx context.Context, q db.Querier, table string, where squirrel.Sqlizer) (bool, error) {
	sql, args, err := psql().Select("1").From(table).Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	var one int
	err = q.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func count(ctx context.Context, q db.Querier, table string, where squirrel.Sqlizer) (int, error) {
	sql, args, err := psql().Select("count(*)").From(table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func deleteMany(ctx context.Context, q db.Querier, table string, where squirrel.Sqlizer) (int, error) {
	sql, args, err := psql().Delete(table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func courseWhere(f models.CourseFilter) squirrel.And {
	where := squirrel.And{}
	if f.CourseID != "" {
		where = append(where, squirrel.Eq{"course_id": f.CourseID})
	}
	if f.Slug != "" {
		where = append(where, squirrel.Expr("doc->>'slug' = ?", f.Slug))
	}
	return where
}

func weekWhere(f models.WeekFilter) squirrel.Eq {
	where := squirrel.Eq{}
	if f.CourseID != "" {
		where["course_id"] = f.CourseID
	}
	if f.WeekID != nil {
		where["week_id"] = *f.WeekID
	}
	return where
}

func lessonWhere(f models.LessonFilter) squirrel.Eq {
	where := squirrel.Eq{}
	if f.CourseID != "" {
		where["course_id"] = f.CourseID
	}
	if f.WeekID != nil {
		where["week_id"] = *f.WeekID
	}
	if f.LessonID != "" {
		where["lesson_id"] = f.LessonID
	}
	if f.Slug != "" {
		where["slug"] = f.Slug
	}
	return where
}

func lessonKeyWhere(k models.LessonKey) squirrel.Eq {
	return squirrel.Eq{"course_id": k.CourseID, "week_id": k.WeekID, "lesson_id": k.LessonID}
}

// CourseRepository stores courses in the courses table.
type CourseRepository struct {
	db *db.PostgresDB
}

// List returns matching courses ordered by courseId.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	b := psql().Select("doc").From(coursesTable).Where(courseWhere(filter)).OrderBy("course_id")
	return queryDocs[models.Course](ctx, r.db.Conn(ctx), b)
}

func (r *CourseRepository) Get(ctx context.Context, courseID string) (*models.Course, error) {
	return getDoc[models.Course](ctx, r.db.Conn(ctx), coursesTable, squirrel.Eq{"course_id": courseID}, false)
}

func (r *CourseRepository) Exists(ctx context.Context, courseID string) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), coursesTable, squirrel.Eq{"course_id": courseID})
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	doc, err := encode(course)
	if err != nil {
		return err
	}
	sql, args, err := psql().Insert(coursesTable).
		Columns("course_id", "doc").
		Values(course.CourseID, doc).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	_, err = r.db.Conn(ctx).Exec(ctx, sql, args...)
	return translate(err)
}

// Update locks the row, applies patch to the stored document and writes it back.
func (r *CourseRepository) Update(ctx context.Context, courseID string, patch models.CoursePatch) (*models.Course, error) {
	var updated *models.Course
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		key := squirrel.Eq{"course_id": courseID}
		c, err := getDoc[models.Course](ctx, r.db.Conn(ctx), coursesTable, key, true)
		if err != nil {
			return err
		}
		patch.Apply(c)
		doc, err := encode(c)
		if err != nil {
			return err
		}
		sql, args, err := psql().Update(coursesTable).Set("doc", doc).Where(key).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
			return translate(err)
		}
		updated = c
		return nil
	})
	return updated, err
}

func (r *CourseRepository) Delete(ctx context.Context, courseID string) (*models.Course, error) {
	return deleteDoc[models.Course](ctx, r.db.Conn(ctx), coursesTable, squirrel.Eq{"course_id": courseID})
}

// WeekRepository stores weeks in the course_weeks table.
type WeekRepository struct {
	db *db.PostgresDB
}

func (r *WeekRepository) List(ctx context.Context, filter models.WeekFilter) ([]models.Week, error) {
	b := psql().Select("doc").From(weeksTable).Where(weekWhere(filter)).OrderBy("course_id", "week_id")
	return queryDocs[models.Week](ctx, r.db.Conn(ctx), b)
}

func (r *WeekRepository) Get(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	return getDoc[models.Week](ctx, r.db.Conn(ctx), weeksTable, squirrel.Eq{"course_id": courseID, "week_id": weekID}, false)
}

func (r *WeekRepository) Exists(ctx context.Context, courseID string, weekID int) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), weeksTable, squirrel.Eq{"course_id": courseID, "week_id": weekID})
}

func (r *WeekRepository) Create(ctx context.Context, week *models.Week) error {
	doc, err := encode(week)
	if err != nil {
		return err
	}
	sql, args, err := psql().Insert(weeksTable).
		Columns("course_id", "week_id", "doc").
		Values(week.CourseID, week.WeekID, doc).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	_, err = r.db.Conn(ctx).Exec(ctx, sql, args...)
	return translate(err)
}

func (r *WeekRepository) Update(ctx context.Context, courseID string, weekID int, patch models.WeekPatch) (*models.Week, error) {
	var updated *models.Week
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		key := squirrel.Eq{"course_id": courseID, "week_id": weekID}
		w, err := getDoc[models.Week](ctx, r.db.Conn(ctx), weeksTable, key, true)
		if err != nil {
			return err
		}
		patch.Apply(w)
		doc, err := encode(w)
		if err != nil {
			return err
		}
		sql, args, err := psql().Update(weeksTable).Set("doc", doc).Where(key).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
			return translate(err)
		}
		updated = w
		return nil
	})
	return updated, err
}

func (r *WeekRepository) Delete(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	return deleteDoc[models.Week](ctx, r.db.Conn(ctx), weeksTable, squirrel.Eq{"course_id": courseID, "week_id": weekID})
}

func (r *WeekRepository) DeleteMany(ctx context.Context, filter models.WeekFilter) (int, error) {
	return deleteMany(ctx, r.db.Conn(ctx), weeksTable, weekWhere(filter))
}

func (r *WeekRepository) Count(ctx context.Context, filter models.WeekFilter) (int, error) {
	return count(ctx, r.db.Conn(ctx), weeksTable, weekWhere(filter))
}

// LessonRepository stores lessons in the lesson_contents table.
type LessonRepository struct {
	db *db.PostgresDB
}

func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	b := psql().Select("doc").From(lessonsTable).Where(lessonWhere(filter)).
		OrderBy("course_id", "week_id", "created_at", "lesson_id")
	return queryDocs[models.Lesson](ctx, r.db.Conn(ctx), b)
}

func (r *LessonRepository) Get(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	return getDoc[models.Lesson](ctx, r.db.Conn(ctx), lessonsTable, lessonKeyWhere(key), false)
}

func (r *LessonRepository) Exists(ctx context.Context, filter models.LessonFilter) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), lessonsTable, lessonWhere(filter))
}

func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	doc, err := encode(lesson)
	if err != nil {
		return err
	}
	sql, args, err := psql().Insert(lessonsTable).
		Columns("course_id", "week_id", "lesson_id", "slug", "created_at", "doc").
		Values(lesson.CourseID, lesson.WeekID, lesson.LessonID, lesson.Slug, lesson.CreatedAt, doc).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	_, err = r.db.Conn(ctx).Exec(ctx, sql, args...)
	return translate(err)
}

// Update rewrites the key columns with the document so renames hit the
// unique constraints.
func (r *LessonRepository) Update(ctx context.Context, key models.LessonKey, patch models.LessonPatch) (*models.Lesson, error) {
	var updated *models.Lesson
	err := r.db.WithTransaction(ctx, func(ctx context.Context) error {
		l, err := getDoc[models.Lesson](ctx, r.db.Conn(ctx), lessonsTable, lessonKeyWhere(key), true)
		if err != nil {
			return err
		}
		patch.Apply(l)
		doc, err := encode(l)
		if err != nil {
			return err
		}
		sql, args, err := psql().Update(lessonsTable).
			Set("lesson_id", l.LessonID).
			Set("slug", l.Slug).
			Set("doc", doc).
			Where(lessonKeyWhere(key)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
			return translate(err)
		}
		updated = l
		return nil
	})
	return updated, err
}

func (r *LessonRepository) Delete(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	return deleteDoc[models.Lesson](ctx, r.db.Conn(ctx), lessonsTable, lessonKeyWhere(key))
}

func (r *LessonRepository) DeleteMany(ctx context.Context, filter models.LessonFilter) (int, error) {
	return deleteMany(ctx, r.db.Conn(ctx), lessonsTable, lessonWhere(filter))
}

func (r *LessonRepository) Count(ctx context.Context, filter models.LessonFilter) (int, error) {
	return count(ctx, r.db.Conn(ctx), lessonsTable, lessonWhere(filter))
}
