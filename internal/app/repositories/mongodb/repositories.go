// Package mongodb implements the repositories on the document store.
// Business keys are backed by the unique indexes created in db.EnsureIndexes.
package mongodb

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/db"
)

// NewRepositories returns the repository set backed by store.
func NewRepositories(store *db.MongoStore) *repositories.Repositories {
	return &repositories.Repositories{
		Driver:           "mongo",
		CourseRepository: &CourseRepository{store: store},
		WeekRepository:   &WeekRepository{store: store},
		LessonRepository: &LessonRepository{store: store},
		Transactor:       store,
		Pinger:           store,
	}
}

// indexFields maps unique index names to the key field they protect.
// Longer names come first since uniq_course_week prefixes the lesson indexes.
var indexFields = []struct{ index, field string }{
	{db.IndexLessonSlug, "slug"},
	{db.IndexLessonKey, "lessonId"},
	{db.IndexWeekKey, "weekId"},
	{db.IndexCourseID, "courseId"},
}

// translate maps driver errors onto the repository error set.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		for _, f := range indexFields {
			if strings.Contains(msg, f.index) {
				return repositories.NewDuplicateKeyError(f.field, err)
			}
		}
		return repositories.NewDuplicateKeyError("key", err)
	}
	return err
}

func courseQuery(f models.CourseFilter) bson.M {
	q := bson.M{}
	if f.CourseID != "" {
		q["courseId"] = f.CourseID
	}
	if f.Slug != "" {
		q["slug"] = f.Slug
	}
	return q
}

func weekQuery(f models.WeekFilter) bson.M {
	q := bson.M{}
	if f.CourseID != "" {
		q["courseId"] = f.CourseID
	}
	if f.WeekID != nil {
		q["weekId"] = *f.WeekID
	}
	return q
}

func lessonQuery(f models.LessonFilter) bson.M {
	q := bson.M{}
	if f.CourseID != "" {
		q["courseId"] = f.CourseID
	}
	if f.WeekID != nil {
		q["weekId"] = *f.WeekID
	}
	if f.LessonID != "" {
		q["lessonId"] = f.LessonID
	}
	if f.Slug != "" {
		q["slug"] = f.Slug
	}
	return q
}

func lessonKeyQuery(k models.LessonKey) bson.M {
	return bson.M{"courseId": k.CourseID, "weekId": k.WeekID, "lessonId": k.LessonID}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, query bson.M, sort bson.D) ([]T, error) {
	cursor, err := coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func exists(ctx context.Context, coll *mongo.Collection, query bson.M) (bool, error) {
	n, err := coll.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func updateOne[T any](ctx context.Context, coll *mongo.Collection, query bson.M, fields map[string]any) (*T, error) {
	var out T
	err := coll.FindOneAndUpdate(ctx, query, bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func deleteOne[T any](ctx context.Context, coll *mongo.Collection, query bson.M) (*T, error) {
	var out T
	if err := coll.FindOneAndDelete(ctx, query).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// CourseRepository stores courses in the courses collection.
type CourseRepository struct {
	store *db.MongoStore
}

func (r *CourseRepository) coll() (*mongo.Collection, error) {
	return r.store.Collection(db.CoursesCollection)
}

// List returns matching courses ordered by courseId.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return findAll[models.Course](ctx, coll, courseQuery(filter), bson.D{{Key: "courseId", Value: 1}})
}

// Get loads one course.
func (r *CourseRepository) Get(ctx context.Context, courseID string) (*models.Course, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	var c models.Course
	if err := coll.FindOne(ctx, bson.M{"courseId": courseID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CourseRepository) Exists(ctx context.Context, courseID string) (bool, error) {
	coll, err := r.coll()
	if err != nil {
		return false, err
	}
	return exists(ctx, coll, bson.M{"courseId": courseID})
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, course)
	return translate(err)
}

func (r *CourseRepository) Update(ctx context.Context, courseID string, patch models.CoursePatch) (*models.Course, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return updateOne[models.Course](ctx, coll, bson.M{"courseId": courseID}, patch.Fields())
}

func (r *CourseRepository) Delete(ctx context.Context, courseID string) (*models.Course, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return deleteOne[models.Course](ctx, coll, bson.M{"courseId": courseID})
}

// WeekRepository stores weeks in the courseWeeks collection.
type WeekRepository struct {
	store *db.MongoStore
}

func (r *WeekRepository) coll() (*mongo.Collection, error) {
	return r.store.Collection(db.WeeksCollection)
}

// List returns matching weeks ordered by course then week number.
func (r *WeekRepository) List(ctx context.Context, filter models.WeekFilter) ([]models.Week, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return findAll[models.Week](ctx, coll, weekQuery(filter),
		bson.D{{Key: "courseId", Value: 1}, {Key: "weekId", Value: 1}})
}

func (r *WeekRepository) Get(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	var w models.Week
	if err := coll.FindOne(ctx, bson.M{"courseId": courseID, "weekId": weekID}).Decode(&w); err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *WeekRepository) Exists(ctx context.Context, courseID string, weekID int) (bool, error) {
	coll, err := r.coll()
	if err != nil {
		return false, err
	}
	return exists(ctx, coll, bson.M{"courseId": courseID, "weekId": weekID})
}

func (r *WeekRepository) Create(ctx context.Context, week *models.Week) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, week)
	return translate(err)
}

func (r *WeekRepository) Update(ctx context.Context, courseID string, weekID int, patch models.WeekPatch) (*models.Week, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return updateOne[models.Week](ctx, coll, bson.M{"courseId": courseID, "weekId": weekID}, patch.Fields())
}

func (r *WeekRepository) Delete(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return deleteOne[models.Week](ctx, coll, bson.M{"courseId": courseID, "weekId": weekID})
}

func (r *WeekRepository) DeleteMany(ctx context.Context, filter models.WeekFilter) (int, error) {
	coll, err := r.coll()
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, weekQuery(filter))
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (r *WeekRepository) Count(ctx context.Context, filter models.WeekFilter) (int, error) {
	coll, err := r.coll()
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, weekQuery(filter))
	return int(n), err
}

// LessonRepository stores lessons in the lessonContents collection.
type LessonRepository struct {
	store *db.MongoStore
}

func (r *LessonRepository) coll() (*mongo.Collection, error) {
	return r.store.Collection(db.LessonsCollection)
}

// List returns matching lessons in course, week and creation order.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return findAll[models.Lesson](ctx, coll, lessonQuery(filter), bson.D{
		{Key: "courseId", Value: 1},
		{Key: "weekId", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "lessonId", Value: 1},
	})
}

func (r *LessonRepository) Get(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	var l models.Lesson
	if err := coll.FindOne(ctx, lessonKeyQuery(key)).Decode(&l); err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *LessonRepository) Exists(ctx context.Context, filter models.LessonFilter) (bool, error) {
	coll, err := r.coll()
	if err != nil {
		return false, err
	}
	return exists(ctx, coll, lessonQuery(filter))
}

func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	coll, err := r.coll()
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, lesson)
	return translate(err)
}

// Update applies patch to the lesson at key. A LessonID in the patch renames
// it; the unique indexes reject renames onto a sibling's id or slug.
func (r *LessonRepository) Update(ctx context.Context, key models.LessonKey, patch models.LessonPatch) (*models.Lesson, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return updateOne[models.Lesson](ctx, coll, lessonKeyQuery(key), patch.Fields())
}

func (r *LessonRepository) Delete(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	coll, err := r.coll()
	if err != nil {
		return nil, err
	}
	return deleteOne[models.Lesson](ctx, coll, lessonKeyQuery(key))
}

func (r *LessonRepository) DeleteMany(ctx context.Context, filter models.LessonFilter) (int, error) {
	coll, err := r.coll()
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, lessonQuery(filter))
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (r *LessonRepository) Count(ctx context.Context, filter models.LessonFilter) (int, error) {
	coll, err := r.coll()
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, lessonQuery(filter))
	return int(n), err
}
