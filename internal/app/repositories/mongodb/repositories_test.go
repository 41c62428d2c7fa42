package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/db"
	"github.com/yigit/academy/internal/pkg/dberrors"
)

func dupErr(index string) error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: academy.lessonContents index: " + index + " dup key: { }",
	}}}
}

func TestTranslateDuplicateKey(t *testing.T) {
	tests := []struct {
		index string
		field string
	}{
		{db.IndexCourseID, "courseId"},
		{db.IndexWeekKey, "weekId"},
		{db.IndexLessonKey, "lessonId"},
		{db.IndexLessonSlug, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.index, func(t *testing.T) {
			err := translate(dupErr(tt.index))
			field, ok := repositories.DuplicateField(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, field)
			assert.True(t, dberrors.IsDuplicateKey(err))
		})
	}
}

func TestTranslateOtherErrors(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), repositories.ErrNotFound)

	boom := errors.New("boom")
	assert.Equal(t, boom, translate(boom))
}

func TestLessonQuery(t *testing.T) {
	week := 2
	q := lessonQuery(models.LessonFilter{CourseID: "sql", WeekID: &week, Slug: "intro"})
	assert.Equal(t, bson.M{"courseId": "sql", "weekId": 2, "slug": "intro"}, q)
	assert.Empty(t, lessonQuery(models.LessonFilter{}))
}

func TestRepositoriesNeedConnection(t *testing.T) {
	repos := NewRepositories(db.NewMongoStore("mongodb://localhost:27017", "academy", 0))
	ctx := context.Background()

	_, err := repos.CourseRepository.List(ctx, models.CourseFilter{})
	assert.ErrorIs(t, err, db.ErrNotConnected)

	_, err = repos.LessonRepository.Get(ctx, models.LessonKey{CourseID: "sql", WeekID: 1, LessonID: "intro"})
	assert.ErrorIs(t, err, db.ErrNotConnected)

	assert.False(t, repos.Transactor.SupportsTransactions(ctx))
	assert.Equal(t, "mongo", repos.Driver)
}
