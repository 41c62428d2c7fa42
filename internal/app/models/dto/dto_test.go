package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/validation"
)

func mustBody(t *testing.T, s string) PatchBody {
	t.Helper()
	b, err := ParsePatchBody([]byte(s))
	require.NoError(t, err)
	return b
}

func TestParsePatchBody(t *testing.T) {
	_, err := ParsePatchBody([]byte(`[1,2]`))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	b, err := ParsePatchBody([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, b)

	b = mustBody(t, `{"price": null, "title": "x"}`)
	assert.True(t, b.Has("price"))
	assert.True(t, b.IsNull("price"))
	assert.False(t, b.IsNull("title"))
	assert.False(t, b.Has("slug"))
}

func TestCoursePatchFromBody(t *testing.T) {
	p, err := CoursePatchFromBody("sql", mustBody(t, `{"courseId":"sql","title":"SQL 2","price":null,"tags":["a"]}`))
	require.NoError(t, err)
	assert.Equal(t, "SQL 2", *p.Title)
	assert.True(t, p.PriceSet)
	assert.Nil(t, p.Price)
	assert.Equal(t, []string{"a"}, *p.Tags)
	assert.Nil(t, p.Slug)

	p, err = CoursePatchFromBody("sql", mustBody(t, `{"rating": 4.5}`))
	require.NoError(t, err)
	assert.False(t, p.PriceSet)
	assert.Equal(t, 4.5, *p.Rating)
}

func TestCoursePatchRejections(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"changed key", `{"courseId":"other"}`, "courseId"},
		{"empty title", `{"title":"  "}`, "title"},
		{"bad slug", `{"slug":"Not A Slug"}`, "slug"},
		{"rating range", `{"rating": 7}`, "rating"},
		{"negative weeks", `{"weekCount": -1}`, "weekCount"},
		{"wrong type", `{"tags": "sql"}`, "tags"},
		{"negative price", `{"price": -3}`, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoursePatchFromBody("sql", mustBody(t, tt.body))
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, tt.field, apperrors.Field(err))
		})
	}
}

func TestWeekPatchFromBody(t *testing.T) {
	p, err := WeekPatchFromBody("sql", 1, mustBody(t, `{"weekId":1,"lessonCount":2,"lessonList":[{"id":"a","title":"A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, *p.LessonCount)
	assert.Len(t, *p.LessonList, 1)

	_, err = WeekPatchFromBody("sql", 1, mustBody(t, `{"weekId":2}`))
	assert.Equal(t, "weekId", apperrors.Field(err))
}

func TestLessonPatchTitleAndName(t *testing.T) {
	p, _, err := LessonPatchFromBody("sql", 1, mustBody(t, `{"name":"From name"}`))
	require.NoError(t, err)
	assert.Equal(t, "From name", *p.Title)
	assert.Equal(t, "From name", p.Fields()["name"])
	assert.Equal(t, "From name", p.Fields()["title"])

	p, _, err = LessonPatchFromBody("sql", 1, mustBody(t, `{"title":"T","name":"N"}`))
	require.NoError(t, err)
	assert.Equal(t, "T", *p.Title)
}

func TestLessonPatchRenameAndNulls(t *testing.T) {
	p, old, err := LessonPatchFromBody("sql", 1, mustBody(t,
		`{"oldLessonId":"intro","lessonId":"intro-2","videoUrl":null,"attachments":null}`))
	require.NoError(t, err)
	assert.Equal(t, "intro", old)
	assert.Equal(t, "intro-2", *p.LessonID)
	assert.True(t, p.VideoURLSet)
	assert.Nil(t, p.VideoURL)
	assert.True(t, p.AttachmentsSet)
	assert.Nil(t, p.Attachments)

	p, old, err = LessonPatchFromBody("sql", 1, mustBody(t, `{"content":"<p>x</p>"}`))
	require.NoError(t, err)
	assert.Empty(t, old)
	assert.False(t, p.VideoURLSet)
	assert.Nil(t, p.LessonID)

	_, _, err = LessonPatchFromBody("sql", 1, mustBody(t, `{"oldLessonId":""}`))
	assert.Equal(t, "oldLessonId", apperrors.Field(err))

	_, _, err = LessonPatchFromBody("sql", 1, mustBody(t, `{"courseId":"power-bi"}`))
	assert.Equal(t, "courseId", apperrors.Field(err))
}

func TestCreateLessonRequestTitleFallback(t *testing.T) {
	l := CreateLessonRequest{CourseID: "sql", WeekID: 1, LessonID: "a", Slug: "a", Name: "Legacy"}.ToModel()
	assert.Equal(t, "Legacy", l.Title)

	l = CreateLessonRequest{Title: "New", Name: "Legacy"}.ToModel()
	assert.Equal(t, "New", l.Title)
}

func TestHandleValidationError(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, validation.RegisterRules(v))

	err := v.Struct(CreateLessonRequest{CourseID: "sql", WeekID: 1, LessonID: "a", Slug: "a"})
	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Contains(t, detail.Message, "missing required field:")

	err = v.Struct(CreateCourseRequest{CourseID: "sql", Title: "SQL", Slug: "Bad Slug"})
	detail = HandleValidationError(err)
	assert.Equal(t, "slug", detail.Field)
	assert.Equal(t, "slug must be lowercase words separated by hyphens", detail.Message)

	detail = HandleValidationError(assert.AnError)
	assert.Equal(t, "invalid request body", detail.Message)
}

func TestResponses(t *testing.T) {
	ok := NewSuccessResponse([]int{}, "")
	assert.True(t, ok.Success)

	bad := NewErrorResponse(NewErrorDetail(ErrorCodeResourceNotFound, "course not found"))
	assert.False(t, bad.Success)
	assert.Equal(t, "course not found", bad.Message)
}
