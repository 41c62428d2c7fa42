package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestLessonJSONWritesTitleAndName(t *testing.T) {
	l := Lesson{CourseID: "sql", WeekID: 1, LessonID: "intro", Slug: "intro", Title: "Introduction"}

	raw, err := json.Marshal(l)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "Introduction", m["title"])
	assert.Equal(t, "Introduction", m["name"])
	assert.Contains(t, m, "videoUrl")
	assert.Nil(t, m["videoUrl"])
	assert.Nil(t, m["attachments"])
}

func TestLessonJSONAcceptsEitherKey(t *testing.T) {
	var byName Lesson
	require.NoError(t, json.Unmarshal([]byte(`{"lessonId":"a","name":"From name"}`), &byName))
	assert.Equal(t, "From name", byName.Title)

	var both Lesson
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Title wins","name":"Old"}`), &both))
	assert.Equal(t, "Title wins", both.Title)
}

func TestLessonBSONWritesTitleAndName(t *testing.T) {
	video := "https://video.example.com/1"
	l := Lesson{
		CourseID:    "sql",
		WeekID:      2,
		LessonID:    "joins",
		Slug:        "joins",
		Title:       "Joins",
		VideoURL:    &video,
		Attachments: []Attachment{{URL: "/uploads/a.pdf", Name: "a.pdf", Type: "application/pdf"}},
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := bson.Marshal(l)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "Joins", doc["title"])
	assert.Equal(t, "Joins", doc["name"])

	var back Lesson
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, l.Title, back.Title)
	assert.Equal(t, l.Attachments, back.Attachments)
	assert.Equal(t, video, *back.VideoURL)
	assert.True(t, l.CreatedAt.Equal(back.CreatedAt))
}

func TestLessonBSONLegacyNameOnly(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"lessonId": "old", "name": "Legacy"})
	require.NoError(t, err)

	var l Lesson
	require.NoError(t, bson.Unmarshal(raw, &l))
	assert.Equal(t, "Legacy", l.Title)
}

func TestLessonPatchKeepsTitleAndNameTogether(t *testing.T) {
	title := "Renamed"
	now := time.Now().UTC()
	p := LessonPatch{Title: &title, UpdatedAt: now}

	fields := p.Fields()
	assert.Equal(t, "Renamed", fields["title"])
	assert.Equal(t, "Renamed", fields["name"])
	assert.Equal(t, now, fields["updatedAt"])
	assert.NotContains(t, fields, "slug")

	l := Lesson{Title: "Before", Slug: "keep"}
	p.Apply(&l)
	assert.Equal(t, "Renamed", l.Title)
	assert.Equal(t, "keep", l.Slug)
	assert.Equal(t, now, l.UpdatedAt)
}

func TestCoursePatchExplicitNullPrice(t *testing.T) {
	price := 49.0
	c := Course{Price: &price}

	CoursePatch{}.Apply(&c)
	require.NotNil(t, c.Price)

	CoursePatch{PriceSet: true}.Apply(&c)
	assert.Nil(t, c.Price)

	fields := CoursePatch{PriceSet: true}.Fields()
	assert.Contains(t, fields, "price")
}

func TestFilters(t *testing.T) {
	one := 1
	w := &Week{CourseID: "sql", WeekID: 1}
	assert.True(t, WeekFilter{}.Matches(w))
	assert.True(t, WeekFilter{CourseID: "sql", WeekID: &one}.Matches(w))
	assert.False(t, WeekFilter{CourseID: "power-bi"}.Matches(w))

	l := &Lesson{CourseID: "sql", WeekID: 1, LessonID: "intro", Slug: "intro"}
	assert.True(t, LessonFilter{CourseID: "sql", Slug: "intro"}.Matches(l))
	assert.False(t, LessonFilter{LessonID: "other"}.Matches(l))

	assert.True(t, CourseFilter{Slug: "sql-basics"}.Matches(&Course{Slug: "sql-basics"}))
	assert.Equal(t, "w3", DefaultWeekSlug(3))
}
