package models

import (
	"strconv"
	"time"
)

// LessonRef is an entry of a week's denormalized lesson list.
type LessonRef struct {
	ID    string `json:"id" bson:"id"`
	Title string `json:"title" bson:"title"`
}

// Week belongs to a course by CourseID and is keyed by (CourseID, WeekID).
type Week struct {
	CourseID    string `json:"courseId" bson:"courseId"`
	WeekID      int    `json:"weekId" bson:"weekId"`
	Slug        string `json:"slug" bson:"slug"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	// LessonCount and LessonList are stored caches of the week's lessons
	LessonCount int         `json:"lessonCount" bson:"lessonCount"`
	LessonList  []LessonRef `json:"lessonList" bson:"lessonList"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// DefaultWeekSlug is the conventional slug for a week number, e.g. "w3".
func DefaultWeekSlug(weekID int) string {
	return "w" + strconv.Itoa(weekID)
}

// WeekFilter selects weeks; a nil WeekID matches every week.
type WeekFilter struct {
	CourseID string
	WeekID   *int
}

// Matches reports whether w satisfies the filter.
func (f WeekFilter) Matches(w *Week) bool {
	return (f.CourseID == "" || w.CourseID == f.CourseID) &&
		(f.WeekID == nil || w.WeekID == *f.WeekID)
}

// WeekPatch is a sparse week update. The (CourseID, WeekID) key is immutable.
type WeekPatch struct {
	Slug        *string
	Title       *string
	Description *string
	LessonCount *int
	LessonList  *[]LessonRef
	UpdatedAt   time.Time
}

// Apply writes the patch onto w.
func (p WeekPatch) Apply(w *Week) {
	if p.Slug != nil {
		w.Slug = *p.Slug
	}
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.LessonCount != nil {
		w.LessonCount = *p.LessonCount
	}
	if p.LessonList != nil {
		w.LessonList = append([]LessonRef{}, (*p.LessonList)...)
	}
	w.UpdatedAt = p.UpdatedAt
}

// Fields maps the set fields to their stored names, updatedAt included.
func (p WeekPatch) Fields() map[string]any {
	m := map[string]any{"updatedAt": p.UpdatedAt}
	if p.Slug != nil {
		m["slug"] = *p.Slug
	}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.LessonCount != nil {
		m["lessonCount"] = *p.LessonCount
	}
	if p.LessonList != nil {
		m["lessonList"] = *p.LessonList
	}
	return m
}
