package dto

import (
	"time"

	"github.com/yigit/academy/internal/app/models"
)

// CreateWeekRequest is the body of POST /course-week
type CreateWeekRequest struct {
	CourseID    string             `json:"courseId" binding:"required,key" example:"sql"`
	WeekID      int                `json:"weekId" binding:"required,min=1" example:"1"`
	Slug        string             `json:"slug" binding:"required" example:"w1"`
	Title       string             `json:"title" example:"Getting started"`
	Description string             `json:"description"`
	LessonCount *int               `json:"lessonCount" binding:"omitempty,min=0"`
	LessonList  []models.LessonRef `json:"lessonList"`
	CreatedAt   *time.Time         `json:"createdAt"`
	UpdatedAt   *time.Time         `json:"updatedAt"`
}

// ToModel converts the request into a week
func (r CreateWeekRequest) ToModel() *models.Week {
	w := &models.Week{
		CourseID:    r.CourseID,
		WeekID:      r.WeekID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		LessonList:  r.LessonList,
	}
	if r.LessonCount != nil {
		w.LessonCount = *r.LessonCount
	}
	if r.CreatedAt != nil {
		w.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		w.UpdatedAt = *r.UpdatedAt
	}
	return w
}

// WeekPatchFromBody builds the sparse update of PATCH /course-week
func WeekPatchFromBody(courseID string, weekID int, b PatchBody) (models.WeekPatch, error) {
	var p models.WeekPatch
	var err error

	if err = immutable(b, "courseId", courseID); err != nil {
		return p, err
	}
	if err = immutable(b, "weekId", weekID); err != nil {
		return p, err
	}
	if p.Slug, err = nonEmptyString(b, "slug"); err != nil {
		return p, err
	}
	if p.Title, err = decodeField[string](b, "title"); err != nil {
		return p, err
	}
	if p.Description, err = decodeField[string](b, "description"); err != nil {
		return p, err
	}
	if p.LessonCount, err = nonNegativeInt(b, "lessonCount"); err != nil {
		return p, err
	}
	if p.LessonList, err = decodeField[[]models.LessonRef](b, "lessonList"); err != nil {
		return p, err
	}
	return p, nil
}
