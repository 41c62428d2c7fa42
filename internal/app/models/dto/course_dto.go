package dto

import (
	"time"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/validation"
)

// CreateCourseRequest is the body of POST /courses
type CreateCourseRequest struct {
	CourseID    string     `json:"courseId" binding:"required,key" example:"sql"`
	Title       string     `json:"title" binding:"required,max=200" example:"SQL for Analysts"`
	Slug        string     `json:"slug" binding:"required,slug" example:"sql-for-analysts"`
	Description string     `json:"description" example:"Query, join and aggregate real data"`
	ImageSrc    string     `json:"imageSrc" example:"/uploads/courses/sql.png"`
	Tags        []string   `json:"tags" example:"sql,data"`
	Rating      *float64   `json:"rating" binding:"omitempty,min=0,max=5" example:"4.8"`
	WeekCount   *int       `json:"weekCount" binding:"omitempty,min=0" example:"6"`
	Price       *float64   `json:"price" binding:"omitempty,min=0" example:"149"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// ToModel converts the request into a course
func (r CreateCourseRequest) ToModel() *models.Course {
	c := &models.Course{
		CourseID:    r.CourseID,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		ImageSrc:    r.ImageSrc,
		Tags:        r.Tags,
		Price:       r.Price,
	}
	if r.Rating != nil {
		c.Rating = *r.Rating
	}
	if r.WeekCount != nil {
		c.WeekCount = *r.WeekCount
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		c.UpdatedAt = *r.UpdatedAt
	}
	return c
}

// CoursePatchFromBody builds the sparse update of PUT /courses.
// courseId may be repeated in the body but not changed.
func CoursePatchFromBody(courseID string, b PatchBody) (models.CoursePatch, error) {
	var p models.CoursePatch
	var err error

	if err = immutable(b, "courseId", courseID); err != nil {
		return p, err
	}
	if p.Title, err = nonEmptyString(b, "title"); err != nil {
		return p, err
	}
	if p.Slug, err = slugField(b, "slug"); err != nil {
		return p, err
	}
	if p.Description, err = decodeField[string](b, "description"); err != nil {
		return p, err
	}
	if p.ImageSrc, err = decodeField[string](b, "imageSrc"); err != nil {
		return p, err
	}
	if p.Tags, err = decodeField[[]string](b, "tags"); err != nil {
		return p, err
	}
	if p.Rating, err = decodeField[float64](b, "rating"); err != nil {
		return p, err
	}
	if p.Rating != nil && (*p.Rating < validation.RatingMin || *p.Rating > validation.RatingMax) {
		return p, apperrors.NewValidationError("rating", "rating must be between 0 and 5")
	}
	if p.WeekCount, err = nonNegativeInt(b, "weekCount"); err != nil {
		return p, err
	}
	if b.Has("price") {
		p.PriceSet = true
		if p.Price, err = decodeField[float64](b, "price"); err != nil {
			return p, err
		}
		if p.Price != nil && *p.Price < 0 {
			return p, apperrors.NewValidationError("price", "price must be at least 0")
		}
	}
	return p, nil
}
