package dto

import (
	"time"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// CreateLessonRequest is the body of POST /lesson-content.
// Either title or name is required; title wins when both are sent.
type CreateLessonRequest struct {
	CourseID           string                     `json:"courseId" binding:"required,key" example:"sql"`
	WeekID             int                        `json:"weekId" binding:"required,min=1" example:"1"`
	LessonID           string                     `json:"lessonId" binding:"required,key" example:"select-basics"`
	Slug               string                     `json:"slug" binding:"required,slug" example:"select-basics"`
	Title              string                     `json:"title" binding:"required_without=Name" example:"SELECT basics"`
	Name               string                     `json:"name" binding:"required_without=Title" example:"SELECT basics"`
	Subtitle           string                     `json:"subtitle"`
	Content            string                     `json:"content" example:"<p>Every query starts with SELECT.</p>"`
	VideoURL           *string                    `json:"videoUrl" binding:"omitempty,url"`
	Attachments        []models.Attachment        `json:"attachments"`
	InterviewQuestions []models.InterviewQuestion `json:"interviewQuestions"`
	Resources          []models.Resource          `json:"resources"`
	CreatedAt          *time.Time                 `json:"createdAt"`
	UpdatedAt          *time.Time                 `json:"updatedAt"`
}

// ToModel converts the request into a lesson
func (r CreateLessonRequest) ToModel() *models.Lesson {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	l := &models.Lesson{
		CourseID:           r.CourseID,
		WeekID:             r.WeekID,
		LessonID:           r.LessonID,
		Slug:               r.Slug,
		Title:              title,
		Subtitle:           r.Subtitle,
		Content:            r.Content,
		VideoURL:           r.VideoURL,
		Attachments:        r.Attachments,
		InterviewQuestions: r.InterviewQuestions,
		Resources:          r.Resources,
	}
	if r.CreatedAt != nil {
		l.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		l.UpdatedAt = *r.UpdatedAt
	}
	return l
}

// LessonPatchFromBody builds the sparse update of PATCH /lesson-content.
// Setting title or name sets both; title wins when both are sent. A body
// lessonId renames the lesson. oldLessonId, when sent, is returned so the
// caller can address the lesson by it.
func LessonPatchFromBody(courseID string, weekID int, b PatchBody) (models.LessonPatch, string, error) {
	var p models.LessonPatch
	var err error

	if err = immutable(b, "courseId", courseID); err != nil {
		return p, "", err
	}
	if err = immutable(b, "weekId", weekID); err != nil {
		return p, "", err
	}

	oldLessonID, err := decodeField[string](b, "oldLessonId")
	if err != nil {
		return p, "", err
	}
	if p.LessonID, err = nonEmptyString(b, "lessonId"); err != nil {
		return p, "", err
	}
	if p.Slug, err = slugField(b, "slug"); err != nil {
		return p, "", err
	}
	if p.Title, err = nonEmptyString(b, "title"); err != nil {
		return p, "", err
	}
	if p.Title == nil {
		if p.Title, err = nonEmptyString(b, "name"); err != nil {
			return p, "", err
		}
	}
	if p.Subtitle, err = decodeField[string](b, "subtitle"); err != nil {
		return p, "", err
	}
	if p.Content, err = decodeField[string](b, "content"); err != nil {
		return p, "", err
	}
	if b.Has("videoUrl") {
		p.VideoURLSet = true
		if p.VideoURL, err = decodeField[string](b, "videoUrl"); err != nil {
			return p, "", err
		}
	}
	if b.Has("attachments") {
		p.AttachmentsSet = true
		list, err := decodeField[[]models.Attachment](b, "attachments")
		if err != nil {
			return p, "", err
		}
		if list != nil {
			p.Attachments = *list
		}
	}
	if p.InterviewQuestions, err = decodeField[[]models.InterviewQuestion](b, "interviewQuestions"); err != nil {
		return p, "", err
	}
	if p.Resources, err = decodeField[[]models.Resource](b, "resources"); err != nil {
		return p, "", err
	}

	var old string
	if oldLessonID != nil {
		old = *oldLessonID
		if old == "" {
			return p, "", apperrors.NewValidationError("oldLessonId", "oldLessonId cannot be empty")
		}
	}
	return p, old, nil
}
