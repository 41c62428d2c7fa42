package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Attachment is a downloadable file linked from a lesson.
type Attachment struct {
	URL  string `json:"url" bson:"url"`
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
}

// InterviewQuestion is a practice question shown under a lesson.
type InterviewQuestion struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Resource is an external reading link.
type Resource struct {
	Title string `json:"title" bson:"title"`
	URL   string `json:"url" bson:"url"`
}

// Lesson is keyed by (CourseID, WeekID, LessonID). Slug is unique within
// the same (CourseID, WeekID).
//
// Title is stored and sent under both "title" and the legacy "name" key.
// On input either key is accepted and "title" wins when both are present.
type Lesson struct {
	CourseID           string              `json:"courseId"`
	WeekID             int                 `json:"weekId"`
	LessonID           string              `json:"lessonId"`
	Slug               string              `json:"slug"`
	Title              string              `json:"title"`
	Subtitle           string              `json:"subtitle,omitempty"`
	Content            string              `json:"content"`
	VideoURL           *string             `json:"videoUrl"`
	Attachments        []Attachment        `json:"attachments"`
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions,omitempty"`
	Resources          []Resource          `json:"resources,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// lessonDocument is the persisted and wire shape of a Lesson.
type lessonDocument struct {
	CourseID           string              `json:"courseId" bson:"courseId"`
	WeekID             int                 `json:"weekId" bson:"weekId"`
	LessonID           string              `json:"lessonId" bson:"lessonId"`
	Slug               string              `json:"slug" bson:"slug"`
	Title              string              `json:"title" bson:"title"`
	Name               string              `json:"name" bson:"name"`
	Subtitle           string              `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Content            string              `json:"content" bson:"content"`
	VideoURL           *string             `json:"videoUrl" bson:"videoUrl"`
	Attachments        []Attachment        `json:"attachments" bson:"attachments"`
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions,omitempty" bson:"interviewQuestions,omitempty"`
	Resources          []Resource          `json:"resources,omitempty" bson:"resources,omitempty"`
	CreatedAt          time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func (l Lesson) document() lessonDocument {
	return lessonDocument{
		CourseID:           l.CourseID,
		WeekID:             l.WeekID,
		LessonID:           l.LessonID,
		Slug:               l.Slug,
		Title:              l.Title,
		Name:               l.Title,
		Subtitle:           l.Subtitle,
		Content:            l.Content,
		VideoURL:           l.VideoURL,
		Attachments:        l.Attachments,
		InterviewQuestions: l.InterviewQuestions,
		Resources:          l.Resources,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func (d lessonDocument) lesson() Lesson {
	title := d.Title
	if title == "" {
		title = d.Name
	}
	return Lesson{
		CourseID:           d.CourseID,
		WeekID:             d.WeekID,
		LessonID:           d.LessonID,
		Slug:               d.Slug,
		Title:              title,
		Subtitle:           d.Subtitle,
		Content:            d.Content,
		VideoURL:           d.VideoURL,
		Attachments:        d.Attachments,
		InterviewQuestions: d.InterviewQuestions,
		Resources:          d.Resources,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// MarshalJSON writes both title and name.
func (l Lesson) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.document())
}

// UnmarshalJSON accepts title, name or both.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	var d lessonDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*l = d.lesson()
	return nil
}

// MarshalBSON writes both title and name.
func (l Lesson) MarshalBSON() ([]byte, error) {
	return bson.Marshal(l.document())
}

// UnmarshalBSON accepts title, name or both.
func (l *Lesson) UnmarshalBSON(data []byte) error {
	var d lessonDocument
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	*l = d.lesson()
	return nil
}

// Ref is the lesson's entry in its week's lesson list.
func (l Lesson) Ref() LessonRef {
	return LessonRef{ID: l.LessonID, Title: l.Title}
}

// LessonFilter selects lessons; empty fields match everything.
type LessonFilter struct {
	CourseID string
	WeekID   *int
	LessonID string
	Slug     string
}

// Matches reports whether l satisfies the filter.
func (f LessonFilter) Matches(l *Lesson) bool {
	return (f.CourseID == "" || l.CourseID == f.CourseID) &&
		(f.WeekID == nil || l.WeekID == *f.WeekID) &&
		(f.LessonID == "" || l.LessonID == f.LessonID) &&
		(f.Slug == "" || l.Slug == f.Slug)
}

// LessonPatch is a sparse lesson update. LessonID renames the lesson.
// Setting Title writes both stored title keys.
type LessonPatch struct {
	LessonID           *string
	Slug               *string
	Title              *string
	Subtitle           *string
	Content            *string
	VideoURLSet        bool
	VideoURL           *string
	AttachmentsSet     bool
	Attachments        []Attachment
	InterviewQuestions *[]InterviewQuestion
	Resources          *[]Resource
	UpdatedAt          time.Time
}

// Apply writes the patch onto l.
func (p LessonPatch) Apply(l *Lesson) {
	if p.LessonID != nil {
		l.LessonID = *p.LessonID
	}
	if p.Slug != nil {
		l.Slug = *p.Slug
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Subtitle != nil {
		l.Subtitle = *p.Subtitle
	}
	if p.Content != nil {
		l.Content = *p.Content
	}
	if p.VideoURLSet {
		l.VideoURL = p.VideoURL
	}
	if p.AttachmentsSet {
		l.Attachments = p.Attachments
	}
	if p.InterviewQuestions != nil {
		l.InterviewQuestions = *p.InterviewQuestions
	}
	if p.Resources != nil {
		l.Resources = *p.Resources
	}
	l.UpdatedAt = p.UpdatedAt
}

// Fields maps the set fields to their stored names, updatedAt included.
func (p LessonPatch) Fields() map[string]any {
	m := map[string]any{"updatedAt": p.UpdatedAt}
	if p.LessonID != nil {
		m["lessonId"] = *p.LessonID
	}
	if p.Slug != nil {
		m["slug"] = *p.Slug
	}
	if p.Title != nil {
		m["title"] = *p.Title
		m["name"] = *p.Title
	}
	if p.Subtitle != nil {
		m["subtitle"] = *p.Subtitle
	}
	if p.Content != nil {
		m["content"] = *p.Content
	}
	if p.VideoURLSet {
		m["videoUrl"] = p.VideoURL
	}
	if p.AttachmentsSet {
		m["attachments"] = p.Attachments
	}
	if p.InterviewQuestions != nil {
		m["interviewQuestions"] = *p.InterviewQuestions
	}
	if p.Resources != nil {
		m["resources"] = *p.Resources
	}
	return m
}

// LessonKey addresses one lesson.
type LessonKey struct {
	CourseID string
	WeekID   int
	LessonID string
}

// Key returns the lesson's business key.
func (l Lesson) Key() LessonKey {
	return LessonKey{CourseID: l.CourseID, WeekID: l.WeekID, LessonID: l.LessonID}
}
