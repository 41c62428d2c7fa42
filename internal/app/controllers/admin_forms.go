package controllers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/editor"
	"github.com/yigit/academy/internal/pkg/helpers"
	"github.com/yigit/academy/internal/pkg/validation"
)

// courseForm is the admin course form. Numbers stay strings so a bad value
// can be shown back to the user as typed.
type courseForm struct {
	CourseID    string `form:"courseId"`
	Title       string `form:"title"`
	Slug        string `form:"slug"`
	Description string `form:"description"`
	ImageSrc    string `form:"imageSrc"`
	Tags        string `form:"tags"`
	Rating      string `form:"rating"`
	WeekCount   string `form:"weekCount"`
	Price       string `form:"price"`
}

func courseFormFrom(c *models.Course) courseForm {
	f := courseForm{
		CourseID:    c.CourseID,
		Title:       c.Title,
		Slug:        c.Slug,
		Description: c.Description,
		ImageSrc:    c.ImageSrc,
		Tags:        strings.Join(c.Tags, ", "),
		Rating:      strconv.FormatFloat(c.Rating, 'f', -1, 64),
		WeekCount:   strconv.Itoa(c.WeekCount),
	}
	if c.Price != nil {
		f.Price = strconv.FormatFloat(*c.Price, 'f', -1, 64)
	}
	return f
}

// slug falls back to the slugified title
func (f courseForm) slug() (string, error) {
	slug := strings.TrimSpace(f.Slug)
	if slug == "" {
		slug = helpers.Slugify(f.Title)
	}
	if slug != "" && !validation.IsSlug(slug) {
		return "", apperrors.NewValidationError("slug", "slug must be lowercase words separated by hyphens")
	}
	return slug, nil
}

func (f courseForm) model() (*models.Course, error) {
	courseID := strings.TrimSpace(f.CourseID)
	if courseID != "" && !validation.IsKey(courseID) {
		return nil, apperrors.NewValidationError("courseId", "courseId may contain letters, digits, '-' and '_' only")
	}
	slug, err := f.slug()
	if err != nil {
		return nil, err
	}
	rating, err := optionalFloat("rating", f.Rating)
	if err != nil {
		return nil, err
	}
	weekCount, err := optionalInt("weekCount", f.WeekCount)
	if err != nil {
		return nil, err
	}
	price, err := optionalFloat("price", f.Price)
	if err != nil {
		return nil, err
	}
	if price != nil && *price < 0 {
		return nil, apperrors.NewValidationError("price", "price must be at least 0")
	}

	c := &models.Course{
		CourseID:    courseID,
		Title:       strings.TrimSpace(f.Title),
		Slug:        slug,
		Description: f.Description,
		ImageSrc:    strings.TrimSpace(f.ImageSrc),
		Tags:        splitTags(f.Tags),
		Price:       price,
	}
	if rating != nil {
		c.Rating = *rating
	}
	if weekCount != nil {
		c.WeekCount = *weekCount
	}
	return c, nil
}

// patch sets every editable field; the form always carries all of them
func (f courseForm) patch() (models.CoursePatch, error) {
	c, err := f.model()
	if err != nil {
		return models.CoursePatch{}, err
	}
	if c.Title == "" {
		return models.CoursePatch{}, apperrors.NewMissingFieldError("title")
	}
	if c.Rating < validation.RatingMin || c.Rating > validation.RatingMax {
		return models.CoursePatch{}, apperrors.NewValidationError("rating", "rating must be between 0 and 5")
	}
	if c.WeekCount < 0 {
		return models.CoursePatch{}, apperrors.NewValidationError("weekCount", "weekCount must be at least 0")
	}
	return models.CoursePatch{
		Title:       &c.Title,
		Slug:        &c.Slug,
		Description: &c.Description,
		ImageSrc:    &c.ImageSrc,
		Tags:        &c.Tags,
		Rating:      &c.Rating,
		WeekCount:   &c.WeekCount,
		PriceSet:    true,
		Price:       c.Price,
	}, nil
}

// weekForm is the admin week form
type weekForm struct {
	WeekID      string `form:"weekId"`
	Slug        string `form:"slug"`
	Title       string `form:"title"`
	Description string `form:"description"`
}

func weekFormFrom(w *models.Week) weekForm {
	return weekForm{
		WeekID:      strconv.Itoa(w.WeekID),
		Slug:        w.Slug,
		Title:       w.Title,
		Description: w.Description,
	}
}

func (f weekForm) model(courseID string) (*models.Week, error) {
	weekID, err := positiveInt("weekId", f.WeekID)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(f.Slug)
	if slug == "" {
		slug = models.DefaultWeekSlug(weekID)
	}
	return &models.Week{
		CourseID:    courseID,
		WeekID:      weekID,
		Slug:        slug,
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
	}, nil
}

func (f weekForm) patch(courseID string, weekID int) (models.WeekPatch, error) {
	f.WeekID = strconv.Itoa(weekID)
	w, err := f.model(courseID)
	if err != nil {
		return models.WeekPatch{}, err
	}
	return models.WeekPatch{
		Slug:        &w.Slug,
		Title:       &w.Title,
		Description: &w.Description,
	}, nil
}

// lessonForm is the admin lesson form. It also carries the editor draft:
// the selected block, the undo history and the insert dialogs.
type lessonForm struct {
	LessonID    string `form:"lessonId"`
	OldLessonID string `form:"oldLessonId"`
	Title       string `form:"title"`
	Slug        string `form:"slug"`
	Subtitle    string `form:"subtitle"`
	VideoURL    string `form:"videoUrl"`
	Attachments string `form:"attachments"`
	Content     string `form:"content"`

	History  string `form:"history"`
	Selected int    `form:"selected"`
	Op       string `form:"op"`
	ImageURL string `form:"imageUrl"`
	ImageAlt string `form:"imageAlt"`
	LinkText string `form:"linkText"`
	LinkURL  string `form:"linkUrl"`
	Code     string `form:"code"`
	Language string `form:"language"`
}

func lessonFormFrom(l *models.Lesson) lessonForm {
	f := lessonForm{
		LessonID:    l.LessonID,
		OldLessonID: l.LessonID,
		Title:       l.Title,
		Slug:        l.Slug,
		Subtitle:    l.Subtitle,
		Content:     l.Content,
		Attachments: formatAttachments(l.Attachments),
	}
	if l.VideoURL != nil {
		f.VideoURL = *l.VideoURL
	}
	return f
}

// fields validates the stored fields of the form
func (f lessonForm) fields() (lessonID, slug string, videoURL *string, attachments []models.Attachment, err error) {
	slug = strings.TrimSpace(f.Slug)
	if slug == "" {
		slug = helpers.Slugify(f.Title)
	}
	if slug != "" && !validation.IsSlug(slug) {
		return "", "", nil, nil, apperrors.NewValidationError("slug", "slug must be lowercase words separated by hyphens")
	}
	lessonID = strings.TrimSpace(f.LessonID)
	if lessonID == "" {
		lessonID = slug
	}
	if lessonID != "" && !validation.IsKey(lessonID) {
		return "", "", nil, nil, apperrors.NewValidationError("lessonId", "lessonId may contain letters, digits, '-' and '_' only")
	}
	if v := strings.TrimSpace(f.VideoURL); v != "" {
		videoURL = &v
	}
	attachments, err = parseAttachments(f.Attachments)
	return lessonID, slug, videoURL, attachments, err
}

func (f lessonForm) model(courseID string, weekID int) (*models.Lesson, error) {
	lessonID, slug, videoURL, attachments, err := f.fields()
	if err != nil {
		return nil, err
	}
	return &models.Lesson{
		CourseID:    courseID,
		WeekID:      weekID,
		LessonID:    lessonID,
		Slug:        slug,
		Title:       strings.TrimSpace(f.Title),
		Subtitle:    f.Subtitle,
		Content:     f.Content,
		VideoURL:    videoURL,
		Attachments: attachments,
	}, nil
}

// patch leaves interview questions and resources alone; the form has no
// inputs for them.
func (f lessonForm) patch() (models.LessonPatch, error) {
	lessonID, slug, videoURL, attachments, err := f.fields()
	if err != nil {
		return models.LessonPatch{}, err
	}
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return models.LessonPatch{}, apperrors.NewMissingFieldError("title")
	}
	p := models.LessonPatch{
		Slug:           &slug,
		Title:          &title,
		Subtitle:       &f.Subtitle,
		Content:        &f.Content,
		VideoURLSet:    true,
		VideoURL:       videoURL,
		AttachmentsSet: true,
		Attachments:    attachments,
	}
	if lessonID != f.OldLessonID {
		p.LessonID = &lessonID
	}
	return p, nil
}

// history decodes the undo stacks carried in the form. A damaged value
// starts a fresh history.
func (f lessonForm) history() editor.History {
	var h editor.History
	if f.History == "" {
		return h
	}
	raw, err := base64.StdEncoding.DecodeString(f.History)
	if err != nil {
		return editor.History{}
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return editor.History{}
	}
	return h
}

func encodeHistory(h editor.History) string {
	if len(h.Undo) == 0 && len(h.Redo) == 0 {
		return ""
	}
	raw, err := json.Marshal(h)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// apply runs the requested editor operation against the draft content
func (f *lessonForm) apply(e *editor.Editor) error {
	e.Select(f.Selected)
	var err error
	switch f.Op {
	case "image":
		if err = e.InsertImage(f.ImageURL, f.ImageAlt); err == nil {
			f.ImageURL, f.ImageAlt = "", ""
		}
	case "link":
		if err = e.InsertLink(f.LinkText, f.LinkURL); err == nil {
			f.LinkText, f.LinkURL = "", ""
		}
	case "code":
		var lang editor.Language
		if lang, err = editor.ParseLanguage(f.Language); err == nil {
			if err = e.InsertCodeBlock(f.Code, lang); err == nil {
				f.Code = ""
			}
		}
	default:
		var cmd editor.Command
		if cmd, err = editor.ParseCommand(f.Op); err == nil {
			err = e.Exec(cmd)
		}
	}
	f.Content = e.HTML()
	f.Selected = e.Selected()
	f.History = encodeHistory(e.History())
	return err
}

func formatAttachments(list []models.Attachment) string {
	lines := make([]string, 0, len(list))
	for _, a := range list {
		lines = append(lines, fmt.Sprintf("%s | %s | %s", a.Name, a.URL, a.Type))
	}
	return strings.Join(lines, "\n")
}

// parseAttachments reads "name | url | type" lines. Type is optional and
// a line with only a URL uses it as the name.
func parseAttachments(text string) ([]models.Attachment, error) {
	var out []models.Attachment
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		var a models.Attachment
		switch len(parts) {
		case 1:
			a = models.Attachment{Name: parts[0], URL: parts[0]}
		case 2:
			a = models.Attachment{Name: parts[0], URL: parts[1]}
		case 3:
			a = models.Attachment{Name: parts[0], URL: parts[1], Type: parts[2]}
		default:
			return nil, apperrors.NewValidationError("attachments", fmt.Sprintf("attachment line %d has too many fields", i+1))
		}
		if a.URL == "" {
			return nil, apperrors.NewValidationError("attachments", fmt.Sprintf("attachment line %d has no url", i+1))
		}
		out = append(out, a)
	}
	return out, nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func optionalFloat(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(field, field+" must be a number")
	}
	return &v, nil
}

func optionalInt(field, s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperrors.NewValidationError(field, field+" must be a whole number")
	}
	return &v, nil
}

func positiveInt(field, s string) (int, error) {
	v, err := optionalInt(field, s)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, apperrors.NewMissingFieldError(field)
	}
	if *v < 1 {
		return 0, apperrors.NewValidationError(field, field+" must be a positive integer")
	}
	return *v, nil
}
