package views

import (
	"strconv"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// FilterCourses keeps the courses whose title, slug or courseId contains q,
// ignoring case. An empty q keeps everything.
func FilterCourses(courses []models.Course, q string) []models.Course {
	if q == "" {
		return courses
	}
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if helpers.ContainsFold(q, c.Title, c.Slug, c.CourseID) {
			out = append(out, c)
		}
	}
	return out
}

// FilterWeeks matches q against title, slug and the week number.
func FilterWeeks(weeks []models.Week, q string) []models.Week {
	if q == "" {
		return weeks
	}
	out := make([]models.Week, 0, len(weeks))
	for _, w := range weeks {
		if helpers.ContainsFold(q, w.Title, w.Slug, strconv.Itoa(w.WeekID)) {
			out = append(out, w)
		}
	}
	return out
}

// FilterLessons matches q against title, slug and lessonId.
func FilterLessons(lessons []models.Lesson, q string) []models.Lesson {
	if q == "" {
		return lessons
	}
	out := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if helpers.ContainsFold(q, l.Title, l.Slug, l.LessonID) {
			out = append(out, l)
		}
	}
	return out
}
