package views

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/academy/internal/app/models"
)

func TestTemplatesDefineEveryPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	pages := []string{
		"home.html", "about.html", "bootcamp.html", "case_studies.html", "contact.html",
		"courses.html", "course_detail.html", "not_found.html",
		"admin_login.html", "admin_courses.html", "admin_course_form.html",
		"admin_weeks.html", "admin_week_form.html", "admin_lessons.html",
		"admin_lesson_form.html", "admin_delete.html", "admin_cascade_report.html",
	}
	for _, p := range pages {
		assert.NotNil(t, tmpl.Lookup(p), p)
	}
}

func TestNotFoundPageRenders(t *testing.T) {
	tmpl := MustTemplates()
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "not_found.html", map[string]any{"Title": "Not found"}))
	assert.Contains(t, buf.String(), "<html")
}

func TestStaticServesStylesheets(t *testing.T) {
	f, err := Static().Open("site.css")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFormatPrice(t *testing.T) {
	zero, paid := 0.0, 149.5
	assert.Equal(t, "Free", formatPrice(nil))
	assert.Equal(t, "Free", formatPrice(&zero))
	assert.Equal(t, "$149.50", formatPrice(&paid))
}

func TestSeq(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, seq(3))
	assert.Empty(t, seq(0))
}

func TestFilterCourses(t *testing.T) {
	courses := []models.Course{
		{CourseID: "sql", Title: "SQL for Analysts", Slug: "sql-for-analysts"},
		{CourseID: "power-bi", Title: "Power BI Dashboards", Slug: "power-bi-dashboards"},
	}

	assert.Len(t, FilterCourses(courses, ""), 2)
	got := FilterCourses(courses, "DASH")
	require.Len(t, got, 1)
	assert.Equal(t, "power-bi", got[0].CourseID)
	assert.Empty(t, FilterCourses(courses, "python"))
}

func TestFilterLessons(t *testing.T) {
	lessons := []models.Lesson{
		{LessonID: "select-basics", Title: "SELECT basics", Slug: "select-basics"},
		{LessonID: "group-by", Title: "GROUP BY", Slug: "group-by"},
	}
	got := FilterLessons(lessons, "group")
	require.Len(t, got, 1)
	assert.Equal(t, "group-by", got[0].LessonID)
}

func TestFilterWeeks(t *testing.T) {
	weeks := []models.Week{
		{WeekID: 1, Title: "Getting started", Slug: "w1"},
		{WeekID: 2, Title: "Joins", Slug: "w2"},
	}
	got := FilterWeeks(weeks, "join")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].WeekID)
}
