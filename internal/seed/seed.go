package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/academy/internal/app/models"
	appServices "github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

type lessonSeed struct {
	id, title, content string
}

type weekSeed struct {
	title   string
	lessons []lessonSeed
}

type courseSeed struct {
	course appModels.Course
	weeks  []weekSeed
}

func price(v float64) *float64 { return &v }

var demoCourses = []courseSeed{
	{
		course: appModels.Course{
			CourseID:    "sql",
			Title:       "SQL for Analysts",
			Slug:        "sql-for-analysts",
			Description: "Query, join and aggregate real business data.",
			Tags:        []string{"sql", "data"},
			Rating:      4.8,
			Price:       price(149),
		},
		weeks: []weekSeed{
			{title: "Getting started", lessons: []lessonSeed{
				{"select-basics", "SELECT basics", "<p>Every query starts with <strong>SELECT</strong>.</p>" +
					`<pre><code class="language-sql">SELECT name, city FROM customers;</code></pre>`},
				{"filtering-rows", "Filtering rows", "<p>Use <strong>WHERE</strong> to keep only the rows you need.</p>"},
			}},
			{title: "Joins and aggregates", lessons: []lessonSeed{
				{"inner-joins", "Inner joins", "<p>Combine tables on a shared key.</p>"},
				{"group-by", "GROUP BY", "<p>Summarise rows per group with aggregate functions.</p>"},
			}},
		},
	},
	{
		course: appModels.Course{
			CourseID:    "power-bi",
			Title:       "Power BI Dashboards",
			Slug:        "power-bi-dashboards",
			Description: "Model data and publish reports people actually read.",
			Tags:        []string{"power-bi", "reporting"},
			Rating:      4.6,
		},
		weeks: []weekSeed{
			{title: "Loading data", lessons: []lessonSeed{
				{"power-query", "Power Query", "<p>Clean and shape data before it reaches the model.</p>"},
			}},
			{title: "Visuals", lessons: []lessonSeed{
				{"choosing-charts", "Choosing charts", "<p>Pick the visual that answers the question.</p>"},
			}},
		},
	},
}

// ignoreConflict treats an already existing record as success
func ignoreConflict(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return nil
	}
	return err
}

// CreateDefaultData creates the demo courses with their weeks and lessons if
// they don't exist, then recomputes their counters.
func CreateDefaultData(ctx context.Context, svc *appServices.Services, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Courses/Weeks/Lessons)...")
	var finalErr error // collects errors without stopping the process

	for _, cs := range demoCourses {
		course := cs.course
		course.Tags = append([]string(nil), cs.course.Tags...)
		if _, err := svc.Course.CreateCourse(ctx, &course); ignoreConflict(err) != nil {
			lgr.Error().Err(err).Str("courseId", course.CourseID).Msg("Error creating course")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		for i, ws := range cs.weeks {
			weekID := i + 1
			week := &appModels.Week{
				CourseID: course.CourseID,
				WeekID:   weekID,
				Slug:     appModels.DefaultWeekSlug(weekID),
				Title:    ws.title,
			}
			if _, err := svc.Week.CreateWeek(ctx, week); ignoreConflict(err) != nil {
				lgr.Error().Err(err).Str("courseId", course.CourseID).Int("weekId", weekID).Msg("Error creating week")
				finalErr = errors.Join(finalErr, err)
				continue
			}

			for _, ls := range ws.lessons {
				lesson := &appModels.Lesson{
					CourseID: course.CourseID,
					WeekID:   weekID,
					LessonID: ls.id,
					Slug:     ls.id,
					Title:    ls.title,
					Content:  ls.content,
				}
				if _, err := svc.Lesson.CreateLesson(ctx, lesson); ignoreConflict(err) != nil {
					lgr.Error().Err(err).Str("lessonId", ls.id).Msg("Error creating lesson")
					finalErr = errors.Join(finalErr, err)
				}
			}
		}

		if _, err := svc.Reconcile.ReconcileCourse(ctx, course.CourseID); err != nil {
			lgr.Error().Err(err).Str("courseId", course.CourseID).Msg("Error recomputing course counters")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data is in place.")
	}
	return finalErr
}
