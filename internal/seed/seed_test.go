package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appModels "github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories/memory"
	appServices "github.com/yigit/academy/internal/app/services"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := appServices.NewServices(memory.NewRepositories(memory.NewStore()), appServices.AdminCredentials{}, nil, nil)

	require.NoError(t, CreateDefaultData(ctx, svc, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, svc, zerolog.Nop()))

	courses, err := svc.Course.ListCourses(ctx, appModels.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	sql, err := svc.Course.GetCourse(ctx, "sql")
	require.NoError(t, err)
	assert.Equal(t, 2, sql.WeekCount)

	week, err := svc.Week.GetWeek(ctx, "sql", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, week.LessonCount)
	assert.Len(t, week.LessonList, 2)
	assert.Equal(t, "w1", week.Slug)
}
