package memory

import (
	"context"
	"sort"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
)

// CourseRepository implements repositories.CourseRepository.
type CourseRepository struct{ s *Store }

func (r *CourseRepository) List(_ context.Context, filter models.CourseFilter) ([]models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Course{}
	for _, c := range r.s.courses {
		if filter.Matches(&c) {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (r *CourseRepository) Get(_ context.Context, courseID string) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.courses[courseID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c = cloneCourse(c)
	return &c, nil
}

func (r *CourseRepository) Exists(_ context.Context, courseID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.courses[courseID]
	return ok, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.courses[course.CourseID]; ok {
		return repositories.NewDuplicateKeyError("courseId", nil)
	}
	r.s.courses[course.CourseID] = cloneCourse(*course)
	return nil
}

func (r *CourseRepository) Update(ctx context.Context, courseID string, patch models.CoursePatch) (*models.Course, error) {
	defer r.s.lockWrite(ctx)()

	c, ok := r.s.courses[courseID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	patch.Apply(&c)
	r.s.courses[courseID] = cloneCourse(c)
	c = cloneCourse(c)
	return &c, nil
}

func (r *CourseRepository) Delete(ctx context.Context, courseID string) (*models.Course, error) {
	defer r.s.lockWrite(ctx)()

	c, ok := r.s.courses[courseID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(r.s.courses, courseID)
	return &c, nil
}

// WeekRepository implements repositories.WeekRepository.
type WeekRepository struct{ s *Store }

func (r *WeekRepository) List(_ context.Context, filter models.WeekFilter) ([]models.Week, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Week{}
	for _, w := range r.s.weeks {
		if filter.Matches(&w) {
			out = append(out, cloneWeek(w))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].WeekID < out[j].WeekID
	})
	return out, nil
}

func (r *WeekRepository) Get(_ context.Context, courseID string, weekID int) (*models.Week, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.weeks[weekKey{courseID, weekID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	w = cloneWeek(w)
	return &w, nil
}

func (r *WeekRepository) Exists(_ context.Context, courseID string, weekID int) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.weeks[weekKey{courseID, weekID}]
	return ok, nil
}

func (r *WeekRepository) Create(ctx context.Context, week *models.Week) error {
	defer r.s.lockWrite(ctx)()

	k := weekKey{week.CourseID, week.WeekID}
	if _, ok := r.s.weeks[k]; ok {
		return repositories.NewDuplicateKeyError("weekId", nil)
	}
	r.s.weeks[k] = cloneWeek(*week)
	return nil
}

func (r *WeekRepository) Update(ctx context.Context, courseID string, weekID int, patch models.WeekPatch) (*models.Week, error) {
	defer r.s.lockWrite(ctx)()

	k := weekKey{courseID, weekID}
	w, ok := r.s.weeks[k]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	patch.Apply(&w)
	r.s.weeks[k] = cloneWeek(w)
	w = cloneWeek(w)
	return &w, nil
}

func (r *WeekRepository) Delete(ctx context.Context, courseID string, weekID int) (*models.Week, error) {
	defer r.s.lockWrite(ctx)()

	k := weekKey{courseID, weekID}
	w, ok := r.s.weeks[k]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(r.s.weeks, k)
	return &w, nil
}

func (r *WeekRepository) DeleteMany(ctx context.Context, filter models.WeekFilter) (int, error) {
	defer r.s.lockWrite(ctx)()

	n := 0
	for k, w := range r.s.weeks {
		if filter.Matches(&w) {
			delete(r.s.weeks, k)
			n++
		}
	}
	return n, nil
}

func (r *WeekRepository) Count(_ context.Context, filter models.WeekFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, w := range r.s.weeks {
		if filter.Matches(&w) {
			n++
		}
	}
	return n, nil
}

// LessonRepository implements repositories.LessonRepository.
type LessonRepository struct{ s *Store }

func (r *LessonRepository) List(_ context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.Lesson{}
	for _, l := range r.s.lessons {
		if filter.Matches(&l) {
			out = append(out, cloneLesson(l))
		}
	}
	sortLessons(out)
	return out, nil
}

func sortLessons(ls []models.Lesson) {
	sort.Slice(ls, func(i, j int) bool {
		a, b := ls[i], ls[j]
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		if a.WeekID != b.WeekID {
			return a.WeekID < b.WeekID
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.LessonID < b.LessonID
	})
}

func (r *LessonRepository) Get(_ context.Context, key models.LessonKey) (*models.Lesson, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.lessons[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	l = cloneLesson(l)
	return &l, nil
}

func (r *LessonRepository) Exists(_ context.Context, filter models.LessonFilter) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, l := range r.s.lessons {
		if filter.Matches(&l) {
			return true, nil
		}
	}
	return false, nil
}

func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	defer r.s.lockWrite(ctx)()

	k := lesson.Key()
	if _, ok := r.s.lessons[k]; ok {
		return repositories.NewDuplicateKeyError("lessonId", nil)
	}
	sk := slugKey{lesson.CourseID, lesson.WeekID, lesson.Slug}
	if _, ok := r.s.slugs[sk]; ok {
		return repositories.NewDuplicateKeyError("slug", nil)
	}
	r.s.lessons[k] = cloneLesson(*lesson)
	r.s.slugs[sk] = k
	return nil
}

func (r *LessonRepository) Update(ctx context.Context, key models.LessonKey, patch models.LessonPatch) (*models.Lesson, error) {
	defer r.s.lockWrite(ctx)()

	l, ok := r.s.lessons[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	oldSlug := slugKey{l.CourseID, l.WeekID, l.Slug}
	patch.Apply(&l)

	newKey := l.Key()
	if newKey != key {
		if _, taken := r.s.lessons[newKey]; taken {
			return nil, repositories.NewDuplicateKeyError("lessonId", nil)
		}
	}
	newSlug := slugKey{l.CourseID, l.WeekID, l.Slug}
	if owner, taken := r.s.slugs[newSlug]; taken && owner != key {
		return nil, repositories.NewDuplicateKeyError("slug", nil)
	}

	delete(r.s.lessons, key)
	delete(r.s.slugs, oldSlug)
	r.s.lessons[newKey] = cloneLesson(l)
	r.s.slugs[newSlug] = newKey
	l = cloneLesson(l)
	return &l, nil
}

func (r *LessonRepository) Delete(ctx context.Context, key models.LessonKey) (*models.Lesson, error) {
	defer r.s.lockWrite(ctx)()

	l, ok := r.s.lessons[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(r.s.lessons, key)
	delete(r.s.slugs, slugKey{l.CourseID, l.WeekID, l.Slug})
	return &l, nil
}

func (r *LessonRepository) DeleteMany(ctx context.Context, filter models.LessonFilter) (int, error) {
	defer r.s.lockWrite(ctx)()

	n := 0
	for k, l := range r.s.lessons {
		if filter.Matches(&l) {
			delete(r.s.lessons, k)
			delete(r.s.slugs, slugKey{l.CourseID, l.WeekID, l.Slug})
			n++
		}
	}
	return n, nil
}

func (r *LessonRepository) Count(_ context.Context, filter models.LessonFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, l := range r.s.lessons {
		if filter.Matches(&l) {
			n++
		}
	}
	return n, nil
}
