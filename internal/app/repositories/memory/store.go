// Package memory is an in-process backend. It enforces the same unique keys
// as the database backends and is used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/repositories"
)

type weekKey struct {
	CourseID string
	WeekID   int
}

type slugKey struct {
	CourseID string
	WeekID   int
	Slug     string
}

// Store holds every collection behind one lock.
type Store struct {
	mu      sync.RWMutex
	courses map[string]models.Course
	weeks   map[weekKey]models.Week
	lessons map[models.LessonKey]models.Lesson
	slugs   map[slugKey]models.LessonKey

	txMu          sync.Mutex
	transactional bool
}

// Option configures a Store.
type Option func(*Store)

// WithoutTransactions makes SupportsTransactions report false, so callers
// take their non-atomic path.
func WithoutTransactions() Option {
	return func(s *Store) { s.transactional = false }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		courses:       make(map[string]models.Course),
		weeks:         make(map[weekKey]models.Week),
		lessons:       make(map[models.LessonKey]models.Lesson),
		slugs:         make(map[slugKey]models.LessonKey),
		transactional: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRepositories returns the repository set backed by s.
func NewRepositories(s *Store) *repositories.Repositories {
	return &repositories.Repositories{
		Driver:           "memory",
		CourseRepository: &CourseRepository{s: s},
		WeekRepository:   &WeekRepository{s: s},
		LessonRepository: &LessonRepository{s: s},
		Transactor:       s,
		Pinger:           s,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// SupportsTransactions reports whether WithTransaction rolls back on error.
func (s *Store) SupportsTransactions(context.Context) bool { return s.transactional }

type txKey struct{}

// inTx reports whether ctx belongs to a unit of work on s.
func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lockWrite takes the write lock. Writes outside a unit of work first wait
// for the running one, so a rollback never drops them.
func (s *Store) lockWrite(ctx context.Context) func() {
	if s.transactional && !s.inTx(ctx) {
		s.txMu.Lock()
		s.mu.Lock()
		return func() {
			s.mu.Unlock()
			s.txMu.Unlock()
		}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTransaction serializes units of work and restores a snapshot when fn
// fails. Without transaction support fn simply runs. Nested calls join the
// outer unit of work.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactional || s.inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	courses map[string]models.Course
	weeks   map[weekKey]models.Week
	lessons map[models.LessonKey]models.Lesson
	slugs   map[slugKey]models.LessonKey
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		courses: make(map[string]models.Course, len(s.courses)),
		weeks:   make(map[weekKey]models.Week, len(s.weeks)),
		lessons: make(map[models.LessonKey]models.Lesson, len(s.lessons)),
		slugs:   make(map[slugKey]models.LessonKey, len(s.slugs)),
	}
	for k, v := range s.courses {
		snap.courses[k] = cloneCourse(v)
	}
	for k, v := range s.weeks {
		snap.weeks[k] = cloneWeek(v)
	}
	for k, v := range s.lessons {
		snap.lessons[k] = cloneLesson(v)
	}
	for k, v := range s.slugs {
		snap.slugs[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = snap.courses
	s.weeks = snap.weeks
	s.lessons = snap.lessons
	s.slugs = snap.slugs
}

func cloneCourse(c models.Course) models.Course {
	if c.Tags != nil {
		c.Tags = append([]string{}, c.Tags...)
	}
	if c.Price != nil {
		p := *c.Price
		c.Price = &p
	}
	return c
}

func cloneWeek(w models.Week) models.Week {
	if w.LessonList != nil {
		w.LessonList = append([]models.LessonRef{}, w.LessonList...)
	}
	return w
}

func cloneLesson(l models.Lesson) models.Lesson {
	if l.VideoURL != nil {
		v := *l.VideoURL
		l.VideoURL = &v
	}
	if l.Attachments != nil {
		l.Attachments = append([]models.Attachment{}, l.Attachments...)
	}
	if l.InterviewQuestions != nil {
		l.InterviewQuestions = append([]models.InterviewQuestion{}, l.InterviewQuestions...)
	}
	if l.Resources != nil {
		l.Resources = append([]models.Resource{}, l.Resources...)
	}
	return l
}
