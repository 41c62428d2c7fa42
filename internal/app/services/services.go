package services

import (
	"github.com/yigit/academy/internal/app/repositories"
	"github.com/yigit/academy/internal/pkg/auth"
	"github.com/yigit/academy/internal/pkg/email"
)

// Services groups the services built over one repository backend
type Services struct {
	Course    CourseService
	Week      WeekService
	Lesson    LessonService
	Cascade   CascadeService
	Reconcile ReconcileService
	AdminAuth AdminAuthService
	Contact   ContactService
}

// AdminCredentials is the single console account
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// NewServices wires every service to repos. jwtService and mailer may be
// nil for tools that only touch content.
func NewServices(repos *repositories.Repositories, admin AdminCredentials, jwtService *auth.JWTService, mailer email.EmailService) *Services {
	s := &Services{
		Course:    NewCourseService(repos.CourseRepository),
		Week:      NewWeekService(repos.WeekRepository),
		Lesson:    NewLessonService(repos.LessonRepository),
		Cascade:   NewCascadeService(repos),
		Reconcile: NewReconcileService(repos),
	}
	if jwtService != nil {
		s.AdminAuth = NewAdminAuthService(admin.Username, admin.PasswordHash, jwtService)
	}
	if mailer != nil {
		s.Contact = NewContactService(mailer)
	}
	return s
}
