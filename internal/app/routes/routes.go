package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/controllers"
	"github.com/yigit/academy/internal/app/views"
	"github.com/yigit/academy/internal/middleware"
)

// LoginLimit bounds sign-in attempts per client IP
type LoginLimit struct {
	Attempts int
	Window   time.Duration
}

// Handlers is everything SetupRouter mounts
type Handlers struct {
	Course  *controllers.CourseController
	Week    *controllers.WeekController
	Lesson  *controllers.LessonController
	Upload  *controllers.UploadController
	Auth    *controllers.AuthController
	Console *controllers.AdminConsoleController
	Public  *controllers.PublicController

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	LoginLimit     LoginLimit
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers) {
	router.SetHTMLTemplate(views.MustTemplates())
	router.StaticFS("/static", views.Static())

	// Known paths called with another method answer 405
	router.HandleMethodNotAllowed = true
	router.NoMethod(middleware.MethodNotAllowed())
	router.NoRoute(h.Public.NotFound)

	router.GET("/healthz", controllers.Health)

	loginLimit := h.RateLimiter.Limit("login", h.LoginLimit.Attempts, h.LoginLimit.Window)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Content routes (no authentication) ---
	courses := v1.Group("/courses")
	{
		courses.GET("", h.Course.ListCourses)
		courses.POST("", h.Course.CreateCourse)
		courses.PUT("", h.Course.UpdateCourse)
		courses.DELETE("", h.Course.DeleteCourse)
		courses.DELETE("/tree", h.Course.DeleteCourseTree)
		courses.POST("/reconcile", h.Course.ReconcileCourse)
	}

	weeks := v1.Group("/course-week")
	{
		weeks.GET("", h.Week.ListWeeks)
		weeks.POST("", h.Week.CreateWeek)
		weeks.PATCH("", h.Week.UpdateWeek)
		weeks.DELETE("", h.Week.DeleteWeek)
		weeks.DELETE("/tree", h.Week.DeleteWeekTree)
		weeks.POST("/reconcile", h.Week.ReconcileWeek)
	}

	lessons := v1.Group("/lesson-content")
	{
		lessons.GET("", h.Lesson.ListLessons)
		lessons.POST("", h.Lesson.CreateLesson)
		lessons.PATCH("", h.Lesson.UpdateLesson)
		lessons.DELETE("", h.Lesson.DeleteLesson)
	}

	// --- Admin session routes ---
	v1.POST("/auth/login", loginLimit, h.Auth.Login)

	uploads := v1.Group("/uploads")
	uploads.Use(h.AuthMiddleware.AdminAPI())
	{
		uploads.POST("", h.Upload.Upload)
	}

	setupAdminConsole(router, h, loginLimit)
	setupPublicSite(router, h.Public)
}

// setupAdminConsole mounts the server-rendered console under /admin
func setupAdminConsole(router *gin.Engine, h Handlers, loginLimit gin.HandlerFunc) {
	c := h.Console
	admin := router.Group("/admin")
	admin.GET("/login", c.LoginPage)
	admin.POST("/login", loginLimit, c.Login)
	admin.POST("/logout", c.Logout)

	console := admin.Group("")
	console.Use(h.AuthMiddleware.AdminPage())
	console.GET("", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusSeeOther, "/admin/courses")
	})

	courses := console.Group("/courses")
	{
		courses.GET("", c.Courses)
		courses.POST("", c.CreateCourse)
		courses.GET("/new", c.NewCourse)
		courses.GET("/:courseId/edit", c.EditCourse)
		courses.POST("/:courseId", c.UpdateCourse)
		courses.GET("/:courseId/delete", c.ConfirmDeleteCourse)
		courses.POST("/:courseId/delete", c.DeleteCourse)
		courses.POST("/:courseId/reconcile", c.ReconcileCourse)
	}

	weeks := courses.Group("/:courseId/weeks")
	{
		weeks.GET("", c.Weeks)
		weeks.POST("", c.CreateWeek)
		weeks.GET("/new", c.NewWeek)
		weeks.GET("/:weekId/edit", c.EditWeek)
		weeks.POST("/:weekId", c.UpdateWeek)
		weeks.GET("/:weekId/delete", c.ConfirmDeleteWeek)
		weeks.POST("/:weekId/delete", c.DeleteWeek)
	}

	lessons := weeks.Group("/:weekId/lessons")
	{
		lessons.GET("", c.Lessons)
		lessons.POST("", c.CreateLesson)
		lessons.GET("/new", c.NewLesson)
		lessons.POST("/new/editor", c.EditLessonDraft)
		lessons.GET("/:lessonId/edit", c.EditLesson)
		lessons.POST("/:lessonId", c.UpdateLesson)
		lessons.POST("/:lessonId/editor", c.EditLessonDraft)
		lessons.GET("/:lessonId/delete", c.ConfirmDeleteLesson)
		lessons.POST("/:lessonId/delete", c.DeleteLesson)
	}
}

// setupPublicSite mounts the marketing pages and the catalog
func setupPublicSite(router *gin.Engine, p *controllers.PublicController) {
	router.GET("/", p.Home)
	router.GET("/about", p.About)
	router.GET("/bootcamp", p.Bootcamp)
	router.GET("/case-studies", p.CaseStudies)
	router.GET("/contact", p.ContactPage)
	router.POST("/contact", p.Contact)
	router.GET("/courses", p.Courses)
	router.GET("/courses/:slug", p.CourseDetail)
}
