package controllers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
	"github.com/yigit/academy/internal/pkg/logger"
)

// featuredCourses is how many courses the home page shows
const featuredCourses = 3

// CaseStudy is a customer story on the case studies page
type CaseStudy struct {
	Title   string
	Company string
	Summary string
}

var caseStudies = []CaseStudy{
	{
		Title:   "From spreadsheets to a weekly sales dashboard",
		Company: "Regional retail chain",
		Summary: "Two store managers finished the Power BI course and replaced a forty-tab workbook with one refreshed report.",
	},
	{
		Title:   "Cutting report turnaround from days to minutes",
		Company: "Logistics start-up",
		Summary: "The operations team learned joins and window functions in the SQL course and now answer delivery questions themselves.",
	},
	{
		Title:   "A career switch into analytics",
		Company: "Bootcamp graduate",
		Summary: "A former accountant built a portfolio during the bootcamp and was hired as a junior analyst within three months.",
	},
}

// PublicController renders the marketing site and course catalog. The
// public pages only read; nothing here writes content.
type PublicController struct {
	courseService  services.CourseService
	weekService    services.WeekService
	contactService services.ContactService
}

// NewPublicController creates a new PublicController. contact may be nil,
// which disables the contact form.
func NewPublicController(course services.CourseService, week services.WeekService, contact services.ContactService) *PublicController {
	return &PublicController{
		courseService:  course,
		weekService:    week,
		contactService: contact,
	}
}

// Home renders the landing page with a few courses
func (c *PublicController) Home(ctx *gin.Context) {
	data := gin.H{"Title": ""}
	courses, err := c.courseService.ListCourses(ctx.Request.Context(), models.CourseFilter{})
	if err != nil {
		logger.Warn().Err(err).Msg("Home page without courses")
		data["Error"] = "Courses are unavailable right now."
	} else {
		sortCourses(courses)
		if len(courses) > featuredCourses {
			courses = courses[:featuredCourses]
		}
		data["Courses"] = courses
	}
	ctx.HTML(http.StatusOK, "home.html", data)
}

// About renders the about page
func (c *PublicController) About(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// Bootcamp renders the bootcamp page
func (c *PublicController) Bootcamp(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "bootcamp.html", gin.H{"Title": "Bootcamp"})
}

// CaseStudies renders the customer stories
func (c *PublicController) CaseStudies(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "case_studies.html", gin.H{"Title": "Case studies", "CaseStudies": caseStudies})
}

// ContactPage shows the contact form, prefilled with ?topic
func (c *PublicController) ContactPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "contact.html", gin.H{
		"Title": "Contact",
		"Form":  dto.ContactRequest{Topic: ctx.Query("topic")},
	})
}

// Contact forwards the enquiry by email
func (c *PublicController) Contact(ctx *gin.Context) {
	var form dto.ContactRequest
	data := gin.H{"Title": "Contact"}
	if err := ctx.ShouldBind(&form); err != nil {
		data["Form"] = form
		data["Error"] = "Please fill in your name, a valid email and a message."
		ctx.HTML(http.StatusBadRequest, "contact.html", data)
		return
	}
	if c.contactService == nil {
		data["Form"] = form
		data["Error"] = "The contact form is not available, please email us directly."
		ctx.HTML(http.StatusServiceUnavailable, "contact.html", data)
		return
	}
	if err := c.contactService.Submit(ctx.Request.Context(), form); err != nil {
		status, _ := middleware.StatusFor(err)
		data["Form"] = form
		data["Error"] = "We could not send your message, please try again later."
		ctx.HTML(status, "contact.html", data)
		return
	}
	data["Sent"] = true
	ctx.HTML(http.StatusOK, "contact.html", data)
}

// Courses renders the catalog
func (c *PublicController) Courses(ctx *gin.Context) {
	data := gin.H{"Title": "Courses"}
	courses, err := c.courseService.ListCourses(ctx.Request.Context(), models.CourseFilter{})
	if err != nil {
		logger.Warn().Err(err).Msg("Catalog unavailable")
		data["Error"] = "Courses are unavailable right now."
	} else {
		sortCourses(courses)
		data["Courses"] = courses
	}
	ctx.HTML(http.StatusOK, "courses.html", data)
}

// CourseDetail renders one course by slug with its weeks. Lesson titles come
// from each week's stored lesson list.
func (c *PublicController) CourseDetail(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	courses, err := c.courseService.ListCourses(reqCtx, models.CourseFilter{Slug: ctx.Param("slug")})
	if err != nil {
		logger.Warn().Err(err).Str("slug", ctx.Param("slug")).Msg("Course page unavailable")
		ctx.HTML(http.StatusOK, "course_detail.html", gin.H{"Title": "Course", "Error": "This course is unavailable right now."})
		return
	}
	if len(courses) == 0 {
		ctx.HTML(http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found", "Message": "We could not find that course."})
		return
	}
	course := courses[0]

	data := gin.H{"Title": course.Title, "Course": course}
	weeks, err := c.weekService.ListWeeks(reqCtx, models.WeekFilter{CourseID: course.CourseID})
	if err != nil {
		logger.Warn().Err(err).Str("courseId", course.CourseID).Msg("Syllabus unavailable")
		data["Error"] = "The syllabus is unavailable right now."
	} else {
		slices.SortFunc(weeks, func(a, b models.Week) int { return a.WeekID - b.WeekID })
		data["Weeks"] = weeks
	}
	ctx.HTML(http.StatusOK, "course_detail.html", data)
}

// NotFound answers unknown paths: JSON under /api, a page elsewhere
func (c *PublicController) NotFound(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		middleware.NotFound()(ctx)
		return
	}
	ctx.HTML(http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
}

// sortCourses orders by title so pages are stable across drivers
func sortCourses(courses []models.Course) {
	slices.SortFunc(courses, func(a, b models.Course) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
}
