package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/app/views"
	"github.com/yigit/academy/internal/middleware"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/editor"
	"github.com/yigit/academy/internal/pkg/logger"
)

const (
	adminHome      = "/admin/courses"
	adminLoginPath = "/admin/login"
)

// flash messages shown on a list page after a redirect
var flashMessages = map[string]string{
	"created":    "Saved.",
	"updated":    "Changes saved.",
	"deleted":    "Deleted.",
	"reconciled": "Counts recomputed.",
}

// SessionCookie configures the admin session cookie
type SessionCookie struct {
	Name   string
	Secure bool
}

// AdminConsoleController renders the admin content console
type AdminConsoleController struct {
	courseService    services.CourseService
	weekService      services.WeekService
	lessonService    services.LessonService
	cascadeService   services.CascadeService
	reconcileService services.ReconcileService
	authService      services.AdminAuthService
	cookie           SessionCookie
}

// NewAdminConsoleController creates a new AdminConsoleController
func NewAdminConsoleController(svc *services.Services, cookie SessionCookie) *AdminConsoleController {
	return &AdminConsoleController{
		courseService:    svc.Course,
		weekService:      svc.Week,
		lessonService:    svc.Lesson,
		cascadeService:   svc.Cascade,
		reconcileService: svc.Reconcile,
		authService:      svc.AdminAuth,
		cookie:           cookie,
	}
}

// render adds the signed-in user and any flash message to data
func (c *AdminConsoleController) render(ctx *gin.Context, status int, page string, data gin.H) {
	if _, ok := data["Username"]; !ok {
		data["Username"] = ctx.GetString(middleware.ContextUsername)
	}
	if msg, ok := flashMessages[ctx.Query("done")]; ok {
		data["Flash"] = msg
	}
	ctx.HTML(status, page, data)
}

// consoleError is the inline message for err. Store failures get a generic
// message; their cause is in the log.
func consoleError(err error) (int, string) {
	status, _ := middleware.StatusFor(err)
	if status >= http.StatusInternalServerError {
		return status, "The content store is unavailable, try again in a moment."
	}
	msg := apperrors.Message(err)
	if field := apperrors.Field(err); field != "" && field != "body" {
		msg = fmt.Sprintf("%s (%s)", msg, field)
	}
	return status, msg
}

// bindForm reads the posted form. A body that cannot be parsed is reported
// like any other invalid input.
func bindForm(ctx *gin.Context, form any) error {
	if err := ctx.ShouldBind(form); err != nil {
		return apperrors.NewValidationError("body", "The form could not be read, please submit it again.")
	}
	return nil
}

func redirectDone(ctx *gin.Context, path, done string) {
	ctx.Redirect(http.StatusSeeOther, path+"?done="+done)
}

func weeksPath(courseID string) string {
	return "/admin/courses/" + url.PathEscape(courseID) + "/weeks"
}

func lessonsPath(courseID string, weekID int) string {
	return weeksPath(courseID) + "/" + strconv.Itoa(weekID) + "/lessons"
}

func lessonPath(courseID string, weekID int, lessonID string) string {
	return lessonsPath(courseID, weekID) + "/" + url.PathEscape(lessonID)
}

// pathWeekID reads :weekId; a bad value is rendered as not found
func pathWeekID(ctx *gin.Context) (int, bool) {
	weekID, err := strconv.Atoi(ctx.Param("weekId"))
	if err != nil || weekID < 1 {
		return 0, false
	}
	return weekID, true
}

func (c *AdminConsoleController) notFound(ctx *gin.Context, msg string) {
	c.render(ctx, http.StatusNotFound, "admin_courses.html", gin.H{
		"Title": "Not found",
		"Error": msg,
	})
}

// reconcileWeek refreshes a week's lesson counters after a lesson change.
// The change itself already succeeded, so failures are only logged.
func (c *AdminConsoleController) reconcileWeek(ctx context.Context, courseID string, weekID int) {
	if _, err := c.reconcileService.ReconcileWeek(ctx, courseID, weekID); err != nil {
		logger.Warn().Err(err).Str("courseId", courseID).Int("weekId", weekID).Msg("Week counters not refreshed")
	}
}

func (c *AdminConsoleController) reconcileCourse(ctx context.Context, courseID string) {
	if _, err := c.reconcileService.ReconcileCourse(ctx, courseID); err != nil {
		logger.Warn().Err(err).Str("courseId", courseID).Msg("Course counters not refreshed")
	}
}

// --- session ---

// LoginPage shows the sign-in form
func (c *AdminConsoleController) LoginPage(ctx *gin.Context) {
	next := middleware.SafeNext(ctx.Query("next"), adminHome)
	if token, err := ctx.Cookie(c.cookie.Name); err == nil && token != "" {
		if _, err := c.authService.Validate(token); err == nil {
			ctx.Redirect(http.StatusSeeOther, next)
			return
		}
	}
	c.render(ctx, http.StatusOK, "admin_login.html", gin.H{
		"Title": "Sign in",
		"Next":  next,
		"Form":  dto.LoginRequest{},
	})
}

// Login checks the credentials and sets the session cookie
func (c *AdminConsoleController) Login(ctx *gin.Context) {
	var form dto.LoginRequest
	next := middleware.SafeNext(ctx.PostForm("next"), adminHome)
	if err := ctx.ShouldBind(&form); err != nil {
		c.render(ctx, http.StatusBadRequest, "admin_login.html", gin.H{
			"Title": "Sign in",
			"Next":  next,
			"Form":  form,
			"Error": "Enter your username and password.",
		})
		return
	}

	session, err := c.authService.Login(ctx.Request.Context(), form.Username, form.Password)
	if err != nil {
		status, msg := consoleError(err)
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			msg = "Invalid username or password."
		}
		form.Password = ""
		c.render(ctx, status, "admin_login.html", gin.H{
			"Title": "Sign in",
			"Next":  next,
			"Form":  form,
			"Error": msg,
		})
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, session.Token, maxAge, "/", "", c.cookie.Secure, true)
	logger.Info().Str("username", session.Username).Msg("Admin signed in")
	ctx.Redirect(http.StatusSeeOther, next)
}

// Logout clears the session cookie
func (c *AdminConsoleController) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookie.Name, "", -1, "/", "", c.cookie.Secure, true)
	ctx.Redirect(http.StatusSeeOther, adminLoginPath)
}

// --- courses ---

// Courses lists courses, filtered by ?q without another store call
func (c *AdminConsoleController) Courses(ctx *gin.Context) {
	q := ctx.Query("q")
	data := gin.H{"Title": "Courses", "Query": q}
	courses, err := c.courseService.ListCourses(ctx.Request.Context(), models.CourseFilter{})
	if err != nil {
		_, data["Error"] = consoleError(err)
		c.render(ctx, http.StatusOK, "admin_courses.html", data)
		return
	}
	data["Courses"] = views.FilterCourses(courses, q)
	c.render(ctx, http.StatusOK, "admin_courses.html", data)
}

func (c *AdminConsoleController) courseForm(ctx *gin.Context, status int, form courseForm, isNew bool, errMsg string) {
	action := "/admin/courses"
	title := "New course"
	if !isNew {
		action = "/admin/courses/" + url.PathEscape(form.CourseID)
		title = "Edit course"
	}
	c.render(ctx, status, "admin_course_form.html", gin.H{
		"Title":  title,
		"Form":   form,
		"IsNew":  isNew,
		"Action": action,
		"Error":  errMsg,
	})
}

// NewCourse shows an empty course form
func (c *AdminConsoleController) NewCourse(ctx *gin.Context) {
	c.courseForm(ctx, http.StatusOK, courseForm{Rating: "0", WeekCount: "0"}, true, "")
}

// CreateCourse saves a new course
func (c *AdminConsoleController) CreateCourse(ctx *gin.Context) {
	var form courseForm
	if err := bindForm(ctx, &form); err != nil {
		status, msg := consoleError(err)
		c.courseForm(ctx, status, form, true, msg)
		return
	}
	course, err := form.model()
	if err == nil {
		_, err = c.courseService.CreateCourse(ctx.Request.Context(), course)
	}
	if err != nil {
		status, msg := consoleError(err)
		c.courseForm(ctx, status, form, true, msg)
		return
	}
	redirectDone(ctx, adminHome, "created")
}

// EditCourse shows the form for one course
func (c *AdminConsoleController) EditCourse(ctx *gin.Context) {
	course, err := c.courseService.GetCourse(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_courses.html", gin.H{"Title": "Courses", "Error": msg})
		return
	}
	c.courseForm(ctx, http.StatusOK, courseFormFrom(course), false, "")
}

// UpdateCourse saves the edit form
func (c *AdminConsoleController) UpdateCourse(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	var form courseForm
	if err := bindForm(ctx, &form); err != nil {
		form.CourseID = courseID
		status, msg := consoleError(err)
		c.courseForm(ctx, status, form, false, msg)
		return
	}
	form.CourseID = courseID

	patch, err := form.patch()
	if err == nil {
		_, err = c.courseService.UpdateCourse(ctx.Request.Context(), courseID, patch)
	}
	if err != nil {
		status, msg := consoleError(err)
		c.courseForm(ctx, status, form, false, msg)
		return
	}
	redirectDone(ctx, adminHome, "updated")
}

// ConfirmDeleteCourse asks before deleting a course
func (c *AdminConsoleController) ConfirmDeleteCourse(ctx *gin.Context) {
	course, err := c.courseService.GetCourse(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_courses.html", gin.H{"Title": "Courses", "Error": msg})
		return
	}
	c.render(ctx, http.StatusOK, "admin_delete.html", gin.H{
		"Title":      "Delete course",
		"Kind":       "course",
		"Label":      fmt.Sprintf("%s (%s)", course.Title, course.CourseID),
		"Action":     "/admin/courses/" + url.PathEscape(course.CourseID) + "/delete",
		"CancelURL":  adminHome,
		"CanCascade": true,
	})
}

// DeleteCourse deletes a course, with its weeks and lessons when cascade is set
func (c *AdminConsoleController) DeleteCourse(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	if ctx.PostForm("confirm") != "yes" {
		ctx.Redirect(http.StatusSeeOther, "/admin/courses/"+url.PathEscape(courseID)+"/delete")
		return
	}

	if ctx.PostForm("cascade") == "yes" {
		report, err := c.cascadeService.DeleteCourseTree(ctx.Request.Context(), courseID)
		c.cascadeResult(ctx, report, err, adminHome)
		return
	}

	if _, err := c.courseService.DeleteCourse(ctx.Request.Context(), courseID); err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_courses.html", gin.H{"Title": "Courses", "Error": msg})
		return
	}
	redirectDone(ctx, adminHome, "deleted")
}

// cascadeResult shows the report of a tree delete, partial ones included
func (c *AdminConsoleController) cascadeResult(ctx *gin.Context, report *services.CascadeReport, err error, back string) {
	status := http.StatusOK
	data := gin.H{"Title": "Delete report", "Report": report, "BackURL": back}
	if err != nil {
		status, data["Error"] = consoleError(err)
		if report == nil {
			c.render(ctx, status, "admin_courses.html", gin.H{"Title": "Courses", "Error": data["Error"]})
			return
		}
	}
	c.render(ctx, status, "admin_cascade_report.html", data)
}

// ReconcileCourse recomputes the course's week and lesson counters
func (c *AdminConsoleController) ReconcileCourse(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	if _, err := c.reconcileService.ReconcileCourse(ctx.Request.Context(), courseID); err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_weeks.html", gin.H{"Title": "Weeks", "CourseID": courseID, "Error": msg})
		return
	}
	redirectDone(ctx, weeksPath(courseID), "reconciled")
}

// --- weeks ---

// Weeks lists the weeks of one course
func (c *AdminConsoleController) Weeks(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	q := ctx.Query("q")
	data := gin.H{"Title": "Weeks", "CourseID": courseID, "Query": q}

	reqCtx := ctx.Request.Context()
	if course, err := c.courseService.GetCourse(reqCtx, courseID); err == nil {
		data["Course"] = course
	} else if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
		_, data["Error"] = consoleError(err)
		c.render(ctx, http.StatusOK, "admin_weeks.html", data)
		return
	}

	weeks, err := c.weekService.ListWeeks(reqCtx, models.WeekFilter{CourseID: courseID})
	if err != nil {
		_, data["Error"] = consoleError(err)
		c.render(ctx, http.StatusOK, "admin_weeks.html", data)
		return
	}
	data["Weeks"] = views.FilterWeeks(weeks, q)
	c.render(ctx, http.StatusOK, "admin_weeks.html", data)
}

func (c *AdminConsoleController) weekForm(ctx *gin.Context, status int, courseID string, form weekForm, isNew bool, errMsg string) {
	action := weeksPath(courseID)
	if !isNew {
		action += "/" + form.WeekID
	}
	c.render(ctx, status, "admin_week_form.html", gin.H{
		"Title":    "Week",
		"CourseID": courseID,
		"Form":     form,
		"IsNew":    isNew,
		"Action":   action,
		"Error":    errMsg,
	})
}

// NewWeek shows an empty week form numbered after the last week
func (c *AdminConsoleController) NewWeek(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	next := 1
	weeks, err := c.weekService.ListWeeks(ctx.Request.Context(), models.WeekFilter{CourseID: courseID})
	if err == nil {
		for _, w := range weeks {
			if w.WeekID >= next {
				next = w.WeekID + 1
			}
		}
	}
	c.weekForm(ctx, http.StatusOK, courseID, weekForm{
		WeekID: strconv.Itoa(next),
		Slug:   models.DefaultWeekSlug(next),
	}, true, "")
}

// CreateWeek saves a new week and refreshes the course's week count
func (c *AdminConsoleController) CreateWeek(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	var form weekForm
	if err := bindForm(ctx, &form); err != nil {
		status, msg := consoleError(err)
		c.weekForm(ctx, status, courseID, form, true, msg)
		return
	}

	week, err := form.model(courseID)
	if err == nil {
		_, err = c.weekService.CreateWeek(ctx.Request.Context(), week)
	}
	if err != nil {
		status, msg := consoleError(err)
		c.weekForm(ctx, status, courseID, form, true, msg)
		return
	}
	c.reconcileCourse(ctx.Request.Context(), courseID)
	redirectDone(ctx, weeksPath(courseID), "created")
}

// EditWeek shows the form for one week
func (c *AdminConsoleController) EditWeek(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	week, err := c.weekService.GetWeek(ctx.Request.Context(), courseID, weekID)
	if err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_weeks.html", gin.H{"Title": "Weeks", "CourseID": courseID, "Error": msg})
		return
	}
	c.weekForm(ctx, http.StatusOK, courseID, weekFormFrom(week), false, "")
}

// UpdateWeek saves the week edit form
func (c *AdminConsoleController) UpdateWeek(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	var form weekForm
	bindErr := bindForm(ctx, &form)
	form.WeekID = strconv.Itoa(weekID)
	if bindErr != nil {
		status, msg := consoleError(bindErr)
		c.weekForm(ctx, status, courseID, form, false, msg)
		return
	}

	patch, err := form.patch(courseID, weekID)
	if err == nil {
		_, err = c.weekService.UpdateWeek(ctx.Request.Context(), courseID, weekID, patch)
	}
	if err != nil {
		status, msg := consoleError(err)
		c.weekForm(ctx, status, courseID, form, false, msg)
		return
	}
	redirectDone(ctx, weeksPath(courseID), "updated")
}

// ConfirmDeleteWeek asks before deleting a week
func (c *AdminConsoleController) ConfirmDeleteWeek(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	week, err := c.weekService.GetWeek(ctx.Request.Context(), courseID, weekID)
	if err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_weeks.html", gin.H{"Title": "Weeks", "CourseID": courseID, "Error": msg})
		return
	}
	label := fmt.Sprintf("week %d of %s", week.WeekID, courseID)
	if week.Title != "" {
		label = fmt.Sprintf("%s (%s)", week.Title, label)
	}
	c.render(ctx, http.StatusOK, "admin_delete.html", gin.H{
		"Title":      "Delete week",
		"Kind":       "week",
		"Label":      label,
		"Action":     fmt.Sprintf("%s/%d/delete", weeksPath(courseID), weekID),
		"CancelURL":  weeksPath(courseID),
		"CanCascade": true,
	})
}

// DeleteWeek deletes a week, with its lessons when cascade is set
func (c *AdminConsoleController) DeleteWeek(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	if ctx.PostForm("confirm") != "yes" {
		ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("%s/%d/delete", weeksPath(courseID), weekID))
		return
	}

	reqCtx := ctx.Request.Context()
	if ctx.PostForm("cascade") == "yes" {
		report, err := c.cascadeService.DeleteWeekTree(reqCtx, courseID, weekID)
		if err == nil {
			c.reconcileCourse(reqCtx, courseID)
		}
		c.cascadeResult(ctx, report, err, weeksPath(courseID))
		return
	}

	if _, err := c.weekService.DeleteWeek(reqCtx, courseID, weekID); err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_weeks.html", gin.H{"Title": "Weeks", "CourseID": courseID, "Error": msg})
		return
	}
	c.reconcileCourse(reqCtx, courseID)
	redirectDone(ctx, weeksPath(courseID), "deleted")
}

// --- lessons ---

// Lessons lists the lessons of one week
func (c *AdminConsoleController) Lessons(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	q := ctx.Query("q")
	data := gin.H{"Title": "Lessons", "CourseID": courseID, "WeekID": weekID, "Query": q}

	lessons, err := c.lessonService.ListLessons(ctx.Request.Context(), models.LessonFilter{CourseID: courseID, WeekID: &weekID})
	if err != nil {
		_, data["Error"] = consoleError(err)
		c.render(ctx, http.StatusOK, "admin_lessons.html", data)
		return
	}
	data["Lessons"] = views.FilterLessons(lessons, q)
	c.render(ctx, http.StatusOK, "admin_lessons.html", data)
}

// editorView is the toolbar state of the lesson form
type editorView struct {
	Action    string
	Blocks    int
	Selected  int
	CanUndo   bool
	CanRedo   bool
	Commands  []editor.Command
	Languages []editor.Language
	Error     string
}

func (c *AdminConsoleController) lessonForm(ctx *gin.Context, status int, courseID string, weekID int, form lessonForm, isNew bool, errMsg, editorErr string) {
	action := lessonsPath(courseID, weekID)
	editorAction := action + "/new/editor"
	if !isNew {
		action = lessonPath(courseID, weekID, form.OldLessonID)
		editorAction = action + "/editor"
	}

	e := editor.New(form.Content, nil)
	e.Restore(form.history())
	c.render(ctx, status, "admin_lesson_form.html", gin.H{
		"Title":    "Lesson",
		"CourseID": courseID,
		"WeekID":   weekID,
		"Form":     form,
		"IsNew":    isNew,
		"Action":   action,
		"Error":    errMsg,
		"Editor": editorView{
			Action:    editorAction,
			Blocks:    e.Blocks(),
			Selected:  e.Select(form.Selected),
			CanUndo:   e.CanUndo(),
			CanRedo:   e.CanRedo(),
			Commands:  editor.Commands,
			Languages: editor.Languages,
			Error:     editorErr,
		},
	})
}

// NewLesson shows an empty lesson form
func (c *AdminConsoleController) NewLesson(ctx *gin.Context) {
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	c.lessonForm(ctx, http.StatusOK, ctx.Param("courseId"), weekID, lessonForm{}, true, "", "")
}

// EditLessonDraft applies one editor operation to the posted draft and shows
// the form again. Nothing is saved.
func (c *AdminConsoleController) EditLessonDraft(ctx *gin.Context) {
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	var form lessonForm
	bindErr := bindForm(ctx, &form)
	isNew := ctx.Param("lessonId") == ""
	if !isNew {
		form.OldLessonID = ctx.Param("lessonId")
	}
	if bindErr != nil {
		status, msg := consoleError(bindErr)
		c.lessonForm(ctx, status, ctx.Param("courseId"), weekID, form, isNew, msg, "")
		return
	}

	e := editor.New(form.Content, nil)
	e.Restore(form.history())
	editorErr := ""
	if err := form.apply(e); err != nil {
		editorErr = err.Error()
	}
	c.lessonForm(ctx, http.StatusOK, ctx.Param("courseId"), weekID, form, isNew, "", editorErr)
}

// CreateLesson saves a new lesson and refreshes the week's lesson list
func (c *AdminConsoleController) CreateLesson(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	var form lessonForm
	if err := bindForm(ctx, &form); err != nil {
		status, msg := consoleError(err)
		c.lessonForm(ctx, status, courseID, weekID, form, true, msg, "")
		return
	}

	lesson, err := form.model(courseID, weekID)
	if err == nil {
		_, err = c.lessonService.CreateLesson(ctx.Request.Context(), lesson)
	}
	if err != nil {
		status, msg := consoleError(err)
		c.lessonForm(ctx, status, courseID, weekID, form, true, msg, "")
		return
	}
	c.reconcileWeek(ctx.Request.Context(), courseID, weekID)
	redirectDone(ctx, lessonsPath(courseID, weekID), "created")
}

// EditLesson shows the form for one lesson
func (c *AdminConsoleController) EditLesson(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	key := models.LessonKey{CourseID: courseID, WeekID: weekID, LessonID: ctx.Param("lessonId")}
	lesson, err := c.lessonService.GetLesson(ctx.Request.Context(), key)
	if err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_lessons.html", gin.H{"Title": "Lessons", "CourseID": courseID, "WeekID": weekID, "Error": msg})
		return
	}
	c.lessonForm(ctx, http.StatusOK, courseID, weekID, lessonFormFrom(lesson), false, "", "")
}

// UpdateLesson saves the lesson form, renaming the lesson when its id changed
func (c *AdminConsoleController) UpdateLesson(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	var form lessonForm
	bindErr := bindForm(ctx, &form)
	form.OldLessonID = ctx.Param("lessonId")
	if bindErr != nil {
		status, msg := consoleError(bindErr)
		c.lessonForm(ctx, status, courseID, weekID, form, false, msg, "")
		return
	}

	key := models.LessonKey{CourseID: courseID, WeekID: weekID, LessonID: form.OldLessonID}
	patch, err := form.patch()
	if err == nil {
		_, err = c.lessonService.UpdateLesson(ctx.Request.Context(), key, patch)
	}
	if err != nil {
		status, msg := consoleError(err)
		c.lessonForm(ctx, status, courseID, weekID, form, false, msg, "")
		return
	}
	c.reconcileWeek(ctx.Request.Context(), courseID, weekID)
	redirectDone(ctx, lessonsPath(courseID, weekID), "updated")
}

// ConfirmDeleteLesson asks before deleting a lesson
func (c *AdminConsoleController) ConfirmDeleteLesson(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	key := models.LessonKey{CourseID: courseID, WeekID: weekID, LessonID: ctx.Param("lessonId")}
	lesson, err := c.lessonService.GetLesson(ctx.Request.Context(), key)
	if err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_lessons.html", gin.H{"Title": "Lessons", "CourseID": courseID, "WeekID": weekID, "Error": msg})
		return
	}
	c.render(ctx, http.StatusOK, "admin_delete.html", gin.H{
		"Title":     "Delete lesson",
		"Kind":      "lesson",
		"Label":     fmt.Sprintf("%s (%s)", lesson.Title, lesson.LessonID),
		"Action":    lessonPath(courseID, weekID, lesson.LessonID) + "/delete",
		"CancelURL": lessonsPath(courseID, weekID),
	})
}

// DeleteLesson deletes one lesson after confirmation
func (c *AdminConsoleController) DeleteLesson(ctx *gin.Context) {
	courseID := ctx.Param("courseId")
	weekID, ok := pathWeekID(ctx)
	if !ok {
		c.notFound(ctx, "week not found")
		return
	}
	lessonID := ctx.Param("lessonId")
	if ctx.PostForm("confirm") != "yes" {
		ctx.Redirect(http.StatusSeeOther, lessonPath(courseID, weekID, lessonID)+"/delete")
		return
	}

	key := models.LessonKey{CourseID: courseID, WeekID: weekID, LessonID: lessonID}
	if _, err := c.lessonService.DeleteLesson(ctx.Request.Context(), key); err != nil {
		status, msg := consoleError(err)
		c.render(ctx, status, "admin_lessons.html", gin.H{"Title": "Lessons", "CourseID": courseID, "WeekID": weekID, "Error": msg})
		return
	}
	c.reconcileWeek(ctx.Request.Context(), courseID, weekID)
	redirectDone(ctx, lessonsPath(courseID, weekID), "deleted")
}
