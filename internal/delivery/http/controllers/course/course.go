package course

import (
	"context"
	"net/http"

	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/response"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseService interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	Courses(ctx context.Context) ([]models.Course, error)
	Course(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error

	CreateChapter(ctx context.Context, chapter *models.Chapter) error
	Chapters(ctx context.Context, courseID uuid.UUID) ([]models.Chapter, error)
	Chapter(ctx context.Context, id uuid.UUID) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id uuid.UUID, upd models.ChapterUpdate) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id uuid.UUID) error
}

type CourseHandler struct {
	log     logger.Log
	service CourseService
}

func NewCourseHandler(l logger.Log, s CourseService) *CourseHandler {
	return &CourseHandler{
		log:     l,
		service: s,
	}
}

type courseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

type courseUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	course := models.Course{Title: input.Title, Description: input.Description}
	if err := h.service.CreateCourse(c.Request.Context(), &course); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) CourseByID(c *gin.Context) {
	id, ok := response.ParamID(c, "course_id")
	if !ok {
		return
	}
	course, err := h.service.Course(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := response.ParamID(c, "course_id")
	if !ok {
		return
	}
	var input courseUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), id, models.CourseUpdate{
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := response.ParamID(c, "course_id")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) CourseChapters(c *gin.Context) {
	id, ok := response.ParamID(c, "course_id")
	if !ok {
		return
	}
	chapters, err := h.service.Chapters(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chapters)
}

type chapterRequest struct {
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description *string   `json:"description"`
	OrderIndex  int       `json:"order_index"`
}

type chapterUpdateRequest struct {
	CourseID    *uuid.UUID `json:"course_id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	OrderIndex  *int       `json:"order_index"`
}

func (h *CourseHandler) CreateChapter(c *gin.Context) {
	var input chapterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	chapter := models.Chapter{
		CourseID:    input.CourseID,
		Title:       input.Title,
		Description: input.Description,
		OrderIndex:  input.OrderIndex,
	}
	if err := h.service.CreateChapter(c.Request.Context(), &chapter); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, chapter)
}

func (h *CourseHandler) ChapterByID(c *gin.Context) {
	id, ok := response.ParamID(c, "chapter_id")
	if !ok {
		return
	}
	chapter, err := h.service.Chapter(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

func (h *CourseHandler) UpdateChapter(c *gin.Context) {
	id, ok := response.ParamID(c, "chapter_id")
	if !ok {
		return
	}
	var input chapterUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	chapter, err := h.service.UpdateChapter(c.Request.Context(), id, models.ChapterUpdate{
		CourseID:    input.CourseID,
		Title:       input.Title,
		Description: input.Description,
		OrderIndex:  input.OrderIndex,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

func (h *CourseHandler) DeleteChapter(c *gin.Context) {
	id, ok := response.ParamID(c, "chapter_id")
	if !ok {
		return
	}
	if err := h.service.DeleteChapter(c.Request.Context(), id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
