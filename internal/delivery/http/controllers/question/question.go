package question

import (
	"context"
	"net/http"
	"strconv"

	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/middleware"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/response"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/internal/service/question"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuestionService interface {
	CreateQuestion(ctx context.Context, question *models.Question) error
	Question(ctx context.Context, id uuid.UUID) (*models.Question, error)
	QuestionsByChapter(ctx context.Context, chapterID uuid.UUID) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]models.Question, error)

	AddOption(ctx context.Context, questionID uuid.UUID, opt *models.Option) (*models.Question, error)
	UpdateOption(ctx context.Context, id uuid.UUID, upd models.OptionUpdate) (*models.Option, error)
	DeleteOption(ctx context.Context, id uuid.UUID) error
	MarkCorrect(ctx context.Context, optionID uuid.UUID) (*models.Question, error)

	RecordAttempt(ctx context.Context, userID, questionID uuid.UUID, selected *uuid.UUID) (*question.AttemptResult, error)
	Attempts(ctx context.Context, userID uuid.UUID, limit int) ([]models.StudyAttempt, error)
}

type QuestionHandler struct {
	log     logger.Log
	service QuestionService
}

func NewQuestionHandler(l logger.Log, s QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:     l,
		service: s,
	}
}

type optionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type questionRequest struct {
	ChapterID    uuid.UUID         `json:"chapter_id" binding:"required"`
	QuestionText string            `json:"question_text" binding:"required"`
	Difficulty   models.Difficulty `json:"difficulty"`
	Source       models.Source     `json:"source"`
	Explanation  *string           `json:"explanation"`
	Options      []optionRequest   `json:"options" binding:"dive"`
}

type questionUpdateRequest struct {
	ChapterID    *uuid.UUID         `json:"chapter_id"`
	QuestionText *string            `json:"question_text"`
	Difficulty   *models.Difficulty `json:"difficulty"`
	Explanation  *string            `json:"explanation"`
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input questionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	q := models.Question{
		ChapterID:    input.ChapterID,
		QuestionText: input.QuestionText,
		Difficulty:   input.Difficulty,
		Source:       input.Source,
		Explanation:  input.Explanation,
		Options:      make([]models.Option, 0, len(input.Options)),
	}
	for _, o := range input.Options {
		q.Options = append(q.Options, models.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	if err := h.service.CreateQuestion(c.Request.Context(), &q); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuestionHandler) QuestionByID(c *gin.Context) {
	id, ok := response.ParamID(c, "question_id")
	if !ok {
		return
	}
	q, err := h.service.Question(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionHandler) ChapterQuestions(c *gin.Context) {
	id, ok := response.ParamID(c, "chapter_id")
	if !ok {
		return
	}
	questions, err := h.service.QuestionsByChapter(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := response.ParamID(c, "question_id")
	if !ok {
		return
	}
	var input questionUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	q, err := h.service.UpdateQuestion(c.Request.Context(), id, models.QuestionUpdate{
		ChapterID:    input.ChapterID,
		QuestionText: input.QuestionText,
		Difficulty:   input.Difficulty,
		Explanation:  input.Explanation,
	})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := response.ParamID(c, "question_id")
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(c.Request.Context(), id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) SearchQuestions(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid size")
			return
		}
		size = n
	}
	questions, err := h.service.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *QuestionHandler) AddOption(c *gin.Context) {
	id, ok := response.ParamID(c, "question_id")
	if !ok {
		return
	}
	var input optionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	q, err := h.service.AddOption(c.Request.Context(), id, &models.Option{Text: input.Text, IsCorrect: input.IsCorrect})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

type optionUpdateRequest struct {
	Text *string `json:"text"`
}

func (h *QuestionHandler) UpdateOption(c *gin.Context) {
	id, ok := response.ParamID(c, "option_id")
	if !ok {
		return
	}
	var input optionUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	opt, err := h.service.UpdateOption(c.Request.Context(), id, models.OptionUpdate{Text: input.Text})
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, opt)
}

func (h *QuestionHandler) DeleteOption(c *gin.Context) {
	id, ok := response.ParamID(c, "option_id")
	if !ok {
		return
	}
	if err := h.service.DeleteOption(c.Request.Context(), id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuestionHandler) MarkCorrect(c *gin.Context) {
	id, ok := response.ParamID(c, "option_id")
	if !ok {
		return
	}
	q, err := h.service.MarkCorrect(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type attemptRequest struct {
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
}

func (h *QuestionHandler) RecordAttempt(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.ParamID(c, "question_id")
	if !ok {
		return
	}
	var input attemptRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.service.RecordAttempt(c.Request.Context(), user.ID, id, input.SelectedOptionID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *QuestionHandler) MyAttempts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	attempts, err := h.service.Attempts(c.Request.Context(), user.ID, limit)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}
