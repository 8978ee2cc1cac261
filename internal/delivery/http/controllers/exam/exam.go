package exam

import (
	"context"
	"net/http"

	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/middleware"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/response"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExamService interface {
	CreateExam(ctx context.Context, exam *models.Exam) error
	Exams(ctx context.Context) ([]models.Exam, error)
	Exam(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	StartSession(ctx context.Context, userID, examID uuid.UUID) (*models.ExamSession, error)
	Session(ctx context.Context, userID, sessionID uuid.UUID) (*models.ExamSession, error)
	Answer(ctx context.Context, userID, sessionID, questionID uuid.UUID, selected *uuid.UUID) (*models.ExamAnswer, error)
	Complete(ctx context.Context, userID, sessionID uuid.UUID) (*models.ExamSession, error)
}

type ExamHandler struct {
	log     logger.Log
	service ExamService
}

func NewExamHandler(l logger.Log, s ExamService) *ExamHandler {
	return &ExamHandler{
		log:     l,
		service: s,
	}
}

type examRequest struct {
	Title            string  `json:"title" binding:"required"`
	Description      *string `json:"description"`
	TimeLimitMinutes int     `json:"time_limit_minutes" binding:"required,gt=0"`
}

func (h *ExamHandler) CreateExam(c *gin.Context) {
	var input examRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	exam := models.Exam{
		Title:            input.Title,
		Description:      input.Description,
		TimeLimitMinutes: input.TimeLimitMinutes,
	}
	if err := h.service.CreateExam(c.Request.Context(), &exam); err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, exam)
}

func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.service.Exams(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

func (h *ExamHandler) ExamByID(c *gin.Context) {
	id, ok := response.ParamID(c, "exam_id")
	if !ok {
		return
	}
	exam, err := h.service.Exam(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) StartSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	examID, ok := response.ParamID(c, "exam_id")
	if !ok {
		return
	}
	session, err := h.service.StartSession(c.Request.Context(), user.ID, examID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *ExamHandler) SessionByID(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.ParamID(c, "session_id")
	if !ok {
		return
	}
	session, err := h.service.Session(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type answerRequest struct {
	QuestionID       uuid.UUID  `json:"question_id" binding:"required"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
}

func (h *ExamHandler) Answer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.ParamID(c, "session_id")
	if !ok {
		return
	}
	var input answerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	answer, err := h.service.Answer(c.Request.Context(), user.ID, id, input.QuestionID, input.SelectedOptionID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (h *ExamHandler) Complete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	id, ok := response.ParamID(c, "session_id")
	if !ok {
		return
	}
	session, err := h.service.Complete(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
