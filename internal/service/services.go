package service

import (
	"github.com/J0na555/ExitPrep/internal/service/auth"
	"github.com/J0na555/ExitPrep/internal/service/course"
	"github.com/J0na555/ExitPrep/internal/service/exam"
	"github.com/J0na555/ExitPrep/internal/service/question"
)

type Collection struct {
	*auth.AuthService
	*course.CourseService
	*question.QuestionService
	*exam.ExamService
}
