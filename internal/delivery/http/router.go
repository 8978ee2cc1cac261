package http

import (
	"net/http"
	"time"

	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/auth"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/course"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/exam"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/middleware"
	"github.com/J0na555/ExitPrep/internal/delivery/http/controllers/question"
	"github.com/J0na555/ExitPrep/internal/service"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection, cfg config.CORS, db controllers.Pinger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "WWW-Authenticate"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsConfig))

	statusController := controllers.NewStatusHandler(l, db)
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, u.AuthService)
	authController := auth.NewAuthHandler(l, u.AuthService)
	courseController := course.NewCourseHandler(l, u.CourseService)
	questionController := question.NewQuestionHandler(l, u.QuestionService)
	examController := exam.NewExamHandler(l, u.ExamService)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)
		v1.GET("/health", statusController.Health)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authController.Register)
			authGroup.POST("/login", authController.Login)
		}

		private := v1.Group("", authMiddleware.AuthMiddleware)

		private.GET("/me", authController.Me)
		private.GET("/me/attempts", questionController.MyAttempts)
		private.GET("/users/:user_id", authController.UserByID)

		courses := private.Group("/courses")
		{
			courses.POST("", courseController.CreateCourse)
			courses.GET("", courseController.ListCourses)
			courses.GET("/:course_id", courseController.CourseByID)
			courses.PUT("/:course_id", courseController.UpdateCourse)
			courses.DELETE("/:course_id", courseController.DeleteCourse)
			courses.GET("/:course_id/chapters", courseController.CourseChapters)
		}

		chapters := private.Group("/chapters")
		{
			chapters.POST("", courseController.CreateChapter)
			chapters.GET("/:chapter_id", courseController.ChapterByID)
			chapters.PUT("/:chapter_id", courseController.UpdateChapter)
			chapters.DELETE("/:chapter_id", courseController.DeleteChapter)
			chapters.GET("/:chapter_id/questions", questionController.ChapterQuestions)
		}

		questions := private.Group("/questions")
		{
			questions.POST("", questionController.CreateQuestion)
			questions.GET("/search", questionController.SearchQuestions)
			questions.GET("/:question_id", questionController.QuestionByID)
			questions.PUT("/:question_id", questionController.UpdateQuestion)
			questions.DELETE("/:question_id", questionController.DeleteQuestion)
			questions.POST("/:question_id/options", questionController.AddOption)
			questions.POST("/:question_id/attempts", questionController.RecordAttempt)
		}

		options := private.Group("/options")
		{
			options.PUT("/:option_id", questionController.UpdateOption)
			options.DELETE("/:option_id", questionController.DeleteOption)
			options.POST("/:option_id/correct", questionController.MarkCorrect)
		}

		exams := private.Group("/exams")
		{
			exams.POST("", examController.CreateExam)
			exams.GET("", examController.ListExams)
			exams.GET("/:exam_id", examController.ExamByID)
			exams.POST("/:exam_id/sessions", examController.StartSession)
		}

		sessions := private.Group("/sessions")
		{
			sessions.GET("/:session_id", examController.SessionByID)
			sessions.POST("/:session_id/answers", examController.Answer)
			sessions.POST("/:session_id/complete", examController.Complete)
		}
	}
	return r
}
