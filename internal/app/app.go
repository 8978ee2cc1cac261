package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/J0na555/ExitPrep/internal/app/server"
	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/internal/delivery/http"
	"github.com/J0na555/ExitPrep/internal/service"
	"github.com/J0na555/ExitPrep/internal/service/auth"
	"github.com/J0na555/ExitPrep/internal/service/course"
	"github.com/J0na555/ExitPrep/internal/service/exam"
	"github.com/J0na555/ExitPrep/internal/service/question"
	"github.com/J0na555/ExitPrep/internal/storage/postgres"
	"github.com/J0na555/ExitPrep/pkg/logger"
)

const startupTimeout = 15 * time.Second

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	defer log.Sync()
	log.Info("Starting with Env: " + cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pg, err := OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	var search question.SearchIndex
	index, err := OpenSearchIndex(ctx, cfg.ES)
	switch {
	case err != nil:
		log.ErrorErr("elasticsearch unavailable, falling back to database search", err)
	case index != nil:
		search = index
	}

	userRepo := postgres.NewUserPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	chapterRepo := postgres.NewChapterPostgres(pg.Pool)
	questionRepo := postgres.NewQuestionPostgres(pg.Pool)
	examRepo := postgres.NewExamPostgres(pg.Pool)
	attemptRepo := postgres.NewAttemptPostgres(pg.Pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer)
	hasher := auth.NewHasher(cfg.Bcrypt.Cost)

	u := service.Collection{
		AuthService:     auth.NewAuthService(log, hasher, jwtManager, cfg.JWT.AccessTTL, userRepo),
		CourseService:   course.NewCourseService(log, courseRepo, chapterRepo),
		QuestionService: question.NewQuestionService(log, chapterRepo, questionRepo, search, attemptRepo),
		ExamService:     exam.NewExamService(log, examRepo, questionRepo),
	}

	r := http.InitRoutes(log, u, cfg.CORS, pg.Pool)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	log.Info("http server started", "address", cfg.HTTPServer.Address)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("http server stopped", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown failed", err)
	}
}
