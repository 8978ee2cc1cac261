package main

import (
	"github.com/J0na555/ExitPrep/internal/app"
	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.MustLoad()
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Run(cfg)
}
