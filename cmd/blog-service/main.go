package main

import (
	"context"
	"log"

	"github.com/Demonism0/blog-api/config"
	"github.com/Demonism0/blog-api/internal/app"
	"github.com/Demonism0/blog-api/pkg/logger"
)

func main() {
	conf, err := config.New(".env")
	if err != nil {
		log.Fatalf("[SETUP ERROR] error when reading config: %v", err)
	}

	logger := logger.Setup(conf.Log.Level, conf.Log.Format)

	err = app.Run(context.Background(), *conf, logger)
	if err != nil {
		log.Fatalf("[APPLICATION ERROR] error: %v", err)
	}

	logger.Info("[SHUTDOWN] service shut down gracefully")
}
