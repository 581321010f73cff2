package main

import (
	"dailynews/cmd/handlers"
	"dailynews/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
