package main

import (
	"log"

	"github.com/gnomiproject/gnomiproject-go/internal/application/startup"
)

func main() {
	if err := startup.Initialize(); err != nil {
		log.Fatalf("Application startup failed: %v", err)
	}
}
