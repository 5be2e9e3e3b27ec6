package main

import (
	"log"

	"github.com/MrSnakeDoc/edgegate/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("edgegate failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("edgegate exited with error: %v", err)
	}
}
