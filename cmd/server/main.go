package main

import (
	"context"
	"log"

	"github.com/osavchuk/authsvc/internal/server"
	"github.com/osavchuk/authsvc/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatal(err)
	}

	app.Run(ctx)
}
