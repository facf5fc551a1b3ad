package commands

import (
	"context"

	"github.com/MrSnakeDoc/navkit/internal/app"
	"github.com/MrSnakeDoc/navkit/internal/config"
)

// ServeCmd runs the HTTP service.
type ServeCmd struct{}

func (c *ServeCmd) Run(_ *Global) error {
	cfg := config.Load()
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		return err
	}
	return a.Run()
}
