package container

import (
	"errors"
	"io"
	"log/slog"

	app "ivision/internal/application"
	"ivision/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService

	closers []io.Closer
}

func New(userRepo port.UserRepository, backend port.Backend, loader port.ImageLoader, cfg app.AnalysisConfig, log *slog.Logger) *Container {
	userService := app.NewUserService(userRepo)
	analysisService := app.NewAnalysisService(backend, loader, cfg, log)

	c := &Container{
		UserService:     userService,
		AnalysisService: analysisService,
	}
	if closer, ok := backend.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	return c
}

// Close освобождает ресурсы движка.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
