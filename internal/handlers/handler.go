package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/streaks-api/internal/export"
	"github.com/arnold/streaks-api/internal/remote"
	"github.com/arnold/streaks-api/internal/store"
	"github.com/arnold/streaks-api/internal/sync"
)

// Handler carries the open stores and sync engine into the route
// handlers. One instance serves the whole app.
type Handler struct {
	Local  *store.Store
	Remote *remote.Store
	Engine sync.Engine
	Logger *log.Logger
}

func New(local *store.Store, rs *remote.Store, engine sync.Engine, logger *log.Logger) *Handler {
	return &Handler{Local: local, Remote: rs, Engine: engine, Logger: logger}
}

// fail maps a store/sync/import error to an HTTP status and JSON body.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var validationErr *export.ValidationError
	var syncErr *sync.SyncError

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey), errors.Is(err, store.ErrLastTab):
		status = fiber.StatusConflict
	case errors.Is(err, sync.ErrNotSignedIn):
		status = fiber.StatusUnauthorized
	case errors.Is(err, sync.ErrSyncInFlight):
		status = fiber.StatusConflict
	case errors.As(err, &validationErr):
		status = fiber.StatusBadRequest
	case errors.As(err, &syncErr):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
