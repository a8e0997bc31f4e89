package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/streaks-api/internal/middleware"
	"github.com/arnold/streaks-api/internal/sync"
)

func (h *Handler) SyncPush(c *fiber.Ctx) error {
	result, err := h.Engine.Push(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// SyncPull accepts ?mode=overwrite or ?mode=merge. Overwrite discards
// every local record first; clients are expected to confirm that with the
// user before calling.
func (h *Handler) SyncPull(c *fiber.Ctx) error {
	mode := c.Query("mode", sync.PullOverwrite)
	if mode != sync.PullOverwrite && mode != sync.PullAddMissing {
		return badRequest(c, "Mode must be overwrite or merge")
	}

	result, err := h.Engine.Pull(c.Context(), middleware.GetUserID(c), mode)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) SyncMerge(c *fiber.Ctx) error {
	result, err := h.Engine.Merge(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
