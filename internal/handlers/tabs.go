package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/models"
	"github.com/arnold/streaks-api/internal/store"
)

func (h *Handler) GetTabs(c *fiber.Ctx) error {
	tabs, err := h.Local.GetAllTabs()
	if err != nil {
		return fail(c, err)
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Order < tabs[j].Order })
	return c.JSON(tabs)
}

func (h *Handler) CreateTab(c *fiber.Ctx) error {
	var req models.CreateTabRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "Tab name is required")
	}

	order, err := h.Local.NextTabOrder()
	if err != nil {
		return fail(c, err)
	}

	tab := models.Tab{
		ID:    uuid.New(),
		Name:  req.Name,
		Order: order,
	}
	if err := h.Local.AddTab(tab); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tab)
}

func (h *Handler) UpdateTab(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid tab ID")
	}

	var req models.UpdateTabRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tab, err := h.Local.GetTab(id)
	if err != nil {
		return fail(c, err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return badRequest(c, "Tab name must not be empty")
		}
		tab.Name = *req.Name
	}

	if err := h.Local.UpdateTab(tab); err != nil {
		return fail(c, err)
	}
	return c.JSON(tab)
}

// DeleteTab deletes a tab; its goals move to the target tab given in the
// body, or to the first remaining tab by order. Goals are reassigned,
// never deleted.
func (h *Handler) DeleteTab(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid tab ID")
	}

	var req models.DeleteTabRequest
	// Body is optional; ignore parse errors on an empty body.
	_ = c.BodyParser(&req)

	targetID := uuid.Nil
	if req.TargetTabID != nil {
		targetID = *req.TargetTabID
	} else {
		tabs, err := h.Local.GetAllTabs()
		if err != nil {
			return fail(c, err)
		}
		sort.Slice(tabs, func(i, j int) bool { return tabs[i].Order < tabs[j].Order })
		for _, t := range tabs {
			if t.ID != id {
				targetID = t.ID
				break
			}
		}
	}
	if targetID == id {
		return badRequest(c, "Target tab must differ from the deleted tab")
	}
	if targetID == uuid.Nil {
		return fail(c, store.ErrLastTab)
	}

	if err := h.Local.DeleteTab(id, targetID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) MoveTab(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid tab ID")
	}

	var req models.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Direction != store.MoveUp && req.Direction != store.MoveDown {
		return badRequest(c, "Direction must be up or down")
	}

	if err := h.Local.MoveTab(id, req.Direction); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
