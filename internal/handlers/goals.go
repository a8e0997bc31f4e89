package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/completion"
	"github.com/arnold/streaks-api/internal/models"
	"github.com/arnold/streaks-api/internal/store"
)

func (h *Handler) GetGoals(c *fiber.Ctx) error {
	var goals []models.Goal
	var err error

	if tabParam := c.Query("tabId"); tabParam != "" {
		tabID, parseErr := uuid.Parse(tabParam)
		if parseErr != nil {
			return badRequest(c, "Invalid tab ID")
		}
		goals, err = h.Local.GetGoalsByTab(tabID)
	} else {
		goals, err = h.Local.GetAllGoals()
	}
	if err != nil {
		return fail(c, err)
	}

	sort.Slice(goals, func(i, j int) bool { return goals[i].Order < goals[j].Order })
	return c.JSON(goals)
}

func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return badRequest(c, "Goal title is required")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return badRequest(c, "Start and end dates are required")
	}
	start := completion.Midnight(req.StartDate)
	end := completion.Midnight(req.EndDate)
	if end.Before(start) {
		return badRequest(c, "End date must not be before start date")
	}
	if !req.Frequency.Valid() {
		return badRequest(c, "Frequency needs a positive count and a period of day, week or month")
	}

	if _, err := h.Local.GetTab(req.TabID); err != nil {
		return fail(c, err)
	}

	var order float64
	var err error
	if req.AtFront {
		order, err = h.Local.FrontGoalOrder(req.TabID)
	} else {
		order, err = h.Local.NextGoalOrder(req.TabID)
	}
	if err != nil {
		return fail(c, err)
	}

	goal := models.Goal{
		ID:        uuid.New(),
		Title:     req.Title,
		StartDate: start,
		EndDate:   end,
		Color:     req.Color,
		Progress:  []string{},
		Order:     order,
		Notes:     map[string]string{},
		TabID:     req.TabID,
		Frequency: req.Frequency,
	}
	if err := h.Local.AddGoal(goal); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) UpdateGoal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	goal, err := h.Local.GetGoal(id)
	if err != nil {
		return fail(c, err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return badRequest(c, "Goal title must not be empty")
		}
		goal.Title = *req.Title
	}
	if req.StartDate != nil {
		goal.StartDate = completion.Midnight(*req.StartDate)
	}
	// The end date may move in either direction; progress marked beyond a
	// shrunk end date stays stored but stops counting toward completion.
	if req.EndDate != nil {
		goal.EndDate = completion.Midnight(*req.EndDate)
	}
	if goal.EndDate.Before(goal.StartDate) {
		return badRequest(c, "End date must not be before start date")
	}
	if req.Color != nil {
		goal.Color = *req.Color
	}
	if req.TabID != nil {
		if _, err := h.Local.GetTab(*req.TabID); err != nil {
			return fail(c, err)
		}
		goal.TabID = *req.TabID
	}
	if req.Frequency != nil {
		if !req.Frequency.Valid() {
			return badRequest(c, "Frequency needs a positive count and a period of day, week or month")
		}
		goal.Frequency = req.Frequency
	}

	if err := h.Local.UpdateGoal(goal); err != nil {
		return fail(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) DeleteGoal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}
	if err := h.Local.DeleteGoal(id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) MoveGoal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Direction != store.MoveUp && req.Direction != store.MoveDown {
		return badRequest(c, "Direction must be up or down")
	}

	if err := h.Local.MoveGoal(id, req.Direction); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateProgress replaces the goal's whole progress set.
func (h *Handler) UpdateProgress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.Local.UpdateGoalProgress(id, req.Dates); err != nil {
		return fail(c, err)
	}
	goal, err := h.Local.GetGoal(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(goal)
}

// ToggleProgress flips one day on or off and reports whether the change
// just completed the goal, so the UI can fire its celebration.
func (h *Handler) ToggleProgress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.ToggleProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Date == "" {
		return badRequest(c, "Date is required")
	}

	before, after, err := h.Local.ToggleGoalProgress(id, req.Date)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"goal":          after,
		"marked":        after.HasProgress(req.Date),
		"justCompleted": completion.JustCompleted(after, before.Progress, after.Progress),
	})
}

func (h *Handler) UpdateNote(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}
	date := c.Params("date")

	var req models.UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.Local.UpdateGoalNote(id, date, req.Text); err != nil {
		return fail(c, err)
	}
	goal, err := h.Local.GetGoal(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(goal.Notes)
}

// GetCompletion exposes the evaluator's view of one goal.
func (h *Handler) GetCompletion(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid goal ID")
	}

	goal, err := h.Local.GetGoal(id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"totalDays":  completion.TotalDays(goal.StartDate, goal.EndDate),
		"validCount": completion.ValidCount(goal),
		"required":   completion.Required(goal),
		"complete":   completion.IsComplete(goal),
	})
}
