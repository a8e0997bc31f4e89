package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arnold/streaks-api/internal/export"
	"github.com/arnold/streaks-api/internal/models"
	"github.com/arnold/streaks-api/internal/store"
)

// ExportGoals streams every goal as a CSV download.
func (h *Handler) ExportGoals(c *fiber.Ctx) error {
	goals, err := h.Local.GetAllGoals()
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteGoals(&buf, goals); err != nil {
		return fail(c, err)
	}

	filename := fmt.Sprintf("streaks-export-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

// ImportGoals replaces the entire local goal set with the uploaded CSV.
// A single invalid row rejects the whole file; nothing is written in that
// case. Imported goals without a tab are adopted by the first tab, which
// is created if none exists.
func (h *Handler) ImportGoals(c *fiber.Ctx) error {
	body, err := importBody(c)
	if err != nil {
		return badRequest(c, "Missing CSV payload")
	}

	goals, err := export.ReadGoals(bytes.NewReader(body), h.Logger)
	if err != nil {
		var validationErr *export.ValidationError
		if errors.As(err, &validationErr) {
			return fail(c, err)
		}
		return badRequest(c, err.Error())
	}

	tab, err := h.importTargetTab()
	if err != nil {
		return fail(c, err)
	}

	known := make(map[uuid.UUID]struct{})
	tabs, err := h.Local.GetAllTabs()
	if err != nil {
		return fail(c, err)
	}
	for _, t := range tabs {
		known[t.ID] = struct{}{}
	}

	for i := range goals {
		if _, ok := known[goals[i].TabID]; !ok {
			goals[i].TabID = tab.ID
		}
	}

	if err := h.Local.ReplaceAllGoals(goals); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"imported": len(goals),
	})
}

// importBody accepts either a multipart "file" field or a raw CSV body.
func importBody(c *fiber.Ctx) ([]byte, error) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	if len(c.Body()) == 0 {
		return nil, errors.New("empty body")
	}
	return c.Body(), nil
}

// importTargetTab is the tab adopting imported goals: the first tab by
// order, or a fresh default tab when the store has none.
func (h *Handler) importTargetTab() (models.Tab, error) {
	tab, err := h.Local.FirstTabByOrder()
	if err == nil {
		return tab, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Tab{}, err
	}

	tab = models.Tab{ID: uuid.New(), Name: store.DefaultTabName, Order: 0}
	if err := h.Local.AddTab(tab); err != nil {
		return models.Tab{}, err
	}
	return tab, nil
}
