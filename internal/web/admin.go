package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/smakolyk/internal/menuimport"
	"github.com/mmynk/smakolyk/internal/validation"
)

func (h *Handler) menuForm(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_menu.html", gin.H{"Columns": menuimport.Columns()})
}

// uploadMenu validates the spreadsheet immediately and schedules its import for the
// cutoff of the current week (immediately once the cutoff has passed).
func (h *Handler) uploadMenu(c *gin.Context) {
	ctx := c.Request.Context()
	data := gin.H{"Columns": menuimport.Columns()}

	fh, err := c.FormFile("file")
	if err != nil {
		data["Error"] = validation.New(validation.Required, "file", nil).Error()
		h.render(c, http.StatusUnprocessableEntity, "admin_menu.html", data)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, "Failed to open upload", err)
		return
	}
	defer f.Close()

	// One byte past the limit is enough for the size check to fail.
	content, err := io.ReadAll(io.LimitReader(f, h.MaxUploadSize+1))
	if err != nil {
		h.fail(c, "Failed to read upload", err)
		return
	}

	items, err := h.Importer.Validate(fh.Filename, content)
	if err != nil {
		h.Logger.Warn("Menu upload rejected", "filename", fh.Filename, "error", err)
		data["Error"] = err.Error()
		h.render(c, http.StatusUnprocessableEntity, "admin_menu.html", data)
		return
	}

	now := h.now()
	delay := h.Window.Countdown(now)
	if h.Enqueuer == nil {
		if err := h.Importer.Import(ctx, items); err != nil {
			h.fail(c, "Failed to import menu", err)
			return
		}
		delay = 0
	} else if err := h.Enqueuer.EnqueueMenuImport(ctx, items, delay); err != nil {
		h.fail(c, "Failed to schedule menu import", err)
		return
	}

	h.Logger.Info("Menu upload accepted", "filename", fh.Filename, "count", len(items), "delay", delay)
	data["Accepted"] = len(items)
	data["AppliesAt"] = now.Add(delay).In(locationOf(h.Window))
	data["Deferred"] = delay > 0
	h.render(c, http.StatusOK, "admin_menu.html", data)
}
