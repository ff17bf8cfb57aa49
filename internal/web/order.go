package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/ordering"
	"github.com/mmynk/smakolyk/internal/validation"
)

// fieldView is one category of a day sub-form.
type fieldView struct {
	Category  string
	DishField string
	QtyField  string
	Options   []string
	Selected  string
	Quantity  string
	Errors    []string
}

type dayView struct {
	ordering.DayView
	Fields []fieldView
}

// orderDays builds the sub-forms of the week, filled with inputs when re-rendering.
func orderDays(dates []time.Time, opts ordering.FormOptions, inputs []ordering.DayInput, errs validation.Errors) []dayView {
	byField := errs.ByField()
	days := make([]dayView, len(dates))
	for i, d := range ordering.Days(dates) {
		days[i].DayView = d
		for _, c := range models.Categories {
			f := fieldView{
				Category:  c.String(),
				DishField: ordering.FieldName(i, c.String()),
				QtyField:  ordering.FieldName(i, c.QuantityField()),
				Options:   opts.Dishes[c],
				Selected:  models.NotChosen,
			}
			if i < len(inputs) {
				if dish := strings.TrimSpace(inputs[i].Dishes[c]); dish != "" {
					f.Selected = dish
				}
				f.Quantity = inputs[i].Quantities[c]
			}
			f.Errors = append(append([]string(nil), byField[f.DishField]...), byField[f.QtyField]...)
			days[i].Fields = append(days[i].Fields, f)
		}
	}
	return days
}

// redirectUnavailable sends the user to the outcome page of a form they may not submit.
func redirectUnavailable(c *gin.Context, status ordering.Status) bool {
	switch status {
	case ordering.PastCutoff:
		c.Redirect(http.StatusSeeOther, "/order/closed")
	case ordering.DuplicateExists:
		c.Redirect(http.StatusSeeOther, "/order/exists")
	default:
		return false
	}
	return true
}

func (h *Handler) orderForm(c *gin.Context) {
	ctx := c.Request.Context()
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	status, err := h.Intake.Status(ctx, user.ID)
	if err != nil {
		h.fail(c, "Failed to check order status", err)
		return
	}
	if redirectUnavailable(c, status) {
		return
	}

	h.renderOrder(c, http.StatusOK, nil, nil)
}

func (h *Handler) renderOrder(c *gin.Context, status int, inputs []ordering.DayInput, errs validation.Errors) {
	opts, err := h.Intake.Options(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to read menu", err)
		return
	}
	var formErrs []string
	for _, e := range errs {
		if e.Field == "days" {
			formErrs = append(formErrs, e.Error())
		}
	}
	h.render(c, status, "order.html", gin.H{
		"Days":    orderDays(h.Intake.Week(), opts, inputs, errs),
		"Ceiling": h.Intake.Guard().Ceiling(),
		"Errors":  formErrs,
	})
}

func (h *Handler) submitOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	inputs := make([]ordering.DayInput, len(h.Intake.Week()))
	for i := range inputs {
		for _, cat := range models.Categories {
			inputs[i].Dishes[cat] = c.PostForm(ordering.FieldName(i, cat.String()))
			inputs[i].Quantities[cat] = c.PostForm(ordering.FieldName(i, cat.QuantityField()))
		}
	}

	_, err := h.Intake.Submit(c.Request.Context(), user, inputs)
	switch {
	case errors.Is(err, ordering.ErrPastCutoff):
		redirectUnavailable(c, ordering.PastCutoff)
		return
	case errors.Is(err, ordering.ErrDuplicateOrder):
		redirectUnavailable(c, ordering.DuplicateExists)
		return
	case errors.Is(err, ordering.ErrNotification):
		h.Logger.Warn("Orders saved without oversum notification", "user_id", user.ID, "error", err)
	case err != nil:
		if errs, ok := validation.From(err); ok {
			h.renderOrder(c, http.StatusUnprocessableEntity, inputs, errs)
			return
		}
		h.fail(c, "Failed to submit orders", err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/order/success")
}

func (h *Handler) orderExists(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	orders, err := h.Intake.PendingWeek(c.Request.Context(), user.ID)
	if err != nil {
		h.fail(c, "Failed to read pending orders", err)
		return
	}
	h.render(c, http.StatusOK, "order_exists.html", gin.H{"Orders": orders, "Categories": models.Categories})
}

func (h *Handler) history(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var date time.Time
	var dateErr string
	if q := c.Query("date"); q != "" {
		d, err := models.ParseDate(q)
		if err != nil {
			dateErr = validation.New(validation.InvalidDate, "date", nil).Error()
		} else {
			date = d
		}
	}

	week, err := h.History.Week(c.Request.Context(), user.ID, date)
	if err != nil {
		h.fail(c, "Failed to read history", err)
		return
	}
	h.render(c, http.StatusOK, "history.html", gin.H{
		"Week":       week,
		"Categories": models.Categories,
		"Date":       c.Query("date"),
		"Error":      dateErr,
	})
}
