package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/ordering"
	"github.com/mmynk/smakolyk/pkg/api"
)

// OrderService implements the OrderService RPC interface over the order intake.
type OrderService struct {
	intake *ordering.Intake
	users  UserReader
	logger *slog.Logger
}

func NewOrderService(intake *ordering.Intake, users UserReader, logger *slog.Logger) *OrderService {
	return &OrderService{intake: intake, users: users, logger: logger}
}

// GetWeek describes the order form of the upcoming week for the caller.
func (s *OrderService) GetWeek(ctx context.Context, req *connect.Request[api.GetWeekRequest]) (*connect.Response[api.GetWeekResponse], error) {
	user, err := currentUser(ctx, s.users)
	if err != nil {
		return nil, err
	}

	status, err := s.intake.Status(ctx, user.ID)
	if err != nil {
		return nil, internalError(s.logger, "Failed to check order status", err, "user_id", user.ID)
	}
	opts, err := s.intake.Options(ctx)
	if err != nil {
		return nil, internalError(s.logger, "Failed to read menu", err)
	}

	resp := &api.GetWeekResponse{
		Status:        status.String(),
		Options:       make(map[string][]string, models.NumCategories),
		Prices:        opts.Prices,
		BudgetCeiling: s.intake.Guard().Ceiling(),
	}
	for _, d := range ordering.Days(s.intake.Week()) {
		resp.Days = append(resp.Days, api.WeekDay{Date: d.Date.Format(models.DateLayout), Name: d.Name})
	}
	for _, c := range models.Categories {
		resp.Options[c.String()] = opts.Dishes[c]
	}

	if status == ordering.DuplicateExists {
		orders, err := s.intake.PendingWeek(ctx, user.ID)
		if err != nil {
			return nil, internalError(s.logger, "Failed to read pending orders", err, "user_id", user.ID)
		}
		for _, o := range orders {
			resp.Orders = append(resp.Orders, toAPIOrder(o))
		}
	}
	return connect.NewResponse(resp), nil
}

// SubmitWeek places the caller's orders for every working day of the upcoming week.
func (s *OrderService) SubmitWeek(ctx context.Context, req *connect.Request[api.SubmitWeekRequest]) (*connect.Response[api.SubmitWeekResponse], error) {
	user, err := currentUser(ctx, s.users)
	if err != nil {
		return nil, err
	}

	days, err := dayInputs(req.Msg.Days, s.intake.Week())
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	sub, err := s.intake.Submit(ctx, user, days)
	switch {
	case errors.Is(err, ordering.ErrPastCutoff):
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ordering.ErrDuplicateOrder):
		return nil, connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, ordering.ErrNotification):
		s.logger.Warn("Orders saved without oversum notification", "user_id", user.ID, "error", err)
	case err != nil:
		if verr := validationError(err); verr != nil {
			return nil, verr
		}
		return nil, internalError(s.logger, "Failed to submit orders", err, "user_id", user.ID)
	}

	resp := &api.SubmitWeekResponse{
		Records:            toAPIRecords(sub.Records),
		Total:              sub.Total(),
		Oversums:           []api.Oversum{},
		NotificationFailed: err != nil,
	}
	for _, r := range sub.Records {
		if amount, ok := sub.Oversums[r.Date]; ok {
			resp.Oversums = append(resp.Oversums, api.Oversum{Date: r.Date.Format(models.DateLayout), Amount: amount})
		}
	}
	return connect.NewResponse(resp), nil
}

// CalculateTotal prices one day form and compares it with the budget ceiling.
func (s *OrderService) CalculateTotal(ctx context.Context, req *connect.Request[api.CalculateTotalRequest]) (*connect.Response[api.CalculateTotalResponse], error) {
	lines := make([]ordering.QuoteLine, 0, len(req.Msg.Selections))
	for _, sel := range req.Msg.Selections {
		c, ok := models.ParseCategory(sel.Category)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown category %q", sel.Category))
		}
		lines = append(lines, ordering.QuoteLine{Category: c, Dish: sel.Dish, Quantity: sel.Quantity})
	}

	budget, err := s.intake.Quote(ctx, lines)
	if verr := validationError(err); verr != nil {
		return nil, verr
	}
	if err != nil {
		return nil, internalError(s.logger, "Failed to calculate total", err)
	}
	return connect.NewResponse(&api.CalculateTotalResponse{
		Response:       budget.Remaining,
		AmountDeducted: budget.OverBudget(),
		Total:          budget.Total,
	}), nil
}

// dayInputs maps the submitted days onto the working days of the week, in order.
// A day may omit its date; a date that is given must match its position.
func dayInputs(orders []api.DayOrder, week []time.Time) ([]ordering.DayInput, error) {
	if len(orders) != len(week) {
		return nil, fmt.Errorf("expected %d days, got %d", len(week), len(orders))
	}

	days := make([]ordering.DayInput, len(orders))
	for i, o := range orders {
		if o.Date != "" && o.Date != week[i].Format(models.DateLayout) {
			return nil, fmt.Errorf("day %d: expected date %s, got %s", i, week[i].Format(models.DateLayout), o.Date)
		}
		for _, sel := range o.Selections {
			c, ok := models.ParseCategory(sel.Category)
			if !ok {
				return nil, fmt.Errorf("day %d: unknown category %q", i, sel.Category)
			}
			days[i].Dishes[c] = sel.Dish
			days[i].Quantities[c] = strconv.Itoa(sel.Quantity)
		}
	}
	return days, nil
}
