package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/auth"
	"github.com/mmynk/smakolyk/internal/middleware"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/validation"
	"github.com/mmynk/smakolyk/pkg/api"
)

// UserReader loads the authenticated user.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// currentUser loads the user named by the session in ctx.
func currentUser(ctx context.Context, users UserReader) (*models.User, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if user == nil || !user.IsActive {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	return user, nil
}

// validationError reports form failures as CodeInvalidArgument, or CodeAlreadyExists when a
// unique value is taken. Each failure is also listed in the "Validation-Field" metadata
// as "<field>: <message>". It returns nil when err carries no validation failure.
func validationError(err error) *connect.Error {
	errs, ok := validation.From(err)
	if !ok {
		return nil
	}
	code := connect.CodeInvalidArgument
	if validation.Is(err, validation.Taken) {
		code = connect.CodeAlreadyExists
	}
	cerr := connect.NewError(code, errs)
	byField := errs.ByField()
	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range byField[field] {
			cerr.Meta().Add("Validation-Field", field+": "+msg)
		}
	}
	return cerr
}

// internalError logs err and hides it behind CodeInternal, unless it already is a Connect error.
func internalError(logger *slog.Logger, msg string, err error, args ...any) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}
	logger.Error(msg, append(args, "error", err)...)
	return connect.NewError(connect.CodeInternal, err)
}

func toAPIUser(u *models.User) *api.User {
	out := &api.User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Profile.Username,
		Slug:      u.Profile.Slug,
		FirstName: u.Profile.FirstName,
		LastName:  u.Profile.LastName,
		Phone:     u.Profile.Phone,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
	if u.Profile.Birthdate != nil {
		out.Birthdate = u.Profile.Birthdate.Format(models.DateLayout)
	}
	return out
}

func toProfileForm(p api.Profile) auth.ProfileForm {
	return auth.ProfileForm{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Birthdate: p.Birthdate,
		Phone:     p.Phone,
	}
}

func toAPIRecord(r *models.HistoryRecord) *api.HistoryRecord {
	if r == nil {
		return nil
	}
	out := &api.HistoryRecord{
		ID:    r.ID,
		Date:  r.Date.Format(models.DateLayout),
		Lines: make([]api.HistoryLine, 0, models.NumCategories),
		Total: r.Total,
	}
	for _, c := range models.Categories {
		l := r.Lines[c]
		out.Lines = append(out.Lines, api.HistoryLine{
			Category:  c.String(),
			Dish:      l.Dish,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		})
	}
	return out
}

func toAPIRecords(records []*models.HistoryRecord) []*api.HistoryRecord {
	out := make([]*api.HistoryRecord, len(records))
	for i, r := range records {
		out[i] = toAPIRecord(r)
	}
	return out
}

func toAPIOrder(o *models.PendingOrder) api.DayOrder {
	out := api.DayOrder{
		Date:       o.Date.Format(models.DateLayout),
		Selections: make([]api.Selection, 0, models.NumCategories),
	}
	for _, c := range models.Categories {
		s := o.Selections[c]
		out.Selections = append(out.Selections, api.Selection{Category: c.String(), Dish: s.Dish, Quantity: s.Quantity})
	}
	return out
}
