package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/history"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/storage"
	"github.com/mmynk/smakolyk/internal/validation"
	"github.com/mmynk/smakolyk/pkg/api"
)

// HistoryService implements the HistoryService RPC interface.
type HistoryService struct {
	history *history.Service
	users   UserReader
	logger  *slog.Logger
}

func NewHistoryService(h *history.Service, users UserReader, logger *slog.Logger) *HistoryService {
	return &HistoryService{history: h, users: users, logger: logger}
}

// ListHistory returns the caller's records between the optional bounds, newest first.
func (s *HistoryService) ListHistory(ctx context.Context, req *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error) {
	user, err := currentUser(ctx, s.users)
	if err != nil {
		return nil, err
	}

	filter := storage.HistoryFilter{UserID: user.ID}
	if filter.From, err = optionalDate("from", req.Msg.From); err != nil {
		return nil, validationError(err)
	}
	if filter.To, err = optionalDate("to", req.Msg.To); err != nil {
		return nil, validationError(err)
	}

	records, err := s.history.List(ctx, filter)
	if err != nil {
		return nil, internalError(s.logger, "Failed to list history", err, "user_id", user.ID)
	}
	return connect.NewResponse(&api.ListHistoryResponse{Records: toAPIRecords(records)}), nil
}

// GetHistoryWeek returns the caller's history for the week containing the requested date.
func (s *HistoryService) GetHistoryWeek(ctx context.Context, req *connect.Request[api.GetHistoryWeekRequest]) (*connect.Response[api.GetHistoryWeekResponse], error) {
	user, err := currentUser(ctx, s.users)
	if err != nil {
		return nil, err
	}

	date, err := optionalDate("date", req.Msg.Date)
	if err != nil {
		return nil, validationError(err)
	}

	week, err := s.history.Week(ctx, user.ID, date)
	if err != nil {
		return nil, internalError(s.logger, "Failed to read history week", err, "user_id", user.ID)
	}

	resp := &api.GetHistoryWeekResponse{
		DateExists:  week.DateExists,
		HistoryData: make(map[string]api.HistoryDay, len(week.Days)),
		Total:       week.Total(),
	}
	for _, d := range week.Days {
		key := strings.ToLower(d.Name)
		resp.Days = append(resp.Days, key)
		resp.HistoryData[key] = api.HistoryDay{
			Date:        d.Date.Format(models.DateLayout),
			Record:      toAPIRecord(d.Record),
			TotalAmount: d.Total(),
		}
	}
	return connect.NewResponse(resp), nil
}

func optionalDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return time.Time{}, validation.New(validation.InvalidDate, field, nil)
	}
	return d, nil
}
