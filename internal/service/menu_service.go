package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/pkg/api"
)

// MenuReader reads the current menu.
type MenuReader interface {
	GetMenu(ctx context.Context) (*models.Menu, error)
}

// MenuService implements the MenuService RPC interface.
type MenuService struct {
	store  MenuReader
	logger *slog.Logger
}

func NewMenuService(store MenuReader, logger *slog.Logger) *MenuService {
	return &MenuService{store: store, logger: logger}
}

// GetMenu lists the current menu by category, every category present even when empty.
func (s *MenuService) GetMenu(ctx context.Context, req *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error) {
	menu, err := s.store.GetMenu(ctx)
	if err != nil {
		return nil, internalError(s.logger, "Failed to read menu", err)
	}

	resp := &api.GetMenuResponse{Categories: make([]api.MenuCategory, 0, models.NumCategories)}
	for _, c := range models.Categories {
		cat := api.MenuCategory{Category: c.String(), Dishes: []api.Dish{}}
		for _, name := range menu.Names(c) {
			cat.Dishes = append(cat.Dishes, api.Dish{Name: name, Price: menu.Price(c, name)})
		}
		resp.Categories = append(resp.Categories, cat)
	}
	return connect.NewResponse(resp), nil
}

// GetPrices returns category -> dish -> unit price for the running total.
func (s *MenuService) GetPrices(ctx context.Context, req *connect.Request[api.GetPricesRequest]) (*connect.Response[api.GetPricesResponse], error) {
	menu, err := s.store.GetMenu(ctx)
	if err != nil {
		return nil, internalError(s.logger, "Failed to read menu", err)
	}
	return connect.NewResponse(&api.GetPricesResponse{Response: menu.Prices()}), nil
}
