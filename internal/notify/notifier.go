package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/models"
)

const (
	OversumSubject = "Oversum"
	OrdersSubject  = "Orders"
	OrdersBody     = "Orders for current week:"
)

// OversumUserBody renders the notice sent to the user who went over budget.
func OversumUserBody(first, last string, oversum int64, date time.Time) string {
	return fmt.Sprintf(
		"Dear %s %s,\nyou did %d ₴ oversum for %s. The difference will be deducted from your salary.",
		first, last, oversum, date.Format(models.DateLayout),
	)
}

// OversumAccountantBody renders the notice sent to the accountant.
func OversumAccountantBody(first, last string, oversum int64) string {
	return fmt.Sprintf("%s %s\n-> %d ₴ oversum.", first, last, oversum)
}

// Notifier composes the application's emails and hands them to a Sender.
type Notifier struct {
	sender         Sender
	accountant     string
	ordersReceiver string
	logger         *slog.Logger
}

// NewNotifier creates a notifier with the recipients of cfg.
func NewNotifier(sender Sender, cfg config.MailConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:         sender,
		accountant:     cfg.Accountant,
		ordersReceiver: cfg.OrdersReceiver,
		logger:         logger,
	}
}

// Oversum notifies the user and then the accountant. Both sends are attempted;
// the returned error joins every failure.
func (n *Notifier) Oversum(ctx context.Context, user *models.User, date time.Time, oversum int64) error {
	p := user.Profile
	var errs []error

	if err := n.sender.Send(ctx, Message{
		To:      []string{user.Email},
		Subject: OversumSubject,
		Body:    OversumUserBody(p.FirstName, p.LastName, oversum, date),
	}); err != nil {
		errs = append(errs, fmt.Errorf("notify user: %w", err))
	}

	if n.accountant == "" {
		errs = append(errs, errors.New("notify accountant: no accountant address configured"))
	} else if err := n.sender.Send(ctx, Message{
		To:      []string{n.accountant},
		Subject: OversumSubject,
		Body:    OversumAccountantBody(p.FirstName, p.LastName, oversum),
	}); err != nil {
		errs = append(errs, fmt.Errorf("notify accountant: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		n.logger.Error("Oversum notification failed", "user_id", user.ID, "date", date.Format(models.DateLayout), "error", err)
		return err
	}
	n.logger.Info("Oversum notified", "user_id", user.ID, "date", date.Format(models.DateLayout), "oversum", oversum)
	return nil
}

// WeeklyOrders emails the order export to the kitchen.
func (n *Notifier) WeeklyOrders(ctx context.Context, exportPath string) error {
	if n.ordersReceiver == "" {
		return errors.New("no orders receiver configured")
	}
	err := n.sender.Send(ctx, Message{
		To:          []string{n.ordersReceiver},
		Subject:     OrdersSubject,
		Body:        OrdersBody,
		Attachments: []string{exportPath},
	})
	if err != nil {
		return fmt.Errorf("send weekly orders: %w", err)
	}
	return nil
}
