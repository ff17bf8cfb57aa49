package ordering

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/notify"
	"github.com/mmynk/smakolyk/internal/schedule"
	"github.com/mmynk/smakolyk/internal/storage/sqlite"
	"github.com/mmynk/smakolyk/internal/validation"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// thursday is 2026-10-15 12:00 UTC; the upcoming week is 2026-10-19 .. 2026-10-23.
var thursday = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	intake *Intake
	store  *sqlite.SQLiteStore
	outbox *notify.Outbox
	user   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.ReplaceMenu(ctx, []models.MenuItem{
		{Category: models.FirstCourse, Name: "Borscht", Price: 25},
		{Category: models.SecondCourse, Name: "Chicken Kyiv", Price: 80},
		{Category: models.Dessert, Name: "Napoleon", Price: 45},
		{Category: models.Drink, Name: "Compote", Price: 10},
	}))

	user := models.NewUser("halyna@example.com", "hash", models.Profile{
		Username: "halyna", FirstName: "Halyna", LastName: "Moroz", Phone: "+380931234567",
	})
	require.NoError(t, store.CreateUser(ctx, user))

	outbox := &notify.Outbox{}
	notifier := notify.NewNotifier(outbox, config.MailConfig{Accountant: "acc@example.com"}, discard)

	window := schedule.Window{CutoffWeekday: time.Friday, CutoffHour: 18, Location: time.UTC, Days: 5}
	guard := NewBudgetGuard(200, notifier, metrics.New(), discard)
	intake := NewIntake(store, window, guard, metrics.New(), discard)
	intake.now = func() time.Time { return thursday }

	return &fixture{intake: intake, store: store, outbox: outbox, user: user}
}

func day(first, firstQty, second, secondQty, dessert, dessertQty, drink, drinkQty string) DayInput {
	return DayInput{
		Dishes:     [models.NumCategories]string{first, second, dessert, drink},
		Quantities: [models.NumCategories]string{firstQty, secondQty, dessertQty, drinkQty},
	}
}

func emptyWeek() []DayInput {
	return make([]DayInput, 5)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	days := emptyWeek()
	// Monday 125, Wednesday 255, Friday 10.
	days[0] = day("Borscht", "1", "Chicken Kyiv", "1", "", "", "Compote", "2")
	days[2] = day("Borscht", "2", "Chicken Kyiv", "2", "Napoleon", "1", "", "")
	days[4] = day("", "3", "Not chosen", "1", "Napoleon", "", "Compote", "1")

	sub, err := f.intake.Submit(ctx, f.user, days)
	require.NoError(t, err)
	require.Len(t, sub.Records, 5)

	assert.Equal(t, int64(125), sub.Records[0].Total)
	assert.Equal(t, int64(255), sub.Records[2].Total)
	assert.Equal(t, int64(0), sub.Records[1].Total)
	assert.Equal(t, int64(10), sub.Records[4].Total)
	assert.Equal(t, int64(390), sub.Total())

	t.Run("sentinel selections", func(t *testing.T) {
		line := sub.Records[4].Lines
		assert.Equal(t, models.NotChosen, line[models.FirstCourse].Dish)
		assert.Zero(t, line[models.FirstCourse].Quantity)
		assert.Equal(t, "Napoleon", line[models.Dessert].Dish)
		assert.Zero(t, line[models.Dessert].Quantity)
	})

	t.Run("one oversum notifies user and accountant", func(t *testing.T) {
		wednesday := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, map[time.Time]int64{wednesday: 55}, sub.Oversums)

		sent := f.outbox.Sent()
		require.Len(t, sent, 2)
		assert.Equal(t, []string{"halyna@example.com"}, sent[0].To)
		assert.Contains(t, sent[0].Body, "you did 55 ₴ oversum for 2026-10-21")
		assert.Equal(t, []string{"acc@example.com"}, sent[1].To)
	})

	t.Run("status becomes duplicate", func(t *testing.T) {
		status, err := f.intake.Status(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, DuplicateExists, status)
	})

	t.Run("second submission is refused", func(t *testing.T) {
		_, err := f.intake.Submit(ctx, f.user, emptyWeek())
		assert.ErrorIs(t, err, ErrDuplicateOrder)
	})

	t.Run("pending week", func(t *testing.T) {
		pending, err := f.intake.PendingWeek(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Len(t, pending, 5)
	})
}

func TestSubmit_WithinBudgetSendsNothing(t *testing.T) {
	f := newFixture(t)

	days := emptyWeek()
	// 195 and exactly 200.
	days[1] = day("Borscht", "1", "Chicken Kyiv", "1", "Napoleon", "2", "Compote", "0")
	days[3] = day("", "", "Chicken Kyiv", "2", "", "", "Compote", "4")

	sub, err := f.intake.Submit(context.Background(), f.user, days)
	require.NoError(t, err)
	assert.Empty(t, sub.Oversums)
	assert.Empty(t, f.outbox.Sent())
}

func TestSubmit_PastCutoff(t *testing.T) {
	f := newFixture(t)
	f.intake.now = func() time.Time { return time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC) }

	status, err := f.intake.Status(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, PastCutoff, status)

	_, err = f.intake.Submit(context.Background(), f.user, emptyWeek())
	assert.ErrorIs(t, err, ErrPastCutoff)

	n, err := f.store.CountPendingOrders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)

	days := emptyWeek()
	days[0] = day("Pizza", "1", "", "", "", "", "", "")
	days[3] = day("Borscht", "-1", "", "", "", "", "Compote", "two")

	_, err := f.intake.Submit(context.Background(), f.user, days)
	errs, ok := validation.From(err)
	require.True(t, ok, "expected validation errors, got %v", err)

	byField := errs.ByField()
	assert.Contains(t, byField, "day0-first_course")
	assert.Contains(t, byField, "day3-first_course_quantity")
	assert.Contains(t, byField, "day3-drink_quantity")

	n, _ := f.store.CountPendingOrders(context.Background())
	assert.Zero(t, n, "nothing is persisted when a form is invalid")

	_, err = f.intake.Submit(context.Background(), f.user, days[:2])
	assert.True(t, validation.Is(err, validation.Required))
}

func TestSubmit_QuantityLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	days := emptyWeek()
	// 737869762948382065 × 25 wraps to 9 in int64 arithmetic.
	days[0] = day("Borscht", "737869762948382065", "", "", "", "", "", "")
	days[1] = day("", "", "Chicken Kyiv", "2147483648", "", "", "", "")

	_, err := f.intake.Submit(ctx, f.user, days)
	errs, ok := validation.From(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	byField := errs.ByField()
	assert.Contains(t, byField, "day0-first_course_quantity")
	assert.Contains(t, byField, "day1-second_course_quantity")
	assert.True(t, validation.Is(err, validation.InvalidQuantity))

	n, _ := f.store.CountPendingOrders(ctx)
	assert.Zero(t, n)
	assert.Empty(t, f.outbox.Sent())

	t.Run("largest quantity is priced exactly and guarded", func(t *testing.T) {
		days := emptyWeek()
		days[0] = day("Borscht", "2147483647", "", "", "", "", "", "")

		sub, err := f.intake.Submit(ctx, f.user, days)
		require.NoError(t, err)
		want := int64(2147483647) * 25
		assert.Equal(t, want, sub.Records[0].Total)
		assert.Equal(t, want-200, sub.Oversums[time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)])
		assert.Len(t, f.outbox.Sent(), 2)
	})

	t.Run("quote", func(t *testing.T) {
		_, err := f.intake.Quote(ctx, []QuoteLine{{Category: models.FirstCourse, Dish: "Borscht", Quantity: 737869762948382065}})
		assert.True(t, validation.Is(err, validation.InvalidQuantity), "got %v", err)

		budget, err := f.intake.Quote(ctx, []QuoteLine{{Category: models.FirstCourse, Dish: "Borscht", Quantity: 2147483647}})
		require.NoError(t, err)
		assert.Equal(t, int64(2147483647)*25, budget.Total)
		assert.True(t, budget.OverBudget())
	})
}

func TestSubmit_NotificationFailureKeepsOrders(t *testing.T) {
	f := newFixture(t)
	f.outbox.Err = errors.New("smtp unavailable")

	days := emptyWeek()
	days[0] = day("", "", "Chicken Kyiv", "3", "", "", "", "")

	sub, err := f.intake.Submit(context.Background(), f.user, days)
	assert.ErrorIs(t, err, ErrNotification)
	require.NotNil(t, sub)
	assert.Equal(t, int64(40), sub.Oversums[time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)])

	n, _ := f.store.CountPendingOrders(context.Background())
	assert.Equal(t, 5, n)
}

func TestQuote(t *testing.T) {
	f := newFixture(t)

	budget, err := f.intake.Quote(context.Background(), []QuoteLine{
		{Category: models.FirstCourse, Dish: "Borscht", Quantity: 2},
		{Category: models.SecondCourse, Dish: "Chicken Kyiv", Quantity: 2},
		{Category: models.Drink, Dish: "Unknown", Quantity: 5},
		{Category: models.Dessert, Dish: "", Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(210), budget.Total)
	assert.Equal(t, int64(-10), budget.Remaining)
	assert.True(t, budget.OverBudget())
}

func TestFormOptions(t *testing.T) {
	menu := &models.Menu{Items: []models.MenuItem{
		{Category: models.Drink, Name: "Uzvar", Price: 12},
		{Category: models.Drink, Name: "Kvass", Price: 15},
	}}
	opts := NewFormOptions(menu)

	assert.Equal(t, []string{models.NotChosen, "Uzvar", "Kvass"}, opts.Dishes[models.Drink])
	assert.Equal(t, []string{models.NotChosen}, opts.Dishes[models.Dessert])
	assert.True(t, opts.Offers(models.Drink, "Kvass"))
	assert.False(t, opts.Offers(models.FirstCourse, "Kvass"))
	assert.Equal(t, int64(15), opts.Prices["drink"]["Kvass"])
}
