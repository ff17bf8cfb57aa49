package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "smakolyk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, username, first, last, phone string) *models.User {
	t.Helper()
	user := models.NewUser(username+"@example.com", "hash", models.Profile{
		Username:  username,
		FirstName: first,
		LastName:  last,
		Phone:     phone,
	})
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func testMenu() []models.MenuItem {
	return []models.MenuItem{
		{Category: models.FirstCourse, Name: "Borscht", Price: 25},
		{Category: models.SecondCourse, Name: "Varenyky", Price: 40},
		{Category: models.Dessert, Name: "Syrnyky", Price: 30},
		{Category: models.Drink, Name: "Uzvar", Price: 12},
		{Category: models.FirstCourse, Name: "Solyanka", Price: 35},
	}
}

func order(userID string, date time.Time, first, second, dessert, drink models.Selection) *models.PendingOrder {
	return &models.PendingOrder{
		UserID:     userID,
		Date:       date,
		Selections: [models.NumCategories]models.Selection{first, second, dessert, drink},
	}
}

func week(from time.Time) storage.Week {
	return storage.Week{From: from, To: from.AddDate(0, 0, 4)}
}

var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	birthdate := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	user := models.NewUser("Olena@Example.COM", "hash", models.Profile{
		Username:  "olena",
		FirstName: "Olena",
		LastName:  "Shevchenko",
		Birthdate: &birthdate,
		Phone:     "+380501234567",
	})
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("lookups by every unique key", func(t *testing.T) {
		lookups := map[string]func() (*models.User, error){
			"email":    func() (*models.User, error) { return store.GetUserByEmail(ctx, "Olena@example.com") },
			"id":       func() (*models.User, error) { return store.GetUserByID(ctx, user.ID) },
			"username": func() (*models.User, error) { return store.GetUserByUsername(ctx, "olena") },
			"phone":    func() (*models.User, error) { return store.GetUserByPhone(ctx, "+380501234567") },
		}
		for name, get := range lookups {
			got, err := get()
			if err != nil {
				t.Fatalf("lookup by %s failed: %v", name, err)
			}
			if got == nil || got.ID != user.ID {
				t.Fatalf("lookup by %s returned %+v, want user %s", name, got, user.ID)
			}
		}
	})

	t.Run("profile round trip", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got.Profile.Slug != "olena" {
			t.Errorf("Slug = %q, want olena", got.Profile.Slug)
		}
		if got.Profile.Birthdate == nil || !got.Profile.Birthdate.Equal(birthdate) {
			t.Errorf("Birthdate = %v, want %v", got.Profile.Birthdate, birthdate)
		}
		if !got.IsActive || got.IsAdmin {
			t.Errorf("unexpected flags: active=%v admin=%v", got.IsActive, got.IsAdmin)
		}
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil user, got %+v", got)
		}
	})

	t.Run("duplicate phone is rejected", func(t *testing.T) {
		dup := models.NewUser("other@example.com", "hash", models.Profile{
			Username: "other", FirstName: "Other", LastName: "User", Phone: "+380501234567",
		})
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected unique constraint violation")
		}
		if got, _ := store.GetUserByEmail(ctx, "other@example.com"); got != nil {
			t.Error("user row should have been rolled back with the profile")
		}
	})

	t.Run("UpdateProfile and SetAdmin", func(t *testing.T) {
		profile := user.Profile
		profile.Username = "Olena S"
		profile.Birthdate = nil
		if err := store.UpdateProfile(ctx, user.ID, profile); err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if err := store.SetAdmin(ctx, user.ID, true); err != nil {
			t.Fatalf("SetAdmin failed: %v", err)
		}

		got, _ := store.GetUserByID(ctx, user.ID)
		if got.Profile.Slug != "olena-s" {
			t.Errorf("Slug = %q, want olena-s", got.Profile.Slug)
		}
		if got.Profile.Birthdate != nil {
			t.Errorf("Birthdate should be cleared, got %v", got.Profile.Birthdate)
		}
		if !got.IsAdmin {
			t.Error("expected admin flag")
		}

		if err := store.SetAdmin(ctx, "missing", true); err == nil {
			t.Error("expected error for unknown user")
		}
	})
}

func TestMenu(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceMenu(ctx, testMenu()); err != nil {
		t.Fatalf("ReplaceMenu failed: %v", err)
	}

	menu, err := store.GetMenu(ctx)
	if err != nil {
		t.Fatalf("GetMenu failed: %v", err)
	}
	if len(menu.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(menu.Items))
	}
	if names := menu.Names(models.FirstCourse); len(names) != 2 || names[0] != "Borscht" || names[1] != "Solyanka" {
		t.Errorf("first courses = %v, want [Borscht Solyanka]", names)
	}
	if p := menu.Price(models.Drink, "Uzvar"); p != 12 {
		t.Errorf("Uzvar price = %d, want 12", p)
	}

	t.Run("replace drops the previous menu", func(t *testing.T) {
		next := []models.MenuItem{{Category: models.Drink, Name: "Kvass", Price: 15}}
		if err := store.ReplaceMenu(ctx, next); err != nil {
			t.Fatalf("ReplaceMenu failed: %v", err)
		}
		menu, _ := store.GetMenu(ctx)
		if len(menu.Items) != 1 || menu.Items[0].Name != "Kvass" {
			t.Errorf("menu = %+v, want only Kvass", menu.Items)
		}
	})

	t.Run("failed replace keeps the old menu", func(t *testing.T) {
		bad := []models.MenuItem{
			{Category: models.Drink, Name: "Tea", Price: 5},
			{Category: models.Drink, Name: "Tea", Price: 6},
		}
		if err := store.ReplaceMenu(ctx, bad); err == nil {
			t.Fatal("expected duplicate dish to fail")
		}
		menu, _ := store.GetMenu(ctx)
		if len(menu.Items) != 1 || menu.Items[0].Name != "Kvass" {
			t.Errorf("menu = %+v, want Kvass to survive", menu.Items)
		}
	})
}

func TestSubmitOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceMenu(ctx, testMenu()); err != nil {
		t.Fatalf("ReplaceMenu failed: %v", err)
	}
	user := createUser(t, store, "taras", "Taras", "Bondar", "+380671112233")

	none := models.NewSelection("", 0)
	orders := []*models.PendingOrder{
		order(user.ID, monday,
			models.NewSelection("Borscht", 2), models.NewSelection("Varenyky", 1), none, models.NewSelection("Uzvar", 1)),
		order(user.ID, monday.AddDate(0, 0, 1),
			models.NewSelection("Gone from menu", 3), none, models.NewSelection("Syrnyky", 1), none),
	}

	records, err := store.SubmitOrders(ctx, week(monday), orders)
	if err != nil {
		t.Fatalf("SubmitOrders failed: %v", err)
	}

	t.Run("history is priced at submission", func(t *testing.T) {
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Total != 2*25+40+12 {
			t.Errorf("Monday total = %d, want %d", records[0].Total, 2*25+40+12)
		}
		if records[1].Lines[models.FirstCourse].UnitPrice != 0 {
			t.Error("dish missing from the menu should be priced 0")
		}
		if records[1].Total != 30 {
			t.Errorf("Tuesday total = %d, want 30", records[1].Total)
		}
	})

	t.Run("pending orders are listed oldest first", func(t *testing.T) {
		pending, err := store.ListPendingOrders(ctx, user.ID, monday, monday.AddDate(0, 0, 4))
		if err != nil {
			t.Fatalf("ListPendingOrders failed: %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("expected 2 pending orders, got %d", len(pending))
		}
		if !pending[0].Date.Equal(monday) {
			t.Errorf("first order dated %v, want %v", pending[0].Date, monday)
		}
		if got := pending[0].Selections[models.Dessert]; got.Dish != models.NotChosen || got.Quantity != 0 {
			t.Errorf("dessert = %+v, want the not-chosen sentinel", got)
		}
	})

	t.Run("second submission in the same week is refused", func(t *testing.T) {
		again := []*models.PendingOrder{order(user.ID, monday.AddDate(0, 0, 4), none, none, none, none)}
		_, err := store.SubmitOrders(ctx, week(monday), again)
		if !errors.Is(err, storage.ErrOrderExists) {
			t.Fatalf("expected ErrOrderExists, got %v", err)
		}

		n, _ := store.CountPendingOrders(ctx)
		if n != 2 {
			t.Errorf("pending orders = %d, want 2", n)
		}
	})

	t.Run("HasOrderBetween", func(t *testing.T) {
		has, err := store.HasOrderBetween(ctx, user.ID, monday, monday.AddDate(0, 0, 4))
		if err != nil || !has {
			t.Errorf("HasOrderBetween = %v, %v; want true", has, err)
		}
		has, _ = store.HasOrderBetween(ctx, user.ID, monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 11))
		if has {
			t.Error("expected no order in the following week")
		}
	})
}

func TestDrainPendingOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.ReplaceMenu(ctx, testMenu())
	a := createUser(t, store, "anna", "Anna", "Koval", "+380931000001")
	b := createUser(t, store, "bohdan", "Bohdan", "Melnyk", "+380931000002")

	none := models.NewSelection("", 0)
	for _, u := range []*models.User{a, b} {
		_, err := store.SubmitOrders(ctx, week(monday), []*models.PendingOrder{
			order(u.ID, monday, models.NewSelection("Borscht", 1), none, none, none),
		})
		if err != nil {
			t.Fatalf("SubmitOrders failed: %v", err)
		}
	}

	drained, err := store.DrainPendingOrders(ctx)
	if err != nil {
		t.Fatalf("DrainPendingOrders failed: %v", err)
	}
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained orders, got %d", len(drained))
	}
	if drained[0].Name != "Anna Koval" || drained[1].Name != "Bohdan Melnyk" {
		t.Errorf("names = %q, %q", drained[0].Name, drained[1].Name)
	}

	n, _ := store.CountPendingOrders(ctx)
	if n != 0 {
		t.Errorf("pending orders after drain = %d, want 0", n)
	}

	history, err := store.ListHistory(ctx, storage.HistoryFilter{})
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history should survive the drain, got %d records", len(history))
	}

	// Drained users may order again.
	_, err = store.SubmitOrders(ctx, week(monday), []*models.PendingOrder{order(a.ID, monday, none, none, none, none)})
	if err != nil {
		t.Errorf("SubmitOrders after drain failed: %v", err)
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.ReplaceMenu(ctx, testMenu()); err != nil {
		t.Fatalf("ReplaceMenu failed: %v", err)
	}
	user := createUser(t, store, "ivan", "Ivan", "Franko", "+380501112233")
	none := models.NewSelection("", 0)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.SubmitOrders(ctx, week(monday), []*models.PendingOrder{
				order(user.ID, monday, models.NewSelection("Borscht", 1), none, none, none),
			})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, storage.ErrOrderExists):
			t.Errorf("expected ErrOrderExists for a concurrent duplicate, got %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d submissions succeeded, want exactly 1", ok)
	}
}

func TestDrainDuringSubmissions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.ReplaceMenu(ctx, testMenu()); err != nil {
		t.Fatalf("ReplaceMenu failed: %v", err)
	}
	none := models.NewSelection("", 0)

	const users = 10
	ids := make([]string, users)
	for i := range users {
		ids[i] = createUser(t, store, fmt.Sprintf("user%d", i), "Taras", "Bulba", fmt.Sprintf("+38050123%04d", i)).ID
	}

	var wg sync.WaitGroup
	submitErrs := make([]error, users)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, submitErrs[i] = store.SubmitOrders(ctx, week(monday), []*models.PendingOrder{
				order(id, monday, models.NewSelection("Borscht", 1), none, none, none),
			})
		}()
	}
	drained, drainErr := store.DrainPendingOrders(ctx)
	wg.Wait()

	if drainErr != nil {
		t.Fatalf("DrainPendingOrders failed during submissions: %v", drainErr)
	}
	for i, err := range submitErrs {
		if err != nil {
			t.Errorf("submission %d failed: %v", i, err)
		}
	}
	remaining, err := store.CountPendingOrders(ctx)
	if err != nil {
		t.Fatalf("CountPendingOrders failed: %v", err)
	}
	if len(drained)+remaining != users {
		t.Errorf("drained %d + remaining %d, want %d orders in total", len(drained), remaining, users)
	}
}

func TestListHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.ReplaceMenu(ctx, testMenu())
	a := createUser(t, store, "anna", "Anna", "Koval", "+380931000001")
	b := createUser(t, store, "bohdan", "Bohdan", "Melnyk", "+380931000002")

	none := models.NewSelection("", 0)
	nextMonday := monday.AddDate(0, 0, 7)
	submit := func(u *models.User, date time.Time) {
		t.Helper()
		if _, err := store.SubmitOrders(ctx, week(date), []*models.PendingOrder{
			order(u.ID, date, none, models.NewSelection("Varenyky", 1), none, none),
		}); err != nil {
			t.Fatalf("SubmitOrders failed: %v", err)
		}
	}
	submit(a, monday)
	submit(b, monday)
	submit(a, nextMonday)

	tests := []struct {
		name   string
		filter storage.HistoryFilter
		want   int
	}{
		{"everything", storage.HistoryFilter{}, 3},
		{"one user", storage.HistoryFilter{UserID: a.ID}, 2},
		{"one week", storage.HistoryFilter{From: monday, To: monday.AddDate(0, 0, 4)}, 2},
		{"user and week", storage.HistoryFilter{UserID: a.ID, From: nextMonday, To: nextMonday.AddDate(0, 0, 4)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListHistory(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListHistory failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}

	records, _ := store.ListHistory(ctx, storage.HistoryFilter{UserID: a.ID})
	if len(records) == 2 && !records[0].Date.Equal(nextMonday) {
		t.Errorf("newest record first: got %v", records[0].Date)
	}
}
