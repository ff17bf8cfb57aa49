package api

// User is an account with its profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Slug      string `json:"slug"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Birthdate is YYYY-MM-DD or empty.
	Birthdate string `json:"birthdate,omitempty"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt int64  `json:"created_at"`
}

// Profile is the editable part of a user.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthdate string `json:"birthdate,omitempty"`
	Phone     string `json:"phone"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Profile
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	User *User `json:"user"`
}

type UpdateProfileRequest struct {
	Profile
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}

// Dish is one menu entry.
type Dish struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// MenuCategory lists the dishes of one category in menu order.
type MenuCategory struct {
	Category string `json:"category"`
	Dishes   []Dish `json:"dishes"`
}

type GetMenuRequest struct{}

type GetMenuResponse struct {
	Categories []MenuCategory `json:"categories"`
}

type GetPricesRequest struct{}

// GetPricesResponse maps category -> dish -> unit price.
type GetPricesResponse struct {
	Response map[string]map[string]int64 `json:"response"`
}

// Selection is the choice for one category. An empty dish means "Not chosen".
type Selection struct {
	Category string `json:"category"`
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

// DayOrder is the order of one working day.
type DayOrder struct {
	Date       string      `json:"date"`
	Selections []Selection `json:"selections"`
}

// WeekDay is a working day of the order form.
type WeekDay struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type GetWeekRequest struct{}

type GetWeekResponse struct {
	// Status is "submittable", "past_cutoff" or "duplicate_exists".
	Status        string                      `json:"status"`
	Days          []WeekDay                   `json:"days"`
	Options       map[string][]string         `json:"options"`
	Prices        map[string]map[string]int64 `json:"prices"`
	BudgetCeiling int64                       `json:"budget_ceiling"`
	// Orders are the pending orders of the week when Status is "duplicate_exists".
	Orders []DayOrder `json:"orders,omitempty"`
}

type SubmitWeekRequest struct {
	// Days holds one entry per working day, Monday first.
	Days []DayOrder `json:"days"`
}

// Oversum is a day whose total exceeded the budget ceiling.
type Oversum struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
}

type SubmitWeekResponse struct {
	Records  []*HistoryRecord `json:"records"`
	Total    int64            `json:"total"`
	Oversums []Oversum        `json:"oversums"`
	// NotificationFailed is set when the orders were saved but an oversum email was not sent.
	NotificationFailed bool `json:"notification_failed,omitempty"`
}

type CalculateTotalRequest struct {
	Selections []Selection `json:"selections"`
}

// CalculateTotalResponse carries the remaining budget in Response and whether the
// difference will be deducted (the total exceeds the ceiling).
type CalculateTotalResponse struct {
	Response       int64 `json:"response"`
	AmountDeducted bool  `json:"amount_deducted"`
	Total          int64 `json:"total"`
}

// HistoryLine is one category of a history record.
type HistoryLine struct {
	Category  string `json:"category"`
	Dish      string `json:"dish"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"price"`
	Amount    int64  `json:"amount"`
}

type HistoryRecord struct {
	ID    string        `json:"id"`
	Date  string        `json:"date"`
	Lines []HistoryLine `json:"lines"`
	Total int64         `json:"total_amount"`
}

type ListHistoryRequest struct {
	// From and To are inclusive YYYY-MM-DD bounds; empty means unbounded.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type ListHistoryResponse struct {
	Records []*HistoryRecord `json:"records"`
}

type GetHistoryWeekRequest struct {
	// Date selects the week containing it; empty means the upcoming week.
	Date string `json:"date,omitempty"`
}

// HistoryDay is one working day of a history week; Record is null when nothing was ordered.
type HistoryDay struct {
	Date        string         `json:"date"`
	Record      *HistoryRecord `json:"record"`
	TotalAmount int64          `json:"total_amount"`
}

type GetHistoryWeekResponse struct {
	DateExists bool `json:"date_exists"`
	// HistoryData is keyed by lower-case weekday name.
	HistoryData map[string]HistoryDay `json:"history_data"`
	Days        []string              `json:"days"`
	Total       int64                 `json:"total"`
}
