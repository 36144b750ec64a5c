package backend

// User represents a guest record on the check-in backend
type User struct {
	ID          string `json:"_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Department  string `json:"department,omitempty"`
	SeatNumber  int    `json:"seat_number,omitempty"`
	IsCheckedIn bool   `json:"is_checked_in"`
	CheckInTime string `json:"check_in_time,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// UserPage is the envelope returned by the user listing endpoint
type UserPage struct {
	Message      string `json:"message"`
	Data         []User `json:"data"`
	Total        int    `json:"total"`
	CheckinTotal int    `json:"checkin_total"`
}

// ImportSummary is the envelope returned by the bulk import endpoint
type ImportSummary struct {
	Message string   `json:"message"`
	Data    []string `json:"data"`
	Total   int      `json:"total"`
}

// ValidateResult is returned by the key validation endpoint
type ValidateResult struct {
	Role string `json:"role"`
}

// userEnvelope wraps single-user responses
type userEnvelope struct {
	Message string `json:"message"`
	Data    User   `json:"data"`
}

// idEnvelope wraps responses that return only a user id
type idEnvelope struct {
	Message string `json:"message"`
	Data    struct {
		UserID string `json:"user_id"`
	} `json:"data"`
}
