package request

// RegisterAccountRequest is the body for POST /accounts
type RegisterAccountRequest struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// LoginRequest is the body for POST /accounts/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ModifyAccountRequest is the body for PATCH /accounts/{id}.
// Absent fields are left unchanged.
type ModifyAccountRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// RegisterGameRequest is the body for POST /games
type RegisterGameRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}
