package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/replayhq/scoreserver/internal/api/request"
	"github.com/replayhq/scoreserver/internal/api/response"
	"github.com/replayhq/scoreserver/internal/model"
	"github.com/replayhq/scoreserver/internal/services/account"
)

// AccountHandler handles account endpoints
type AccountHandler struct {
	accounts *account.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
	}
}

// Register handles POST /api/v1/accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	user, err := h.accounts.Register(r.Context(), account.RegisterRequest{
		Username: req.Username,
		Nickname: req.Nickname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(user))
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginFromResult(result))
}

// Modify handles PATCH /api/v1/accounts/{id}
func (h *AccountHandler) Modify(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.ModifyAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var status *model.UserStatus
	if req.Status != nil {
		s := model.UserStatus(*req.Status)
		status = &s
	}

	user, err := h.accounts.Modify(r.Context(), id, account.ModifyRequest{
		Email:    req.Email,
		Password: req.Password,
		Status:   status,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(user))
}

// Get handles GET /api/v1/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(user))
}

// accountID parses the {id} path variable
func accountID(r *http.Request) (model.UserID, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, NewInvalidRequestError("invalid account id")
	}
	return model.UserID(id), nil
}
