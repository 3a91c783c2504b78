package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/job-board/internal/jobboard"
	"github.com/jonathan/job-board/internal/server/middleware"
	"github.com/jonathan/job-board/internal/types"
	"go.uber.org/zap"
)

// AuthHandler serves sign-up, sign-in and the current account.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	log         *zap.SugaredLogger
}

func NewAuthHandler(userService *UserService, jwtService *JWTService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		log:         log,
	}
}

// Register handles POST /auth/register and answers 201 with a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.SignUpRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := jobboard.ValidateSignUp(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, "register", err)
		return
	}
	h.log.Infow("account created", "user_id", account.ID)

	h.startSession(w, http.StatusCreated, account)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.SignInRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := jobboard.ValidateSignIn(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	h.startSession(w, http.StatusOK, account)
}

// Me returns the authenticated account. It must sit behind AuthMiddleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	account, err := h.userService.Me(r.Context(), userID)
	if err != nil {
		h.fail(w, "me", err)
		return
	}

	writeJSON(w, http.StatusOK, types.Result{Success: true, Data: account})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, status int, account *types.Account) {
	session, err := h.jwtService.NewSession(account)
	if err != nil {
		h.log.Errorw("token signing failed", "user_id", account.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, status, types.Result{Success: true, Data: session})
}

// fail writes err with its mapped status. Errors outside the account
// taxonomy are logged and replaced with a generic message.
func (h *AuthHandler) fail(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Errorw("auth operation failed", "op", op, "error", err)
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}
