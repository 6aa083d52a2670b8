package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/go-chi/chi/v5"
)

type UserService interface {
	RegisterUser(ctx context.Context, user *domain.User) (string, error)
	RoleOf(ctx context.Context, email string) (domain.Role, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	MakeAdmin(ctx context.Context, id string) (domain.WriteAck, error)
	RemoveAdmin(ctx context.Context, id string) (domain.WriteAck, error)
	DeleteUser(ctx context.Context, id string) error
}

type UserHandler struct {
	users   UserService
	timeout time.Duration
}

func NewUserHandler(users UserService, timeout time.Duration) *UserHandler {
	return &UserHandler{
		users:   users,
		timeout: timeout,
	}
}

type RegisterUserResponseDTO struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type RoleResponseDTO struct {
	Role domain.Role `json:"role"`
}

// POST /users
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var user domain.User
	if err := decodeJSON(r, &user); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := h.users.RegisterUser(ctx, &user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, RegisterUserResponseDTO{
		Message: "User added successfully",
		UserID:  id,
	})
}

// GET /users/role/{email}
func (h *UserHandler) RoleOf(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	role, err := h.users.RoleOf(ctx, chi.URLParam(r, "email"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RoleResponseDTO{Role: role})
}

// GET /admin/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	respondJSON(w, http.StatusOK, users)
}

// PATCH /admin/users/{userId}/make-admin
func (h *UserHandler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, h.users.MakeAdmin)
}

// PATCH /admin/users/{userId}/remove-admin
func (h *UserHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, h.users.RemoveAdmin)
}

// DELETE /admin/users/{userId}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.users.DeleteUser(ctx, chi.URLParam(r, "userId")); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.DeleteAck{Acknowledged: true, DeletedCount: 1})
}

func (h *UserHandler) setRole(w http.ResponseWriter, r *http.Request, set func(context.Context, string) (domain.WriteAck, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	ack, err := set(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ack)
}
