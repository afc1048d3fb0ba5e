package http

import (
	"encoding/json"
	"net/http"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/pkg/httpx"
	"github.com/chatblast/chatblast/pkg/slogx"
)

// selfTarget is the path segment a caller uses to address their own account.
const selfTarget = "@me"

// UsersHandler serves the administrative user routes. Listing and creation
// sit behind permission middleware; the per-user routes allow self-access and
// check the permission in the handler otherwise.
type UsersHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

// targetUserID resolves the {id} path segment, mapping "@me" to the caller.
func targetUserID(r *http.Request, caller domain.User) string {
	id := r.PathValue("id")
	if id == selfTarget {
		return caller.ID
	}
	return id
}

// HandleList serves GET /v1/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate serves POST /v1/users: account creation with a caller-chosen
// role. The new account starts unconfirmed like any other.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     int    `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidRequest)
		return
	}

	user, err := h.Users.Create(ctx, req.Email, req.Password, domain.RoleID(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("user created", "user_id", user.ID, "role", int(user.Role))
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGet serves GET /v1/users/{id}. A caller may always read their own
// account; reading anyone else's needs the view permission.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := UserFromContext(ctx)
	if !ok {
		writeServiceError(w, r, service.ErrUnauthenticated)
		return
	}

	targetID := targetUserID(r, caller)
	if targetID != caller.ID {
		if err := h.Auth.RequirePermissions(&caller, domain.PermissionViewUsers); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	user, err := h.Users.Get(ctx, targetID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdate serves PATCH /v1/users/{id}: password change, on the caller's
// own account or with the edit permission on someone else's.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := UserFromContext(ctx)
	if !ok {
		writeServiceError(w, r, service.ErrUnauthenticated)
		return
	}

	targetID := targetUserID(r, caller)
	if targetID != caller.ID {
		if err := h.Auth.RequirePermissions(&caller, domain.PermissionEditUsers); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeServiceError(w, r, service.ErrInvalidRequest)
		return
	}

	if err := h.Users.ChangePassword(ctx, targetID, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", targetID, "by", caller.ID)
	w.WriteHeader(http.StatusNoContent)
}
