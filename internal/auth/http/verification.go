package http

import (
	"encoding/json"
	"net/http"

	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/pkg/httpx"
	"github.com/chatblast/chatblast/pkg/slogx"
)

// VerificationHandler serves the email-confirmation routes. Both run behind
// SessionAuth with unconfirmed accounts allowed; an unconfirmed caller is the
// whole point of these endpoints.
type VerificationHandler struct {
	Verification *service.VerificationService
}

// HandleSend issues a fresh confirmation code and mails the link. Sits behind
// a tight rate limit because every hit reaches the mail collaborator.
func (h *VerificationHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		writeServiceError(w, r, service.ErrUnauthenticated)
		return
	}
	if user.Confirmed {
		httpx.WriteError(w, http.StatusBadRequest,
			"AlreadyConfirmed", "This account is already confirmed.")
		return
	}

	if _, err := h.Verification.IssueEmailConfirmation(ctx, user); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("confirmation mail requested", "user_id", user.ID)
	w.WriteHeader(http.StatusAccepted)
}

// HandleCode redeems a confirmation code for the authenticated account.
func (h *VerificationHandler) HandleCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		writeServiceError(w, r, service.ErrUnauthenticated)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, r, service.ErrInvalidRequest)
		return
	}

	if err := h.Verification.ConfirmEmail(ctx, user.ID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("email confirmed", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
