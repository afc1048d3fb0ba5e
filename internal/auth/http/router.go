package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/metrics"
	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/internal/auth/store"
	"github.com/chatblast/chatblast/pkg/httpx"
	"github.com/chatblast/chatblast/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookieSecure bool

	store               store.Store
	AuthService         *service.AuthService
	SessionService      *service.SessionService
	VerificationService *service.VerificationService
	UserService         *service.UserService
}

func NewRouter(
	buildVersion string,
	cookieSecure bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		cookieSecure: cookieSecure,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerVerification()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Auth:         r.AuthService,
		Sessions:     r.SessionService,
		Verification: r.VerificationService,
		CookieSecure: r.cookieSecure,
	}

	// Credential-bearing endpoints carry the strict per-IP limit.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Logout works for unconfirmed accounts too; holding a session is enough.
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			SessionAuth(r.AuthService, true),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Auth: r.AuthService, Users: r.UserService}

	// User administration needs a confirmed account; no allow-unconfirmed
	// escape hatch here.
	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			SessionAuth(r.AuthService, false),
			RequirePermissions(r.AuthService, domain.PermissionViewUsers),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			SessionAuth(r.AuthService, false),
			RequirePermissions(r.AuthService, domain.PermissionCreateUser),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Self-or-permission access is decided in the handler; "@me" addresses
	// the caller's own account.
	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			SessionAuth(r.AuthService, false),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			SessionAuth(r.AuthService, false),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerVerification() {
	h := &VerificationHandler{Verification: r.VerificationService}

	// Every send reaches the mail collaborator, hence the tight window.
	r.Mux.Handle("POST /v1/verification/email/send",
		httpx.Chain(http.HandlerFunc(h.HandleSend),
			SessionAuth(r.AuthService, true),
			httpx.RateLimitByIP(httpx.TightLimit),
		),
	)
	r.Mux.Handle("POST /v1/verification/email/code",
		httpx.Chain(http.HandlerFunc(h.HandleCode),
			SessionAuth(r.AuthService, true),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler())
}
