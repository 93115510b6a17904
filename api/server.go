package api

import (
	"net/http"
	"time"

	"argus-sod/api/handlers"
	"argus-sod/config"
	"argus-sod/core/auth"
	"argus-sod/core/ingest"
	"argus-sod/core/rbac"
	"argus-sod/core/store"
	"argus-sod/core/utils"

	"github.com/go-chi/chi/v5"
)

type ServerDeps struct {
	Users          store.UsersStore
	Sessions       store.SessionStore
	Audits         store.AuditStore
	IncidentsStore store.IncidentsStore
	TicketsStore   store.TicketsStore
	DatasetsStore  store.DatasetsStore
	Loader         *ingest.Loader
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	Policy         *rbac.Policy
}

type Server struct {
	cfg             *config.AppConfig
	logger          *utils.Logger
	users           store.UsersStore
	sessions        store.SessionStore
	audits          store.AuditStore
	incidentsStore  store.IncidentsStore
	ticketsStore    store.TicketsStore
	datasetsStore   store.DatasetsStore
	loader          *ingest.Loader
	authSvc         *auth.Service
	sessionManager  *auth.SessionManager
	policy          *rbac.Policy
	activityTracker *sessionActivity
	loginLimiter    *requestLimiter
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	return &Server{
		cfg:             cfg,
		logger:          logger,
		users:           deps.Users,
		sessions:        deps.Sessions,
		audits:          deps.Audits,
		incidentsStore:  deps.IncidentsStore,
		ticketsStore:    deps.TicketsStore,
		datasetsStore:   deps.DatasetsStore,
		loader:          deps.Loader,
		authSvc:         deps.AuthService,
		sessionManager:  deps.SessionManager,
		policy:          deps.Policy,
		activityTracker: newSessionActivity(),
		loginLimiter:    newLimiter(5, time.Minute),
	}
}

type routeHandlers struct {
	auth      *handlers.AuthHandler
	accounts  *handlers.AccountsHandler
	incidents *handlers.IncidentsHandler
	tables    *handlers.TablesHandler
	imports   *handlers.ImportsHandler
	audit     *handlers.AuditHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		auth:      handlers.NewAuthHandler(s.cfg, s.users, s.sessions, s.authSvc, s.sessionManager, s.audits, s.logger),
		accounts:  handlers.NewAccountsHandler(s.users, s.authSvc, s.audits, s.logger),
		incidents: handlers.NewIncidentsHandler(s.incidentsStore, s.audits, s.logger),
		tables:    handlers.NewTablesHandler(s.incidentsStore, s.ticketsStore, s.datasetsStore),
		imports:   handlers.NewImportsHandler(s.cfg, s.loader, s.audits, s.logger),
		audit:     handlers.NewAuditHandler(s.audits, s.logger),
	}
}

func (s *Server) Router() http.Handler {
	h := s.newRouteHandlers()
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.jsonMiddleware)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(api chi.Router) {
		api.MethodFunc(http.MethodPost, "/auth/login", s.rateLimitMiddleware(h.auth.Login))
		api.MethodFunc(http.MethodPost, "/auth/logout", s.withSession(h.auth.Logout))
		api.MethodFunc(http.MethodGet, "/auth/me", s.withSession(h.auth.Me))

		api.MethodFunc(http.MethodGet, "/accounts", s.withSession(s.requirePermission(rbac.PermAccountsManage)(h.accounts.List)))
		api.MethodFunc(http.MethodPost, "/accounts", s.withSession(s.requirePermission(rbac.PermAccountsManage)(h.accounts.Register)))
		api.MethodFunc(http.MethodDelete, "/accounts/{id}", s.withSession(s.requirePermission(rbac.PermAccountsManage)(h.accounts.Delete)))

		api.MethodFunc(http.MethodGet, "/incidents", s.withSession(s.requirePermission(rbac.PermIncidentsView)(h.incidents.List)))
		api.MethodFunc(http.MethodPost, "/incidents", s.withSession(s.requirePermission(rbac.PermIncidentsWrite)(h.incidents.Create)))
		api.MethodFunc(http.MethodDelete, "/incidents/{id}", s.withSession(s.requirePermission(rbac.PermIncidentsDel)(h.incidents.Delete)))

		api.MethodFunc(http.MethodGet, "/tickets", s.withSession(s.requirePermission(rbac.PermTicketsView)(h.tables.ListTickets)))
		api.MethodFunc(http.MethodGet, "/datasets", s.withSession(s.requirePermission(rbac.PermDatasetsView)(h.tables.ListDatasets)))
		api.MethodFunc(http.MethodGet, "/summary", s.withSession(s.requirePermission(rbac.PermSummaryView)(h.tables.Summary)))

		api.MethodFunc(http.MethodPost, "/imports/run", s.withSession(s.requirePermission(rbac.PermImportsRun)(h.imports.Run)))

		api.MethodFunc(http.MethodGet, "/audit", s.withSession(s.requirePermission(rbac.PermAuditView)(h.audit.Recent)))
	})
	return r
}
