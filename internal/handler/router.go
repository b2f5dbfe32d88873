package handler

import (
	"net/http"

	"docproc/internal/config"
	"docproc/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth           *AuthHandler
	Workspace      *WorkspaceHandler
	Theme          *ThemeHandler
	Sessions       SessionChecker
	Logger         domain.Logger
	AllowedOrigins []string
}

// NewHandlers builds the handlers from the dependency container.
func NewHandlers(container *config.Container) Handlers {
	log := container.GetLogger()
	renderer := NewRenderer(log)

	return Handlers{
		Auth:  NewAuthHandler(container.Sessions, container.Themes, container.Workspaces, renderer, log),
		Theme: NewThemeHandler(container.Themes, log),
		Workspace: NewWorkspaceHandler(WorkspaceHandlerDeps{
			Workspaces:      container.Workspaces,
			Themes:          container.Themes,
			Uploads:         container.Uploads,
			Extraction:      container.Extraction,
			Exports:         container.Exports,
			Previews:        container.Previews,
			Renderer:        renderer,
			Logger:          log,
			MaxUploadMemory: container.GetConfig().GetMaxUploadMemory(),
		}),
		Sessions:       container.Sessions,
		Logger:         log,
		AllowedOrigins: container.GetConfig().GetAllowedOrigins(),
	}
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h Handlers) http.Handler {
	router := mux.NewRouter()
	router.Use(ClientMiddleware(h.Logger), RequestLogger(h.Logger))

	// Health check endpoint (no session required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"docproc"}`))
	}).Methods("GET")

	// Public routes
	router.HandleFunc(LoginPath, h.Auth.LoginPage).Methods("GET")
	router.HandleFunc("/login", h.Auth.Login).Methods("POST")
	router.HandleFunc("/logout", h.Auth.Logout).Methods("POST")
	router.HandleFunc("/theme/toggle", h.Theme.Toggle).Methods("POST")

	// Protected routes (require a session)
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(SessionGuard(h.Sessions, h.Logger))

	protected.HandleFunc(ProcessorPath, h.Workspace.Page).Methods("GET")
	protected.HandleFunc("/api/state", h.Workspace.State).Methods("GET")
	protected.HandleFunc("/files", h.Workspace.Upload).Methods("POST")
	protected.HandleFunc("/extract", h.Workspace.Extract).Methods("POST")
	protected.HandleFunc("/view/tab", h.Workspace.SetTab).Methods("POST")
	protected.HandleFunc("/view/search", h.Workspace.Search).Methods("POST")
	protected.HandleFunc("/view/page", h.Workspace.Paginate).Methods("POST")
	protected.HandleFunc("/view/prev", h.Workspace.PrevPage).Methods("POST")
	protected.HandleFunc("/view/next", h.Workspace.NextPage).Methods("POST")
	protected.HandleFunc("/view/tables/{index:[0-9]+}/toggle", h.Workspace.ToggleTable).Methods("POST")
	protected.HandleFunc("/export/{format}", h.Workspace.Export).Methods("GET")
	protected.HandleFunc("/preview", h.Workspace.Preview).Methods("GET")
	protected.HandleFunc("/preview/thumbnail", h.Workspace.Thumbnail).Methods("GET")

	if len(h.AllowedOrigins) == 0 {
		return router
	}

	// Configure CORS for a separately hosted UI
	c := cors.New(cors.Options{
		AllowedOrigins: h.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
