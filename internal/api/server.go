package api

import (
	"net/http"

	"carrent/internal/auth"
	"carrent/internal/booking"
	"carrent/internal/database"
	"carrent/internal/filestore"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the REST API.
type HTTPServer struct {
	db      *database.DB
	svc     *booking.Service
	tokens  *auth.TokenManager
	files   *filestore.Store
	limiter *ipLimiter
	log     *zerolog.Logger
	handler http.Handler
}

// Options configures the HTTP server.
type Options struct {
	RateLimitRPS   int
	RateLimitBurst int
}

// NewHTTPServer wires the routes.
func NewHTTPServer(
	db *database.DB,
	svc *booking.Service,
	tokens *auth.TokenManager,
	files *filestore.Store,
	logger *zerolog.Logger,
	opts Options,
) *HTTPServer {
	s := &HTTPServer{
		db:      db,
		svc:     svc,
		tokens:  tokens,
		files:   files,
		limiter: newIPLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		log:     logger,
	}

	router := httprouter.New()

	router.POST("/api/auth/register", s.handleRegister)
	router.POST("/api/auth/login", s.handleLogin)
	router.POST("/api/auth/logout", s.authenticate(s.handleLogout))
	router.DELETE("/api/auth/account", s.authenticate(s.handleDeleteAccount))

	router.GET("/api/cars", s.handleListCars)
	router.GET("/api/cars/:id", s.handleGetCar)
	router.POST("/api/cars", s.requireStaff(s.handleCreateCar))
	router.PUT("/api/cars/:id", s.requireStaff(s.handleUpdateCar))
	router.DELETE("/api/cars/:id", s.requireStaff(s.handleDeleteCar))

	router.GET("/api/cars/:id/photos", s.handleListCarPhotos)
	router.POST("/api/cars/:id/photos", s.requireStaff(s.handleUploadCarPhoto))
	router.DELETE("/api/photos/:id", s.requireStaff(s.handleDeletePhoto))

	router.GET("/api/bookings", s.authenticate(s.handleListBookings))
	router.POST("/api/bookings", s.authenticate(s.handleCreateBooking))
	router.GET("/api/bookings/:id", s.authenticate(s.handleGetBooking))
	router.PUT("/api/bookings/:id", s.authenticate(s.handleUpdateBooking))
	router.DELETE("/api/bookings/:id", s.authenticate(s.handleDeleteBooking))

	router.GET("/api/admin/bookings/export", s.requireStaff(s.handleExportBookings))

	router.HandlerFunc(http.MethodGet, "/healthz", s.handleHealthz)
	router.HandlerFunc(http.MethodGet, "/readyz", s.handleReadyz)

	if files != nil {
		router.ServeFiles("/media/*filepath", http.Dir(files.Root()))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	s.handler = c.Handler(s.rateLimit(router))
	return s
}

// Handler returns the composed HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
