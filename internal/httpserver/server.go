package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/fitfuel/fitfuel-server/internal/ai"
	"github.com/fitfuel/fitfuel-server/internal/auth"
	"github.com/fitfuel/fitfuel-server/internal/blob"
	"github.com/fitfuel/fitfuel-server/internal/catalogue"
	"github.com/fitfuel/fitfuel-server/internal/config"
	"github.com/fitfuel/fitfuel-server/internal/dietplans"
	"github.com/fitfuel/fitfuel-server/internal/ledger"
	"github.com/fitfuel/fitfuel-server/internal/mailer"
	"github.com/fitfuel/fitfuel-server/internal/messages"
	"github.com/fitfuel/fitfuel-server/internal/notifications"
	"github.com/fitfuel/fitfuel-server/internal/profiles"
	"github.com/fitfuel/fitfuel-server/internal/progress"
	"github.com/fitfuel/fitfuel-server/internal/reports"
	"github.com/fitfuel/fitfuel-server/internal/shop"
	"github.com/fitfuel/fitfuel-server/internal/suggest"
	"github.com/fitfuel/fitfuel-server/internal/workoutplans"
)

type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storages       *Storages
	authMiddleware *auth.Middleware
}

// New builds a fully wired server. With DATABASE_URL unset (or unreachable)
// everything runs on the in-memory backend.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorages()
	s.routes()
	return s
}

func (s *Server) initStorages() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory backend (DATABASE_URL not set)")
		s.storages = NewMemoryStorages()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL")
	st, err := NewPostgresStorages(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: PostgreSQL connection failed: %v", err)
		log.Println("WARN storage: falling back to in-memory backend")
		s.storages = NewMemoryStorages()
		return
	}

	log.Println("INFO storage: PostgreSQL connected")
	s.storages = st
}

func (s *Server) routes() {
	st := s.storages
	clock := ledger.NewClock(s.config.Location())
	reconciler := ledger.NewReconciler(clock)

	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	emailSender, err := mailer.NewSenderFromConfig(s.config, log.Default())
	if err != nil {
		log.Printf("WARN mailer: init failed, falling back to local sender: %v", err)
		emailSender = mailer.NewLocalSender(log.Default())
	}

	blobStore, blobMode, err := blob.NewBlobStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: %v", err)
	}
	log.Printf("INFO blob: using mode=%s", blobMode)

	// Auth API (public paths)
	authService := auth.NewService(s.config, st.Users, st.PasswordResets, emailSender)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	s.mux.HandleFunc("POST /v1/auth/signup", authHandler.HandleSignup)
	s.mux.HandleFunc("POST /v1/auth/login", authHandler.HandleLogin)
	s.mux.HandleFunc("POST /v1/auth/password/request", authHandler.HandlePasswordResetRequest)
	s.mux.HandleFunc("POST /v1/auth/password/reset", authHandler.HandlePasswordReset)

	// Profile API
	profileHandler := profiles.NewHandler(profiles.NewService(st.Profiles))
	s.mux.HandleFunc("GET /v1/profile", profileHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/profile", profileHandler.HandleUpsert)

	// Catalogue API: reads are for everyone, mutations are admin-only.
	catalogueHandler := catalogue.NewHandler(catalogue.NewService(st.Catalogue))
	s.mux.HandleFunc("GET /v1/foods", catalogueHandler.HandleListFoods)
	s.mux.HandleFunc("GET /v1/foods/{id}", catalogueHandler.HandleGetFood)
	s.mux.Handle("POST /v1/foods", s.admin(catalogueHandler.HandleCreateFood))
	s.mux.Handle("PATCH /v1/foods/{id}", s.admin(catalogueHandler.HandleUpdateFood))
	s.mux.Handle("DELETE /v1/foods/{id}", s.admin(catalogueHandler.HandleDeleteFood))
	s.mux.HandleFunc("GET /v1/activities", catalogueHandler.HandleListActivities)
	s.mux.HandleFunc("GET /v1/activities/{id}", catalogueHandler.HandleGetActivity)
	s.mux.Handle("POST /v1/activities", s.admin(catalogueHandler.HandleCreateActivity))
	s.mux.Handle("PATCH /v1/activities/{id}", s.admin(catalogueHandler.HandleUpdateActivity))
	s.mux.Handle("DELETE /v1/activities/{id}", s.admin(catalogueHandler.HandleDeleteActivity))

	// Diet plans API
	dietHandler := dietplans.NewHandler(dietplans.NewService(st.DietPlans, st.Catalogue, reconciler, clock))
	s.mux.HandleFunc("POST /v1/diet-plans", dietHandler.HandleCreatePlan)
	s.mux.HandleFunc("GET /v1/diet-plans", dietHandler.HandleGetPlan)
	s.mux.HandleFunc("POST /v1/diet-plans/{id}/items", dietHandler.HandleAddItem)
	s.mux.HandleFunc("PATCH /v1/diet-items/{id}", dietHandler.HandleUpdateItem)
	s.mux.HandleFunc("DELETE /v1/diet-items/{id}", dietHandler.HandleDeleteItem)

	// Workout plans API
	workoutHandler := workoutplans.NewHandler(workoutplans.NewService(st.WorkoutPlans, st.Catalogue, st.Profiles, reconciler, clock))
	s.mux.HandleFunc("POST /v1/workout-plans", workoutHandler.HandleCreatePlan)
	s.mux.HandleFunc("GET /v1/workout-plans", workoutHandler.HandleGetPlan)
	s.mux.HandleFunc("POST /v1/workout-plans/{id}/items", workoutHandler.HandleAddItem)
	s.mux.HandleFunc("PATCH /v1/workout-items/{id}", workoutHandler.HandleUpdateItem)
	s.mux.HandleFunc("DELETE /v1/workout-items/{id}", workoutHandler.HandleDeleteItem)

	// Daily progress API
	progressHandler := progress.NewHandler(progress.NewService(s.config, st.Progress, clock))
	s.mux.HandleFunc("GET /v1/progress/daily", progressHandler.HandleGetDaily)
	s.mux.HandleFunc("PATCH /v1/progress/daily", progressHandler.HandleUpdateDaily)
	s.mux.HandleFunc("GET /v1/dashboard/stats", progressHandler.HandleDashboardStats)

	// AI suggestions API
	aiProvider := ai.NewProvider(s.config)
	suggestHandler := suggest.NewHandler(suggest.NewService(s.config, st.Profiles, st.Catalogue,
		st.DietPlans, st.WorkoutPlans, st.Notifications, aiProvider, clock))
	s.mux.HandleFunc("POST /v1/suggestions/diet", suggestHandler.HandleSuggestDiet)
	s.mux.HandleFunc("POST /v1/suggestions/workout", suggestHandler.HandleSuggestWorkout)

	// Shop API
	shopHandler := shop.NewHandler(shop.NewService(s.config, st.Shop, st.Users, st.Notifications, blobStore, emailSender))
	s.mux.HandleFunc("GET /v1/products", shopHandler.HandleListProducts)
	s.mux.HandleFunc("GET /v1/products/{id}", shopHandler.HandleGetProduct)
	s.mux.HandleFunc("GET /v1/products/{id}/image", shopHandler.HandleGetProductImage)
	s.mux.Handle("POST /v1/products", s.admin(shopHandler.HandleCreateProduct))
	s.mux.Handle("PATCH /v1/products/{id}", s.admin(shopHandler.HandleUpdateProduct))
	s.mux.Handle("DELETE /v1/products/{id}", s.admin(shopHandler.HandleDeleteProduct))
	s.mux.Handle("POST /v1/products/{id}/image", s.admin(shopHandler.HandleUploadProductImage))

	s.mux.HandleFunc("GET /v1/cart", shopHandler.HandleGetCart)
	s.mux.HandleFunc("PUT /v1/cart/items", shopHandler.HandleUpsertCartItem)
	s.mux.HandleFunc("DELETE /v1/cart/items/{productID}", shopHandler.HandleRemoveCartItem)
	s.mux.HandleFunc("DELETE /v1/cart", shopHandler.HandleClearCart)

	s.mux.HandleFunc("GET /v1/wishlist", shopHandler.HandleGetWishlist)
	s.mux.HandleFunc("POST /v1/wishlist/items", shopHandler.HandleAddWishlistItem)
	s.mux.HandleFunc("DELETE /v1/wishlist/items/{productID}", shopHandler.HandleRemoveWishlistItem)

	s.mux.HandleFunc("POST /v1/orders", shopHandler.HandleCreateOrder)
	s.mux.HandleFunc("GET /v1/orders", shopHandler.HandleListOrders)
	s.mux.HandleFunc("GET /v1/orders/{id}", shopHandler.HandleGetOrder)
	s.mux.Handle("PATCH /v1/orders/{id}/status", s.admin(shopHandler.HandleUpdateOrderStatus))

	// Messages API
	messagesHandler := messages.NewHandler(messages.NewService(st.Messages, st.Users, st.Notifications))
	s.mux.HandleFunc("GET /v1/conversations", messagesHandler.HandleListConversations)
	s.mux.HandleFunc("GET /v1/conversations/{peerID}/messages", messagesHandler.HandleListConversation)
	s.mux.HandleFunc("POST /v1/conversations/{peerID}/messages", messagesHandler.HandleSendMessage)

	// Notifications API
	notificationsHandler := notifications.NewHandler(notifications.NewService(st.Notifications))
	s.mux.HandleFunc("GET /v1/notifications", notificationsHandler.HandleList)
	s.mux.HandleFunc("POST /v1/notifications/read", notificationsHandler.HandleMarkRead)

	// Reports API
	reportsHandler := reports.NewHandler(reports.NewService(s.config, st.Reports, st.Progress, blobStore))
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)
}

// admin wraps a handler with the admin-role check. The global RequireAuth
// middleware has already populated the role claim by the time it runs.
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return s.authMiddleware.RequireAdmin(h)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler returns the full middleware chain, outermost first:
// CORS, rate limit, auth, router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.RequireAuth(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("INFO server: listening on http://localhost%s", addr)
	log.Printf("INFO server: health check at http://localhost%s/healthz", addr)

	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) Close() error {
	if s.storages != nil {
		return s.storages.Close()
	}
	return nil
}
