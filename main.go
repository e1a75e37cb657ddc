package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jillianguerra/home-depot/auth"
	"github.com/jillianguerra/home-depot/catalog"
	"github.com/jillianguerra/home-depot/categories"
	"github.com/jillianguerra/home-depot/db"
	"github.com/jillianguerra/home-depot/departments"
	"github.com/jillianguerra/home-depot/orders"
	"github.com/jillianguerra/home-depot/ratelim"
	"github.com/jillianguerra/home-depot/rdx"
	"github.com/jillianguerra/home-depot/reviews"
	"github.com/jillianguerra/home-depot/routes"
	"github.com/jillianguerra/home-depot/wishlist"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(m *db.Mongo, rateLimiter *ratelim.RateLimiter, hub *orders.Hub) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	lookup := catalog.NewLookup(m.Items)
	orderStore := orders.NewMongoStore(m.Orders)
	orderSvc := orders.NewService(orderStore, lookup)

	routes.AddAuthRoutes(router, rateLimiter, auth.NewHandler(m.Users))
	routes.AddItemRoutes(router, rateLimiter, catalog.NewHandler(m.Items, m.Categories, m.Departments, m.Reviews))
	routes.AddOrderRoutes(router, rateLimiter, orders.NewHandler(orderSvc, hub))
	routes.AddReviewRoutes(router, rateLimiter, reviews.NewHandler(m.Reviews, m.Items))
	routes.AddWishlistRoutes(router, rateLimiter, wishlist.NewHandler(m.Wishlist, m.Items))
	routes.AddCategoryRoutes(router, rateLimiter, categories.NewHandler(m.Categories, m.Departments))
	routes.AddDepartmentRoutes(router, rateLimiter, departments.NewHandler(m.Departments, m.Categories))
	routes.AddStaticRoutes(router)

	return router
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startCancel()

	m, err := db.Connect(startCtx)
	if err != nil {
		log.Fatalf("❌ MongoDB connection failed: %v", err)
	}

	// Redis is optional: without it the featured cache and event stream are
	// skipped, everything else works.
	if err := rdx.Connect(startCtx); err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
	}

	rateLimiter := ratelim.NewRateLimiter()
	hub := orders.NewHub()
	router := setupRouter(m, rateLimiter, hub)

	// middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	if err := m.Close(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
