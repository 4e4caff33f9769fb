package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"reviews-backend/internal/cache"
	"reviews-backend/internal/config"
	"reviews-backend/internal/database"
	"reviews-backend/internal/handlers"
	"reviews-backend/internal/middleware"
	"reviews-backend/internal/repository"
	"reviews-backend/internal/services"
)

func main() {
	cfg := config.Load()

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	if cfg.AdminEmail != "" {
		if err := userRepo.PromoteAdmin(context.Background(), cfg.AdminEmail); err != nil {
			log.Fatalf("Failed to bootstrap admin: %v", err)
		}
	}

	summaryCache := cache.New(cfg.RedisAddr, cfg.CacheTTL)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	reviewService := services.NewReviewService(reviewRepo, summaryCache)
	dashboardService := services.NewDashboardService(userRepo, reviewRepo, reviewService)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	router := http.NewServeMux()

	router.HandleFunc("POST /api/auth/register", authHandler.RegisterUser)
	router.HandleFunc("POST /api/auth/login", authHandler.LoginUser)
	router.HandleFunc("POST /api/auth/logout", authHandler.LogoutUser)
	router.Handle("GET /api/auth/me", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.GetMe)))
	router.Handle("PUT /api/auth/update", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.UpdateProfile)))
	router.Handle("PUT /api/auth/update-password", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.UpdatePassword)))

	router.HandleFunc("GET /api/reviews", reviewHandler.ListReviews)
	router.HandleFunc("GET /api/reviews/{id}", reviewHandler.GetReview)
	router.Handle("POST /api/reviews", authMiddleware.RequireAuth(http.HandlerFunc(reviewHandler.CreateReview)))
	router.Handle("PUT /api/reviews/{id}", authMiddleware.RequireAuth(http.HandlerFunc(reviewHandler.UpdateReview)))
	router.Handle("DELETE /api/reviews/{id}", authMiddleware.RequireAuth(http.HandlerFunc(reviewHandler.DeleteReview)))
	router.HandleFunc("GET /api/restaurants/{name}", reviewHandler.GetRestaurant)

	router.Handle("GET /api/dashboard", authMiddleware.RequireAuth(http.HandlerFunc(dashboardHandler.GetDashboard)))
	router.Handle("DELETE /api/dashboard/reviews/{id}", authMiddleware.RequireAuth(http.HandlerFunc(dashboardHandler.DeleteReview)))
	router.Handle("GET /api/dashboard/admin/stats", authMiddleware.RequireAuth(http.HandlerFunc(dashboardHandler.AdminStats)))

	handler := corsMiddleware(router)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	fmt.Printf("Server starting on http://%s\n", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must be strict because of http-only cookies, otherwise won't work
		w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
