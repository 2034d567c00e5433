package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dorm-backend/config"
	"dorm-backend/controllers"
	"dorm-backend/routes"
	"dorm-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("config.DB is nil after ConnectDatabase()")
	}
	log.Println("database connection established and migrations applied")

	rate := config.MonthlyRate()
	log.Printf("monthly rate: %.2f", rate)

	// Initialize services
	studentService := services.NewStudentService(db)
	roomService := services.NewRoomService(db)
	accommodationService := services.NewAccommodationService(db)
	paymentService := services.NewPaymentService(db, rate)
	housingService := services.NewHousingService(db, paymentService)
	statsService := services.NewStatsService(db)

	// Initialize controllers
	studentController := controllers.NewStudentController(studentService)
	roomController := controllers.NewRoomController(roomService, accommodationService, housingService)
	accommodationController := controllers.NewAccommodationController(accommodationService, housingService)
	paymentController := controllers.NewPaymentController(paymentService)
	statsController := controllers.NewStatsController(statsService)

	router := routes.SetupRouter(
		studentController,
		roomController,
		accommodationController,
		paymentController,
		statsController,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal, then shut down with a timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped gracefully")
}
