package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/auth/handler"
	authrepo "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/auth/repository"
	authservice "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/auth/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/identity"
	inventoryevents "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/events"
	inventoryhandler "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/handler"
	inventoryrepo "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/repository"
	inventoryservice "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/service"
	patientevents "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/events"
	patienthandler "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/handler"
	patientrepo "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/repository"
	patientservice "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/service"
	reportingevents "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/events"
	reportinghandler "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/handler"
	reportingrepo "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/repository"
	reportingservice "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/service"
	workloadevents "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/events"
	workloadhandler "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/handler"
	workloadrepo "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/repository"
	workloadservice "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/config"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("medisense-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("medisense-server", cfg.Server.Environment)
	log.Info().Msg("starting MediSense server")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// RabbitMQ is optional: without a broker the server runs with
	// event publishing disabled.
	var rmq *messaging.RabbitMQ
	var inventoryPublisher *inventoryevents.InventoryEventPublisher
	var workloadPublisher *workloadevents.WorkloadEventPublisher
	var reportingPublisher *reportingevents.ReportingEventPublisher
	var patientPublisher *patientevents.PatientEventPublisher

	rmq, err = messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, event publishing disabled")
		rmq = nil
	} else {
		defer rmq.Close()
		if inventoryPublisher, err = inventoryevents.NewInventoryEventPublisher(rmq, log); err != nil {
			log.Fatal().Err(err).Msg("failed to create inventory event publisher")
		}
		if workloadPublisher, err = workloadevents.NewWorkloadEventPublisher(rmq, log); err != nil {
			log.Fatal().Err(err).Msg("failed to create workload event publisher")
		}
		if reportingPublisher, err = reportingevents.NewReportingEventPublisher(rmq, log); err != nil {
			log.Fatal().Err(err).Msg("failed to create reporting event publisher")
		}
		if patientPublisher, err = patientevents.NewPatientEventPublisher(rmq, log); err != nil {
			log.Fatal().Err(err).Msg("failed to create patient event publisher")
		}
	}

	tokenManager := identity.NewManager(&cfg.JWT)

	// Repositories
	userRepo := authrepo.NewUserRepository(db, log)
	itemRepo := inventoryrepo.NewItemRepository(db, log)
	requestRepo := inventoryrepo.NewRequestRepository(db, log)
	workloadRepo := workloadrepo.NewWorkloadRepository(db, log)
	issueRepo := reportingrepo.NewIssueRepository(db, log)
	reportRepo := reportingrepo.NewReportRepository(db, log)
	patientRepo := patientrepo.NewPatientRepository(db, log)

	// Services
	issueService := reportingservice.NewIssueService(issueRepo, reportingPublisher, log)
	reportService := reportingservice.NewReportService(reportRepo, reportingPublisher, log)
	restockService := inventoryservice.NewRestockService(itemRepo, requestRepo, inventoryPublisher, log)
	workloadService := workloadservice.NewWorkloadService(workloadRepo, issueService, workloadPublisher, cfg.Workload.DefaultCapacity, log)
	authService := authservice.NewAuthService(userRepo, workloadRepo, tokenManager, cfg.Workload.DefaultCapacity, log)
	patientService := patientservice.NewPatientService(patientRepo, patientPublisher, log)

	// Handlers
	authHandler := authhandler.NewAuthHandler(authService, log)
	inventoryHandler := inventoryhandler.NewInventoryHandler(restockService, log)
	workloadHandler := workloadhandler.NewWorkloadHandler(workloadService, log)
	reportingHandler := reportinghandler.NewReportingHandler(issueService, reportService, log)
	patientHandler := patienthandler.NewPatientHandler(patientService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Nightly raw-log purge
	purgeScheduler := workloadservice.NewPurgeScheduler(workloadRepo, cfg.Workload.PurgeInterval, log)
	purgeScheduler.Start(ctx)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "medisense-server",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware(tokenManager))

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/items", inventoryHandler.ListItems)
				r.Put("/items", inventoryHandler.UpsertItem)
				r.Delete("/items/{itemName}", inventoryHandler.DeleteItem)
				r.Get("/low-stock", inventoryHandler.LowStock)
				r.Post("/auto-restock-check", inventoryHandler.AutoRestockCheck)

				r.Route("/restock-requests", func(r chi.Router) {
					r.Post("/", inventoryHandler.CreateRequest)
					r.Get("/", inventoryHandler.ListRequests)
					r.Put("/{id}", inventoryHandler.ProcessRequest)
					r.Put("/{id}/edit", inventoryHandler.EditRequest)
					r.Put("/{id}/cancel", inventoryHandler.CancelRequest)
					r.Post("/{id}/receive", inventoryHandler.ReceiveRequest)
				})
			})

			r.Route("/workload", func(r chi.Router) {
				r.Post("/submit", workloadHandler.SubmitDaily)
				r.Post("/logs", workloadHandler.RecordLog)
				r.Get("/forecast", workloadHandler.Forecast)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Route("/issues", func(r chi.Router) {
					r.Post("/", reportingHandler.CreateIssue)
					r.Get("/", reportingHandler.ListIssues)
					r.Put("/{id}", reportingHandler.UpdateIssueStatus)
				})
				r.Post("/generate", reportingHandler.GenerateReport)
				r.Get("/", reportingHandler.ListReports)
				r.Put("/{id}", reportingHandler.UpdateReport)
				r.Post("/{id}/submit", reportingHandler.SubmitReport)
			})

			r.Route("/patients", func(r chi.Router) {
				r.Post("/", patientHandler.Register)
				r.Get("/", patientHandler.List)
				r.Get("/{id}", patientHandler.Get)
				r.Put("/{id}", patientHandler.Update)
			})
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	purgeScheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
