package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/parkrose/maintenance-service/internal/app"
	"github.com/parkrose/maintenance-service/internal/config"
	"github.com/parkrose/maintenance-service/internal/constants"
	"github.com/parkrose/maintenance-service/internal/controllers"
	"github.com/parkrose/maintenance-service/internal/middleware"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/routes"
	"github.com/parkrose/maintenance-service/internal/services"
	"github.com/parkrose/maintenance-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize maintenance-service:", err)
	}
	defer application.Close()

	reqRepo := repositories.NewMaintenanceRequestRepository(application.DB)
	woRepo := repositories.NewWorkOrderRepository(application.DB)
	quoteRepo := repositories.NewQuoteRepository(application.DB)
	asgRepo := repositories.NewAssignmentRepository(application.DB)
	vendorRepo := repositories.NewVendorRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	staffRepo := repositories.NewStaffRepository(application.DB)
	policyRepo := repositories.NewEscalationPolicyRepository(application.DB)
	schedRepo := repositories.NewOnCallScheduleRepository(application.DB)
	slaRepo := repositories.NewSLARepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(
			context.Background(),
			propRepo,
			staffRepo,
			vendorRepo,
			policyRepo,
			schedRepo,
		); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	notifier := services.NewNotificationService(cfg)
	slaService := services.NewSLAService(slaRepo)
	onCallService := services.NewOnCallService(schedRepo, staffRepo)
	router := services.NewEmergencyRouter(vendorRepo, asgRepo)

	workOrderService := services.NewWorkOrderService(
		cfg,
		woRepo,
		quoteRepo,
		asgRepo,
		vendorRepo,
		reqRepo,
		staffRepo,
		slaService,
		notifier,
	)
	maintenanceService := services.NewMaintenanceService(
		cfg,
		reqRepo,
		woRepo,
		propRepo,
		vendorRepo,
		staffRepo,
		slaService,
		router,
		onCallService,
		notifier,
	)
	escalationService := services.NewEscalationService(
		cfg,
		woRepo,
		slaRepo,
		policyRepo,
		staffRepo,
		propRepo,
		onCallService,
		notifier,
	)

	healthController := controllers.NewHealthController(application)
	requestsController := controllers.NewMaintenanceRequestsController(maintenanceService)
	workOrdersController := controllers.NewWorkOrdersController(workOrderService)
	quotesController := controllers.NewQuotesController(workOrderService)
	onCallController := controllers.NewOnCallController(onCallService)

	muxRouter := mux.NewRouter()

	// Public
	muxRouter.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	secured := muxRouter.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.RequestsBase, requestsController.CreateRequestHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.RequestsBase, requestsController.ListRequestsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.RequestsDispatch, requestsController.DispatchRequestHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.RequestByID, requestsController.GetRequestHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.QuotesBase, quotesController.SubmitQuoteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.QuotesApprove, quotesController.ApproveQuoteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.QuotesReject, quotesController.RejectQuoteHandler).Methods(http.MethodPost)

	secured.HandleFunc(routes.WorkOrdersAccept, workOrdersController.AcceptHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.WorkOrdersDecline, workOrdersController.DeclineHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.WorkOrdersComplete, workOrdersController.CompleteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.WorkOrdersCancel, workOrdersController.CancelHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.WorkOrdersStatus, workOrdersController.UpdateStatusHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.WorkOrdersBase, workOrdersController.ListWorkOrdersHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.WorkOrderByID, workOrdersController.GetWorkOrderHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.OnCallCurrent, onCallController.CurrentOnCallHandler).Methods(http.MethodGet)

	c := cron.New()
	_, sweepErr := c.AddFunc(constants.EscalationSweepSpec, func() {
		if e := escalationService.RunEscalationSweep(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Escalation sweep failed")
		}
	})
	if sweepErr != nil {
		utils.Logger.WithError(sweepErr).Fatal("Failed to schedule escalation sweep cron")
	}

	_, houseErr := c.AddFunc(constants.SLAHousekeepingSpec, func() {
		if e := escalationService.RunSLAHousekeeping(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("SLA housekeeping failed")
		}
	})
	if houseErr != nil {
		utils.Logger.WithError(houseErr).Fatal("Failed to schedule SLA housekeeping cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(muxRouter)); err != nil {
		utils.Logger.Fatal("maintenance-service failed to start:", err)
	}
}
