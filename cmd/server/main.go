package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forms-backend-go/internal/api"
	"forms-backend-go/internal/config"
	"forms-backend-go/internal/core"
	"forms-backend-go/internal/db"
	"forms-backend-go/internal/middleware"
)

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	var zapLogger *zap.Logger
	if strings.ToLower(appConfig.LogMode) == "production" {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded and logger initialized.")

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirebase(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase clients are nil after initialization. Application cannot start.")
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	// --- 4. Initialize Repositories ---
	formRepo := db.NewFirestoreFormRepository(firestoreClient, zapLogger)
	subformRepo := db.NewFirestoreSubformRepository(firestoreClient, zapLogger)
	recordRepo := db.NewFirestoreRecordRepository(firestoreClient, zapLogger)
	subrecordRepo := db.NewFirestoreSubrecordRepository(firestoreClient, zapLogger)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)
	userProfileRepo := db.NewFirestoreUserProfileRepository(firestoreClient)
	authAdmin := db.NewFirebaseAuthAdmin(firebaseAuthClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 5. Initialize Services ---
	auditService := core.NewAuditService(auditRepo, zapLogger)
	formService := core.NewFormService(formRepo, auditService)
	subformService := core.NewSubformService(subformRepo, auditService)
	recordService := core.NewRecordService(recordRepo, auditService)
	subrecordService := core.NewSubrecordService(subrecordRepo, recordRepo, subformRepo, auditService, zapLogger)
	userService := core.NewUserService(authAdmin, userProfileRepo, auditService, zapLogger)
	logService := core.NewLogService(auditRepo)
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 7. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 8. Setup API Routes ---
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		formService,
		subformService,
		recordService,
		subrecordService,
		userService,
		logService,
		formRepo,
		subformRepo,
		recordRepo,
		subrecordRepo,
	)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
