package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forms-backend-go/internal/authz"
	"forms-backend-go/internal/config"
	"forms-backend-go/internal/core"
	"forms-backend-go/internal/db"
	"forms-backend-go/internal/middleware"
	"forms-backend-go/internal/models"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (RequestID, Logging, Recovery, CORS) are applied to the
// router in main.go before this is called.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	formService core.FormService,
	subformService core.SubformService,
	recordService core.RecordService,
	subrecordService core.SubrecordService,
	userService core.UserService,
	logService core.LogService,
	formRepo db.FormRepository,
	subformRepo db.SubformRepository,
	recordRepo db.RecordRepository,
	subrecordRepo db.SubrecordRepository,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created, and routes will not be set up.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	formHandler := NewFormHandler(formService)
	subformHandler := NewSubformHandler(subformService)
	recordHandler := NewRecordHandler(recordService)
	subrecordHandler := NewSubrecordHandler(subrecordService)
	userHandler := NewUserHandler(userService)
	logHandler := NewLogHandler(logService)

	anyKnownRole := middleware.RequireRoles(
		models.RoleAdmin, models.RoleManager, models.RoleOperator, models.RoleUser,
	)

	apiGroup := router.Group("/api")
	{
		registerResource(apiGroup, "/forms", authMW, logger, anyKnownRole, resourceHandlers{
			create:   formHandler.Create,
			list:     formHandler.List,
			listPage: formHandler.ListPage,
			get:      formHandler.Get,
			update:   formHandler.Update,
			delete:   formHandler.Delete,
		}, formRepo.GetOrgs)

		registerResource(apiGroup, "/subforms", authMW, logger, anyKnownRole, resourceHandlers{
			create:   subformHandler.Create,
			list:     subformHandler.List,
			listPage: subformHandler.ListPage,
			get:      subformHandler.Get,
			update:   subformHandler.Update,
			delete:   subformHandler.Delete,
		}, subformRepo.GetOrgs)

		registerResource(apiGroup, "/records", authMW, logger, anyKnownRole, resourceHandlers{
			create:   recordHandler.Create,
			list:     recordHandler.List,
			listPage: recordHandler.ListPage,
			get:      recordHandler.Get,
			update:   recordHandler.Update,
			delete:   recordHandler.Delete,
		}, recordRepo.GetOrgs)

		registerResource(apiGroup, "/subrecords", authMW, logger, anyKnownRole, resourceHandlers{
			create:   subrecordHandler.Create,
			list:     subrecordHandler.List,
			listPage: subrecordHandler.ListPage,
			get:      subrecordHandler.Get,
			update:   subrecordHandler.Update,
			delete:   subrecordHandler.Delete,
		}, subrecordRepo.GetOrgs)

		users := apiGroup.Group("/users")
		{
			// Registration is open: the frontend provisions accounts before
			// the new user ever signs in.
			users.POST("/register", userHandler.Register)
			users.GET("/me", authMW.VerifyToken(), userHandler.Me)
			users.GET("", authMW.VerifyToken(),
				middleware.RequireRoles(models.RoleAdmin, models.RoleManager),
				userHandler.List)
			users.DELETE("/:id", authMW.VerifyToken(),
				middleware.RequireRoles(models.RoleAdmin),
				userHandler.Delete)
		}

		logs := apiGroup.Group("/logs", authMW.VerifyToken())
		{
			logs.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), logHandler.List)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured successfully under /api and /health.")
}

// resourceHandlers bundles the six handlers every org-scoped resource exposes.
type resourceHandlers struct {
	create   gin.HandlerFunc
	list     gin.HandlerFunc
	listPage gin.HandlerFunc
	get      gin.HandlerFunc
	update   gin.HandlerFunc
	delete   gin.HandlerFunc
}

// registerResource wires the uniform route set for one org-scoped collection:
// create and the :id routes are gated by the org policy, list routes require a
// known role and rely on the service's org filtering.
func registerResource(
	parent *gin.RouterGroup,
	path string,
	authMW *middleware.AuthMiddleware,
	logger *zap.Logger,
	anyKnownRole gin.HandlerFunc,
	h resourceHandlers,
	getOrgs func(ctx context.Context, id string) (models.OrgSet, error),
) {
	group := parent.Group(path, authMW.VerifyToken())

	docOrgs := func(c *gin.Context) authz.OrgResolver {
		id := c.Param("id")
		return authz.OrgResolverFunc(func(ctx context.Context) (models.OrgSet, error) {
			return getOrgs(ctx, id)
		})
	}
	selfOrgs := func(c *gin.Context) authz.OrgResolver {
		p, _ := middleware.PrincipalFrom(c)
		return authz.PrincipalOrgs(p)
	}

	group.POST("", middleware.Authorize(logger, authz.ActionCreate, selfOrgs), h.create)
	group.GET("", anyKnownRole, h.list)
	group.GET("/page/:page", anyKnownRole, h.listPage)
	group.GET("/:id", middleware.Authorize(logger, authz.ActionView, docOrgs), h.get)
	group.PUT("/:id", middleware.Authorize(logger, authz.ActionEdit, docOrgs), h.update)
	group.DELETE("/:id", middleware.Authorize(logger, authz.ActionDelete, docOrgs), h.delete)
}
