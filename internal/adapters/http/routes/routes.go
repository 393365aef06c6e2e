package routes

import (
	"libris-backend/internal/adapters/http/handlers"
	"libris-backend/internal/adapters/http/middleware"
	"libris-backend/internal/adapters/persistence/repositories"
	"libris-backend/internal/config"
	"libris-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	copyRepo := repositories.NewCopyRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	txManager := repositories.NewGormTxManager(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, loanRepo)
	bookService := services.NewBookService(bookRepo)
	copyService := services.NewCopyService(copyRepo, bookRepo, loanRepo)
	loanPolicy := services.NewLoanPolicy(cfg.Loan.MaxActiveLoans)
	loanService := services.NewLoanService(loanRepo, copyRepo, userRepo, txManager, loanPolicy)
	companyService := services.NewCompanyService(companyRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService, copyService)
	copyHandler := handlers.NewCopyHandler(copyService)
	loanHandler := handlers.NewLoanHandler(loanService)
	companyHandler := handlers.NewCompanyHandler(companyService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Book catalog routes (reads public, writes staff only)
	bookRoutes := apiV1.Group("/books")
	setupBookRoutes(bookRoutes, bookHandler, cfg)

	// Copy routes (reads public, writes staff only)
	copyRoutes := apiV1.Group("/copies")
	setupCopyRoutes(copyRoutes, copyHandler, cfg)

	// Loan routes (staff only)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Use(middleware.EmployeeOrAdmin())
	setupLoanRoutes(loanRoutes, loanHandler)

	// Company routes (staff only)
	companyRoutes := apiV1.Group("/companies")
	companyRoutes.Use(middleware.AuthMiddleware(cfg))
	companyRoutes.Use(middleware.EmployeeOrAdmin())
	setupCompanyRoutes(companyRoutes, companyHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Staff can look up users
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.EmployeeOrAdmin())
	staffRoutes.Get("/", handler.List)
	staffRoutes.Get("/employees", handler.ListEmployees)
	staffRoutes.Get("/customers", handler.ListCustomers)
	staffRoutes.Get("/:id", handler.GetByID)

	// Admin manages accounts
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/", handler.Create)
	adminRoutes.Put("/:id", handler.Update)
	adminRoutes.Delete("/:id", handler.Delete)
}

// setupBookRoutes configures book catalog routes
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler, cfg *config.Config) {
	// Public catalog reads (identity attached when a token is present)
	router.Get("/", middleware.OptionalAuth(cfg), handler.List)
	router.Get("/:id", middleware.OptionalAuth(cfg), handler.GetByID)
	router.Get("/:id/copies", middleware.OptionalAuth(cfg), handler.ListCopies)

	// Staff writes
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.AuthMiddleware(cfg))
	staffRoutes.Use(middleware.EmployeeOrAdmin())
	staffRoutes.Post("/", handler.Create)
	staffRoutes.Put("/:id", handler.Update)
	staffRoutes.Delete("/:id", handler.Delete)
}

// setupCopyRoutes configures book copy routes
func setupCopyRoutes(router fiber.Router, handler *handlers.CopyHandler, cfg *config.Config) {
	// Public reads (identity attached when a token is present)
	router.Get("/", middleware.OptionalAuth(cfg), handler.List)
	router.Get("/:id", middleware.OptionalAuth(cfg), handler.GetByID)

	// Staff writes
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.AuthMiddleware(cfg))
	staffRoutes.Use(middleware.EmployeeOrAdmin())
	staffRoutes.Post("/", handler.Create)
	staffRoutes.Put("/:id", handler.Update)
	staffRoutes.Delete("/:id", handler.Delete)
}

// setupLoanRoutes configures loan lifecycle routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Post("/", handler.Open)
	router.Get("/", handler.List)
	router.Get("/overdue", handler.ListOverdue)
	router.Get("/stats/overdue", handler.OverdueStats)
	router.Get("/stats/active", handler.ActiveStats)
	router.Get("/user/:id", handler.ListByUser)
	router.Get("/:id", handler.GetByID)
	router.Post("/:id/return", handler.Return)
	router.Patch("/:id/due-date", handler.UpdateDueDate)
}

// setupCompanyRoutes configures company routes
func setupCompanyRoutes(router fiber.Router, handler *handlers.CompanyHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/registration/:no", handler.GetByRegistrationNo)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}
