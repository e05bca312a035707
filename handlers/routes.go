package handlers

import (
	"net/http"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/Harsh275110/StoreIt/browser"
	"github.com/Harsh275110/StoreIt/filestore"
)

// databaseBacked reports whether the SQLite record store is in use. Demo
// mode runs without a database, so health checks skip it.
var databaseBacked bool

// Config carries the strategy objects selected at startup.
type Config struct {
	AuthService    AuthService
	RecordStore    browser.RecordStore
	BlobManager    *filestore.BlobManager
	RequireCaptcha bool
	DatabaseBacked bool
	AssetsFS       http.FileSystem
}

// Initialize configures all HTTP routes and middleware for the application
func Initialize(app *fiber.App, cfg Config) {
	log.Info("Initializing application routes and middleware")

	authService = cfg.AuthService
	recordStore = cfg.RecordStore
	blobManager = cfg.BlobManager
	blobVault = browser.NewVaultAdapter(cfg.BlobManager)
	requireCaptcha = cfg.RequireCaptcha
	databaseBacked = cfg.DatabaseBacked

	// ========================================
	// Middleware Configuration
	// ========================================
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Use("/assets", filesystem.New(filesystem.Config{
		Root:       cfg.AssetsFS,
		PathPrefix: "assets",
		MaxAge:     86400,
	}))

	// ========================================
	// Health and Metrics Endpoints
	// ========================================
	app.Get("/ready", HandleReady)
	app.Get("/health", HandleHealth)
	app.Get("/metrics", HandleMetrics)

	// ========================================
	// Captcha Routes
	// ========================================
	app.Get("/captcha/:id.png", HandleCaptchaImage)
	app.Get("/captcha/new", HandleCaptchaNew)
	app.Post("/captcha/verify", HandleCaptchaVerify)
	app.Get("/captcha", HandleCaptchaPage)

	// ========================================
	// Page Routes
	// ========================================
	app.Get("/", HandleRoot)
	app.Get("/login", HandleLoginPage)
	app.Get("/register", HandleRegisterPage)
	app.Get("/dashboard", RequireAuthPage(), HandleDashboardPage)

	// ========================================
	// Authentication API
	// ========================================
	auth := app.Group("/api/auth")
	auth.Post("/register", RegisterUserHandler)
	auth.Post("/login", LoginUserHandler)
	auth.Post("/logout", LogoutHandler)
	auth.Get("/federated", FederatedLoginHandler)
	auth.Get("/federated/callback", FederatedCallbackHandler)

	// ========================================
	// Browser API
	// ========================================
	api := app.Group("/api", RequireAuth())
	api.Get("/browser", GetBrowserHandler)
	api.Post("/browser/navigate", NavigateIntoHandler)
	api.Post("/browser/back", NavigateBackHandler)
	api.Post("/folders", CreateFolderHandler)
	api.Delete("/folders/:id", DeleteFolderHandler)
	api.Post("/files", UploadFilesHandler)
	api.Get("/files/:id/download", DownloadFileHandler)
	api.Get("/files/:id/preview", PreviewFileHandler)
	api.Delete("/files/:id", DeleteFileHandler)
	api.Get("/blob/+", BlobHandler)

	// ========================================
	// Fallback Route
	// ========================================
	app.Use(HandleNotFound)
}
