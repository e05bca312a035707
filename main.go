package main

import (
	"embed"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/template/html/v2"
	"github.com/spf13/cobra"

	"github.com/Harsh275110/StoreIt/browser"
	"github.com/Harsh275110/StoreIt/cmd"
	"github.com/Harsh275110/StoreIt/filestore"
	"github.com/Harsh275110/StoreIt/handlers"
	"github.com/Harsh275110/StoreIt/models"
	"github.com/Harsh275110/StoreIt/scheduler"
)

var Version = "develop"

//go:embed views/*
var viewsfs embed.FS

//go:embed assets/*
var assetsfs embed.FS

var dataDirectory string
var logLevel string
var port string
var demoMode bool
var requireCaptcha bool

func init() {
	flag.StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "Set the log level (debug, info, warn, error)")
	flag.StringVar(&port, "port", os.Getenv("PORT"), "Port to run the server on")
	flag.BoolVar(&demoMode, "demo", os.Getenv("STOREIT_MODE") == "demo", "Run with in-memory demo backends instead of the database")
	flag.BoolVar(&requireCaptcha, "require-captcha", os.Getenv("STOREIT_REQUIRE_CAPTCHA") == "true", "Gate registration behind a captcha")

	var defaultDataDirectory string

	// Check for environment variable override
	if envDataDir := os.Getenv("STOREIT_DATA_DIR"); envDataDir != "" {
		defaultDataDirectory = envDataDir
	} else {
		// OS-specific defaults
		switch runtime.GOOS {
		case "windows":
			defaultDataDirectory = filepath.Join(os.Getenv("LOCALAPPDATA"), "storeit")
		case "darwin":
			defaultDataDirectory = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "storeit")
		default:
			defaultDataDirectory = filepath.Join(os.Getenv("HOME"), "storeit")
		}
	}

	flag.StringVar(&dataDirectory, "data-directory", defaultDataDirectory, "Path to the data directory")

	// Parse flags early to set log level
	flag.Parse()

	if logLevel == "" {
		logLevel = "info"
	}
	switch logLevel {
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}

// isSubcommand reports whether the first CLI argument names a cobra
// subcommand rather than a server flag.
func isSubcommand() bool {
	if flag.NArg() == 0 {
		return false
	}
	switch flag.Arg(0) {
	case "user", "gc", "version":
		return true
	}
	return false
}

func runSubcommand() {
	root := &cobra.Command{
		Use:   "storeit",
		Short: "StoreIt file storage server",
	}
	root.AddCommand(
		cmd.NewUserCmd(&dataDirectory),
		cmd.NewGCCmd(&dataDirectory),
		cmd.NewVersionCmd(Version),
	)
	root.SetArgs(flag.Args())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	if isSubcommand() {
		runSubcommand()
		return
	}

	log.Info("Starting StoreIt!")

	if err := os.MkdirAll(dataDirectory, os.ModePerm); err != nil {
		log.Errorf("Failed to create data directory: %s", err)
		return
	}

	// Blob backend is selected once at startup; demo mode forces the
	// in-memory backend regardless of environment.
	blobConfig, err := filestore.ParseBlobConfigFromEnv()
	if err != nil {
		log.Errorf("Invalid blob storage configuration: %v", err)
		return
	}
	if demoMode {
		blobConfig = &filestore.BlobConfig{BackendType: "mock"}
	}
	blobConfig.ApplyDefaults(dataDirectory)
	if err := blobConfig.Validate(); err != nil {
		log.Errorf("Invalid blob storage configuration: %v", err)
		return
	}
	backend, err := blobConfig.CreateBackend()
	if err != nil {
		log.Errorf("Failed to create blob backend: %v", err)
		return
	}
	blobManager := filestore.NewBlobManager(backend)

	cfg := handlers.Config{
		BlobManager:    blobManager,
		RequireCaptcha: requireCaptcha,
		AssetsFS:       http.FS(assetsfs),
	}

	cronScheduler := scheduler.NewCronScheduler()

	if demoMode {
		log.Info("Running in demo mode, nothing will be persisted")
		cfg.AuthService = handlers.NewMockAuthService(filepath.Join(dataDirectory, "mock_users.json"))
		cfg.RecordStore = browser.NewMemoryRecordStore()
	} else {
		if err := models.Initialize(dataDirectory); err != nil {
			log.Errorf("Failed to connect to database: %v", err)
			return
		}
		defer func() {
			if err := models.Close(); err != nil {
				log.Errorf("Failed to close database: %v", err)
			}
		}()

		if _, err := models.EnsureSigningKey(); err != nil {
			log.Errorf("Failed to prepare token signing key: %v", err)
			return
		}

		cfg.AuthService = handlers.NewDBAuthService()
		cfg.RecordStore = browser.NewSQLRecordStore()
		cfg.DatabaseBacked = true

		sweeper := &scheduler.SweeperJob{
			Blobs:      blobManager,
			KnownPaths: models.ListBlobPaths,
		}
		sweepSchedule := os.Getenv("STOREIT_SWEEP_SCHEDULE")
		if sweepSchedule == "" {
			sweepSchedule = "@hourly"
		}
		if err := cronScheduler.AddJob(sweeper.Name(), sweepSchedule, sweeper); err != nil {
			log.Warnf("Failed to schedule blob sweeper: %v", err)
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	engine := html.NewFileSystem(http.FS(viewsfs), ".html")
	engine.Directory = "/views"

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ServerHeader:  "StoreIt",
		AppName:       fmt.Sprintf("StoreIt %s", Version),
		Views:         engine,
		BodyLimit:     512 << 20, // uploads up to 512 MiB per request
	})

	handlers.Initialize(app, cfg)

	if port == "" {
		port = "3000"
	}
	log.Fatal(app.Listen(":" + port))
}
