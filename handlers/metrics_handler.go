package handlers

import (
	"github.com/gofiber/adaptor/v2"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Harsh275110/StoreIt/models"
)

// Prometheus metrics
var (
	totalUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storeit_total_users",
		Help: "Total number of registered users",
	})

	totalFolders = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storeit_total_folders",
		Help: "Total number of folders",
	})

	totalFiles = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storeit_total_files",
		Help: "Total number of stored files",
	})

	totalStoredBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storeit_total_stored_bytes",
		Help: "Total bytes across all stored files",
	})

	foldersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeit_folders_created_total",
		Help: "Folders created since startup",
	})

	filesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeit_files_uploaded_total",
		Help: "Files uploaded since startup",
	})

	bytesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeit_bytes_uploaded_total",
		Help: "Bytes uploaded since startup",
	})

	filesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeit_files_deleted_total",
		Help: "Files deleted since startup",
	})

	downloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storeit_downloads_total",
		Help: "Download requests served since startup",
	})
)

func init() {
	prometheus.MustRegister(totalUsers)
	prometheus.MustRegister(totalFolders)
	prometheus.MustRegister(totalFiles)
	prometheus.MustRegister(totalStoredBytes)
	prometheus.MustRegister(foldersCreated)
	prometheus.MustRegister(filesUploaded)
	prometheus.MustRegister(bytesUploaded)
	prometheus.MustRegister(filesDeleted)
	prometheus.MustRegister(downloads)
}

// updateMetrics refreshes the database-backed gauges. In demo mode there
// is no database, so the gauges stay at zero.
func updateMetrics() {
	if err := models.PingDB(); err != nil {
		return
	}

	if count, err := models.CountUsers(); err == nil {
		totalUsers.Set(float64(count))
	} else {
		log.Warnf("Failed to get total users for metrics: %v", err)
	}

	if count, err := models.CountFolders(); err == nil {
		totalFolders.Set(float64(count))
	} else {
		log.Warnf("Failed to get total folders for metrics: %v", err)
	}

	if count, err := models.CountFiles(); err == nil {
		totalFiles.Set(float64(count))
	} else {
		log.Warnf("Failed to get total files for metrics: %v", err)
	}

	if bytes, err := models.TotalStoredBytes(); err == nil {
		totalStoredBytes.Set(float64(bytes))
	} else {
		log.Warnf("Failed to get stored bytes for metrics: %v", err)
	}
}

// HandleMetrics serves Prometheus metrics
func HandleMetrics(c *fiber.Ctx) error {
	updateMetrics()

	return adaptor.HTTPHandler(promhttp.Handler())(c)
}

// HandleReady serves the readiness endpoint
func HandleReady(c *fiber.Ctx) error {
	if databaseBacked {
		if err := models.PingDB(); err != nil {
			log.Errorf("Database not ready: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).SendString("NOT READY")
		}
	}

	return c.SendString("OK")
}

// HandleHealth serves the health endpoint
func HandleHealth(c *fiber.Ctx) error {
	if databaseBacked {
		if err := models.PingDB(); err != nil {
			log.Errorf("Database health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).SendString("UNHEALTHY")
		}

		if _, err := models.CountFiles(); err != nil {
			log.Errorf("Database query health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).SendString("UNHEALTHY")
		}
	}

	return c.SendString("OK")
}
