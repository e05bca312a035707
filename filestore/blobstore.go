package filestore

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// BlobBackend defines the interface for blob storage backends.
// Paths are forward-slash relative keys such as "files/<owner>/<name>".
type BlobBackend interface {
	// Save saves data to the specified path
	Save(path string, data []byte) error

	// SaveReader saves data from a reader to the specified path
	SaveReader(path string, reader io.Reader) error

	// Load loads data from the specified path
	Load(path string) ([]byte, error)

	// LoadReader returns a reader for the specified path
	LoadReader(path string) (io.ReadCloser, error)

	// Exists checks if a blob exists at the specified path
	Exists(path string) (bool, error)

	// Delete deletes the blob at the specified path
	Delete(path string) error

	// List lists blob paths under the specified prefix
	List(path string) ([]string, error)

	// Locator resolves a durable retrieval URL for the blob at path.
	// Backends without natively addressable URLs return an app-served
	// /api/blob/ URL; S3 returns a presigned GET URL.
	Locator(path string) (string, error)
}

// validatePath rejects blob paths that could escape a backend's base
// directory. Valid paths are relative, slash-separated and already in
// canonical form, so a ".." segment never reaches the filesystem.
func validatePath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") {
		return fmt.Errorf("invalid blob path %q", p)
	}
	if path.Clean(p) != p {
		return fmt.Errorf("invalid blob path %q", p)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return fmt.Errorf("invalid blob path %q", p)
		}
	}
	return nil
}

// validatePrefix is the List variant of validatePath; prefixes may carry
// a trailing slash.
func validatePrefix(prefix string) error {
	return validatePath(strings.TrimSuffix(prefix, "/"))
}

// BlobConfig holds configuration for blob storage backends
type BlobConfig struct {
	BackendType string // "local", "sftp", "s3", "mock"

	// Local backend config
	LocalBasePath string

	// SFTP backend config
	SFTPHost     string
	SFTPPort     int
	SFTPUsername string
	SFTPPassword string
	SFTPKeyFile  string
	SFTPHostKey  string
	SFTPBasePath string

	// S3 backend config
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3BasePath string

	// Mock backend config
	MockStatePath string
}

// ParseBlobConfigFromEnv parses blob storage configuration from environment variables
func ParseBlobConfigFromEnv() (*BlobConfig, error) {
	config := &BlobConfig{
		BackendType: getEnvOrDefault("STOREIT_BLOB_BACKEND", "local"),
	}

	switch config.BackendType {
	case "local":
		config.LocalBasePath = getEnvOrDefault("STOREIT_BLOB_LOCAL_PATH", "")
	case "sftp":
		config.SFTPHost = getEnvOrDefault("STOREIT_BLOB_SFTP_HOST", "")
		if portStr := os.Getenv("STOREIT_BLOB_SFTP_PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid SFTP port: %w", err)
			}
			config.SFTPPort = port
		} else {
			config.SFTPPort = 22
		}
		config.SFTPUsername = getEnvOrDefault("STOREIT_BLOB_SFTP_USERNAME", "")
		config.SFTPPassword = getEnvOrDefault("STOREIT_BLOB_SFTP_PASSWORD", "")
		config.SFTPKeyFile = getEnvOrDefault("STOREIT_BLOB_SFTP_KEY_FILE", "")
		config.SFTPHostKey = getEnvOrDefault("STOREIT_BLOB_SFTP_HOST_KEY", "")
		config.SFTPBasePath = getEnvOrDefault("STOREIT_BLOB_SFTP_BASE_PATH", "")
	case "s3":
		config.S3Bucket = getEnvOrDefault("STOREIT_BLOB_S3_BUCKET", "")
		config.S3Region = getEnvOrDefault("STOREIT_BLOB_S3_REGION", "")
		config.S3Endpoint = getEnvOrDefault("STOREIT_BLOB_S3_ENDPOINT", "")
		config.S3BasePath = getEnvOrDefault("STOREIT_BLOB_S3_BASE_PATH", "")
	case "mock":
		config.MockStatePath = getEnvOrDefault("STOREIT_BLOB_MOCK_STATE", "")
	default:
		return nil, fmt.Errorf("unsupported blob backend type: %s", config.BackendType)
	}

	return config, nil
}

// ApplyDefaults fills in paths derived from the data directory when the
// environment left them unset.
func (c *BlobConfig) ApplyDefaults(dataDirectory string) {
	if c.BackendType == "local" && c.LocalBasePath == "" {
		c.LocalBasePath = filepath.Join(dataDirectory, "blobs")
	}
	if c.BackendType == "mock" && c.MockStatePath == "" {
		c.MockStatePath = filepath.Join(dataDirectory, "mock_blobs.json")
	}
}

// Validate validates the blob storage configuration
func (c *BlobConfig) Validate() error {
	switch c.BackendType {
	case "local":
		if c.LocalBasePath == "" {
			return fmt.Errorf("local base path is required for local backend")
		}
	case "sftp":
		if c.SFTPHost == "" {
			return fmt.Errorf("SFTP host is required")
		}
		if c.SFTPUsername == "" {
			return fmt.Errorf("SFTP username is required")
		}
		if c.SFTPPassword == "" && c.SFTPKeyFile == "" {
			return fmt.Errorf("either SFTP password or key file is required")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
		if c.S3Region == "" {
			return fmt.Errorf("S3 region is required")
		}
	case "mock":
		// No required settings; state path is optional.
	default:
		return fmt.Errorf("unsupported blob backend type: %s", c.BackendType)
	}
	return nil
}

// CreateBackend creates a blob storage backend from the configuration
func (c *BlobConfig) CreateBackend() (BlobBackend, error) {
	switch c.BackendType {
	case "local":
		return NewLocalAdapter(c.LocalBasePath), nil
	case "sftp":
		sftpConfig := SFTPConfig{
			Host:     c.SFTPHost,
			Port:     c.SFTPPort,
			Username: c.SFTPUsername,
			Password: c.SFTPPassword,
			KeyFile:  c.SFTPKeyFile,
			HostKey:  c.SFTPHostKey,
			BasePath: c.SFTPBasePath,
		}
		return NewSFTPAdapter(sftpConfig)
	case "s3":
		s3Config := S3Config{
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Endpoint: c.S3Endpoint,
			BasePath: c.S3BasePath,
		}
		return NewS3Adapter(s3Config)
	case "mock":
		return NewMemoryAdapter(c.MockStatePath), nil
	default:
		return nil, fmt.Errorf("unsupported blob backend type: %s", c.BackendType)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// BlobManager manages blob operations using a configured backend
type BlobManager struct {
	backend BlobBackend
}

// NewBlobManager creates a new blob manager with the specified backend
func NewBlobManager(backend BlobBackend) *BlobManager {
	return &BlobManager{backend: backend}
}

// Save saves data to blob storage
func (bm *BlobManager) Save(path string, data []byte) error {
	return bm.backend.Save(path, data)
}

// SaveReader saves data from a reader to blob storage
func (bm *BlobManager) SaveReader(path string, reader io.Reader) error {
	return bm.backend.SaveReader(path, reader)
}

// Load loads data from blob storage
func (bm *BlobManager) Load(path string) ([]byte, error) {
	return bm.backend.Load(path)
}

// LoadReader returns a reader for a stored blob
func (bm *BlobManager) LoadReader(path string) (io.ReadCloser, error) {
	return bm.backend.LoadReader(path)
}

// Exists checks if a blob exists
func (bm *BlobManager) Exists(path string) (bool, error) {
	return bm.backend.Exists(path)
}

// Delete deletes a blob
func (bm *BlobManager) Delete(path string) error {
	return bm.backend.Delete(path)
}

// List lists blob paths under a prefix
func (bm *BlobManager) List(path string) ([]string, error) {
	return bm.backend.List(path)
}

// Locator resolves a retrieval URL for a stored blob
func (bm *BlobManager) Locator(path string) (string, error) {
	return bm.backend.Locator(path)
}

// Backend returns the underlying blob backend
func (bm *BlobManager) Backend() BlobBackend {
	return bm.backend
}
