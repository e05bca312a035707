package filestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  BlobConfig
		wantErr bool
	}{
		{"valid local", BlobConfig{BackendType: "local", LocalBasePath: "/data/blobs"}, false},
		{"local without path", BlobConfig{BackendType: "local"}, true},
		{"valid sftp with password", BlobConfig{BackendType: "sftp", SFTPHost: "h", SFTPUsername: "u", SFTPPassword: "p"}, false},
		{"valid sftp with key", BlobConfig{BackendType: "sftp", SFTPHost: "h", SFTPUsername: "u", SFTPKeyFile: "/k"}, false},
		{"sftp without credentials", BlobConfig{BackendType: "sftp", SFTPHost: "h", SFTPUsername: "u"}, true},
		{"sftp without host", BlobConfig{BackendType: "sftp", SFTPUsername: "u", SFTPPassword: "p"}, true},
		{"valid s3", BlobConfig{BackendType: "s3", S3Bucket: "b", S3Region: "us-east-1"}, false},
		{"s3 without bucket", BlobConfig{BackendType: "s3", S3Region: "us-east-1"}, true},
		{"s3 without region", BlobConfig{BackendType: "s3", S3Bucket: "b"}, true},
		{"valid mock", BlobConfig{BackendType: "mock"}, false},
		{"unknown backend", BlobConfig{BackendType: "carrier-pigeon"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"files/u1/1_a.txt", false},
		{"files/u1/nested/2_b.txt", false},
		{"", true},
		{"/etc/passwd", true},
		{"files/u1/../u2/secret", true},
		{"../outside", true},
		{"files//u1/a", true},
		{"files/u1/./a", true},
		{"files/u1/a/", true},
		{"..", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePrefix(t *testing.T) {
	// Listing prefixes carry a trailing slash that Clean would strip.
	assert.NoError(t, validatePrefix("files/"))
	assert.NoError(t, validatePrefix("files/u1/"))
	assert.Error(t, validatePrefix("files/../"))
	assert.Error(t, validatePrefix("/files/"))
}

func TestParseBlobConfigFromEnv(t *testing.T) {
	t.Setenv("STOREIT_BLOB_BACKEND", "s3")
	t.Setenv("STOREIT_BLOB_S3_BUCKET", "my-bucket")
	t.Setenv("STOREIT_BLOB_S3_REGION", "eu-west-1")
	t.Setenv("STOREIT_BLOB_S3_ENDPOINT", "http://minio:9000")

	config, err := ParseBlobConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3", config.BackendType)
	assert.Equal(t, "my-bucket", config.S3Bucket)
	assert.Equal(t, "eu-west-1", config.S3Region)
	assert.Equal(t, "http://minio:9000", config.S3Endpoint)
}

func TestParseBlobConfigFromEnvDefaultsToLocal(t *testing.T) {
	config, err := ParseBlobConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "local", config.BackendType)
}

func TestParseBlobConfigFromEnvBadSFTPPort(t *testing.T) {
	t.Setenv("STOREIT_BLOB_BACKEND", "sftp")
	t.Setenv("STOREIT_BLOB_SFTP_PORT", "not-a-port")

	_, err := ParseBlobConfigFromEnv()
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	local := &BlobConfig{BackendType: "local"}
	local.ApplyDefaults("/data")
	assert.Equal(t, filepath.Join("/data", "blobs"), local.LocalBasePath)

	pinned := &BlobConfig{BackendType: "local", LocalBasePath: "/elsewhere"}
	pinned.ApplyDefaults("/data")
	assert.Equal(t, "/elsewhere", pinned.LocalBasePath)

	mock := &BlobConfig{BackendType: "mock"}
	mock.ApplyDefaults("/data")
	assert.Equal(t, filepath.Join("/data", "mock_blobs.json"), mock.MockStatePath)
}

func TestCreateBackendSelectsType(t *testing.T) {
	local, err := (&BlobConfig{BackendType: "local", LocalBasePath: t.TempDir()}).CreateBackend()
	require.NoError(t, err)
	assert.IsType(t, &LocalAdapter{}, local)

	mock, err := (&BlobConfig{BackendType: "mock"}).CreateBackend()
	require.NoError(t, err)
	assert.IsType(t, &MemoryAdapter{}, mock)

	_, err = (&BlobConfig{BackendType: "carrier-pigeon"}).CreateBackend()
	assert.Error(t, err)
}
