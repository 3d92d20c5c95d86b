package config

import (
	"fmt"
	"strings"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
)

var (
	AWSRegion      string
	BaseDir        string
	GCSBucket      string
	GCSPrefix      string
	S3Bucket       string
	S3Endpoint     string
	S3Prefix       string
	StorageBackend string
)

func LoadStorageConfig() error {
	StorageBackend = strings.ToLower(getenv("STORAGE_BACKEND", BackendLocal))
	BaseDir = getenv("UPLOAD_BASE_DIR", "./example_data/")

	S3Bucket = getenv("S3_BUCKET", "")
	S3Prefix = getenv("S3_PREFIX", "")
	S3Endpoint = getenv("S3_ENDPOINT", "")

	GCSBucket = getenv("GCS_BUCKET", "")
	GCSPrefix = getenv("GCS_PREFIX", "")

	// optional ENV vars
	AWSRegion = getenv("AWS_REGION", "us-east-1")

	return nil
}

// ValidateStorage checks that the selected backend has what it needs.
func ValidateStorage() error {
	StorageBackend = strings.ToLower(StorageBackend)
	switch StorageBackend {
	case BackendLocal:
		if BaseDir == "" {
			return fmt.Errorf("local storage requires UPLOAD_BASE_DIR")
		}
	case BackendS3:
		if S3Bucket == "" {
			return fmt.Errorf("s3 storage requires S3_BUCKET")
		}
	case BackendGCS:
		if GCSBucket == "" {
			return fmt.Errorf("gcs storage requires GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage backend %q: use %s, %s or %s", StorageBackend, BackendLocal, BackendS3, BackendGCS)
	}
	return nil
}
