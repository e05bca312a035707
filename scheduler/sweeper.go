package scheduler

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Harsh275110/StoreIt/filestore"
)

// blobPrefix is the subtree of the blob backend that upload paths live in.
const blobPrefix = "files/"

// minOrphanAge protects blobs from uploads still in flight: a blob younger
// than this is never swept even when no record references it yet.
const minOrphanAge = time.Hour

// SweeperJob deletes blobs that no file record references. Orphans appear
// when a record delete succeeds but the follow-up blob delete fails, or
// when an upload dies between the blob write and the record insert.
type SweeperJob struct {
	Blobs *filestore.BlobManager

	// KnownPaths lists every blob path referenced by a file record.
	KnownPaths func() (map[string]struct{}, error)

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Name implements Job.
func (j *SweeperJob) Name() string {
	return "orphan-blob-sweeper"
}

// Execute implements Job. It lists the blob subtree, diffs it against the
// record store and deletes unreferenced blobs older than minOrphanAge.
func (j *SweeperJob) Execute() error {
	known, err := j.KnownPaths()
	if err != nil {
		return err
	}

	blobPaths, err := j.Blobs.List(blobPrefix)
	if err != nil {
		return err
	}

	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}

	swept := 0
	for _, blobPath := range blobPaths {
		if _, referenced := known[referencedPath(blobPath)]; referenced {
			continue
		}
		if age, ok := blobAge(blobPath, now); !ok || age < minOrphanAge {
			continue
		}

		if err := j.Blobs.Delete(blobPath); err != nil {
			log.Warnf("Failed to sweep orphan blob %s: %v", blobPath, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Infof("Swept %d orphan blobs", swept)
	}
	return nil
}

// referencedPath maps a blob path to the record path that keeps it alive.
// Thumbnails live next to their original and share its fate.
func referencedPath(blobPath string) string {
	return strings.TrimSuffix(blobPath, ".thumb.webp")
}

// blobAge derives a blob's age from the unix-millis prefix of its
// basename. Paths without the prefix report no age and are left alone.
func blobAge(blobPath string, now time.Time) (time.Duration, bool) {
	base := path.Base(referencedPath(blobPath))
	prefix, _, found := strings.Cut(base, "_")
	if !found {
		return 0, false
	}

	millis, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return now.Sub(time.UnixMilli(millis)), true
}
