package helper

import (
	"context"
	"log"
	"time"

	"biblioteca_backend/internals/configs"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/robfig/cron/v3"
)

// objectLister: bagian *oss.Bucket yang dipakai reaper.
type objectLister interface {
	ListObjects(options ...oss.Option) (oss.ListObjectsResult, error)
	DeleteObjects(objectKeys []string, options ...oss.Option) (oss.DeleteObjectsResult, error)
}

// ── ENTRYPOINT: dipanggil dari main.go
// RegisterTrashReaper menghapus sampul di trash/ yang lebih tua dari COVER_TRASH_RETENTION_DAYS.
func RegisterTrashReaper(c *cron.Cron, s *OSSService) (cron.EntryID, error) {
	schedule := configs.GetEnv("COVER_TRASH_CRON", "15 2 * * *")
	retention := time.Duration(configs.GetEnvInt("COVER_TRASH_RETENTION_DAYS", 30)) * 24 * time.Hour
	dryRun := configs.GetEnvBool("COVER_TRASH_DRY_RUN", false)

	id, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := reapTrash(ctx, s.Bucket, time.Now().Add(-retention), dryRun); err != nil {
			log.Printf("[TRASH-REAPER] ❌ %v", err)
		}
	})
	if err != nil {
		return 0, err
	}
	log.Printf("[TRASH-REAPER] started schedule=%q retention=%s dryRun=%v", schedule, retention, dryRun)
	return id, nil
}

func reapTrash(ctx context.Context, bucket objectLister, threshold time.Time, dryRun bool) (int, error) {
	marker := oss.Marker("")
	var keys []string
	total := 0

	for {
		lor, err := bucket.ListObjects(oss.Prefix(trashPrefix+"/"), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return 0, err
		}
		for _, obj := range lor.Objects {
			total++
			if obj.Key != "" && obj.LastModified.Before(threshold) {
				keys = append(keys, obj.Key)
			}
		}
		if !lor.IsTruncated {
			break
		}
		marker = oss.Marker(lor.NextMarker)
	}

	if len(keys) == 0 {
		return 0, nil
	}
	if dryRun {
		log.Printf("[TRASH-REAPER] DRY-RUN would delete %d/%d objects", len(keys), total)
		return 0, nil
	}

	deleted := 0
	for i := 0; i < len(keys); i += 1000 {
		end := min(i+1000, len(keys))
		batch := keys[i:end]
		if _, err := bucket.DeleteObjects(batch, oss.DeleteObjectsQuiet(true), oss.WithContext(ctx)); err != nil {
			log.Printf("[TRASH-REAPER] delete batch %d-%d gagal: %v", i, end, err)
			continue
		}
		deleted += len(batch)
	}
	log.Printf("[TRASH-REAPER] ✅ deleted %d objects (scanned=%d)", deleted, total)
	return deleted, nil
}
