// Package monitoring holds the background jobs watching the upload volume.
package monitoring

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/dcastane/regportal-be/internal/intake"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// minOrphanAge keeps the sweeper away from files belonging to in-flight
// registrations, whose records have not been inserted yet.
const minOrphanAge = time.Hour

// Sweeper periodically removes bucket files that no user record references.
// Orphans appear when compensation itself fails mid-rollback; the record
// store stays authoritative, so sweeping them is safe. Local backend only.
type Sweeper struct {
	db         *sql.DB
	uploadRoot string
	cron       *cron.Cron
}

// NewSweeper creates a sweeper scanning the local buckets under uploadRoot
// on the given cron schedule.
func NewSweeper(db *sql.DB, uploadRoot, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		db:         db,
		uploadRoot: uploadRoot,
		cron:       cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the sweep schedule.
func (s *Sweeper) Run() {
	log.Info().Str("upload_root", s.uploadRoot).Msg("Starting orphan file sweeper...")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Stopped orphan file sweeper.")
}

// sweep walks both buckets and removes stale files absent from the store.
func (s *Sweeper) sweep() {
	referenced, err := s.referencedFiles()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to load referenced files")
		return
	}

	removed := 0
	for _, bucket := range []string{intake.PhotoBucket, intake.ResumeBucket} {
		removed += s.sweepBucket(bucket, referenced)
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Sweeper: removed orphaned files")
	}
}

func (s *Sweeper) referencedFiles() (map[string]bool, error) {
	rows, err := s.db.Query("SELECT profile_pic, resume FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make(map[string]bool)
	for rows.Next() {
		var profilePic, resume sql.NullString
		if err := rows.Scan(&profilePic, &resume); err != nil {
			return nil, err
		}
		if profilePic.String != "" {
			refs[profilePic.String] = true
		}
		if resume.String != "" {
			refs[resume.String] = true
		}
	}
	return refs, rows.Err()
}

func (s *Sweeper) sweepBucket(bucket string, referenced map[string]bool) int {
	dir := filepath.Join(s.uploadRoot, bucket)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("bucket", bucket).Msg("Sweeper: cannot read bucket")
		}
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-minOrphanAge)
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Sweeper: failed to remove orphan")
			continue
		}
		log.Info().Str("path", path).Msg("Sweeper: removed orphaned file")
		removed++
	}
	return removed
}
