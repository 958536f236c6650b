package storage

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultMaxArtifactAge is how long processed artifacts stay on disk before
// the sweep reclaims them. Clients keep their own history copies; the server
// side is a cache, not an archive.
const DefaultMaxArtifactAge = 24 * time.Hour

// Sweeper periodically deletes processed files older than maxAge from a
// FileStore directory. Object-store deployments handle expiry with bucket
// lifecycle rules instead.
type Sweeper struct {
	cron   *cron.Cron
	dir    string
	maxAge time.Duration
}

// NewSweeper prepares an hourly sweep of dir. maxAge <= 0 means
// DefaultMaxArtifactAge.
func NewSweeper(dir string, maxAge time.Duration) *Sweeper {
	if maxAge <= 0 {
		maxAge = DefaultMaxArtifactAge
	}
	return &Sweeper{
		cron:   cron.New(cron.WithSeconds()),
		dir:    dir,
		maxAge: maxAge,
	}
}

// Start schedules the sweep at the top of every hour.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * * *", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling; an in-flight sweep finishes on its own.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

func (s *Sweeper) sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.dir).Msg("Artifact sweep failed to list directory")
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				log.Warn().Err(err).Str("file", entry.Name()).Msg("Artifact sweep could not delete file")
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		log.Info().Int("deleted", deleted).Str("dir", s.dir).Msg("Swept expired artifacts")
	}
}
