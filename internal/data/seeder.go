package data

import (
	"embed"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/feed"
)

//go:embed feeds/*.json
var defaultFeeds embed.FS

// Seeder writes the bundled default feed snapshots into the feed directory
// so a fresh deployment serves data before its first real feed sync.
type Seeder struct {
	dir    string
	logger *zap.Logger
}

// NewSeeder creates a new feed seeder for the given directory
func NewSeeder(dir string, logger *zap.Logger) *Seeder {
	return &Seeder{
		dir:    dir,
		logger: logger,
	}
}

// SeedFeeds creates the feed directory and writes every bundled feed file
// that is not already present. Existing files are never overwritten, so a
// synced snapshot survives restarts.
func (s *Seeder) SeedFeeds() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	names := []string{
		feed.ProblemsetFile,
		feed.ContestsFile,
		feed.CodeChefFile,
		feed.LeetCodeFile,
	}

	var seeded int
	for _, name := range names {
		target := filepath.Join(s.dir, name)
		if _, err := os.Stat(target); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return err
		}

		data, err := defaultFeeds.ReadFile("feeds/" + name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}

		s.logger.Info("Seeded default feed file", zap.String("file", name))
		seeded++
	}

	if seeded == 0 {
		s.logger.Info("Feed files already present, skipping seed",
			zap.String("dir", s.dir),
		)
	}
	return nil
}
