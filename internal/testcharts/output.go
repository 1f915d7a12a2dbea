package testcharts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/strain/internal/adapters/chartfile"
	"github.com/okian/strain/pkg/logger"
)

const outputDirPermission = 0o755

// Write saves every chart as <dir>/<id>.yaml and returns the paths.
func Write(ctx context.Context, dir string, charts []*chartfile.Chart) ([]string, error) {
	if err := os.MkdirAll(dir, outputDirPermission); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.ID+".yaml")
		if err := chartfile.Save(path, c); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	logger.Get().Info(ctx, "charts written", logger.String("dir", dir), logger.Int("count", len(paths)))
	return paths, nil
}

// Run generates charts per cfg and writes them to cfg.OutputDir.
func Run(ctx context.Context, cfg Config) (Stats, []string, error) {
	charts, err := Generate(ctx, cfg)
	if err != nil {
		return Stats{}, nil, err
	}
	paths, err := Write(ctx, cfg.OutputDir, charts)
	if err != nil {
		return Stats{}, paths, err
	}
	return Summarise(charts), paths, nil
}
