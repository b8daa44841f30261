// Package exporter writes formatted design reports to the local export
// directory.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lumiflow/backend/internal/config"
	"github.com/lumiflow/backend/internal/report"
)

// Exporter writes report files to disk.
type Exporter struct {
	dir    string
	logger *zap.Logger
}

// New creates an exporter targeting the configured export directory.
func New(cfg *config.Config, logger *zap.Logger) *Exporter {
	return &Exporter{
		dir:    cfg.ExportDir,
		logger: logger,
	}
}

// Export writes content under the report filename for the project and
// returns the written path. The export directory is created on demand.
func (e *Exporter) Export(projectName, content string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.dir, report.Filename(projectName))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.logger.Error("Failed to export report", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	e.logger.Info("Exported report", zap.String("path", path))
	return path, nil
}
