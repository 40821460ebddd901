package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"iacforge/internal/infrastructure/store/filesystem"
	"iacforge/internal/infrastructure/validator"
)

// ScanService runs the external security scanners against a generation's
// on-disk bundle.
type ScanService struct {
	scanner *validator.Scanner
	bundles *filesystem.BundleRepository
	logger  *slog.Logger
}

func NewScanService(scanner *validator.Scanner, bundles *filesystem.BundleRepository, logger *slog.Logger) *ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanService{scanner: scanner, bundles: bundles, logger: logger}
}

func (s *ScanService) ScanGeneration(ctx context.Context, generationID string) (validator.ScanReport, error) {
	dir, err := s.bundles.BundleDir(generationID)
	if err != nil {
		return validator.ScanReport{}, fmt.Errorf("resolve bundle: %w", err)
	}

	s.logger.Info("scanning bundle", "generation_id", generationID, "dir", dir)
	return s.scanner.RunAll(ctx, dir), nil
}
