package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"iacforge/internal/domain/entity"
)

// BundleRepository lays generated artifacts out on disk, one directory per
// generation, ready for terraform to run in and for the security scanner to
// walk.
type BundleRepository struct {
	basePath string
}

func (r *BundleRepository) BasePath() string {
	return r.basePath
}

func NewBundleRepository(basePath string) (BundleRepository, error) {
	info, err := os.Stat(basePath)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(basePath, 0755); mkErr != nil {
			return BundleRepository{}, fmt.Errorf("failed to create directory %s: %w", basePath, mkErr)
		}
	} else if err != nil {
		return BundleRepository{}, fmt.Errorf("failed to check directory %s: %w", basePath, err)
	} else if !info.IsDir() {
		return BundleRepository{}, fmt.Errorf("path %s exists but is not a directory", basePath)
	}

	return BundleRepository{basePath: basePath}, nil
}

// SaveBundle writes the main configuration, the companion files, the scripts
// and the docs of one result under a generation-id directory.
func (r *BundleRepository) SaveBundle(ctx context.Context, result *entity.GenerationResult) error {
	dir := filepath.Join(r.basePath, result.GenerationID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	files := map[string]string{
		"main.tf":         result.IaCCode,
		"README.md":       result.Readme,
		"INSTRUCTIONS.md": result.DeploymentInstructions,
	}
	for name, content := range result.ConfigurationFiles {
		files[name] = content
	}

	for name, content := range files {
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", name, err)
		}
	}

	for name, content := range result.Scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0755); err != nil {
			return fmt.Errorf("failed to write script %s: %w", name, err)
		}
	}

	metadata := map[string]any{
		"generation_id": result.GenerationID,
		"provider":      result.Provider,
		"format":        result.Format,
		"created_at":    time.Now(),
		"files_count":   len(files) + len(result.Scripts),
	}
	metadataData, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), metadataData, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// BundleDir resolves the on-disk directory of one generation.
func (r *BundleRepository) BundleDir(generationID string) (string, error) {
	dir := filepath.Join(r.basePath, generationID)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("bundle not found: %s", generationID)
		}
		return "", fmt.Errorf("failed to check bundle: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("bundle path is not a directory: %s", dir)
	}
	return dir, nil
}

func (r *BundleRepository) ListBundles(ctx context.Context) ([]string, error) {
	var bundles []string

	err := filepath.WalkDir(r.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != r.basePath {
			if _, statErr := os.Stat(filepath.Join(path, "metadata.json")); statErr == nil {
				bundles = append(bundles, filepath.Base(path))
			}
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return bundles, nil
}

func (r *BundleRepository) DeleteBundle(ctx context.Context, generationID string) error {
	if err := os.RemoveAll(filepath.Join(r.basePath, generationID)); err != nil {
		return fmt.Errorf("failed to delete bundle directory: %w", err)
	}
	return nil
}
