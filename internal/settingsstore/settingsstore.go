// Package settingsstore exposes typed accessors over the durable settings
// table for the import pipeline's persisted run inputs.
package settingsstore

import (
	"encoding/json"
	"fmt"

	"github.com/dsemenov/mediaport/internal/database/settings"
	"github.com/dsemenov/mediaport/internal/entities"
)

type SettingsStore struct {
	repo *settings.Repository
}

func New(repo *settings.Repository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

func (s *SettingsStore) SetExportRoot(path string) error {
	return s.repo.Set(entities.SettingKeyImportExportRoot, path)
}

func (s *SettingsStore) ExportRoot() (string, error) {
	return s.repo.GetOrDefault(entities.SettingKeyImportExportRoot, "")
}

// SetCategorySelection stores the run's category set as a JSON id list.
func (s *SettingsStore) SetCategorySelection(ids []uint) error {
	if ids == nil {
		ids = []uint{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode category selection: %w", err)
	}
	return s.repo.Set(entities.SettingKeyImportCategories, string(data))
}

func (s *SettingsStore) CategorySelection() ([]uint, error) {
	value, err := s.repo.GetOrDefault(entities.SettingKeyImportCategories, "[]")
	if err != nil {
		return nil, err
	}
	var ids []uint
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode category selection: %w", err)
	}
	return ids, nil
}

// SetExtractionPaths records where the uploaded archive and its extracted
// contents live, so reset can reclaim them.
func (s *SettingsStore) SetExtractionPaths(archivePath, extractionPath string) error {
	if err := s.repo.Set(entities.SettingKeyImportArchivePath, archivePath); err != nil {
		return err
	}
	return s.repo.Set(entities.SettingKeyImportExtractionPath, extractionPath)
}

func (s *SettingsStore) ExtractionPaths() (string, string, error) {
	archivePath, err := s.repo.GetOrDefault(entities.SettingKeyImportArchivePath, "")
	if err != nil {
		return "", "", err
	}
	extractionPath, err := s.repo.GetOrDefault(entities.SettingKeyImportExtractionPath, "")
	if err != nil {
		return "", "", err
	}
	return archivePath, extractionPath, nil
}

// ClearRunSettings removes every persisted run input. Absent keys are not
// an error.
func (s *SettingsStore) ClearRunSettings() error {
	for _, key := range []string{
		entities.SettingKeyImportExportRoot,
		entities.SettingKeyImportCategories,
		entities.SettingKeyImportArchivePath,
		entities.SettingKeyImportExtractionPath,
	} {
		if err := s.repo.Delete(key); err != nil {
			return fmt.Errorf("failed to clear setting %s: %w", key, err)
		}
	}
	return nil
}
