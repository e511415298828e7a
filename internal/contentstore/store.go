// Package contentstore implements the content library backing the import
// pipeline: binary assets on disk paired with database rows, a metadata
// index for point lookups, and published posts linked to their featured
// asset.
package contentstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsemenov/mediaport/internal/entities"
)

type Store struct {
	db        *gorm.DB
	assetsDir string
}

func New(db *gorm.DB, assetsDir string) *Store {
	return &Store{db: db, assetsDir: assetsDir}
}

// CreateAsset copies the binary into the assets directory under a
// collision-free name and records the asset row. The original basename is
// kept on the row; the on-disk name is a UUID with the source extension.
func (s *Store) CreateAsset(r io.Reader, name, title string, metadata map[string]string) (uint, error) {
	if err := os.MkdirAll(s.assetsDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create assets directory: %w", err)
	}

	storedName := uuid.New().String() + filepath.Ext(name)
	destPath := filepath.Join(s.assetsDir, storedName)

	dest, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create asset file: %w", err)
	}

	size, err := io.Copy(dest, r)
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("failed to write asset file: %w", err)
	}

	asset := entities.Asset{
		Name:  name,
		Title: title,
		Path:  storedName,
		Size:  size,
	}
	for key, value := range metadata {
		asset.Metadata = append(asset.Metadata, entities.AssetMetadata{Key: key, Value: value})
	}

	if err := s.db.Create(&asset).Error; err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("failed to create asset record: %w", err)
	}

	return asset.ID, nil
}

// GetAsset retrieves an asset row by id.
func (s *Store) GetAsset(id uint) (*entities.Asset, error) {
	var asset entities.Asset
	if err := s.db.First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// AssetFilePath returns the absolute on-disk location of an asset binary.
func (s *Store) AssetFilePath(asset *entities.Asset) string {
	return filepath.Join(s.assetsDir, asset.Path)
}

// SetMetadata writes a key/value annotation on an asset, replacing any
// existing value for the key.
func (s *Store) SetMetadata(assetID uint, key, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ? AND key = ?", assetID, key).
			Delete(&entities.AssetMetadata{}).Error; err != nil {
			return err
		}
		return tx.Create(&entities.AssetMetadata{
			AssetID: assetID,
			Key:     key,
			Value:   value,
		}).Error
	})
}

// GetMetadata reads one annotation off an asset. Returns an empty string
// when the key is absent.
func (s *Store) GetMetadata(assetID uint, key string) (string, error) {
	var meta entities.AssetMetadata
	err := s.db.Where("asset_id = ? AND key = ?", assetID, key).First(&meta).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return meta.Value, nil
}

// FindAssetByMetadata is a point lookup against the metadata index.
// Returns (0, nil) when no asset carries the key/value pair.
func (s *Store) FindAssetByMetadata(key, value string) (uint, error) {
	var meta entities.AssetMetadata
	err := s.db.Where("key = ? AND value = ?", key, value).First(&meta).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return meta.AssetID, nil
}

// DeleteMetadataByKey removes every annotation stored under key, across
// all assets. Returns the number of rows removed.
func (s *Store) DeleteMetadataByKey(key string) (int64, error) {
	result := s.db.Where("key = ?", key).Delete(&entities.AssetMetadata{})
	return result.RowsAffected, result.Error
}

// CreatePost creates a published content record attached to the given
// categories.
func (s *Store) CreatePost(title, body string, categoryIDs []uint, publishedAt time.Time) (uint, error) {
	post := entities.Post{
		Title:       title,
		Body:        body,
		Status:      entities.PostStatusPublished,
		PublishedAt: publishedAt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if len(categoryIDs) == 0 {
			return nil
		}
		var categories []entities.Category
		if err := tx.Find(&categories, categoryIDs).Error; err != nil {
			return err
		}
		if len(categories) != len(categoryIDs) {
			return fmt.Errorf("unknown category in selection %v", categoryIDs)
		}
		return tx.Model(&post).Association("Categories").Append(categories)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create post: %w", err)
	}

	return post.ID, nil
}

// SetFeaturedAsset links an asset as the post's primary image.
func (s *Store) SetFeaturedAsset(postID, assetID uint) error {
	return s.db.Model(&entities.Post{}).
		Where("id = ?", postID).
		Update("featured_asset_id", assetID).Error
}

// GetPost retrieves a post with its categories preloaded.
func (s *Store) GetPost(id uint) (*entities.Post, error) {
	var post entities.Post
	if err := s.db.Preload("Categories").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
