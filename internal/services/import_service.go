package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/mediaexport"
	"github.com/dsemenov/mediaport/internal/utils"
)

// OutcomeKind classifies the result of importing one item.
type OutcomeKind string

const (
	OutcomeImported OutcomeKind = "imported"
	OutcomeSkipped  OutcomeKind = "skipped"
	OutcomeFailed   OutcomeKind = "failed"
)

// Skip reasons
const (
	SkipReasonInvalidItem       = "missing required fields"
	SkipReasonAlreadyImported   = "already imported"
	SkipReasonSourceFileMissing = "source file missing"
)

// Outcome is the per-item import result. Expected conditions (invalid
// item, dedup hit, missing binary) are Skipped; store failures are
// Failed. Neither aborts the chunk the item belongs to.
type Outcome struct {
	Kind    OutcomeKind
	AssetID uint
	Reason  string
	Err     error
}

// ItemImporter turns one export item into a stored asset plus a
// published post.
type ItemImporter struct {
	store   ContentStore
	deduper *Deduper
}

func NewItemImporter(store ContentStore) *ItemImporter {
	return &ItemImporter{
		store:   store,
		deduper: NewDeduper(store),
	}
}

// Import runs the per-item pipeline: validate, dedup, resolve the binary
// under exportRoot, store the asset with its fingerprint, then create the
// post and link the asset as its featured image.
//
// Once the asset exists with its fingerprint recorded the item counts as
// imported; a post-creation failure after that point is logged and the
// outcome is still Imported. Re-running the import will dedup on the
// asset, not recreate it.
func (s *ItemImporter) Import(item mediaexport.Item, exportRoot string, categoryIDs []uint) Outcome {
	if !item.Valid() {
		return Outcome{Kind: OutcomeSkipped, Reason: SkipReasonInvalidItem}
	}

	fingerprint := Fingerprint(item)
	imported, err := s.deduper.IsImported(fingerprint)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}
	if imported {
		return Outcome{Kind: OutcomeSkipped, Reason: SkipReasonAlreadyImported}
	}

	sourcePath := filepath.Join(exportRoot, filepath.FromSlash(item.SourceURI))
	file, err := os.Open(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Outcome{Kind: OutcomeSkipped, Reason: SkipReasonSourceFileMissing}
		}
		return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("failed to open source file %s: %w", sourcePath, err)}
	}
	defer file.Close()

	title := utils.DeriveTitle(item.Caption)

	assetID, err := s.store.CreateAsset(file, filepath.Base(sourcePath), title, map[string]string{
		entities.MetadataKeyFingerprint: fingerprint,
	})
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: fmt.Errorf("failed to store asset for %s: %w", item.SourceURI, err)}
	}

	postID, err := s.store.CreatePost(title, item.Caption, categoryIDs, item.CapturedAt.UTC())
	if err != nil {
		// The asset is in and fingerprinted; the item stays imported.
		log.Printf("post creation failed for asset %d (%s): %v", assetID, item.SourceURI, err)
		return Outcome{Kind: OutcomeImported, AssetID: assetID}
	}

	if err := s.store.SetFeaturedAsset(postID, assetID); err != nil {
		log.Printf("failed to set featured asset %d on post %d: %v", assetID, postID, err)
	}

	return Outcome{Kind: OutcomeImported, AssetID: assetID}
}
