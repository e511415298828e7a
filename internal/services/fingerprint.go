package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/dsemenov/mediaport/internal/entities"
	"github.com/dsemenov/mediaport/internal/mediaexport"
)

// Fingerprint derives the deterministic idempotency key for an export
// item from its source URI and capture time. The binary content does not
// participate, so re-exports of the same item always map to the same key.
func Fingerprint(item mediaexport.Item) string {
	sum := sha256.Sum256([]byte(item.SourceURI + "\n" + strconv.FormatInt(item.CapturedAt.Unix(), 10)))
	return hex.EncodeToString(sum[:])
}

// Deduper answers whether an item was imported before, via a point lookup
// against the content store's metadata index.
type Deduper struct {
	store ContentStore
}

func NewDeduper(store ContentStore) *Deduper {
	return &Deduper{store: store}
}

// IsImported reports whether an asset is already tagged with the
// fingerprint. A failing lookup is returned as an error, never as "not
// imported": a flaky store must make the item fail rather than let a
// duplicate slip through.
func (d *Deduper) IsImported(fingerprint string) (bool, error) {
	assetID, err := d.store.FindAssetByMetadata(entities.MetadataKeyFingerprint, fingerprint)
	if err != nil {
		return false, fmt.Errorf("fingerprint lookup failed: %w", err)
	}
	return assetID != 0, nil
}

// MarkImported tags an asset with the fingerprint of the item it was
// created from.
func (d *Deduper) MarkImported(assetID uint, fingerprint string) error {
	return d.store.SetMetadata(assetID, entities.MetadataKeyFingerprint, fingerprint)
}
