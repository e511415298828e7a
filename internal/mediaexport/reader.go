// Package mediaexport reads an extracted bulk media export from disk.
//
// An export root contains a content subdirectory with one or more
// posts_*.json metadata files. Each file holds a list of posts, each post
// a list of media entries. The reader flattens those into Items carrying
// the three fields the import pipeline needs; everything else in the
// export is dropped.
package mediaexport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ErrNoSourceFiles is returned when the export contains no metadata files.
var ErrNoSourceFiles = errors.New("no source metadata files found in export")

// MalformedExportError indicates a metadata file that could not be decoded
// into the expected posts-with-media shape.
type MalformedExportError struct {
	Path string
	Err  error
}

func (e *MalformedExportError) Error() string {
	return fmt.Sprintf("malformed export file %s: %v", e.Path, e.Err)
}

func (e *MalformedExportError) Unwrap() error {
	return e.Err
}

// Item is one importable media entry projected down to the fields the
// pipeline uses.
type Item struct {
	SourceURI  string    `json:"source_uri"`
	CapturedAt time.Time `json:"captured_at"`
	Caption    string    `json:"caption"`
}

// Valid reports whether the item carries all required fields.
func (i Item) Valid() bool {
	return i.SourceURI != "" && !i.CapturedAt.IsZero() && i.Caption != ""
}

// exportPost mirrors the on-disk metadata shape.
type exportPost struct {
	Title             string        `json:"title"`
	CreationTimestamp int64         `json:"creation_timestamp"`
	Media             []exportMedia `json:"media"`
}

type exportMedia struct {
	URI               string `json:"uri"`
	CreationTimestamp int64  `json:"creation_timestamp"`
	Title             string `json:"title"`
}

// Reader discovers and parses an export's metadata files.
type Reader struct {
	ExportRoot    string
	ContentSubdir string
}

func NewReader(exportRoot, contentSubdir string) *Reader {
	return &Reader{
		ExportRoot:    exportRoot,
		ContentSubdir: contentSubdir,
	}
}

// Discover lists the export's metadata files in stable order.
func (r *Reader) Discover() ([]string, error) {
	pattern := filepath.Join(r.ExportRoot, r.ContentSubdir, "posts_*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list export files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile decodes one metadata file into a flat item sequence. Media
// entries without their own caption inherit the post's.
func (r *Reader) ParseFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file %s: %w", path, err)
	}

	var posts []exportPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, &MalformedExportError{Path: path, Err: err}
	}

	var items []Item
	for _, post := range posts {
		for _, media := range post.Media {
			caption := media.Title
			if caption == "" {
				caption = post.Title
			}
			ts := media.CreationTimestamp
			if ts == 0 {
				ts = post.CreationTimestamp
			}
			item := Item{
				SourceURI: media.URI,
				Caption:   caption,
			}
			if ts != 0 {
				item.CapturedAt = time.Unix(ts, 0).UTC()
			}
			items = append(items, item)
		}
	}

	return items, nil
}

// ReadAll reads every metadata file and concatenates the items in
// discovery order.
func (r *Reader) ReadAll() ([]Item, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, file := range files {
		fileItems, err := r.ParseFile(file)
		if err != nil {
			return nil, err
		}
		items = append(items, fileItems...)
	}

	return items, nil
}

// ReadFile parses exactly one metadata file by discovery index and reports
// whether more files remain. The index ordering matches ReadAll, so
// consuming files 0..n yields the identical item sequence.
func (r *Reader) ReadFile(index int) ([]Item, bool, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, false, err
	}
	if index < 0 || index >= len(files) {
		return nil, false, fmt.Errorf("export file index %d out of range (%d files)", index, len(files))
	}

	items, err := r.ParseFile(files[index])
	if err != nil {
		return nil, false, err
	}

	return items, index < len(files)-1, nil
}

// MediaPath resolves an item's binary location inside the export root.
func (r *Reader) MediaPath(item Item) string {
	return filepath.Join(r.ExportRoot, filepath.FromSlash(item.SourceURI))
}
