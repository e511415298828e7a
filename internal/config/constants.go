package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./mediaport.db"

	// DefaultAssetsDir is the default directory for imported asset binaries
	DefaultAssetsDir = "./assets"

	// DefaultChunkSize is the number of export items bundled into one
	// asynchronous import task
	DefaultChunkSize = 10

	// DefaultContentSubdir is the subdirectory of an extracted export that
	// contains the post metadata files
	DefaultContentSubdir = "content"
)
