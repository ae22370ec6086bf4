package platform

// Package platform contains OS integration glue: output directory handling,
// safe file names, revealing files in the system file manager, and checks for
// the external tools the downloader shells out to.
