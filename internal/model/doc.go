package model

// Package model defines the values passed between the CLI, the download
// orchestration and the terminal reporter: the download request, the metadata
// returned by the extractor, progress events and pipeline stages.
