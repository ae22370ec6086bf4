package report

// Package report renders download status on the terminal: the metadata summary,
// the single overwritten progress line, the post-processing notice and the
// final success or error message.
