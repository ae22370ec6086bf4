package download

// Package download implements the single-URL download pipeline: it derives the
// download configuration from a request, asks an extractor for metadata, runs
// the download, and reports progress and the final result. Extractors wrap
// yt-dlp (via github.com/lrstanley/go-ytdlp) or the pure Go client from
// github.com/ytget/ytdlp/v2.
