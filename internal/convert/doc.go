package convert

// Package convert turns a downloaded media file into the requested output
// container by running the external ffmpeg binary. A stream copy remux is tried
// first; a full transcode is used only when the source codecs cannot be copied.
