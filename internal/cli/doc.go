package cli

// Package cli wires the cobra command tree: the root download command, the
// doctor diagnostics and the tool installer. It turns flags and environment
// defaults into a download request and maps the outcome to an exit status.
