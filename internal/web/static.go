package web

import (
	"embed"
)

// staticFiles holds the embedded page of the diagnostic mirror.
//
//go:embed static/*
var staticFiles embed.FS
