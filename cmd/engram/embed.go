package main

import (
	"embed"
	"io/fs"

	"github.com/lazypower/engram/internal/server"
)

// The ui directory holds the static memory browser served by `engram serve`.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
