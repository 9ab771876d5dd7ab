// Package web embeds the single-page frontend served at the site root.
package web

import "embed"

// StaticFS embeds the frontend assets (html/css/js).
//
//go:embed static/*
var StaticFS embed.FS
