// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload validates resume files before they are sent to the backend.
package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/resumind-tui/internal/util"
)

// =============================================================================
// VALIDATION RULES
// =============================================================================

// MaxFileSize is the largest file the backend accepts.
const MaxFileSize = 10 * 1024 * 1024 // 10 MiB

// AllowedExtensions lists the resume formats the backend can parse.
// Matching is case-insensitive on the file extension only - content
// sniffing is the backend's job.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// Validation errors.
var (
	ErrNotFound    = errors.New("file does not exist")
	ErrIsDirectory = errors.New("path is a directory, not a file")
	ErrTooLarge    = errors.New("file exceeds the 10 MB limit")
	ErrBadType     = errors.New("unsupported file type (allowed: PDF, DOC, DOCX, TXT)")
)

// =============================================================================
// FILE CHECKING
// =============================================================================

// File describes a validated local file ready for upload.
type File struct {
	Path      string
	Name      string
	SizeBytes int64
}

// DisplaySize returns the human-readable file size.
func (f File) DisplaySize() string {
	return util.FormatFileSize(f.SizeBytes)
}

// Check validates a local path against the backend's upload rules without
// reading the file content. The rules mirror the server side so a doomed
// upload is rejected before any bytes travel.
func Check(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrIsDirectory
	}

	if !ExtensionAllowed(path) {
		return nil, ErrBadType
	}

	if info.Size() > MaxFileSize {
		return nil, ErrTooLarge
	}

	return &File{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
	}, nil
}

// ExtensionAllowed reports whether the path's extension is an accepted
// resume format.
func ExtensionAllowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
