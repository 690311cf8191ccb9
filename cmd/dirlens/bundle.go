// cmd/dirlens/bundle.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gocodewalker "github.com/boyter/gocodewalker"
)

// bundleMarker separates files inside a project bundle.
const bundleMarker = "---"

// bundleHeader opens every project bundle handed to the AI.
const bundleHeader = "Codebase for analysis:\n\n"

// buildProjectBundle concatenates the project's text files under rootDir
// into one marker-delimited document suitable as an AI prompt body. Files
// are filtered by extension set and, when useGitignore is set, by the
// project's .gitignore/.ignore rules. Walk errors on individual entries are
// logged and skipped; only a failure of the walk itself is returned.
func buildProjectBundle(rootDir string, exts map[string]struct{}, useGitignore bool) (string, int, error) {
	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(rootDir, fileListQueue)
	fileWalker.IgnoreGitIgnore = !useGitignore
	fileWalker.IgnoreIgnoreFile = !useGitignore

	var walkErr error
	processingDone := make(chan struct{})
	go func() {
		defer close(processingDone)
		fileWalker.SetErrorHandler(func(e error) bool {
			slog.Warn("Error reported by file walker.", "rootDir", rootDir, "error", e)
			return true
		})
		walkErr = fileWalker.Start()
	}()

	var bundle strings.Builder
	bundle.WriteString(bundleHeader)
	included := 0
	processedAbsPaths := make(map[string]bool)

	for f := range fileListQueue {
		absPath := f.Location
		if processedAbsPaths[absPath] {
			continue
		}
		processedAbsPaths[absPath] = true

		ext := strings.ToLower(filepath.Ext(absPath))
		if _, allowed := exts[ext]; len(exts) > 0 && !allowed {
			continue
		}

		relPath, errRel := filepath.Rel(rootDir, absPath)
		if errRel != nil {
			relPath = absPath
		}
		relPath = filepath.ToSlash(relPath)

		content, errRead := os.ReadFile(absPath)
		if errRead != nil {
			slog.Warn("Skipping unreadable file in bundle.", "path", relPath, "error", errRead)
			continue
		}
		if len(content) == 0 {
			slog.Debug("Skipping empty file in bundle.", "path", relPath)
			continue
		}
		appendFileContent(&bundle, bundleMarker, relPath, content)
		included++
	}
	<-processingDone

	if walkErr != nil {
		return "", 0, fmt.Errorf("file walk operation failed for '%s': %w", rootDir, walkErr)
	}
	return bundle.String(), included, nil
}

// appendFileContent writes one marker-delimited file section:
//
//	--- path/to/file.go
//	<content>
//	---
func appendFileContent(b *strings.Builder, marker, relPath string, content []byte) {
	b.WriteString(marker)
	b.WriteString(" ")
	b.WriteString(relPath)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(string(content), "\n"))
	b.WriteString("\n")
	b.WriteString(marker)
	b.WriteString("\n\n")
}
