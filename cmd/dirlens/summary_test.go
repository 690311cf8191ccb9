// cmd/dirlens/summary_test.go
package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrintScanSummary(t *testing.T) {
	color.NoColor = true
	root := testTree()

	var buf bytes.Buffer
	printScanSummary(&buf, root)
	out := buf.String()

	assert.Contains(t, out, "--- Analysis Summary ---")
	assert.Contains(t, out, "r/")
	assert.Contains(t, out, "sub/")
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "1 files, 3 directories")
	assert.Contains(t, out, "Unreadable entries (1):")
	assert.Contains(t, out, "/r/locked: Permission denied")
}

func TestPrintNodeTree_Connectors(t *testing.T) {
	color.NoColor = true
	root := testTree()

	var buf bytes.Buffer
	for i, child := range root.Children {
		printNodeTree(&buf, child, "", i == len(root.Children)-1)
	}
	out := buf.String()

	assert.Contains(t, out, "├── sub/")
	assert.Contains(t, out, "└── locked/ [error: Permission denied]")
	assert.Contains(t, out, "│   └── a.go (10.00 B)")
}

func TestFormatNodeDetails(t *testing.T) {
	root := testTree()
	file := root.FindByPath("/r/sub/a.go")

	out := formatNodeDetails(file)
	assert.Contains(t, out, "Name: a.go")
	assert.Contains(t, out, "Path: /r/sub/a.go")
	assert.Contains(t, out, "Type: file")
	assert.Contains(t, out, "Size: 10.00 B")
	assert.Contains(t, out, "MIME Type: text/x-go")
	assert.Contains(t, out, "Language: Go")
	assert.Contains(t, out, "Preview:\npackage a")

	dir := root.FindByPath("/r/sub")
	out = formatNodeDetails(dir)
	assert.Contains(t, out, "Type: directory")
	assert.NotContains(t, out, "MIME Type")
	assert.NotContains(t, out, "Preview")
}

func TestCollectErrors(t *testing.T) {
	root := testTree()
	errored := collectErrors(root)
	assert.Len(t, errored, 1)
	assert.Equal(t, "/r/locked", errored[0].Path)

	assert.Empty(t, collectErrors(&Node{Kind: NodeFile, Name: "ok"}))
}
