// cmd/dirlens/summary.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	dirColor   = color.New(color.FgBlue, color.Bold).SprintFunc()
	sizeColor  = color.New(color.Faint).SprintFunc()
	errColor   = color.New(color.FgRed).SprintFunc()
	statusTint = color.New(color.FgCyan).SprintFunc()
)

// printStatus renders one progress line to w.
func printStatus(w io.Writer, message string) {
	fmt.Fprintln(w, statusTint(message))
}

// printNodeTree renders the analyzed tree with connector lines and sizes,
// directories first-class, errors called out inline.
func printNodeTree(w io.Writer, node *Node, indent string, isLast bool) {
	connector := tern(isLast, "└── ", "├── ")
	name := node.Name
	if node.Kind == NodeDirectory {
		name = dirColor(name + "/")
	}
	detail := sizeColor(fmt.Sprintf(" (%s)", humanSize(node.Size)))
	if node.Error != "" {
		detail = errColor(fmt.Sprintf(" [error: %s]", node.Error))
	}
	fmt.Fprintf(w, "%s%s%s%s\n", indent, connector, name, detail)

	childIndent := indent + tern(isLast, "    ", "│   ")
	for i, child := range node.Children {
		printNodeTree(w, child, childIndent, i == len(node.Children)-1)
	}
}

// printScanSummary writes the post-scan report: the rendered tree plus
// totals and a list of nodes that could not be read.
func printScanSummary(w io.Writer, root *Node) {
	fmt.Fprintln(w, "\n--- Analysis Summary ---")
	fmt.Fprintf(w, "%s %s\n", tern(root.Kind == NodeDirectory, dirColor(root.Name+"/"), root.Name),
		sizeColor(fmt.Sprintf("(%s)", humanSize(root.Size))))
	for i, child := range root.Children {
		printNodeTree(w, child, "", i == len(root.Children)-1)
	}

	files, dirs := 0, 0
	errored := collectErrors(root)
	walkCounts(root, &files, &dirs)
	fmt.Fprintf(w, "\n%d files, %d directories, %s total\n", files, dirs, humanSize(root.Size))

	if len(errored) > 0 {
		fmt.Fprintf(w, "\nUnreadable entries (%d):\n", len(errored))
		for _, n := range errored {
			fmt.Fprintf(w, "- %s: %s\n", n.Path, errColor(n.Error))
		}
	}
	fmt.Fprintln(w, "------------------------")
}

func walkCounts(n *Node, files, dirs *int) {
	if n.Kind == NodeFile {
		*files++
		return
	}
	*dirs++
	for _, child := range n.Children {
		walkCounts(child, files, dirs)
	}
}

// collectErrors lists, pre-order, every node whose read failed.
func collectErrors(n *Node) []*Node {
	var errored []*Node
	if n.Error != "" {
		errored = append(errored, n)
	}
	for _, child := range n.Children {
		errored = append(errored, collectErrors(child)...)
	}
	return errored
}

// formatNodeDetails renders the per-node detail block: identity, sizes,
// timestamps, and for files the MIME type, language and preview.
func formatNodeDetails(n *Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", n.Name)
	fmt.Fprintf(&b, "Path: %s\n", n.Path)
	fmt.Fprintf(&b, "Type: %s\n", n.Kind)
	fmt.Fprintf(&b, "Size: %s\n", n.SizeHuman)
	fmt.Fprintf(&b, "Modified: %s\n", n.Modified.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, "Created: %s\n", n.Created.Format("2006-01-02T15:04:05"))
	if n.Kind == NodeFile {
		fmt.Fprintf(&b, "MIME Type: %s\n", n.MimeType)
		if n.Language != nil {
			fmt.Fprintf(&b, "Language: %s\n", *n.Language)
		}
		fmt.Fprintf(&b, "\nPreview:\n%s\n", n.Preview)
	}
	if n.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", n.Error)
	}
	return b.String()
}
