// cmd/dirlens/analyze.go
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Analyzer walks a directory tree depth-first and builds one Node per entry.
// The walk is strictly sequential; sizes aggregate bottom-up, so a
// directory's size and its progress notification are only observable after
// every descendant's. Per-node read failures are recorded on the node and
// never abort the walk.
type Analyzer struct {
	classifier *Classifier
}

// NewAnalyzer builds an Analyzer whose classifier honors includeFull.
func NewAnalyzer(includeFull bool, textExts []string) *Analyzer {
	return &Analyzer{classifier: NewClassifier(includeFull, textExts)}
}

// AnalyzePath analyzes path recursively and returns the root node. progress,
// when non-nil, receives one advisory message per completed entry. An error
// is returned only when path itself cannot be stat'ed (whole-walk failure);
// everything below that is captured inside the tree.
//
// Recursion depth is bounded by the host's path depth limits; goroutine
// stacks grow on demand, so no explicit work-stack is needed.
func (a *Analyzer) AnalyzePath(path string, progress func(string)) (*Node, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	return a.analyze(abs, info, progress), nil
}

func (a *Analyzer) analyze(abs string, info os.FileInfo, progress func(string)) *Node {
	node := &Node{
		Name:     filepath.Base(abs),
		Path:     abs,
		Modified: info.ModTime(),
		// Birth time is not portable through os.FileInfo; mtime matches what
		// getctime-style APIs report on Linux for never-rewritten files.
		Created: info.ModTime(),
	}

	if !info.IsDir() {
		node.Kind = NodeFile
		node.Size = info.Size()
		node.SizeHuman = humanSize(node.Size)
		node.MimeType = a.classifier.DetectMIME(abs)
		content := a.classifier.Classify(abs)
		node.Content = content.Content
		node.Preview = content.Preview
		node.Truncated = content.Truncated
		node.Language = content.Language
		notify(progress, "Analyzed file: "+node.Name)
		return node
	}

	node.Kind = NodeDirectory
	entries, err := readDirUnsorted(abs)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			node.Error = "Permission denied"
		} else {
			node.Error = err.Error()
		}
		slog.Warn("Directory enumeration failed.", "path", abs, "error", err)
		return node
	}

	children := make([]*Node, 0, len(entries))
	var totalSize int64
	for _, entry := range entries {
		childPath := filepath.Join(abs, entry.Name())
		// Follow symlinks: a link to a directory is analyzed as that
		// directory, a link to a file reports the target's size. Broken
		// links fall back to the link's own info and surface as unreadable
		// file nodes.
		childInfo, statErr := os.Stat(childPath)
		if statErr != nil {
			childInfo, statErr = entry.Info()
		}
		if statErr != nil {
			// An entry vanished mid-walk. The reference behavior surfaces
			// this on the directory node and abandons its contents.
			node.Error = statErr.Error()
			node.Children = nil
			node.Size = 0
			node.SizeHuman = ""
			slog.Warn("Entry stat failed, marking directory.", "path", childPath, "error", statErr)
			return node
		}
		child := a.analyze(childPath, childInfo, progress)
		children = append(children, child)
		totalSize += child.Size
	}

	node.Children = children
	node.ItemsCount = len(children)
	node.Size = totalSize
	node.SizeHuman = humanSize(totalSize)
	notify(progress, "Analyzed directory: "+node.Name)
	return node
}

// readDirUnsorted enumerates a directory in the order the OS reports entries.
// os.ReadDir sorts by name; the analyzer preserves enumeration order instead.
func readDirUnsorted(path string) ([]os.DirEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}

func notify(progress func(string), message string) {
	if progress != nil {
		progress(message)
	}
}
