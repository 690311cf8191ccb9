// cmd/dirlens/node.go
package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// NodeKind discriminates file nodes from directory nodes.
type NodeKind string

const (
	NodeFile      NodeKind = "file"
	NodeDirectory NodeKind = "directory"
)

// Node is one entry of an analyzed tree. Which fields are populated depends
// on Kind: content fields for files, Children/ItemsCount for directories.
// Error is set instead of either when the node could not be read. A Node is
// fully populated before it is linked into its parent and never mutated
// afterwards.
type Node struct {
	Name     string
	Path     string // absolute; stable key for later lookup
	Kind     NodeKind
	Modified time.Time
	Created  time.Time

	Size      int64
	SizeHuman string

	// File only.
	MimeType  string
	Language  *string
	Content   *string
	Preview   string
	Truncated bool

	// Directory only.
	Children   []*Node
	ItemsCount int

	Error string
}

// fileNodeJSON is the wire shape of a file node.
type fileNodeJSON struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Kind      NodeKind  `json:"type"`
	Modified  time.Time `json:"modified"`
	Created   time.Time `json:"created"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	MimeType  string    `json:"mime_type"`
	Language  *string   `json:"language,omitempty"`
	Content   *string   `json:"content,omitempty"`
	Preview   string    `json:"preview"`
	Truncated bool      `json:"truncated"`
}

// dirNodeJSON is the nested wire shape of a directory node.
type dirNodeJSON struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Kind       NodeKind  `json:"type"`
	Modified   time.Time `json:"modified"`
	Created    time.Time `json:"created"`
	Contents   []*Node   `json:"contents"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human"`
	ItemsCount int       `json:"items_count"`
}

// dirFlatJSON is the flattened wire shape: dirNodeJSON with contents removed.
// Hierarchy is deliberately not reconstructible from it.
type dirFlatJSON struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Kind       NodeKind  `json:"type"`
	Modified   time.Time `json:"modified"`
	Created    time.Time `json:"created"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human"`
	ItemsCount int       `json:"items_count"`
}

// errorNodeJSON is the wire shape of a node that could not be read.
type errorNodeJSON struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Kind     NodeKind  `json:"type"`
	Modified time.Time `json:"modified"`
	Created  time.Time `json:"created"`
	Error    string    `json:"error"`
}

// record returns the kind-appropriate wire struct for this node.
// includeChildren selects between the nested and the flattened shape.
func (n *Node) record(includeChildren bool) any {
	if n.Kind == NodeDirectory && n.Error != "" {
		return errorNodeJSON{
			Name: n.Name, Path: n.Path, Kind: n.Kind,
			Modified: n.Modified, Created: n.Created,
			Error: n.Error,
		}
	}
	switch n.Kind {
	case NodeFile:
		return fileNodeJSON{
			Name: n.Name, Path: n.Path, Kind: n.Kind,
			Modified: n.Modified, Created: n.Created,
			Size: n.Size, SizeHuman: n.SizeHuman,
			MimeType: n.MimeType, Language: n.Language,
			Content: n.Content, Preview: n.Preview, Truncated: n.Truncated,
		}
	case NodeDirectory:
		if !includeChildren {
			return dirFlatJSON{
				Name: n.Name, Path: n.Path, Kind: n.Kind,
				Modified: n.Modified, Created: n.Created,
				Size: n.Size, SizeHuman: n.SizeHuman,
				ItemsCount: n.ItemsCount,
			}
		}
		contents := n.Children
		if contents == nil {
			contents = []*Node{}
		}
		return dirNodeJSON{
			Name: n.Name, Path: n.Path, Kind: n.Kind,
			Modified: n.Modified, Created: n.Created,
			Contents: contents,
			Size:     n.Size, SizeHuman: n.SizeHuman,
			ItemsCount: n.ItemsCount,
		}
	default:
		// Unreachable for trees produced by AnalyzePath.
		return errorNodeJSON{
			Name: n.Name, Path: n.Path, Kind: n.Kind,
			Modified: n.Modified, Created: n.Created,
			Error: fmt.Sprintf("unknown node kind %q", string(n.Kind)),
		}
	}
}

// MarshalJSON emits the nested wire shape for the node's kind.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.record(true))
}

// nodeJSON is the superset used for decoding both wire shapes.
type nodeJSON struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Kind       NodeKind  `json:"type"`
	Modified   time.Time `json:"modified"`
	Created    time.Time `json:"created"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human"`
	MimeType   string    `json:"mime_type"`
	Language   *string   `json:"language"`
	Content    *string   `json:"content"`
	Preview    string    `json:"preview"`
	Truncated  bool      `json:"truncated"`
	Contents   []*Node   `json:"contents"`
	ItemsCount int       `json:"items_count"`
	Error      string    `json:"error"`
}

// UnmarshalJSON decodes either wire shape back into a Node.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case NodeFile, NodeDirectory:
	default:
		return fmt.Errorf("invalid node type %q", string(raw.Kind))
	}
	*n = Node{
		Name: raw.Name, Path: raw.Path, Kind: raw.Kind,
		Modified: raw.Modified, Created: raw.Created,
		Size: raw.Size, SizeHuman: raw.SizeHuman,
		Error: raw.Error,
	}
	if raw.Kind == NodeFile {
		n.MimeType = raw.MimeType
		n.Language = raw.Language
		n.Content = raw.Content
		n.Preview = raw.Preview
		n.Truncated = raw.Truncated
	} else if raw.Error == "" {
		n.Children = raw.Contents
		n.ItemsCount = raw.ItemsCount
	}
	return nil
}

// FindByPath looks up a node by its absolute path anywhere in the tree.
// Returns nil when no node matches.
func (n *Node) FindByPath(path string) *Node {
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	if n.Kind == NodeDirectory {
		for _, child := range n.Children {
			if found := child.FindByPath(path); found != nil {
				return found
			}
		}
	}
	return nil
}

// countNodes reports the total number of nodes in the tree rooted at n,
// including n itself.
func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += countNodes(child)
	}
	return total
}

// humanSize renders a byte count with monotonic 1024-divisor unit stepping
// and two-decimal precision: "1.46 KB", "12.00 MB", ...
func humanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", value)
}
