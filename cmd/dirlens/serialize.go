// cmd/dirlens/serialize.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes the tree as one nested, indented JSON document. UTF-8 is
// emitted as-is (no HTML escaping).
func WriteJSON(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding analysis tree: %w", err)
	}
	return nil
}

// WriteJSONL writes one flattened record per node, pre-order (parent before
// children, children in enumeration order), each terminated by a newline.
// The contents key is omitted from every record: hierarchy is not
// reconstructible from this form.
func WriteJSONL(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, node := range flattenNodes(root) {
		if err := enc.Encode(node.record(false)); err != nil {
			return fmt.Errorf("encoding record for %s: %w", node.Path, err)
		}
	}
	return nil
}

// flattenNodes lists every node of the tree in pre-order.
func flattenNodes(root *Node) []*Node {
	if root == nil {
		return nil
	}
	nodes := []*Node{root}
	for _, child := range root.Children {
		nodes = append(nodes, flattenNodes(child)...)
	}
	return nodes
}

// DecodeTree reads a nested JSON document back into a tree.
func DecodeTree(r io.Reader) (*Node, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decoding analysis tree: %w", err)
	}
	return &root, nil
}
