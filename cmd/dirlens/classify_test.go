// cmd/dirlens/classify_test.go
package main

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestClassify_TextPreviewCap(t *testing.T) {
	testCases := []struct {
		name          string
		length        int
		includeFull   bool
		wantTruncated bool
		wantPreview   int
	}{
		{"short text no cap", 500, false, false, 500},
		{"exactly at cap", 1000, false, false, 1000},
		{"over cap truncates", 1500, false, true, 1000},
		{"over cap with full content", 1500, true, false, 1500},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTestFile(t, "sample.txt", []byte(strings.Repeat("x", tc.length)))
			c := NewClassifier(tc.includeFull, nil)
			got := c.Classify(path)

			assert.Equal(t, tc.wantTruncated, got.Truncated)
			assert.Len(t, got.Preview, tc.wantPreview)
			require.NotNil(t, got.Content)
			assert.Len(t, *got.Content, tc.length)
			require.NotNil(t, got.Language)
		})
	}
}

func TestClassify_TextPreviewCountsCharactersNotBytes(t *testing.T) {
	// 600 two-byte characters: 1200 bytes but only 600 characters, under the cap.
	path := writeTestFile(t, "multibyte.txt", []byte(strings.Repeat("é", 600)))
	got := NewClassifier(false, nil).Classify(path)
	assert.False(t, got.Truncated)
	assert.Equal(t, 600, len([]rune(got.Preview)))
}

func TestClassify_BinaryPreviewCap(t *testing.T) {
	testCases := []struct {
		name          string
		length        int
		includeFull   bool
		wantTruncated bool
		wantRawBytes  int
	}{
		{"small binary", 50, false, false, 50},
		{"exactly at cap", 100, false, false, 100},
		{"over cap truncates", 250, false, true, 100},
		{"over cap with full content", 250, true, false, 250},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]byte, tc.length)
			for i := range data {
				data[i] = byte(i % 7) // non-text signature
			}
			path := writeTestFile(t, "blob.bin", data)
			c := NewClassifier(tc.includeFull, nil)
			got := c.Classify(path)

			assert.Equal(t, tc.wantTruncated, got.Truncated)
			assert.Nil(t, got.Language)

			preview, err := base64.StdEncoding.DecodeString(got.Preview)
			require.NoError(t, err)
			assert.Len(t, preview, tc.wantRawBytes)
			assert.Equal(t, data[:tc.wantRawBytes], preview)

			require.NotNil(t, got.Content)
			full, err := base64.StdEncoding.DecodeString(*got.Content)
			require.NoError(t, err)
			assert.Equal(t, data, full)
		})
	}
}

func TestClassify_InvalidUTF8Replaced(t *testing.T) {
	data := []byte{'h', 'i', 0xff, 0xfe, '!'}
	path := writeTestFile(t, "weird.txt", data)
	got := NewClassifier(false, nil).Classify(path)

	require.NotNil(t, got.Content)
	assert.Contains(t, *got.Content, "hi")
	assert.Contains(t, *got.Content, "�")
	assert.False(t, got.Truncated)
}

func TestClassify_UnreadablePath(t *testing.T) {
	c := NewClassifier(false, nil)
	got := c.Classify(filepath.Join(t.TempDir(), "does-not-exist.txt"))

	assert.Nil(t, got.Content)
	assert.Nil(t, got.Language)
	assert.False(t, got.Truncated)
	assert.NotEmpty(t, got.Preview)
	assert.Contains(t, got.Preview, "Error reading file:")
}

func TestClassify_CustomTextExtensions(t *testing.T) {
	// Content whose signature is binary: only the extension override can
	// force the text path.
	data := []byte{0x00, 0x01, 'o', 'k', 0xff}
	path := writeTestFile(t, "frame.dat", data)

	asBinary := NewClassifier(false, nil).Classify(path)
	asText := NewClassifier(false, []string{"dat"}).Classify(path)

	require.NotNil(t, asBinary.Content)
	assert.Nil(t, asBinary.Language)
	decoded, err := base64.StdEncoding.DecodeString(*asBinary.Content)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)

	require.NotNil(t, asText.Content)
	require.NotNil(t, asText.Language)
	assert.Contains(t, *asText.Content, "ok")
	assert.Contains(t, *asText.Content, "�")
}

func TestDetectLanguage(t *testing.T) {
	c := NewClassifier(false, nil)

	goPath := writeTestFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	got := c.Classify(goPath)
	require.NotNil(t, got.Language)
	assert.Equal(t, "Go", *got.Language)

	// No lexer matches: the label falls back rather than failing.
	label := c.detectLanguage("mystery.zzz", "just a few ordinary words")
	assert.Equal(t, "Plain Text", label)
}

func TestDetectMIME(t *testing.T) {
	c := NewClassifier(false, nil)

	txt := writeTestFile(t, "a.txt", []byte("hello"))
	assert.Equal(t, "text/plain", c.DetectMIME(txt))

	// Unknown extension, binary signature: detection falls back to sniffing.
	blob := writeTestFile(t, "a.weird", []byte{0x00, 0x01, 0x02, 0x03})
	assert.NotEmpty(t, c.DetectMIME(blob))

	// Unreadable path still yields the fallback, never an error.
	assert.Equal(t, fallbackMimeType, c.DetectMIME(filepath.Join(t.TempDir(), "nope.weird")))
}
