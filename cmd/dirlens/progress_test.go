// cmd/dirlens/progress_test.go
package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainUntilTerminal polls the queue the way the consumer loop does,
// collecting progress texts until a terminal message arrives.
func drainUntilTerminal(t *testing.T, q *ScanQueue) ([]string, ScanMessage) {
	t.Helper()
	var progress []string
	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("scan did not reach a terminal message in time")
		default:
		}
		for _, msg := range q.Drain() {
			switch m := msg.(type) {
			case ScanProgress:
				progress = append(progress, m.Text)
			default:
				return progress, msg
			}
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStartScan_Success(t *testing.T) {
	structure := map[string]string{
		"a.txt":       "alpha",
		"sub/":        "",
		"sub/b.txt":   "beta",
		"sub/c.json":  `{"c":1}`,
		"sub/inner/":  "",
		"sub/inner/d": "",
	}
	dir := setupTestDir(t, structure)

	q := StartScan(NewAnalyzer(false, nil), dir)
	progress, terminal := drainUntilTerminal(t, q)

	success, ok := terminal.(ScanSuccess)
	require.True(t, ok, "expected ScanSuccess, got %T", terminal)
	require.NotNil(t, success.Root)
	assert.Equal(t, countNodes(success.Root), len(progress))

	// Post-order emission: a directory's notification comes strictly after
	// every one of its children's.
	indexOf := func(msg string) int {
		for i, m := range progress {
			if m == msg {
				return i
			}
		}
		t.Fatalf("missing progress message %q", msg)
		return -1
	}
	assert.Greater(t, indexOf("Analyzed directory: sub"), indexOf("Analyzed file: b.txt"))
	assert.Greater(t, indexOf("Analyzed directory: sub"), indexOf("Analyzed directory: inner"))
	assert.Equal(t, len(progress)-1, indexOf("Analyzed directory: "+filepath.Base(dir)))

	// Nothing follows the terminal message.
	assert.Empty(t, q.Drain())
}

func TestStartScan_Failure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "vanished")

	q := StartScan(NewAnalyzer(false, nil), missing)
	progress, terminal := drainUntilTerminal(t, q)

	failure, ok := terminal.(ScanFailure)
	require.True(t, ok, "expected ScanFailure, got %T", terminal)
	assert.NotEmpty(t, failure.Message)
	assert.Empty(t, progress)
	assert.Empty(t, q.Drain())
}

func TestScanQueue_DrainEmptyIsNormal(t *testing.T) {
	q := &ScanQueue{}

	// Draining an empty queue neither blocks nor errors.
	assert.Empty(t, q.Drain())
	assert.Empty(t, q.Drain())

	q.post(ScanProgress{Text: "one"})
	q.post(ScanProgress{Text: "two"})
	msgs := q.Drain()
	require.Len(t, msgs, 2)
	assert.Equal(t, ScanProgress{Text: "one"}, msgs[0])
	assert.Equal(t, ScanProgress{Text: "two"}, msgs[1])
	assert.Empty(t, q.Drain())
}

func TestScanQueue_ProducerNeverBlocks(t *testing.T) {
	q := &ScanQueue{}

	// A fast walk can outrun the consumer's poll interval by orders of
	// magnitude; the whole backlog must queue without a single drain.
	const backlog = 100000
	for i := 0; i < backlog; i++ {
		q.post(ScanProgress{Text: "step"})
	}
	q.post(ScanSuccess{})

	msgs := q.Drain()
	require.Len(t, msgs, backlog+1)
	assert.Equal(t, ScanProgress{Text: "step"}, msgs[0])
	assert.IsType(t, ScanSuccess{}, msgs[backlog])
	assert.Empty(t, q.Drain())
}
