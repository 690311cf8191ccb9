// cmd/dirlens/progress.go
package main

import "sync"

// The scan runs on its own goroutine and talks to the consumer exclusively
// through a queue of tagged messages, mirroring the single-producer /
// single-consumer drain-then-poll discipline of a GUI event queue. The queue
// is unbounded, so the producer never blocks no matter how far the consumer's
// polling lags. Exactly one terminal message (success or failure) is produced
// per scan, and nothing follows it.

// ScanMessage is one advisory or terminal message from a running scan.
type ScanMessage interface{ scanMessage() }

// ScanProgress describes a just-completed analysis step.
type ScanProgress struct{ Text string }

// ScanSuccess carries the finished tree. Terminal.
type ScanSuccess struct{ Root *Node }

// ScanFailure reports a whole-walk failure. Terminal.
type ScanFailure struct{ Message string }

func (ScanProgress) scanMessage() {}
func (ScanSuccess) scanMessage()  {}
func (ScanFailure) scanMessage()  {}

// ScanQueue is the consumer's handle on a running scan.
type ScanQueue struct {
	mu   sync.Mutex
	msgs []ScanMessage
}

func (q *ScanQueue) post(m ScanMessage) {
	q.mu.Lock()
	q.msgs = append(q.msgs, m)
	q.mu.Unlock()
}

// StartScan launches the analysis of path on a background goroutine and
// returns the queue its messages arrive on. The goroutine is the queue's
// sole producer.
func StartScan(analyzer *Analyzer, path string) *ScanQueue {
	q := &ScanQueue{}
	go func() {
		root, err := analyzer.AnalyzePath(path, func(text string) {
			q.post(ScanProgress{Text: text})
		})
		if err != nil {
			q.post(ScanFailure{Message: err.Error()})
			return
		}
		q.post(ScanSuccess{Root: root})
	}()
	return q
}

// Drain returns every message currently queued, in posting order, without
// blocking. An empty result is a normal condition, not an error; callers
// keep polling until a terminal message arrives.
func (q *ScanQueue) Drain() []ScanMessage {
	q.mu.Lock()
	msgs := q.msgs
	q.msgs = nil
	q.mu.Unlock()
	return msgs
}
