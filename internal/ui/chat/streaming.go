// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"
)

// =============================================================================
// STREAMING REDRAW THROTTLE
// =============================================================================

// StreamingBuffer coalesces per-token redraw requests during streaming.
// The controller fires a callback for every content delta; redrawing the
// viewport at that rate causes flicker and wastes CPU, so updates are
// batched and released either when enough deltas accumulate or when the
// frame interval elapses.
//
// Thread-safety: deltas arrive from the send goroutine while flushes happen
// in the Bubble Tea update loop, so all state is mutex-protected.
type StreamingBuffer struct {
	mu        sync.Mutex
	pending   int
	lastFlush time.Time

	batchSize int           // deltas per forced redraw
	minFlush  time.Duration // frame interval (1s / maxFPS)
}

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewStreamingBuffer creates a throttle with the default batch size (15)
// and frame cap (30fps).
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(defaultBatchSize, defaultMaxFPS)
}

// NewStreamingBufferWithConfig creates a throttle with custom thresholds.
// Out-of-range values fall back to the defaults.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return &StreamingBuffer{
		batchSize: batchSize,
		minFlush:  time.Second / time.Duration(maxFPS),
		lastFlush: time.Now(),
	}
}

// Mark records one content delta. Called from the streaming goroutine.
func (sb *StreamingBuffer) Mark() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending++
}

// Flush reports whether a redraw should happen now, and if so resets the
// counters. A redraw is due when the batch threshold is reached or the
// frame interval has elapsed with deltas pending.
func (sb *StreamingBuffer) Flush() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if !sb.dueLocked() {
		return false
	}
	sb.pending = 0
	sb.lastFlush = time.Now()
	return true
}

// ForceFlush drains any pending deltas regardless of thresholds. Used when
// a stream finishes so the final tokens always render.
func (sb *StreamingBuffer) ForceFlush() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.pending == 0 {
		return false
	}
	sb.pending = 0
	sb.lastFlush = time.Now()
	return true
}

// Reset clears pending deltas without signalling a redraw.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.pending = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of unflushed deltas.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.pending
}

func (sb *StreamingBuffer) dueLocked() bool {
	if sb.pending == 0 {
		return false
	}
	if sb.pending >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlush
}
