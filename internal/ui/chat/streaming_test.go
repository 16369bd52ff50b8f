// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestStreamingBufferBatchThreshold(t *testing.T) {
	sb := NewStreamingBufferWithConfig(5, 30)

	for i := 0; i < 4; i++ {
		sb.Mark()
	}
	if sb.Flush() {
		t.Error("flush should not trigger below the batch threshold")
	}
	sb.Mark()
	if !sb.Flush() {
		t.Error("flush should trigger at the batch threshold")
	}
	if sb.Pending() != 0 {
		t.Errorf("pending = %d after flush, want 0", sb.Pending())
	}
}

func TestStreamingBufferTimeThreshold(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 60)

	sb.Mark()
	if sb.Flush() {
		t.Error("flush should not trigger immediately")
	}
	time.Sleep(20 * time.Millisecond)
	if !sb.Flush() {
		t.Error("flush should trigger once the frame interval elapses")
	}
}

func TestStreamingBufferEmptyNeverFlushes(t *testing.T) {
	sb := NewStreamingBuffer()
	time.Sleep(40 * time.Millisecond)
	if sb.Flush() {
		t.Error("empty buffer must not flush")
	}
	if sb.ForceFlush() {
		t.Error("empty buffer must not force-flush")
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 1)
	sb.Mark()
	if !sb.ForceFlush() {
		t.Error("force flush should drain pending deltas")
	}
	if sb.Pending() != 0 {
		t.Errorf("pending = %d after force flush, want 0", sb.Pending())
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Mark()
	sb.Mark()
	sb.Reset()
	if sb.Pending() != 0 {
		t.Errorf("pending = %d after reset, want 0", sb.Pending())
	}
}

func TestStreamingBufferConfigClamping(t *testing.T) {
	sb := NewStreamingBufferWithConfig(-1, 500)
	if sb.batchSize != defaultBatchSize {
		t.Errorf("batchSize = %d, want default %d", sb.batchSize, defaultBatchSize)
	}
	if sb.minFlush != time.Second/defaultMaxFPS {
		t.Errorf("minFlush = %v, want %v", sb.minFlush, time.Second/defaultMaxFPS)
	}
}
