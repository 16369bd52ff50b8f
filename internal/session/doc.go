// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one chat exchange against the Flap backend.
//
// The Controller owns the exchange state machine (opening -> streaming ->
// completed | failed), feeds decoded stream events into the in-flight
// assistant message, and re-renders the message synchronously on every
// content delta so the caller sees the text grow in arrival order. On a
// transport failure before any content arrives it falls back to the
// synchronous chat endpoint; a backend-reported error frame is final and
// is never retried.
//
// One exchange at a time: Send refuses to open a second stream while one
// is in flight. That is a cooperative gate for a single client session,
// not a cross-client lock.
package session
