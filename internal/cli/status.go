// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// STATUS COMMAND
// =============================================================================

// HandleStatus checks the server's health endpoint and reports readiness.
func HandleStatus(args *ArgParser) {
	cfg := LoadConfig(args)
	client := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("server: " + cfg.Server.BaseURL)
	health, err := client.Health(ctx)
	if err != nil {
		Fatal("unreachable: %v", err)
	}

	if health.Status == "healthy" {
		printOK("status: %s", health.Status)
	} else {
		printWarn("status: %s", health.Status)
	}
	if health.APIConfigured {
		printOK("upstream api: configured")
	} else {
		printWarn("upstream api: not configured (responses will fail)")
	}
	if health.APIVersion != "" {
		fmt.Println(dimStyle.Render("api version: " + health.APIVersion))
	}
}
