// cmd/pico-firmware is the on-target entry point: it lets the board's
// clocks and USB settle, then hands off to internal/orchestrator for the
// full seven-step boot sequence. Grounded on the teacher's main.go, which
// does the same brief settle-then-handoff before its own service loop.
//
//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/orchestrator"
)

func main() {
	time.Sleep(1500 * time.Millisecond)
	println("[pico-firmware] booting rs485-hostbridge …")

	orchestrator.Run(context.Background(), orchestrator.Options{
		Board: "default", // loads internal/config's embedded settings blob
	})
}
