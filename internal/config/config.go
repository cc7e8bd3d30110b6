// Package config loads an embedded per-board JSON blob and exposes its
// settings, the same embedded-config pattern as the teacher's
// services/config package: no filesystem, no flash read at runtime, just a
// map baked into the firmware image and published as retained messages so
// diagnostic tooling on the host side can see what the board booted with.
package config

import (
	"errors"

	"github.com/andreyvit/tinyjson"

	"github.com/jangala-dev/rs485-hostbridge/bus"
	"github.com/jangala-dev/rs485-hostbridge/x/strx"
)

// DefaultBoard is the board name Load/Publish fall back to when given an
// empty string, so a caller that has no board-selection mechanism of its
// own still gets a usable config.
const DefaultBoard = "default"

// Lookup resolves a board variant name to its embedded JSON config.
// Overridable in tests.
var Lookup = func(board string) ([]byte, bool) {
	raw, ok := embedded[board]
	return raw, ok
}

var embedded = map[string][]byte{
	"default": defaultConfigJSON,
}

// defaultConfigJSON is the out-of-the-box board configuration: the
// orchestrator's optional resource-usage reporting cadence and the DMX
// refresh period, both overridable per board variant without a rebuild of
// the rest of the firmware.
var defaultConfigJSON = []byte(`{
	"resources_period_ms": 5000,
	"dmx_refresh_ms": 83
}`)

// parse decodes board's embedded blob into a generic JSON object, the way
// the teacher's publishConfig does: tinyjson.Raw avoids pulling in a full
// decode-into-struct path on a board that never needs more than a handful
// of top-level scalars.
func parse(board string) (map[string]any, error) {
	board = strx.Coalesce(board, DefaultBoard)
	raw, ok := Lookup(board)
	if !ok || len(raw) == 0 {
		return nil, errors.New("config: no embedded config for board " + board)
	}
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, errors.New("config: embedded config for board " + board + " is not a JSON object")
	}
	return m, nil
}

// Publish parses board's embedded config and publishes each top-level key
// as a retained "config/<key>" message.
func Publish(conn *bus.Connection, board string) error {
	m, err := parse(board)
	if err != nil {
		return err
	}
	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T("config", k), v, true))
	}
	return nil
}

// Settings is the subset of the embedded config the orchestrator reads at
// boot. Fields are zero when absent from the blob.
type Settings struct {
	ResourcesPeriodMS int
	DMXRefreshMS      int
}

// Load parses board's embedded config into Settings, tolerating a missing
// or malformed blob by falling back to the zero value (orchestrator
// defaults then apply).
func Load(board string) Settings {
	m, err := parse(board)
	if err != nil {
		return Settings{}
	}
	var s Settings
	if v, ok := m["resources_period_ms"].(float64); ok {
		s.ResourcesPeriodMS = int(v)
	}
	if v, ok := m["dmx_refresh_ms"].(float64); ok {
		s.DMXRefreshMS = int(v)
	}
	return s
}
