//go:build !(rp2040 || rp2350)

// Package fmtx is the logging facade of this bridge: internal/busengine,
// internal/orchestrator and internal/uarttransport log through fmtx.Printf
// rather than the bare fmt package, so a host build (this file) and an
// rp2040/rp2350 build (fmtx_mcu.go) can share every call site while only
// one of them pulls in the standard formatter.
package fmtx

import (
	"fmt"
	"io"
	"os"
)

// DefaultOutput is where Print and Printf write.
var DefaultOutput io.Writer = os.Stdout

func Sprintf(format string, a ...any) string                    { return fmt.Sprintf(format, a...) }
func Printf(format string, a ...any) (int, error)               { return fmt.Fprintf(DefaultOutput, format, a...) }
func Fprintf(w io.Writer, format string, a ...any) (int, error) { return fmt.Fprintf(w, format, a...) }
func Errorf(format string, a ...any) error                      { return fmt.Errorf(format, a...) }

// Sprint, Fprint and Print put a space between every pair of operands, as
// the MCU build does.
func Sprint(a ...any) string {
	s := fmt.Sprintln(a...)
	return s[:len(s)-1]
}
func Fprint(w io.Writer, a ...any) (int, error) { return io.WriteString(w, Sprint(a...)) }
func Print(a ...any) (int, error)               { return Fprint(DefaultOutput, a...) }
