// cmd/boardtest is a host-buildable manual bring-up harness: it boots the
// full orchestrator against simulated ports, wires a fake Modbus slave
// onto bus 0 and a fake host client onto the host link, then drives one
// CONFIG_BUS/periodic-change cycle end to end and reports PASS/FAIL, the
// host-side equivalent of the teacher's rail-sequencing cmd/boardtest.
//
//go:build !(rp2040 || rp2350)

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jangala-dev/rs485-hostbridge/internal/hostproto"
	"github.com/jangala-dev/rs485-hostbridge/internal/modbus"
	"github.com/jangala-dev/rs485-hostbridge/internal/orchestrator"
	"github.com/jangala-dev/rs485-hostbridge/internal/platform"
	"github.com/jangala-dev/rs485-hostbridge/internal/protocol"
	"github.com/jangala-dev/rs485-hostbridge/internal/simulate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := orchestrator.Boot(ctx, orchestrator.Options{})
	println("[boardtest] booted orchestrator with", len(h.Engines), "bus engines")

	// A simulated peer port, cross-wired to the orchestrator's own bus-0
	// and host ports, lets this process play both "the Modbus slave out
	// on the wire" and "the host at the other end of the link".
	slavePort := platform.NewBusPort(ctx, 0)
	platform.WireSimPorts(h.BusPorts[0].Port, slavePort)
	slave := simulate.NewSlave(9, slavePort)
	slave.SetRegister(100, 0x2A)
	go slave.Run(ctx)

	hostPeer := platform.NewHostPort(ctx)
	platform.WireSimPorts(h.HostPort, hostPeer)
	client := simulate.NewHostClient(hostPeer)

	h.Start(ctx)

	if run(ctx, client) {
		println("[boardtest] PASS")
	} else {
		println("[boardtest] FAIL")
	}
}

func run(ctx context.Context, client *simulate.HostClient) bool {
	waitCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := client.WaitFor(waitCtx, hostproto.MsgPicoReady); err != nil {
		fmt.Println("[boardtest] no PICO_READY:", err)
		return false
	}

	dev := protocol.DeviceAddr{Bus: 0, Slave: 9, Function: modbus.FuncReadHoldingRegisters, Address: 100}
	cfg := protocol.BusConfig{Bus: 0, Baudrate: 19200, PeriodicInterval: 20 * time.Millisecond, Reads: []protocol.DeviceAddr{dev}}
	client.ConfigBus(cfg)
	if reply, err := client.WaitFor(waitCtx, hostproto.MsgConfigBusReply); err != nil || reply.InvalidBus {
		fmt.Println("[boardtest] CONFIG_BUS failed:", err, reply)
		return false
	}

	change, err := client.WaitFor(waitCtx, hostproto.MsgPeriodicReadReply)
	if err != nil {
		fmt.Println("[boardtest] no periodic change:", err)
		return false
	}
	return change.ChangeData == 0x2A
}
