// Package uplink implements the remote-cut command channel: wire-format
// parsing, serial+token authorization, and a one-shot "remote cut
// requested" edge latch, transport-agnostic behind Publisher/Subscriber
// interfaces whose real implementation uses MQTT in place of the
// original Iridium SBD modem (see SPEC_FULL.md §6.1 and DESIGN.md).
package uplink

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/LeemanGeophysicalLLC/skyguard-cutdown-core/internal/config"
)

// maxSerial mirrors the firmware's overflow guard in parseCutCommand:
// a serial that would exceed this while being parsed aborts parsing.
const maxSerial = 9_999_999

// ParseCutCommand parses the wire format "CUT,<serial>,<token>" per
// spec.md's boundary behavior section: the "CUT" keyword is matched
// case-insensitively, the serial is one or more decimal digits not
// exceeding 9,999,999, and the token is everything after the second
// comma with trailing spaces/tabs trimmed (and cut at the first
// CR/LF, matching the firmware's line-oriented receive buffer). Any
// structural deviation is rejected.
func ParseCutCommand(msg string) (serial uint32, token string, ok bool) {
	if len(msg) < 4 {
		return 0, "", false
	}
	if !strings.EqualFold(msg[:3], "CUT") || msg[3] != ',' {
		return 0, "", false
	}

	rest := msg[4:]
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits >= len(rest) || rest[digits] != ',' {
		return 0, "", false
	}

	n, err := strconv.ParseUint(rest[:digits], 10, 32)
	if err != nil || n > maxSerial {
		return 0, "", false
	}

	token = strings.TrimRight(rest[digits+1:], " \t")
	return uint32(n), token, true
}

// Authorize reports whether a parsed (serial, token) pair is permitted
// to cut down this device: remote cut must be enabled, the serial must
// match the device's own, and the token must match exactly (spec.md
// §6: "Uplink command authorization").
func Authorize(serial uint32, token string, device config.DeviceConfig, uplinkCfg config.UplinkConfig) bool {
	if !uplinkCfg.Enabled || !uplinkCfg.CutdownOnCommand {
		return false
	}
	if serial != device.SerialNumber {
		return false
	}
	return token == uplinkCfg.CutdownToken
}

// Mailbox holds the one-shot "remote cut requested" edge, independent
// of transport. One inbound message that parses and authorizes sets
// the edge; TakeRemoteCutRequested reads and clears it, mirroring
// iridiumGetRemoteCutRequestAndClear. Accept is invoked from whatever
// goroutine the Subscriber delivers messages on (the paho client's own
// callback goroutine for RealClient), concurrently with the tick
// goroutine calling TakeRemoteCutRequested — requested is therefore an
// atomic.Bool rather than a plain bool, and Accept deliberately touches
// nothing outside the Mailbox itself so it never needs to read core
// state shared with the tick.
type Mailbox struct {
	requested atomic.Bool
}

// NewMailbox returns an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Accept processes one inbound raw message and unconditionally
// latches the edge if it parses and authorizes. It does not consult
// cut_fired or terminated — those live on flight.Runtime, which Accept
// must never read since it can run concurrently with the tick
// goroutine that owns Runtime. Suppressing a remote cut once the
// flight has already concluded is the tick's responsibility instead
// (see internal/core's evaluateCut), applied when the edge is read.
func (m *Mailbox) Accept(msg string, device config.DeviceConfig, uplinkCfg config.UplinkConfig) {
	serial, token, ok := ParseCutCommand(msg)
	if !ok {
		return
	}
	if !Authorize(serial, token, device, uplinkCfg) {
		return
	}
	m.requested.Store(true)
}

// TakeRemoteCutRequested atomically reports and clears the one-shot
// edge.
func (m *Mailbox) TakeRemoteCutRequested() bool {
	return m.requested.Swap(false)
}

// Publisher sends a telemetry payload to the uplink transport.
type Publisher interface {
	PublishTelemetry(payload []byte) error
	Close() error
}

// CommandHandler is invoked with each inbound raw command message.
type CommandHandler func(msg string)

// Subscriber delivers inbound command messages to a handler.
type Subscriber interface {
	Subscribe(handler CommandHandler) error
	Close() error
}
