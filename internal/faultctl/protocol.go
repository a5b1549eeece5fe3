// Package faultctl speaks the game server's fault-injection control
// channel: one JSON request line, one JSON response line, one TCP
// connection per command.
package faultctl

import (
	"errors"
	"fmt"

	"github.com/wowsimlabs/simops/internal/models"
)

// ErrNoStatus reports a status reply the server accepted but answered
// without a status block.
var ErrNoStatus = errors.New("no status in response")

// Commands understood by the control channel.
const (
	CmdActivate      = "activate"
	CmdDeactivate    = "deactivate"
	CmdDeactivateAll = "deactivate_all"
	CmdStatus        = "status"
	CmdList          = "list"
)

// request is one command frame. Zero-valued optional fields are omitted
// and the server applies its per-fault defaults.
type request struct {
	Command       string         `json:"command"`
	FaultID       string         `json:"fault_id,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	TargetZoneID  int            `json:"target_zone_id,omitempty"`
	DurationTicks uint64         `json:"duration_ticks,omitempty"`
}

// response is the reply frame shared by every command; which fields are
// populated depends on the command.
type response struct {
	Success bool               `json:"success"`
	Command string             `json:"command,omitempty"`
	FaultID string             `json:"fault_id,omitempty"`
	Error   string             `json:"error,omitempty"`
	Status  *models.FaultInfo  `json:"status,omitempty"`
	Faults  []models.FaultInfo `json:"faults,omitempty"`
}

// ProtocolError reports a request the server received and refused, as
// opposed to the server being unreachable.
type ProtocolError struct {
	Command string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("control channel rejected %s: %s", e.Command, e.Reason)
}
