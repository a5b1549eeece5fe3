package faultctl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/wowsimlabs/simops/internal/models"
	"github.com/wowsimlabs/simops/internal/utils"
)

// Config holds connection parameters for the control channel.
type Config struct {
	Host         string
	Port         int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client issues fault commands. It holds no connection: every command
// dials, sends one line, reads one line, and closes. Commands are not
// idempotent, so the client never retries on its own.
type Client struct {
	cfg Config
}

// NewClient validates the target address and applies default timeouts.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("control host is required")
	}
	if cfg.Port <= 0 {
		return nil, errors.New("control port is required")
	}
	normaliseTimeouts(&cfg)
	return &Client{cfg: cfg}, nil
}

// ActivateOptions tune one activation. The zero value asks the server
// for its per-fault defaults.
type ActivateOptions struct {
	Params        map[string]any
	TargetZoneID  int
	DurationTicks uint64
}

// Activate switches a fault on.
func (c *Client) Activate(ctx context.Context, faultID string, opts ActivateOptions) error {
	if faultID == "" {
		return errors.New("fault id is required")
	}
	_, err := c.roundTrip(ctx, request{
		Command:       CmdActivate,
		FaultID:       faultID,
		Params:        opts.Params,
		TargetZoneID:  opts.TargetZoneID,
		DurationTicks: opts.DurationTicks,
	})
	return err
}

// Deactivate switches a fault off.
func (c *Client) Deactivate(ctx context.Context, faultID string) error {
	if faultID == "" {
		return errors.New("fault id is required")
	}
	_, err := c.roundTrip(ctx, request{Command: CmdDeactivate, FaultID: faultID})
	return err
}

// DeactivateAll switches every fault off.
func (c *Client) DeactivateAll(ctx context.Context) error {
	_, err := c.roundTrip(ctx, request{Command: CmdDeactivateAll})
	return err
}

// Status reports one fault's current state.
func (c *Client) Status(ctx context.Context, faultID string) (models.FaultInfo, error) {
	if faultID == "" {
		return models.FaultInfo{}, errors.New("fault id is required")
	}
	resp, err := c.roundTrip(ctx, request{Command: CmdStatus, FaultID: faultID})
	if err != nil {
		return models.FaultInfo{}, err
	}
	if resp.Status == nil {
		return models.FaultInfo{}, utils.NewAppError("faultctl.Status", "empty status reply", ErrNoStatus)
	}
	return *resp.Status, nil
}

// List returns every fault the server knows, active or not. The result
// is never nil on success.
func (c *Client) List(ctx context.Context) ([]models.FaultInfo, error) {
	resp, err := c.roundTrip(ctx, request{Command: CmdList})
	if err != nil {
		return nil, err
	}
	if resp.Faults == nil {
		return []models.FaultInfo{}, nil
	}
	return resp.Faults, nil
}

func (c *Client) roundTrip(ctx context.Context, req request) (response, error) {
	var resp response
	op := "faultctl." + req.Command

	dialer := net.Dialer{Timeout: deadlineOr(ctx, c.cfg.DialTimeout)}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port)))
	if err != nil {
		return resp, utils.NewAppError(op, "dial control channel", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, utils.NewAppError(op, "encode request", err)
	}
	payload = append(payload, '\n')

	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return resp, utils.NewAppError(op, "arm write deadline", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return resp, utils.NewAppError(op, "send request", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
		return resp, utils.NewAppError(op, "arm read deadline", err)
	}
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	// A server that closes right after the reply may omit the newline.
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return resp, utils.NewAppError(op, "read response", err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, utils.NewAppError(op, "decode response", err)
	}

	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "request refused"
		}
		return resp, &ProtocolError{Command: req.Command, Reason: reason}
	}
	return resp, nil
}

func normaliseTimeouts(cfg *Config) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
}

func deadlineOr(ctx context.Context, d time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return time.Millisecond
		}
		if d == 0 || remaining < d {
			return remaining
		}
	}
	if d <= 0 {
		return time.Millisecond
	}
	return d
}
