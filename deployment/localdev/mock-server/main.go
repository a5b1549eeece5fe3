package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Control channel frames, wire-compatible with the real server.
type ctlRequest struct {
	Command       string         `json:"command"`
	FaultID       string         `json:"fault_id"`
	Params        map[string]any `json:"params"`
	TargetZoneID  int            `json:"target_zone_id"`
	DurationTicks uint64         `json:"duration_ticks"`
}

type faultState struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	Active      bool   `json:"active"`
	Activations uint64 `json:"activations"`
}

type ctlResponse struct {
	Success bool         `json:"success"`
	Command string       `json:"command,omitempty"`
	FaultID string       `json:"fault_id,omitempty"`
	Error   string       `json:"error,omitempty"`
	Status  *faultState  `json:"status,omitempty"`
	Faults  []faultState `json:"faults,omitempty"`
}

// telemetryEntry matches the server's JSONL log schema.
type telemetryEntry struct {
	V         int            `json:"v"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Component string         `json:"component"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

type faultEntry struct {
	state       faultState
	params      map[string]any
	zone        int
	activatedAt uint64
	expiresAt   uint64 // tick number, 0 = no expiry
}

type faultTable struct {
	tick   atomic.Uint64
	mu     sync.Mutex
	faults map[string]*faultEntry
}

func newFaultTable() *faultTable {
	modes := map[string]string{
		"latency-spike":     "tick_scoped",
		"session-crash":     "one_shot",
		"event-flood":       "tick_scoped",
		"memory-pressure":   "continuous",
		"cascading-failure": "compound",
		"slow-leak":         "continuous",
		"split-brain":       "topology",
	}
	t := &faultTable{faults: make(map[string]*faultEntry, len(modes))}
	for id, mode := range modes {
		t.faults[id] = &faultEntry{state: faultState{ID: id, Mode: mode}}
	}
	return t
}

// advance moves the shared tick counter; the generator owns the cadence.
func (t *faultTable) advance() uint64 {
	return t.tick.Add(1)
}

func (t *faultTable) activate(id string, params map[string]any, zone int, durationTicks uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.faults[id]
	if !ok {
		return fmt.Errorf("unknown fault: %s", id)
	}
	now := t.tick.Load()
	f.state.Active = true
	f.state.Activations++
	f.params = params
	f.zone = zone
	f.activatedAt = now
	f.expiresAt = 0
	if durationTicks > 0 {
		f.expiresAt = now + durationTicks
	}
	return nil
}

func (t *faultTable) deactivate(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.faults[id]
	if !ok {
		return fmt.Errorf("unknown fault: %s", id)
	}
	f.state.Active = false
	return nil
}

func (t *faultTable) deactivateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range t.faults {
		f.state.Active = false
	}
}

func (t *faultTable) status(id string) (faultState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.faults[id]
	if !ok {
		return faultState{}, fmt.Errorf("unknown fault: %s", id)
	}
	return f.state, nil
}

func (t *faultTable) list() []faultState {
	t.mu.Lock()
	defer t.mu.Unlock()
	states := make([]faultState, 0, len(t.faults))
	for _, f := range t.faults {
		states = append(states, f.state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// active returns the live entry snapshot for a fault, expiring it first
// when its tick budget ran out.
func (t *faultTable) active(id string) (faultEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.faults[id]
	if !ok || !f.state.Active {
		return faultEntry{}, false
	}
	if f.expiresAt > 0 && t.tick.Load() >= f.expiresAt {
		f.state.Active = false
		return faultEntry{}, false
	}
	return *f, true
}

type telemetrySink struct {
	mu  sync.Mutex
	buf *bufio.Writer
	enc *json.Encoder
}

func newTelemetrySink(w io.Writer) *telemetrySink {
	buf := bufio.NewWriter(w)
	return &telemetrySink{buf: buf, enc: json.NewEncoder(buf)}
}

func (s *telemetrySink) emit(entryType, component, message string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(telemetryEntry{
		V:         1,
		Timestamp: time.Now().UTC(),
		Type:      entryType,
		Component: component,
		Message:   message,
		Data:      data,
	})
}

func (s *telemetrySink) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.buf.Flush()
}

func main() {
	gamePort := flag.Int("game-port", 8080, "game server listen port")
	controlPort := flag.Int("control-port", 8081, "fault control channel port")
	logFile := flag.String("log-file", "server_log.jsonl", "JSONL telemetry output path")
	tickMs := flag.Int("tick-ms", 50, "tick interval in milliseconds")
	flag.Parse()

	logger := log.New(log.Writer(), "wow-mock ", log.LstdFlags|log.Lmicroseconds)

	out, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Fatalf("open log file: %v", err)
	}
	defer out.Close()
	sink := newTelemetrySink(out)
	table := newFaultTable()

	gameLn, err := net.Listen("tcp", fmt.Sprintf(":%d", *gamePort))
	if err != nil {
		logger.Fatalf("game listener: %v", err)
	}
	ctlLn, err := net.Listen("tcp", fmt.Sprintf(":%d", *controlPort))
	if err != nil {
		logger.Fatalf("control listener: %v", err)
	}

	go serveGame(logger, gameLn)
	go serveControl(logger, ctlLn, table, sink)
	logger.Printf("game on :%d, control on :%d, telemetry to %s", *gamePort, *controlPort, *logFile)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	gen := newGenerator(table, sink)
	ticker := time.NewTicker(time.Duration(*tickMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			gen.tick(float64(*tickMs))
			sink.flush()
		case sig := <-stop:
			logger.Printf("received %s, shutting down", sig)
			gameLn.Close()
			ctlLn.Close()
			sink.flush()
			return
		}
	}
}

// serveGame accepts and drains connections so reachability probes and
// load clients see a live port. Player telemetry comes from the
// generator, not from these sockets.
func serveGame(logger *log.Logger, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			_ = c.SetReadDeadline(time.Now().Add(30 * time.Second))
			_, _ = io.Copy(io.Discard, c)
		}(conn)
	}
}

func serveControl(logger *log.Logger, ln net.Listener, table *faultTable, sink *telemetrySink) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go handleControl(logger, conn, table, sink)
	}
}

func handleControl(logger *log.Logger, conn net.Conn, table *faultTable, sink *telemetrySink) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return
	}
	var req ctlRequest
	if err := json.Unmarshal(line, &req); err != nil {
		writeResponse(conn, ctlResponse{Success: false, Error: "malformed request"})
		return
	}

	resp := dispatch(req, table, sink)
	logger.Printf("control %s %s success=%t", req.Command, req.FaultID, resp.Success)
	writeResponse(conn, resp)
}

func dispatch(req ctlRequest, table *faultTable, sink *telemetrySink) ctlResponse {
	resp := ctlResponse{Success: true, Command: req.Command, FaultID: req.FaultID}
	switch req.Command {
	case "activate":
		if err := table.activate(req.FaultID, req.Params, req.TargetZoneID, req.DurationTicks); err != nil {
			return ctlResponse{Success: false, Command: req.Command, FaultID: req.FaultID, Error: err.Error()}
		}
		sink.emit("event", "fault", "Fault activated", map[string]any{"fault_id": req.FaultID})
	case "deactivate":
		if err := table.deactivate(req.FaultID); err != nil {
			return ctlResponse{Success: false, Command: req.Command, FaultID: req.FaultID, Error: err.Error()}
		}
		sink.emit("event", "fault", "Fault deactivated", map[string]any{"fault_id": req.FaultID})
	case "deactivate_all":
		table.deactivateAll()
		sink.emit("event", "fault", "Fault deactivated", map[string]any{"fault_id": "*"})
	case "status":
		st, err := table.status(req.FaultID)
		if err != nil {
			return ctlResponse{Success: false, Command: req.Command, FaultID: req.FaultID, Error: err.Error()}
		}
		resp.Status = &st
	case "list":
		resp.Faults = table.list()
	default:
		return ctlResponse{Success: false, Command: req.Command, Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
	return resp
}

func writeResponse(conn net.Conn, resp ctlResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = conn.Write(data)
}

// generator fabricates one tick's worth of telemetry, bending the
// numbers to whatever faults are active.
type generator struct {
	table   *faultTable
	sink    *telemetrySink
	rng     *rand.Rand
	players int
	session int
}

func newGenerator(table *faultTable, sink *telemetrySink) *generator {
	return &generator{
		table: table,
		sink:  sink,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *generator) tick(budgetMs float64) {
	now := g.table.advance()

	duration := 40 + g.rng.Float64()*10
	if f, ok := g.table.active("latency-spike"); ok {
		duration += paramFloat(f.params, "delay_ms", 100)
	}
	if _, ok := g.table.active("memory-pressure"); ok {
		duration += 5 + g.rng.Float64()*10
	}
	if f, ok := g.table.active("slow-leak"); ok {
		duration += float64(now-f.activatedAt) / 100
	}
	g.sink.emit("metric", "game_loop", "Tick completed", map[string]any{
		"tick":        now,
		"duration_ms": round1(duration),
		"overrun":     duration > budgetMs,
	})

	crashZone := 0
	if f, ok := g.table.active("session-crash"); ok {
		crashZone = f.zone
		if crashZone == 0 {
			crashZone = 1 + g.rng.Intn(3)
		}
		// One shot: the crash fires once, then the fault disarms itself.
		_ = g.table.deactivate("session-crash")
	}
	cascadeZone := 0
	if f, ok := g.table.active("cascading-failure"); ok {
		cascadeZone = int(min(1+(now-f.activatedAt)/20, 3))
	}

	for zone := 1; zone <= 3; zone++ {
		if zone == crashZone || (cascadeZone > 0 && zone <= cascadeZone) {
			g.sink.emit("error", "zone", "Zone tick exception", map[string]any{
				"zone_id": zone,
				"error":   "entity update overflow",
			})
			continue
		}
		g.sink.emit("metric", "zone", "Zone tick completed", map[string]any{
			"zone_id":     zone,
			"duration_ms": round1(duration/3 + g.rng.Float64()*2),
		})
	}

	if f, ok := g.table.active("event-flood"); ok {
		burst := int(paramFloat(f.params, "multiplier", 10))
		for i := 0; i < burst; i++ {
			g.sink.emit("error", "server", "Event queue saturated", map[string]any{
				"queue_depth": 5000 + g.rng.Intn(3000),
			})
		}
	}

	g.churnPlayers()
	g.castSpells()
}

func (g *generator) churnPlayers() {
	if g.players < 20 && g.rng.Float64() < 0.3 {
		g.session++
		g.players++
		g.sink.emit("event", "game_server", "Connection accepted", map[string]any{
			"session_id": fmt.Sprintf("sess-%d", g.session),
		})
	}

	drops := 0
	if _, ok := g.table.active("split-brain"); ok {
		drops = 1 + g.rng.Intn(3)
	} else if g.players > 0 && g.rng.Float64() < 0.02 {
		drops = 1
	}
	for i := 0; i < drops && g.players > 0; i++ {
		g.players--
		g.sink.emit("event", "game_server", "Client disconnected", map[string]any{
			"session_id": fmt.Sprintf("sess-%d", 1+g.rng.Intn(g.session)),
		})
	}
}

func (g *generator) castSpells() {
	if g.players == 0 || g.rng.Float64() > 0.4 {
		return
	}
	caster := 1 + g.rng.Intn(g.players)
	g.sink.emit("event", "spellcast", "Cast started", map[string]any{
		"caster_id": caster,
		"spell_id":  1 + g.rng.Intn(40),
	})
	switch roll := g.rng.Float64(); {
	case roll < 0.75:
		g.sink.emit("event", "spellcast", "Cast completed", map[string]any{"caster_id": caster})
		g.sink.emit("event", "combat", "Damage dealt", map[string]any{
			"attacker_id":   caster,
			"target_id":     100 + g.rng.Intn(50),
			"actual_damage": 50 + g.rng.Intn(450),
		})
		if g.rng.Float64() < 0.1 {
			g.sink.emit("event", "combat", "Entity killed", map[string]any{"target_id": 100 + g.rng.Intn(50)})
		}
	case roll < 0.9:
		g.sink.emit("event", "spellcast", "Cast interrupted", map[string]any{"caster_id": caster})
	default:
		g.sink.emit("event", "spellcast", "Cast blocked by GCD", map[string]any{"caster_id": caster})
	}
}

func paramFloat(params map[string]any, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
