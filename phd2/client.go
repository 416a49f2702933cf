// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package phd2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tombee/phdlink/internal/dispatch"
	"github.com/tombee/phdlink/internal/log"
	"github.com/tombee/phdlink/internal/transport"
)

// Client is a stateful session over one daemon connection.
//
// All inbound decoding and dispatch runs on the transport's single
// receive goroutine, so event handlers execute sequentially in daemon
// order. Foreground callers may issue commands and read State from any
// goroutine.
type Client struct {
	transport *transport.Transport
	registry  *dispatch.Registry
	logger    *slog.Logger
	notify    NotificationHandler
	onLost    func(err error)

	dialTimeout time.Duration

	stateMu sync.Mutex
	state   SessionState
	connGen uint64

	pendingMu sync.Mutex
	pending   map[int64]chan *rpcResponse
	nextID    atomic.Int64
}

// New creates a Client. Event handlers are registered before any
// connection exists, so no event can arrive at an unregistered name.
func New(opts ...Option) *Client {
	c := &Client{
		registry: dispatch.NewRegistry(),
		pending:  make(map[int64]chan *rpcResponse),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.transport = transport.New(&transport.Config{
		DialTimeout: c.dialTimeout,
		Logger:      c.logger,
	})
	c.logger = log.WithComponent(c.logger, "phd2")

	c.transport.SetMessageHandler(c.onLine)
	c.registerHandlers()

	return c
}

// Connect opens the daemon connection and starts receiving events.
// It blocks until the TCP handshake completes, fails, or ctx is done.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	if c.transport.Connected() {
		return ErrAlreadyConnected
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))

	// Reset before the receive loop can dispatch: the daemon announces
	// itself the moment it accepts, and that greeting must land on the
	// fresh state rather than be wiped by a reset racing it. The
	// generation ties the state to this connection so a callback from a
	// superseded one cannot touch it.
	c.stateMu.Lock()
	c.connGen++
	gen := c.connGen
	c.state = SessionState{
		Version:    c.state.Version,
		Subversion: c.state.Subversion,
		Profile:    c.state.Profile,
	}
	c.stateMu.Unlock()

	c.failPending()

	c.transport.SetDisconnectHandler(func(err error) {
		c.onConnectionLost(err, gen)
	})

	err := c.transport.Connect(ctx, addr)
	if errors.Is(err, transport.ErrAlreadyConnected) {
		return ErrAlreadyConnected
	}
	if err != nil {
		return fmt.Errorf("phd2: connect: %w", err)
	}

	c.stateMu.Lock()
	if c.connGen == gen {
		c.state.Connected = true
	}
	c.stateMu.Unlock()

	return nil
}

// Disconnect closes the daemon connection and waits for the receive
// goroutine to stop. Calling it while disconnected is a no-op. Pending
// Call invocations fail with ErrConnectionLost.
func (c *Client) Disconnect() error {
	// Connected clears in the snapshot first so a caller polling both
	// never sees a dead transport with a live-looking session.
	c.stateMu.Lock()
	gen := c.connGen
	c.state.Connected = false
	c.stateMu.Unlock()

	if err := c.transport.Disconnect(); err != nil {
		return err
	}
	c.markDisconnected("", gen)
	return nil
}

// Connected reports whether the daemon connection is active.
func (c *Client) Connected() bool {
	return c.transport.Connected()
}

// State returns a snapshot of the session state. The copy is taken
// under the session lock so it never observes a partially applied event.
func (c *Client) State() SessionState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// SendCommand serializes a command and hands it to the transport. It
// returns once the write is accepted; success of the command itself is
// observed through subsequent events and State transitions.
func (c *Client) SendCommand(method string, params any) error {
	_, err := c.send(method, params)
	return err
}

// Call sends a command and waits for the daemon's response correlated
// by request id, honoring ctx for cancellation and deadline. The result
// payload is returned undecoded.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	ch := make(chan *rpcResponse, 1)

	c.pendingMu.Lock()
	id := c.nextID.Add(1)
	c.pending[id] = ch
	c.pendingMu.Unlock()

	if err := c.sendWithID(id, method, params); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp == nil {
			return nil, ErrConnectionLost
		}
		if resp.Error != nil {
			commandErrorsTotal.WithLabelValues(method).Inc()
			return nil, resp.Error
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, fmt.Errorf("phd2: %s: %w", method, ctx.Err())
	}
}

// send issues a fire-and-forget command under a fresh request id.
func (c *Client) send(method string, params any) (int64, error) {
	id := c.nextID.Add(1)
	return id, c.sendWithID(id, method, params)
}

func (c *Client) sendWithID(id int64, method string, params any) error {
	req := rpcRequest{
		Method: method,
		Params: params,
		ID:     id,
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("phd2: marshal %s: %w", method, err)
	}

	err = c.transport.Send(data)
	if errors.Is(err, transport.ErrNotConnected) {
		return ErrNotConnected
	}
	if err != nil {
		return fmt.Errorf("phd2: send %s: %w", method, err)
	}

	commandsTotal.WithLabelValues(method).Inc()
	c.logger.Debug("command sent", log.MethodKey, method, "id", id)
	return nil
}

// onLine decodes one inbound document and routes it. Runs on the
// receive goroutine.
func (c *Client) onLine(line []byte) {
	var env eventEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		decodeErrorsTotal.Inc()
		c.logger.Warn("dropping undecodable document", log.Error(err))
		return
	}

	if env.Event != "" {
		eventsTotal.WithLabelValues(env.Event).Inc()

		if !c.registry.Dispatch(env.Event, json.RawMessage(line)) {
			eventsUnhandledTotal.Inc()
			c.logger.Debug("unhandled event dropped", log.EventKey, env.Event)
			return
		}

		if c.notify != nil {
			c.notify(env.Event, json.RawMessage(line))
		}
		return
	}

	// Not an event: try a command response.
	var resp rpcResponse
	if err := json.Unmarshal(line, &resp); err == nil &&
		(resp.JSONRPC != "" || resp.Result != nil || resp.Error != nil) {
		c.deliverResponse(&resp)
		return
	}

	decodeErrorsTotal.Inc()
	c.logger.Warn("dropping document without event name")
}

// deliverResponse hands a command response to the caller awaiting it.
func (c *Client) deliverResponse(resp *rpcResponse) {
	c.pendingMu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.pendingMu.Unlock()

	if !ok {
		// Fire-and-forget commands still draw a reply; nothing waits
		// for it.
		c.logger.Debug("response with no waiter", "id", resp.ID)
		return
	}

	ch <- resp
}

// onConnectionLost runs when a connection's receive loop stops on a
// socket failure or peer close. gen identifies the connection the loop
// belonged to; a callback outliving its connection is ignored.
func (c *Client) onConnectionLost(err error, gen uint64) {
	if !c.markDisconnected(err.Error(), gen) {
		c.logger.Debug("ignoring disconnect from a superseded connection")
		return
	}
	c.logger.Warn("daemon connection lost", log.Error(err))
	if c.onLost != nil {
		c.onLost(err)
	}
}

// markDisconnected records the end of connection gen: transient
// calibration/guiding/settling flags are cleared, the last-known profile
// name and daemon version survive for a reconnect attempt, and pending
// calls are failed. It reports false without touching the state when gen
// is no longer the current connection.
func (c *Client) markDisconnected(reason string, gen uint64) bool {
	c.stateMu.Lock()
	if gen != c.connGen {
		c.stateMu.Unlock()
		return false
	}
	s := &c.state
	s.Connected = false
	s.IsCalibrating = false
	s.IsGuiding = false
	s.IsLooping = false
	s.IsPaused = false
	s.IsSettling = false
	s.IsSettled = false
	s.LockPositionValid = false
	s.StarSelectedValid = false
	if reason != "" {
		s.LastError = reason
	}
	c.stateMu.Unlock()

	c.failPending()
	return true
}

// failPending fails every in-flight Call with ErrConnectionLost. Also
// run on Connect, so waiters on a previous connection whose loss
// notification was superseded do not hang until their context expires.
func (c *Client) failPending() {
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = make(map[int64]chan *rpcResponse)
	c.pendingMu.Unlock()

	for _, ch := range pending {
		ch <- nil
	}
}

// registerHandlers binds one handler per protocol event name. Handlers
// mutate exactly the state fields their event defines.
func (c *Client) registerHandlers() {
	c.registry.Register(EventVersion, eventHandler(c, func(s *SessionState, ev *VersionEvent) {
		s.Version = ev.PHDVersion
		s.Subversion = ev.PHDSubver
	}))

	c.registry.Register(EventAppState, eventHandler(c, func(s *SessionState, ev *AppStateEvent) {
		s.AppState = ev.State
		// AppState arrives once on connect; seed the flags it implies.
		s.IsGuiding = ev.State == "Guiding"
		s.IsCalibrating = ev.State == "Calibrating"
		s.IsLooping = ev.State == "Looping"
		s.IsPaused = ev.State == "Paused"
	}))

	c.registry.Register(EventLockPositionSet, eventHandler(c, func(s *SessionState, ev *LockPositionSetEvent) {
		s.LockPosition = Point{X: ev.X, Y: ev.Y}
		s.LockPositionValid = true
	}))

	c.registry.Register(EventLockPositionLost, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.LockPositionValid = false
		s.LastError = "lock position lost"
	}))

	c.registry.Register(EventLockPositionShiftLimitReached, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.LastError = "lock position shift limit reached"
	}))

	c.registry.Register(EventStarSelected, eventHandler(c, func(s *SessionState, ev *StarSelectedEvent) {
		s.StarSelected = Point{X: ev.X, Y: ev.Y}
		s.StarSelectedValid = true
	}))

	c.registry.Register(EventStartCalibration, eventHandler(c, func(s *SessionState, ev *StartCalibrationEvent) {
		s.IsCalibrating = true
		s.Calibrated = false
	}))

	c.registry.Register(EventCalibrating, eventHandler(c, func(s *SessionState, ev *CalibratingEvent) {
		s.IsCalibrating = true
	}))

	c.registry.Register(EventCalibrationComplete, eventHandler(c, func(s *SessionState, ev *CalibrationCompleteEvent) {
		s.IsCalibrating = false
		s.Calibrated = true
	}))

	c.registry.Register(EventCalibrationFailed, eventHandler(c, func(s *SessionState, ev *CalibrationFailedEvent) {
		s.IsCalibrating = false
		s.Calibrated = false
		s.LastError = ev.Reason
	}))

	c.registry.Register(EventCalibrationDataFlipped, eventHandler(c, func(s *SessionState, ev *CalibrationDataFlippedEvent) {
		s.CalibrationFlipped = true
	}))

	c.registry.Register(EventStartGuiding, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.IsGuiding = true
		s.IsSettled = false
		s.AppState = "Guiding"
	}))

	c.registry.Register(EventGuidingStopped, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.IsGuiding = false
		s.AppState = "Stopped"
	}))

	c.registry.Register(EventPaused, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.IsPaused = true
		s.AppState = "Paused"
	}))

	c.registry.Register(EventResumed, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.IsPaused = false
	}))

	c.registry.Register(EventLoopingExposures, eventHandler(c, func(s *SessionState, ev *LoopingExposuresEvent) {
		s.IsLooping = true
	}))

	c.registry.Register(EventLoopingExposuresStopped, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.IsLooping = false
	}))

	c.registry.Register(EventSettleBegin, eventHandler(c, func(s *SessionState, ev *struct{}) {
		s.IsSettling = true
		s.IsSettled = false
	}))

	c.registry.Register(EventSettling, eventHandler(c, func(s *SessionState, ev *SettlingEvent) {
		s.IsSettling = true
	}))

	c.registry.Register(EventSettleDone, eventHandler(c, func(s *SessionState, ev *SettleDoneEvent) {
		s.IsSettling = false
		if ev.Status == 0 {
			s.IsSettled = true
		} else {
			s.IsSettled = false
			if ev.Error != "" {
				s.LastError = ev.Error
			} else {
				s.LastError = "settle failed"
			}
		}
	}))

	c.registry.Register(EventStarLost, eventHandler(c, func(s *SessionState, ev *StarLostEvent) {
		if ev.Status != "" {
			s.LastError = ev.Status
		} else {
			s.LastError = "star lost"
		}
	}))

	c.registry.Register(EventGuideStep, eventHandler(c, func(s *SessionState, ev *GuideStepEvent) {
		s.IsGuiding = true
		s.AvgDist = ev.AvgDist
	}))

	c.registry.Register(EventGuidingDithered, eventHandler(c, func(s *SessionState, ev *GuidingDitheredEvent) {
		s.DitherDX = ev.DX
		s.DitherDY = ev.DY
	}))

	c.registry.Register(EventAlert, eventHandler(c, func(s *SessionState, ev *AlertEvent) {
		s.LastError = ev.Msg
	}))

	// Observed for notification only; no session state depends on them.
	c.registry.Register(EventGuideParamChange, eventHandler(c, func(s *SessionState, ev *GuideParamChangeEvent) {}))
	c.registry.Register(EventConfigurationChange, eventHandler(c, func(s *SessionState, ev *struct{}) {}))
}

// eventHandler adapts a typed state mutation into a dispatch.Handler:
// decode the payload, then apply the mutation under the session lock.
// A payload that fails to decode is counted and dropped without
// touching the state.
func eventHandler[E any](c *Client, apply func(*SessionState, *E)) dispatch.Handler {
	return func(payload json.RawMessage) {
		ev := new(E)
		if err := json.Unmarshal(payload, ev); err != nil {
			decodeErrorsTotal.Inc()
			c.logger.Warn("dropping malformed event payload", log.Error(err))
			return
		}

		c.stateMu.Lock()
		apply(&c.state, ev)
		c.stateMu.Unlock()
	}
}
