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

// Package transport owns a single TCP connection to the daemon and the
// background receive loop that delivers newline-delimited frames to a
// registered handler.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tombee/phdlink/internal/log"
)

var (
	// ErrAlreadyConnected is returned by Connect when a connection is active.
	ErrAlreadyConnected = errors.New("transport: already connected")

	// ErrNotConnected is returned by Send when no connection is active.
	ErrNotConnected = errors.New("transport: not connected")
)

// MessageHandler consumes one inbound frame, without its trailing newline.
// It runs synchronously on the receive goroutine; no two frames from the
// same connection are delivered concurrently.
type MessageHandler func(line []byte)

// DisconnectHandler is notified when the receive loop stops because of a
// socket-level failure or peer close. It is not invoked for a local
// Disconnect.
type DisconnectHandler func(err error)

// Config configures a Transport.
type Config struct {
	// DialTimeout bounds the TCP handshake.
	// Default: 10 seconds
	DialTimeout time.Duration

	// MaxLineSize is the largest inbound frame accepted before the
	// connection is considered broken.
	// Default: 1 MiB
	MaxLineSize int

	// Logger is the structured logger for transport events.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Transport manages one TCP connection at a time.
//
// Exactly one receive goroutine runs per active connection. Disconnect
// joins that goroutine before returning, so no frame belonging to a prior
// connection can be delivered after Disconnect returns.
type Transport struct {
	dialTimeout time.Duration
	maxLineSize int
	logger      *slog.Logger

	handler      MessageHandler
	onDisconnect DisconnectHandler

	mu        sync.Mutex
	conn      net.Conn
	connected bool
	closing   bool
	recvDone  chan struct{}

	// writeMu serializes Send calls so frames are written atomically
	// with respect to each other.
	writeMu sync.Mutex
}

// New creates a Transport with the given configuration.
func New(cfg *Config) *Transport {
	if cfg == nil {
		cfg = &Config{}
	}

	t := &Transport{
		dialTimeout: cfg.DialTimeout,
		maxLineSize: cfg.MaxLineSize,
		logger:      cfg.Logger,
	}

	if t.dialTimeout == 0 {
		t.dialTimeout = 10 * time.Second
	}
	if t.maxLineSize == 0 {
		t.maxLineSize = 1 << 20
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	t.logger = log.WithComponent(t.logger, "transport")

	return t
}

// SetMessageHandler installs the single consumer of inbound frames.
// It must be called before Connect for deterministic delivery of the
// first frame.
func (t *Transport) SetMessageHandler(handler MessageHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// SetDisconnectHandler installs the consumer of receive-loop failures.
// The handler in effect when Connect is called is the one notified for
// that connection; replacing it later does not affect a running loop.
func (t *Transport) SetDisconnectHandler(handler DisconnectHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDisconnect = handler
}

// Connect opens a TCP connection to addr and starts the receive loop.
// It blocks until the handshake completes, fails, or ctx is done.
// Connecting while already connected fails with ErrAlreadyConnected.
func (t *Transport) Connect(ctx context.Context, addr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return ErrAlreadyConnected
	}

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	connLogger := log.WithConnID(t.logger, uuid.New().String())

	t.conn = conn
	t.connected = true
	t.closing = false
	t.recvDone = make(chan struct{})

	connLogger.Info("connected", log.AddrKey, addr)
	connectsTotal.Inc()
	connectedGauge.Set(1)

	go t.receiveLoop(conn, t.handler, t.onDisconnect, t.recvDone, connLogger)

	return nil
}

// Disconnect signals the receive loop to stop, closes the socket, and
// waits for the loop to exit. Calling it while disconnected is a no-op.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil
	}
	t.closing = true
	conn := t.conn
	done := t.recvDone
	t.mu.Unlock()

	conn.Close()
	<-done

	return nil
}

// Send writes one frame, appending the newline terminator. Concurrent
// Send calls are serialized. It fails with ErrNotConnected when no
// connection is active.
func (t *Transport) Send(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	connected := t.connected
	t.mu.Unlock()

	if !connected {
		return ErrNotConnected
	}

	// Single Write call so the frame and its terminator cannot be
	// interleaved with another sender's bytes.
	framed := make([]byte, 0, len(data)+1)
	framed = append(framed, data...)
	framed = append(framed, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := conn.Write(framed); err != nil {
		sendErrorsTotal.Inc()
		return fmt.Errorf("transport: write: %w", err)
	}

	bytesSentTotal.Add(float64(len(framed)))
	return nil
}

// Connected reports whether a connection is active.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// receiveLoop reads frames from conn until the socket closes or fails.
// It owns exactly one connection; a fresh loop is started per Connect,
// with the handlers captured at Connect time.
func (t *Transport) receiveLoop(conn net.Conn, handler MessageHandler, onDisconnect DisconnectHandler, done chan struct{}, logger *slog.Logger) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), t.maxLineSize)

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		// The scanner reuses its buffer across frames; hand the
		// handler its own copy.
		line := make([]byte, len(raw))
		copy(line, raw)

		linesReceivedTotal.Inc()
		log.Trace(logger, "frame received", log.String("raw", string(line)))

		if handler != nil {
			handler(line)
		}
	}

	err := scanner.Err()

	t.mu.Lock()
	closing := t.closing
	if t.conn == conn {
		t.connected = false
		t.conn = nil
	}
	t.mu.Unlock()

	conn.Close()
	connectedGauge.Set(0)
	close(done)

	if closing {
		logger.Info("disconnected")
		return
	}

	if err == nil {
		err = fmt.Errorf("transport: connection closed by peer")
		logger.Info("connection closed by peer")
	} else {
		logger.Warn("receive failed", log.Error(err))
	}

	if onDisconnect != nil {
		onDisconnect(err)
	}
}
