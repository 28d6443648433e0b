package net

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"fenrir/internal/common"
	"fenrir/internal/logging"
	"fenrir/internal/workerpool"

	"github.com/google/uuid"
	tomb "gopkg.in/tomb.v2"
)

const (
	maxFrameSize       = 4 * 1024
	defaultWorkerCount = 10
	readDeadline       = 5 * time.Second
)

// Processor is the subset of engine.Engine the TCP driver depends on.
type Processor interface {
	Process(o common.Order) ([]common.MatchResult, error)
}

// clientSession tracks one accepted connection. sessionID is minted once
// per connection with google/uuid purely for log correlation — order_id
// stays the caller-supplied uint64 carried on the wire.
type clientSession struct {
	sessionID string
	conn      net.Conn
}

// inboundFrame pairs a decoded request with the connection it arrived on,
// so a single dispatcher goroutine can drive the Processor while many
// workers read and decode concurrently.
type inboundFrame struct {
	conn  net.Conn
	kind  MessageType
	order common.Order
}

// Server accepts TCP connections, decodes OrderEvent frames, drives a
// Processor, and writes reports back on the same connection. A worker
// pool and tomb supervise connection I/O; the client-session map records
// each open connection's session id, while reports are written directly
// on the connection that submitted the order.
//
// The Processor must never be called concurrently, so decoded frames
// are handed off to one dispatcher goroutine (dispatch) over inbound —
// the worker pool only ever does I/O and decoding, never calls the
// Processor itself.
type Server struct {
	address   string
	port      int
	processor Processor
	pool      *workerpool.Pool
	log       *logging.Logger

	sessionsMu sync.Mutex
	sessions   map[string]*clientSession

	inbound chan inboundFrame
}

// New returns a Server bound to address:port, driving processor. A nil
// logger disables tracing.
func New(address string, port int, processor Processor, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		address:   address,
		port:      port,
		processor: processor,
		pool:      workerpool.New(defaultWorkerCount, log),
		log:       log,
		sessions:  make(map[string]*clientSession),
		inbound:   make(chan inboundFrame, defaultWorkerCount),
	}
}

// Run listens and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		s.pool.Run(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		s.dispatch(t)
		return nil
	})

	s.log.Info().Str("address", listener.Addr().String()).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return t.Wait()
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return t.Wait()
				default:
					s.log.Error().Err(err).Msg("error accepting client")
					continue
				}
			}
			s.addSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

func (s *Server) addSession(conn net.Conn) *clientSession {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	session := &clientSession{sessionID: uuid.NewString(), conn: conn}
	s.sessions[conn.RemoteAddr().String()] = session
	s.log.Info().Str("session_id", session.sessionID).Str("address", conn.RemoteAddr().String()).Msg("client connected")
	return session
}

func (s *Server) removeSession(conn net.Conn) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, conn.RemoteAddr().String())
}

// handleConnection reads frames off conn until it closes or errors,
// handing each OrderEvent to the dispatcher, which processes it and
// writes the reports back on conn. It is a
// workerpool.Handler: one worker serves this connection for its whole
// lifetime, since the task is a live connection, not a one-shot buffer.
func (s *Server) handleConnection(t *tomb.Tomb, conn net.Conn) error {
	defer func() {
		conn.Close()
		s.removeSession(conn)
	}()

	buf := make([]byte, maxFrameSize)
	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readDeadline))
		n, err := conn.Read(buf)
		if err != nil {
			if err != io.EOF {
				s.log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("read error")
			}
			return nil
		}

		if err := s.handleFrame(conn, buf[:n]); err != nil {
			s.log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("frame error")
		}
	}
}

// handleFrame decodes a raw frame and, for an OrderEvent, hands it to the
// single dispatcher goroutine rather than calling the Processor here —
// this method may run on any of several worker goroutines concurrently.
func (s *Server) handleFrame(conn net.Conn, frame []byte) error {
	kind, order, err := DecodeMessage(frame)
	if err != nil {
		return s.writeError(conn, 0, "", err)
	}
	if kind == Heartbeat {
		return nil
	}

	select {
	case s.inbound <- inboundFrame{conn: conn, kind: kind, order: order}:
		return nil
	case <-time.After(readDeadline):
		return s.writeError(conn, order.OrderID, order.Instrument, fmt.Errorf("dispatcher backlogged"))
	}
}

// dispatch is the sole caller of Processor.Process, serializing every
// order event across all connections.
func (s *Server) dispatch(t *tomb.Tomb) {
	for {
		select {
		case <-t.Dying():
			return
		case f := <-s.inbound:
			results, err := s.processor.Process(f.order)
			if err != nil {
				if werr := s.writeError(f.conn, f.order.OrderID, f.order.Instrument, err); werr != nil {
					s.log.Error().Err(werr).Msg("writing error report")
				}
				continue
			}
			for _, r := range results {
				reportFrame, err := EncodeExecutionReport(r)
				if err != nil {
					s.log.Error().Err(err).Msg("encoding execution report")
					continue
				}
				if _, err := f.conn.Write(reportFrame); err != nil {
					s.log.Error().Err(err).Str("address", f.conn.RemoteAddr().String()).Msg("writing execution report")
				}
			}
		}
	}
}

func (s *Server) writeError(conn net.Conn, orderID uint64, instrument string, cause error) error {
	frame, err := EncodeErrorReport(orderID, instrument, cause)
	if err != nil {
		return err
	}
	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("writing error report: %w", err)
	}
	return nil
}
