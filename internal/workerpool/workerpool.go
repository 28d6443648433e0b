// Package workerpool is a small fixed-size pool of supervised goroutines
// pulling connections off a channel, specialized to net.Conn tasks and
// taking its logger by injection.
package workerpool

import (
	"net"

	"fenrir/internal/logging"

	tomb "gopkg.in/tomb.v2"
)

const defaultTaskQueueSize = 100

// Handler processes one connection. A returned error is fatal and tears
// down the owning tomb.
type Handler func(t *tomb.Tomb, conn net.Conn) error

// Pool is a fixed-size set of workers draining a shared task channel.
type Pool struct {
	size  int
	tasks chan net.Conn
	log   *logging.Logger
}

// New returns a Pool with room for size concurrent workers. A nil logger
// disables tracing.
func New(size int, log *logging.Logger) *Pool {
	if log == nil {
		log = logging.Nop()
	}
	return &Pool{
		size:  size,
		tasks: make(chan net.Conn, defaultTaskQueueSize),
		log:   log,
	}
}

// AddTask enqueues a connection for a worker to pick up.
func (p *Pool) AddTask(conn net.Conn) {
	p.tasks <- conn
}

// Run starts size workers under t, each invoking handler once per task
// until t is dying. Run blocks until t is dying.
func (p *Pool) Run(t *tomb.Tomb, handler Handler) {
	p.log.Info().Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		t.Go(func() error {
			return p.worker(t, handler)
		})
	}
	<-t.Dying()
}

func (p *Pool) worker(t *tomb.Tomb, handler Handler) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case conn := <-p.tasks:
			if err := handler(t, conn); err != nil {
				p.log.Error().Err(err).Msg("worker exiting")
				return err
			}
		}
	}
}
