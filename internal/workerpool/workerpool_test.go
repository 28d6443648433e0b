package workerpool

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tomb "gopkg.in/tomb.v2"
)

func TestPool_RunDispatchesEachTaskOnce(t *testing.T) {
	p := New(3, nil)

	var processed int32
	var wg sync.WaitGroup
	wg.Add(5)

	handler := func(tb *tomb.Tomb, conn net.Conn) error {
		atomic.AddInt32(&processed, 1)
		wg.Done()
		return nil
	}

	tb, _ := tomb.WithContext(t.Context())
	tb.Go(func() error {
		p.Run(tb, handler)
		return nil
	})

	client, server := net.Pipe()
	defer client.Close()
	for i := 0; i < 5; i++ {
		p.AddTask(server)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tasks to be processed")
	}

	tb.Kill(nil)
	require.NoError(t, tb.Wait())
	assert.Equal(t, int32(5), atomic.LoadInt32(&processed))
}
