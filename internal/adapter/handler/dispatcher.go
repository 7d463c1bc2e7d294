package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/service"
)

// Dispatcher accepts line protocol connections and runs one Session per
// connection. Sessions share nothing but the services.
type Dispatcher struct {
	users       *service.UserService
	catalog     *service.CatalogService
	carts       *service.CartService
	logger      *slog.Logger
	idleTimeout time.Duration

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewDispatcher(users *service.UserService, catalog *service.CatalogService, carts *service.CartService, logger *slog.Logger, idleTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		users:       users,
		catalog:     catalog,
		carts:       carts,
		logger:      logger,
		idleTimeout: idleTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections until ctx is cancelled. On return every open
// session has been closed and has finished.
func (d *Dispatcher) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	defer d.closeAll()

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				backoff = nextBackoff(backoff)
				d.logger.Warn("accept failed, retrying", "error", err, "backoff", backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		d.track(conn)
		d.wg.Add(1)
		go d.handle(ctx, conn)
	}
}

func (d *Dispatcher) handle(ctx context.Context, conn net.Conn) {
	defer d.wg.Done()
	defer d.untrack(conn)
	defer conn.Close()

	logger := d.logger.With("session_id", uuid.New().String(), "remote", conn.RemoteAddr().String())
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session panicked", "panic", r)
		}
	}()

	logger.Info("accepted client")
	session := NewSession(newNetLineConn(conn, d.idleTimeout), d.users, d.catalog, d.carts, logger)
	err := session.Run(ctx)

	var netErr net.Error
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		logger.Info("session ended")
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Info("session idle timeout")
	default:
		logger.Warn("session ended with transport error", "error", err)
	}
}

func (d *Dispatcher) track(conn net.Conn) {
	d.mu.Lock()
	d.conns[conn] = struct{}{}
	d.mu.Unlock()
}

func (d *Dispatcher) untrack(conn net.Conn) {
	d.mu.Lock()
	delete(d.conns, conn)
	d.mu.Unlock()
}

func (d *Dispatcher) closeAll() {
	d.mu.Lock()
	for conn := range d.conns {
		conn.Close()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return 5 * time.Millisecond
	}
	if current *= 2; current > time.Second {
		return time.Second
	}
	return current
}
