package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer. Client messages are small json commands.
	maxMessageSize = 1024

	pingResolution = time.Millisecond * 500
	// The number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxMessageSize,
	WriteBufferSize: 4096,
}

// MessageHandler receives each text or binary message the web client sends.
// A returned error ends the connection.
type MessageHandler func(ctx context.Context, payload []byte) error

// Client publishes updates to one web client over a websocket and hands the
// client's messages to a handler.
type Client[T any] struct {
	id        string
	updates   <-chan T
	onMessage MessageHandler
	ws        *websock
	rootCtx   context.Context
}

// NewClient upgrades the request to a websocket. Every item of updates is written to
// the client in order; updates should already be batched to a sensible rate upstream.
// onMessage may be nil for publish-only clients.
func NewClient[T any](
	id string,
	updates <-chan T,
	onMessage MessageHandler,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return nil, err
	}
	ws.SetReadLimit(maxMessageSize)

	return &Client[T]{
		id:        id,
		updates:   updates,
		onMessage: onMessage,
		ws:        newWebsock(ws),
		rootCtx:   r.Context(),
	}, nil
}

func (cli *Client[T]) Id() string {
	return cli.id
}

// Sync runs the reader, the liveness check and the publisher until one of them fails
// or the request context ends, then closes the socket. It returns nil on an orderly
// disconnect.
func (cli *Client[T]) Sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})
	// Closing the socket is what unblocks a pending read.
	group.Go(func() error {
		<-groupCtx.Done()
		cli.ws.Close()
		return nil
	})

	err := group.Wait()
	if isClosure(err) {
		return nil
	}
	return err
}

var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// pingPong is the liveness check. The pong handler only runs while readMessages is reading.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				err = fmt.Errorf("ping failed: %w", err)
			}
			return
		})
}

// readMessages forwards client messages to the handler. Errors from websocket reads
// are permanent, so any error tears the client down.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		var payload []byte
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, payload, readErr = ws.ReadMessage()
				return
			})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		if cli.onMessage == nil || payload == nil {
			continue
		}
		if err := cli.onMessage(ctx, payload); err != nil {
			return err
		}
	}
}

func (cli *Client[T]) publish(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			if !ok {
				return nil
			}
			err := cli.ws.Write(
				ctx,
				func(ws *websocket.Conn) (writeErr error) {
					if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
						return fmt.Errorf("failed to set deadline: %w", writeErr)
					}
					if writeErr = ws.WriteJSON(updates); writeErr != nil {
						writeErr = fmt.Errorf("publish failed: %w", writeErr)
					}
					return
				})
			if err != nil {
				return err
			}
		}
	}
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

const closeGracePeriod = 100 * time.Millisecond

// websock serializes reads and writes to the websocket, which allows at most one
// concurrent reader and one concurrent writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebsock(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying websocket, for setup only.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame and closes the connection. Closing the connection also
// unblocks a reader stuck in ReadMessage, so Close takes only the write side.
func (sock *websock) Close() {
	sock.writeSem <- struct{}{}
	defer func() { <-sock.writeSem }()

	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.ws.Close()
}

// Read serializes read operations. A read blocks until a message arrives; the
// connection being closed is what ends it.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	}
}

// Write serializes write operations.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	}
}
