package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"honeycomb/hive"
	"honeycomb/honeycomb"
	"honeycomb/layout"
	"honeycomb/relay"
	"honeycomb/ripple"
	"honeycomb/server/cell_views"
	"honeycomb/server/fastview"
	"honeycomb/server/root_view"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
)

const (
	shutdownGracePeriod = 5 * time.Second
	// Request bodies are single taps.
	maxBodySize = 1024
)

// Server serves the honeycomb page, one websocket per open page, and a small json api.
// Every page reads frames from the same hive; taps from any page ripple on all of them.
type Server struct {
	addr            string
	hive            *hive.Hive
	publishInterval time.Duration
	convert         func(hive.Frame) cell_views.Grid
	router          *mux.Router
	logger          *log.Logger
}

func NewServer(
	addr string,
	h *hive.Hive,
	publishInterval time.Duration,
	logger *log.Logger,
) *Server {
	if logger == nil {
		logger = log.Default()
	}
	server := &Server{
		addr:            addr,
		hive:            h,
		publishInterval: publishInterval,
		convert:         cell_views.Converter(h.Layout()),
		logger:          logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket).Methods(http.MethodGet)
	router.HandleFunc("/healthz", server.serveHealth).Methods(http.MethodGet)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/layout", server.serveLayout).Methods(http.MethodGet)
	api.HandleFunc("/cells", server.serveCells).Methods(http.MethodGet)
	api.HandleFunc("/taps", server.postTap).Methods(http.MethodPost)
	api.HandleFunc("/theme", server.postTheme).Methods(http.MethodPost)
	server.router = router

	return server
}

// Handler returns the server's routes.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until ctx is done, then shuts down. Request contexts derive from ctx,
// so open websockets are closed on shutdown too.
func (server *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              server.addr,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		server.logger.Printf("server: listening on %s", server.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// frames samples the hive once per publish interval until done.
func (server *Server) frames(done <-chan struct{}) <-chan hive.Frame {
	frames := make(chan hive.Frame)
	go func() {
		defer close(frames)
		for range channerics.NewTicker(done, server.publishInterval) {
			select {
			case frames <- server.hive.Frame():
			case <-done:
				return
			}
		}
	}()
	return frames
}

// serveWebsocket streams element updates to one page and applies the page's taps.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rootView, err := root_view.NewRootView(ctx, server.frames(ctx.Done()), server.convert, server.publishInterval)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	cli, err := fastview.NewClient(id, rootView.Updates(), server.onMessage(id), w, r)
	if err != nil {
		server.logger.Println("upgrade:", err)
		return
	}

	server.logger.Printf("server: client %s connected", id)
	if err := cli.Sync(); err != nil {
		server.logger.Printf("server: client %s: %v", id, err)
	}
	server.logger.Printf("server: client %s disconnected", id)
}

// onMessage applies a page's tap and theme messages. Malformed messages and taps
// outside the grid are logged and dropped; the connection stays up.
func (server *Server) onMessage(clientId string) fastview.MessageHandler {
	return func(ctx context.Context, payload []byte) error {
		e, err := relay.Decode(payload)
		if err != nil {
			server.logger.Printf("server: client %s: %v", clientId, err)
			return nil
		}

		switch e.Kind {
		case relay.KindTap:
			err = server.hive.Tap(ctx, e.Address())
		case relay.KindTheme:
			err = server.hive.ToggleTheme(ctx)
		}
		if errors.Is(err, honeycomb.ErrInvalidAddress) {
			server.logger.Printf("server: client %s: %v", clientId, err)
			return nil
		}
		return err
	}
}

// serveIndex renders the page with the grid's current state.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The page's views are only parsed here, so they get a source that never sends.
	rootView, err := root_view.NewRootView(ctx, make(chan hive.Frame), server.convert, server.publishInterval)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderTemplate(w, rootView, server.convert(server.hive.Frame())); err != nil {
		server.logger.Println("render:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data any,
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}
	return t.Execute(w, data)
}

type layoutResponse struct {
	Shape     honeycomb.Shape     `json:"shape"`
	Footprint layout.Footprint    `json:"footprint"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	Cells     []layout.CellLayout `json:"cells"`
}

func (server *Server) serveLayout(w http.ResponseWriter, r *http.Request) {
	l := server.hive.Layout()
	server.writeJSON(w, http.StatusOK, layoutResponse{
		Shape:     l.Shape,
		Footprint: l.Footprint,
		Width:     l.Width,
		Height:    l.Height,
		Cells:     l.Cells(),
	})
}

type cellsResponse struct {
	Dark  bool               `json:"dark"`
	Cells []ripple.CellValue `json:"cells"`
}

func (server *Server) serveCells(w http.ResponseWriter, r *http.Request) {
	frame := server.hive.Frame()
	server.writeJSON(w, http.StatusOK, cellsResponse{Dark: frame.Dark, Cells: frame.Values})
}

func (server *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	server.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (server *Server) postTap(w http.ResponseWriter, r *http.Request) {
	var addr honeycomb.Address
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&addr); err != nil {
		server.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tap: " + err.Error()})
		return
	}

	err := server.hive.Tap(r.Context(), addr)
	switch {
	case errors.Is(err, honeycomb.ErrInvalidAddress):
		server.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case err != nil:
		server.logger.Printf("server: tap %v: %v", addr, err)
		server.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		server.writeJSON(w, http.StatusAccepted, addr)
	}
}

func (server *Server) postTheme(w http.ResponseWriter, r *http.Request) {
	if err := server.hive.ToggleTheme(r.Context()); err != nil {
		server.logger.Printf("server: theme: %v", err)
		server.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (server *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		server.logger.Println("write:", err)
	}
}
