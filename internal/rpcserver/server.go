// Package rpcserver exposes the analyzer over JSON-RPC 2.0 so hosts in other
// languages can drive it through a pipe.
package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/cognicore/textkit/internal/logger"
	"github.com/cognicore/textkit/pkg/textkit"
	"github.com/cognicore/textkit/pkg/textkit/internalerr"
	"github.com/cognicore/textkit/pkg/textkit/store"
	"github.com/cognicore/textkit/pkg/textkit/textinput"
)

const (
	MethodCreate  = "analyzer.create"
	MethodAnalyze = "analyzer.analyze"
	MethodSummary = "analyzer.summary"
	MethodRelease = "analyzer.release"

	MethodArchiveGet   = "archive.get"
	MethodArchiveList  = "archive.list"
	MethodArchiveStats = "archive.stats"
)

type CreateResult struct {
	Handle string `json:"handle"`
}

type AnalyzeParams struct {
	Handle string `json:"handle,omitempty"` // empty uses the default analyzer
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// AnalyzeResult is the analysis plus its archive ID when archiving is on.
type AnalyzeResult struct {
	ID string `json:"id,omitempty"`
	textkit.Result
}

type SummaryParams struct {
	Text string `json:"text"`
}

type ReleaseParams struct {
	Handle string `json:"handle"`
}

type ReleaseResult struct {
	Released bool `json:"released"`
}

type GetParams struct {
	ID string `json:"id"`
}

type ListParams struct {
	Limit int `json:"limit,omitempty"`
}

// Options configures a Server. Only Analyzer is required.
type Options struct {
	// Analyzer serves requests that carry no handle.
	Analyzer *textkit.Analyzer
	// NewAnalyzer builds analyzers for analyzer.create. Defaults to the
	// built-in tables.
	NewAnalyzer func() (*textkit.Analyzer, error)
	// Archive, when set, stores every analysis.
	Archive store.Store
	Log     *slog.Logger
}

// Server dispatches JSON-RPC requests. Analyzers are immutable, so handles
// can be used from any number of connections at once.
type Server struct {
	def        atomic.Pointer[textkit.Analyzer]
	newAnalyze func() (*textkit.Analyzer, error)
	recorder   *store.Recorder
	archive    store.Store
	ids        *store.IDSource
	log        *slog.Logger

	mu      sync.RWMutex
	handles map[string]*textkit.Analyzer
}

func New(opts Options) *Server {
	s := &Server{
		newAnalyze: opts.NewAnalyzer,
		archive:    opts.Archive,
		ids:        store.NewIDSource(),
		log:        opts.Log,
		handles:    make(map[string]*textkit.Analyzer),
	}
	if s.log == nil {
		s.log = logger.ForComponent("rpc")
	}
	if s.newAnalyze == nil {
		s.newAnalyze = func() (*textkit.Analyzer, error) {
			return textkit.New(textkit.Options{}), nil
		}
	}
	def := opts.Analyzer
	if def == nil {
		def = textkit.New(textkit.Options{})
	}
	s.def.Store(def)
	if s.archive != nil {
		s.recorder = store.NewRecorder(def, s.archive)
	}
	return s
}

// SetDefault swaps the analyzer used for handle-less requests. Requests
// already running keep the analyzer they started with.
func (s *Server) SetDefault(a *textkit.Analyzer) {
	s.def.Store(a)
	s.log.Info("default analyzer replaced")
}

// Default returns the analyzer used for handle-less requests.
func (s *Server) Default() *textkit.Analyzer {
	return s.def.Load()
}

// Handles returns the number of live analyzer handles.
func (s *Server) Handles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handles)
}

// Serve speaks JSON-RPC over rwc until the peer disconnects or ctx is done.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	s.log.Info("connection opened")

	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		s.log.Info("connection closed")
		return nil
	}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	start := time.Now()
	result, err := s.dispatch(ctx, req)
	if err != nil {
		s.log.Debug("request failed", "method", req.Method, "error", err)
	} else {
		s.log.Debug("request handled", "method", req.Method, "elapsed", time.Since(start))
	}
	return result, err
}

func (s *Server) dispatch(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case MethodCreate:
		return s.create()

	case MethodAnalyze:
		var p AnalyzeParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.analyze(ctx, p)

	case MethodSummary:
		var p SummaryParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return textkit.Summarize(textinput.Sanitize(p.Text)), nil

	case MethodRelease:
		var p ReleaseParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.release(p.Handle), nil

	case MethodArchiveGet:
		if s.archive == nil {
			return nil, errNoArchive
		}
		var p GetParams
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		rec, err := s.archive.Get(ctx, p.ID)
		if errors.Is(err, internalerr.ErrNotFound) {
			return nil, invalidParams("unknown archive id: " + p.ID)
		}
		return rec, err

	case MethodArchiveList:
		if s.archive == nil {
			return nil, errNoArchive
		}
		var p ListParams
		if hasParams(req) {
			if err := decodeParams(req, &p); err != nil {
				return nil, err
			}
		}
		recs, err := s.archive.List(ctx, p.Limit)
		if recs == nil {
			recs = []store.Record{}
		}
		return recs, err

	case MethodArchiveStats:
		if s.archive == nil {
			return nil, errNoArchive
		}
		stats, err := s.archive.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return stats.Report(), nil
	}

	return nil, &jsonrpc2.Error{
		Code:    jsonrpc2.CodeMethodNotFound,
		Message: "method not found: " + req.Method,
	}
}

func (s *Server) create() (CreateResult, error) {
	a, err := s.newAnalyze()
	if err != nil {
		return CreateResult{}, err
	}
	id := s.ids.New(time.Now())

	s.mu.Lock()
	s.handles[id] = a
	s.mu.Unlock()

	return CreateResult{Handle: id}, nil
}

func (s *Server) release(handle string) ReleaseResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.handles[handle]
	delete(s.handles, handle)
	return ReleaseResult{Released: ok}
}

func (s *Server) lookup(handle string) (*textkit.Analyzer, error) {
	if handle == "" {
		return s.def.Load(), nil
	}
	s.mu.RLock()
	a, ok := s.handles[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, invalidParams("unknown analyzer handle: " + handle)
	}
	return a, nil
}

func (s *Server) analyze(ctx context.Context, p AnalyzeParams) (AnalyzeResult, error) {
	a, err := s.lookup(p.Handle)
	if err != nil {
		return AnalyzeResult{}, err
	}
	text := textinput.Sanitize(p.Text)

	if s.recorder == nil {
		return AnalyzeResult{Result: a.Analyze(text)}, nil
	}
	rec, err := s.recorder.RecordWith(ctx, a, p.Source, text)
	if err != nil {
		return AnalyzeResult{}, err
	}
	return AnalyzeResult{ID: rec.ID, Result: rec.Result}, nil
}

var errNoArchive = &jsonrpc2.Error{
	Code:    jsonrpc2.CodeMethodNotFound,
	Message: "archive not enabled",
}

func invalidParams(msg string) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: msg}
}

func hasParams(req *jsonrpc2.Request) bool {
	return req.Params != nil && string(*req.Params) != "null"
}

func decodeParams(req *jsonrpc2.Request, v any) error {
	if !hasParams(req) {
		return invalidParams("missing params")
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return invalidParams("invalid params: " + err.Error())
	}
	return nil
}
