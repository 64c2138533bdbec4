package httpserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/malbaugh/ksuid-ts/internal/ledger"
	"github.com/malbaugh/ksuid-ts/internal/runtime"
	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
	logpkg "github.com/malbaugh/ksuid-ts/pkg/log"
)

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger logpkg.Logger
}

func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{rt: rt, logger: logger.WithComponent("http"), srv: &http.Server{Handler: cors(mux)}}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/ids", s.handleMint)
	mux.HandleFunc("/v1/ids/", s.handleInspect)
	mux.HandleFunc("/v1/streams", s.handleStreams)
	mux.HandleFunc("/v1/streams/next", s.handleStreamNext)
	mux.HandleFunc("/v1/streams/", s.handleStream)
	return s
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) maxBatch() int {
	if mb := s.rt.Config().MaxBatch; mb > 0 {
		return mb
	}
	return 1000
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mintReq
	// An empty body mints a single id.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 0 || req.Count > s.maxBatch() {
		writeError(w, http.StatusBadRequest, "count out of range")
		return
	}
	ids := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		id, err := ksuid.New()
		if err != nil {
			s.logger.Error("mint failed", logpkg.Err(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		ids = append(ids, id.String())
	}
	writeJSON(w, mintResp{IDs: ids})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/v1/ids/")
	id, err := ksuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, inspectResp{
		ID:        id.String(),
		Raw:       hex.EncodeToString(id.Bytes()),
		Time:      id.Time().UTC().Format(time.RFC3339),
		Timestamp: id.Timestamp(),
		Payload:   hex.EncodeToString(id.Payload()),
	})
}

func (s *Server) handleStreamNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req streamNextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 0 || req.Count > s.maxBatch() {
		writeError(w, http.StatusBadRequest, "count out of range")
		return
	}
	ids, err := s.rt.Ledger().NextN(req.Stream, req.Count)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	writeJSON(w, streamNextResp{Stream: req.Stream, IDs: out})
}

func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	names, err := s.rt.Ledger().Streams()
	if err != nil {
		s.logger.Error("list streams failed", logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, streamsResp{Streams: names})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/v1/streams/")
	info, err := s.rt.Ledger().Stream(name)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	min, max, err := s.rt.Ledger().Bounds(name)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, streamResp{
		Name:        info.Name,
		Seed:        info.Seed.String(),
		Count:       info.Count,
		Rotations:   info.Rotations,
		CreatedAtMs: info.CreatedAt.UnixMilli(),
		Min:         min.String(),
		Max:         max.String(),
	})
}

func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrStreamName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrStreamNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrStreamLimit):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Error("ledger request failed", logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
