// Package handler exposes the flow actions over HTTP.
package handler

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"kisanmitra/internal/action"
	"kisanmitra/internal/gateway/repository/media"
	"kisanmitra/internal/gateway/repository/runlog"
	"kisanmitra/internal/llm"
)

// ServiceName is the Connect service every flow procedure hangs off.
const ServiceName = "kisanmitra.v1.FlowService"

// Service serves the flow procedures, the assistant socket and the debug
// endpoints.
type Service struct {
	gate  *action.Gate
	runs  runlog.Store
	media media.Store
	usage *llm.UsageLedger
	log   *zap.Logger

	// pongWait is how long the assistant socket waits for a client frame.
	pongWait time.Duration
}

// NewService wires the handlers. archive may be nil, in which case
// /debug/media answers 404.
func NewService(gate *action.Gate, runs runlog.Store, archive media.Store, usage *llm.UsageLedger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gate: gate, runs: runs, media: archive, usage: usage, log: logger, pongWait: assistantWSPongWait}
}

// Procedure returns the Connect path for a flow, e.g.
// "/kisanmitra.v1.FlowService/GetMarketPrice".
func Procedure(flow string) string {
	r := []rune(strings.TrimSpace(flow))
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return "/" + ServiceName + "/" + string(r)
}

// BuildMux registers every handler on a new ServeMux.
func BuildMux(s *Service) *http.ServeMux {
	mux := http.NewServeMux()
	for _, name := range s.gate.Flows() {
		mux.Handle(Procedure(name), s.flowHandler(name))
	}
	mux.HandleFunc("/ws/assistant", s.HandleAssistantWS)
	mux.HandleFunc("/v1/flows", s.HandleFlows)
	mux.HandleFunc("/healthz", s.HandleHealth)
	mux.HandleFunc("/debug/flow-runs", s.HandleFlowRuns)
	mux.HandleFunc("/debug/media", s.HandleMedia)
	return mux
}
