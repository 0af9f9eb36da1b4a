package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perfenc/internal/common"
	"perfenc/internal/config"
	"perfenc/internal/perfevent"
)

const promMetricPrefix = "perfenc_"

// Server answers encode requests over HTTP and exports counters for them.
type Server struct {
	session  *common.Session
	registry *prometheus.Registry
	encodes  *prometheus.CounterVec
	pmuTypes prometheus.Gauge
}

// Response is the body of an /encode reply.
type Response struct {
	Results  []common.Result  `json:"results"`
	Failures []common.Failure `json:"failures"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(session *common.Session) *Server {
	s := &Server{
		session:  session,
		registry: prometheus.NewRegistry(),
		encodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: promMetricPrefix + "encodes_total",
				Help: "Event encodings by outcome and PMU",
			},
			[]string{"status", "pmu"},
		),
		pmuTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promMetricPrefix + "pmu_types",
			Help: "PMUs found in the kernel's type registry",
		}),
	}
	s.registry.MustRegister(s.encodes, s.pmuTypes)
	if err := session.Types.Build(); err != nil {
		slog.Warn("PMU type registry unavailable, types resolve to PERF_TYPE_RAW", slog.String("error", err.Error()))
	}
	s.pmuTypes.Set(float64(len(session.Types.Entries())))
	return s
}

// Handler routes /encode and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /encode", s.handleEncode)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// handleEncode encodes every event query parameter. plm and os override the
// server's defaults for this request only.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	events := query["event"]
	if len(events) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing event parameter"})
		return
	}
	session := *s.session
	if query.Has("plm") {
		plm, err := config.ParsePLM(query.Get("plm"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		session.PLM = plm
	}
	if query.Has("os") {
		layer, err := perfevent.ParseOS(query.Get("os"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		session.OS = layer
	}
	results, failures := session.EncodeAll(events)
	for _, res := range results {
		s.encodes.WithLabelValues("ok", res.PMU).Inc()
	}
	for _, f := range failures {
		s.encodes.WithLabelValues(f.Status, "").Inc()
	}
	resp := Response{Results: results, Failures: failures}
	if resp.Results == nil {
		resp.Results = []common.Result{}
	}
	if resp.Failures == nil {
		resp.Failures = []common.Failure{}
	}
	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", slog.String("error", err.Error()))
	}
}
