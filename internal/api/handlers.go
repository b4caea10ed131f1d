package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/analysis"
	"github.com/JakeFAU/sealevel/internal/animator"
	"github.com/JakeFAU/sealevel/internal/sealevel"
)

type datasetResponse struct {
	Source       string            `json:"source"`
	YearRange    string            `json:"year_range"`
	TotalRecords int               `json:"total_records"`
	Records      []sealevel.Record `json:"records"`
}

type pointsResponse struct {
	Policy      string           `json:"policy"`
	Subtitle    string           `json:"subtitle"`
	Limit       float64          `json:"limit"`
	TotalFrames int              `json:"total_frames"`
	Points      []animator.Point `json:"points"`
	Rings       []ringResponse   `json:"rings"`
}

type ringResponse struct {
	Radius float64 `json:"radius"`
	Label  string  `json:"label"`
}

type frameResponse struct {
	Policy      string              `json:"policy"`
	TotalFrames int                 `json:"total_frames"`
	Frame       animator.FrameState `json:"frame"`
}

// getDataset handles GET /v1/dataset. It returns 404 when no dataset exists.
func (s *Server) getDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.loadDataset(w, r)
	if !ok {
		return
	}
	ds = ds.Sorted()
	writeJSON(w, http.StatusOK, datasetResponse{
		Source:       ds.Source,
		YearRange:    ds.YearRangeLabel(),
		TotalRecords: ds.Len(),
		Records:      ds.Records,
	})
}

// listPoints handles GET /v1/frames/{policy}: the polar coordinates of every
// year under the named radius policy.
func (s *Server) listPoints(w http.ResponseWriter, r *http.Request) {
	policy, points, ok := s.loadPoints(w, r)
	if !ok {
		return
	}
	rings := make([]ringResponse, 0, len(policy.Rings()))
	for _, ring := range policy.Rings() {
		rings = append(rings, ringResponse{Radius: ring.Radius, Label: ring.Label})
	}
	writeJSON(w, http.StatusOK, pointsResponse{
		Policy:      policy.Name(),
		Subtitle:    policy.Subtitle(),
		Limit:       policy.Limit(),
		TotalFrames: animator.FrameCount(len(points), s.opts.HoldFrames),
		Points:      points,
		Rings:       rings,
	})
}

// getFrame handles GET /v1/frames/{policy}/{frame}. Frame indexes run from 0
// to total_frames-1; anything else is 404.
func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "frame"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "frame must be an integer")
		return
	}
	policy, points, ok := s.loadPoints(w, r)
	if !ok {
		return
	}
	total := animator.FrameCount(len(points), s.opts.HoldFrames)
	if index < 0 || index >= total {
		writeError(w, http.StatusNotFound, "frame out of range")
		return
	}
	writeJSON(w, http.StatusOK, frameResponse{
		Policy:      policy.Name(),
		TotalFrames: total,
		Frame:       animator.FrameAt(points, policy, index),
	})
}

// getAnalysis handles GET /v1/analysis.
func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.loadDataset(w, r)
	if !ok {
		return
	}
	summary, err := analysis.Summarize(ds, s.opts.Analysis)
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) loadPoints(w http.ResponseWriter, r *http.Request) (animator.RadiusPolicy, []animator.Point, bool) {
	name, err := animator.ParsePolicy(chi.URLParam(r, "policy"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	ds, ok := s.loadDataset(w, r)
	if !ok {
		return nil, nil, false
	}
	policy, err := animator.NewPolicy(name, ds)
	if err != nil {
		s.writeLoadError(w, r, err)
		return nil, nil, false
	}
	return policy, animator.ComputePoints(ds, policy), true
}

func (s *Server) loadDataset(w http.ResponseWriter, r *http.Request) (sealevel.Dataset, bool) {
	ds, err := s.source.Latest(r.Context())
	if err != nil {
		s.writeLoadError(w, r, err)
		return sealevel.Dataset{}, false
	}
	return ds, true
}

func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sealevel.ErrDatasetNotFound):
		writeError(w, http.StatusNotFound, "dataset not found")
	case errors.Is(err, sealevel.ErrEmptyDataset), errors.Is(err, analysis.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("load dataset failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
	}
}
