package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/trip-guide/internal/job"
	"github.com/jonathan/trip-guide/internal/preferences"
	"github.com/jonathan/trip-guide/internal/store"
	"github.com/jonathan/trip-guide/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

// maxBodySize bounds request bodies; preference payloads are small.
const maxBodySize = 1 << 20

// CreateTripRequest represents the request body for POST /trips
type CreateTripRequest struct {
	TripID        string         `json:"trip_id"`
	Destination   string         `json:"destination" validate:"required"`
	StartDate     string         `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string         `json:"end_date" validate:"required,datetime=2006-01-02"`
	TravelerCount int            `json:"traveler_count" validate:"omitempty,min=1"`
	Flights       []types.Flight `json:"flights,omitempty"`
	Hotels        []types.Hotel  `json:"hotels,omitempty"`
}

// GenerateResponse represents the response for POST /trips/{id}/generate
type GenerateResponse struct {
	job.Snapshot
	Started bool `json:"started"`
}

// tripRequestSchema rejects payloads whose shape is wrong before field
// validation runs, so clients get structural errors separately from
// value errors.
const tripRequestSchema = `{
	"type": "object",
	"required": ["destination", "start_date", "end_date"],
	"properties": {
		"trip_id": {"type": "string"},
		"destination": {"type": "string"},
		"start_date": {"type": "string"},
		"end_date": {"type": "string"},
		"traveler_count": {"type": "integer"},
		"flights": {"type": "array"},
		"hotels": {"type": "array"}
	}
}`

var tripSchemaLoader = gojsonschema.NewStringLoader(tripRequestSchema)

func decodeJSON(body []byte, v any) error {
	return json.NewDecoder(bytes.NewReader(body)).Decode(v)
}

// handleCreateTrip stores the facts for a new trip
func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := gojsonschema.Validate(tripSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !result.Valid() {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+result.Errors()[0].String())
		return
	}

	var req CreateTripRequest
	if err := decodeJSON(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{
				Field:   verrs[0].Field(),
				Message: verrs[0].Tag(),
			}).Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	facts := &types.TripFacts{
		TripID:        req.TripID,
		Destination:   req.Destination,
		StartDate:     start,
		EndDate:       end,
		TravelerCount: req.TravelerCount,
		Flights:       req.Flights,
		Hotels:        req.Hotels,
	}
	if facts.TripID == "" {
		facts.TripID = uuid.New().String()
	}
	if facts.TravelerCount == 0 {
		facts.TravelerCount = 1
	}
	if err := facts.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.trips.PutTrip(r.Context(), facts); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save trip")
		return
	}

	s.jsonResponse(w, http.StatusCreated, facts)
}

// handleGetTrip returns the stored facts for a trip
func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	facts, err := s.trips.GetTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Trip not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, facts)
}

// handleDeleteTrip removes a trip and its guide
func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")
	if _, err := s.trips.GetTrip(r.Context(), tripID); err != nil {
		s.errorResponse(w, HTTPStatus(err), "Trip not found")
		return
	}
	if err := s.trips.DeleteTrip(r.Context(), tripID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete trip")
		return
	}
	if err := s.guides.DeleteGuide(r.Context(), tripID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete guide")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerate starts (or reports) guide generation for a trip. The body
// is the traveler's raw preference payload; any shape is accepted and
// normalized, an empty body means defaults. With ?force=true an in-flight
// run is superseded instead of reused.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	prefs := preferences.Normalize(raw)
	force := r.URL.Query().Get("force") == "true"

	snap, started, err := s.runs.Start(r.Context(), tripID, prefs, force)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Trip not found")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, GenerateResponse{Snapshot: snap, Started: started})
}

// handleGenerationStatus returns the current generation snapshot for a trip
func (s *Server) handleGenerationStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.runs.GetStatus(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "No generation job for trip")
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleListRuns returns recent generation run history for a trip
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.jsonResponse(w, http.StatusOK, []store.RunRecord{})
		return
	}
	recs, err := s.history.ListRuns(r.Context(), r.PathValue("id"), 20)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if recs == nil {
		recs = []store.RunRecord{}
	}
	s.jsonResponse(w, http.StatusOK, recs)
}

// handleGetGuide returns the generated guide for a trip. While a run is
// still in flight and no earlier guide exists, it answers 409 so clients
// know to keep watching the status endpoints.
func (s *Server) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")

	g, err := s.guides.GetGuide(r.Context(), tripID)
	if err == nil {
		s.jsonResponse(w, http.StatusOK, g)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to load guide")
		return
	}

	if snap, serr := s.runs.GetStatus(tripID); serr == nil && snap.Status == job.StatusRunning {
		s.errorResponse(w, HTTPStatus(&ErrGuideNotReady{TripID: tripID}), "Guide generation still running")
		return
	}
	s.errorResponse(w, http.StatusNotFound, "Guide not found")
}
