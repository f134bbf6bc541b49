package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/flip"
	"github.com/oshokin/flipclock/internal/logger"
	"github.com/oshokin/flipclock/internal/scheduler"
)

type handler struct {
	service Service
}

type clockResponse struct {
	Digits   string               `json:"digits"`
	Flipping [flip.SlotCount]bool `json:"flipping"`
	Date     string               `json:"date"`
	Time     string               `json:"time"`
}

type alarmResponse struct {
	Index  int    `json:"index"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label"`
}

// addRequest keeps raw text so validation matches the other entry points.
type addRequest struct {
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) clock(w http.ResponseWriter, _ *http.Request) {
	now := h.service.Now()
	slots := h.service.Slots()

	resp := clockResponse{
		Date: flip.Readout(now),
		Time: now.Format(time.TimeOnly),
	}

	digits := make([]byte, 0, flip.SlotCount)
	for i, slot := range slots {
		digits = append(digits, slot.Front)
		resp.Flipping[i] = slot.Flipping
	}

	resp.Digits = string(digits)

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) listAlarms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toAlarmResponses(h.service.List()))
}

func (h *handler) addAlarm(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must be a JSON object"})

		return
	}

	entry, err := h.service.Add(r.Context(), req.Hour, req.Minute)
	switch {
	case err == nil:
	case alarm.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

		return
	default:
		logger.ErrorKV(r.Context(), "Failed to add alarm", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "unable to persist alarms"})

		return
	}

	for _, item := range toAlarmResponses(h.service.List()) {
		if item.Hour == entry.Hour && item.Minute == entry.Minute {
			writeJSON(w, http.StatusCreated, item)

			return
		}
	}

	writeJSON(w, http.StatusCreated, alarmResponse{Index: -1, Hour: entry.Hour, Minute: entry.Minute, Label: entry.String()})
}

func (h *handler) removeAlarm(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "index must be a number"})

		return
	}

	entry, err := h.service.Remove(r.Context(), index)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, alarmResponse{Index: index, Hour: entry.Hour, Minute: entry.Minute, Label: entry.String()})
	case errors.Is(err, scheduler.ErrIndexOutOfRange):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logger.ErrorKV(r.Context(), "Failed to remove alarm", "error", err, "index", index)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "unable to persist alarms"})
	}
}

func (h *handler) testAlarm(w http.ResponseWriter, r *http.Request) {
	at := h.service.TestFire(r.Context())

	writeJSON(w, http.StatusAccepted, alarmResponse{Index: -1, Hour: at.Hour, Minute: at.Minute, Label: at.String()})
}

func toAlarmResponses(entries []alarm.Entry) []alarmResponse {
	result := make([]alarmResponse, 0, len(entries))
	for i, entry := range entries {
		result = append(result, alarmResponse{
			Index:  i,
			Hour:   entry.Hour,
			Minute: entry.Minute,
			Label:  entry.String(),
		})
	}

	return result
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
