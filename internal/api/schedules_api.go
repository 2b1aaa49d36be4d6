package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vigil/internal/export"
	"vigil/internal/metrics"
	"vigil/internal/model"
	"vigil/internal/view"
)

// SlotResponse represents a slot in API responses. Slot passcodes never
// leave the server.
type SlotResponse struct {
	Time     string    `json:"time"`
	DateTime time.Time `json:"date_time"`
	IsBooked bool      `json:"is_booked"`
	BookedBy string    `json:"booked_by,omitempty"`
}

// DayGroupResponse is one calendar day's slot bucket.
type DayGroupResponse struct {
	Day   string         `json:"day"`
	Slots []SlotResponse `json:"slots"`
}

// ScheduleResponse represents a schedule with day-grouped slots.
type ScheduleResponse struct {
	ID          string             `json:"id"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	StartHour   int                `json:"start_hour"`
	EndHour     int                `json:"end_hour"`
	SummarySent bool               `json:"summary_sent"`
	AllBooked   bool               `json:"all_booked"`
	Days        []DayGroupResponse `json:"days"`
	Booked      []SlotResponse     `json:"booked"`
}

// CreateScheduleRequest is the request body for POST /api/schedules.
type CreateScheduleRequest struct {
	StartDate string `json:"start_date"`           // Format: YYYY-MM-DD
	EndDate   string `json:"end_date,omitempty"`   // Defaults to start_date
	StartHour *int   `json:"start_hour,omitempty"` // Defaults from config
	EndHour   *int   `json:"end_hour,omitempty"`
}

// SlotMutationRequest is the request body for claim/free/edit calls.
type SlotMutationRequest struct {
	DateTime time.Time `json:"date_time"`
	Name     string    `json:"name,omitempty"`
	Password string    `json:"password,omitempty"`
}

func toSlotResponse(s model.Slot) SlotResponse {
	return SlotResponse{
		Time:     s.Label(),
		DateTime: s.StartsAt,
		IsBooked: s.IsBooked(),
		BookedBy: s.BookedBy(),
	}
}

func toScheduleResponse(s *model.Schedule, filtered []model.Slot) ScheduleResponse {
	resp := ScheduleResponse{
		ID:          s.ID,
		StartDate:   s.StartDate.Format(model.DayFormat),
		EndDate:     s.EndDate.Format(model.DayFormat),
		StartHour:   s.StartHour,
		EndHour:     s.EndHour,
		SummarySent: s.SummarySent,
		AllBooked:   s.AllSlotsBooked(),
		Days:        []DayGroupResponse{},
		Booked:      []SlotResponse{},
	}
	for _, group := range view.GroupByDay(filtered) {
		day := DayGroupResponse{Day: group.Label}
		for _, slot := range group.Slots {
			day.Slots = append(day.Slots, toSlotResponse(slot))
		}
		resp.Days = append(resp.Days, day)
	}
	for _, slot := range view.BookedSlots(s) {
		resp.Booked = append(resp.Booked, toSlotResponse(slot))
	}
	return resp
}

// handleSchedules lists schedules or creates one.
// GET /api/schedules | POST /api/schedules
func (s *HTTPServer) handleSchedules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("schedules_list")
		schedules, err := s.manager.ListSchedules(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]ScheduleResponse, 0, len(schedules))
		for i := range schedules {
			out = append(out, toScheduleResponse(&schedules[i], schedules[i].Slots))
		}
		writeJSON(w, http.StatusOK, map[string]any{"schedules": out})

	case http.MethodPost:
		metrics.IncHTTP("schedules_create")
		if !s.isAdmin(r) {
			writeError(w, http.StatusForbidden, "admin password required")
			return
		}

		var req CreateScheduleRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		startDate, err := time.Parse(model.DayFormat, req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
			return
		}
		endDate := startDate
		if req.EndDate != "" {
			endDate, err = time.Parse(model.DayFormat, req.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
				return
			}
		}
		startHour := s.defaultStartHour
		if req.StartHour != nil {
			startHour = *req.StartHour
		}
		endHour := s.defaultEndHour
		if req.EndHour != nil {
			endHour = *req.EndHour
		}

		schedule, err := s.manager.CreateSchedule(r.Context(), startDate, endDate, startHour, endHour)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toScheduleResponse(schedule, schedule.Slots))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleActiveSchedule returns the schedule selected for a reference day.
// GET /api/schedules/active?date=YYYY-MM-DD
func (s *HTTPServer) handleActiveSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule_active")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	day := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse(model.DayFormat, dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	cacheKey := "view:active:" + day.Format(model.DayFormat)
	if cached, ok := s.readCache(r.Context(), cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	schedule, err := s.manager.ActiveSchedule(r.Context(), day)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if schedule == nil {
		writeError(w, http.StatusNotFound, "no current or upcoming schedule")
		return
	}

	resp := toScheduleResponse(schedule, schedule.Slots)
	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeCache(r.Context(), cacheKey, body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleScheduleSubtree routes /api/schedules/{id}[/{action}].
func (s *HTTPServer) handleScheduleSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/schedules/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	if parts[0] == "" {
		writeError(w, http.StatusNotFound, "schedule id required")
		return
	}
	id := parts[0]
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		s.handleSchedule(w, r, id)
	case "claim":
		s.handleClaim(w, r, id)
	case "free":
		s.handleFree(w, r, id)
	case "booking":
		s.handleEditBooking(w, r, id)
	case "summary":
		s.handleSummary(w, r, id)
	case "export":
		s.handleExport(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
	}
}

// handleSchedule reads or deletes one schedule.
// GET /api/schedules/{id}?from=YYYY-MM-DD&to=YYYY-MM-DD | DELETE /api/schedules/{id}
func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("schedule_get")
		schedule, err := s.manager.GetSchedule(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		var from, to *time.Time
		if v := r.URL.Query().Get("from"); v != "" {
			parsed, err := time.Parse(model.DayFormat, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid from date")
				return
			}
			from = &parsed
		}
		if v := r.URL.Query().Get("to"); v != "" {
			parsed, err := time.Parse(model.DayFormat, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid to date")
				return
			}
			to = &parsed
		}

		writeJSON(w, http.StatusOK, toScheduleResponse(schedule, view.FilterByRange(schedule, from, to)))

	case http.MethodDelete:
		metrics.IncHTTP("schedule_delete")
		if !s.isAdmin(r) {
			writeError(w, http.StatusForbidden, "admin password required")
			return
		}
		if err := s.manager.DeleteSchedule(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleClaim books a slot for a member.
// POST /api/schedules/{id}/claim
func (s *HTTPServer) handleClaim(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("slot_claim")
	req, ok := decodeSlotMutation(w, r)
	if !ok {
		return
	}

	schedule, err := s.manager.ClaimSlot(r.Context(), id, req.DateTime, req.Name, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(schedule, schedule.Slots))
}

// handleFree releases a booked slot. Members supply the slot passcode;
// admins authenticate via header.
// POST /api/schedules/{id}/free
func (s *HTTPServer) handleFree(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("slot_free")
	req, ok := decodeSlotMutation(w, r)
	if !ok {
		return
	}

	schedule, err := s.manager.FreeSlot(r.Context(), id, req.DateTime, req.Password, s.isAdmin(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(schedule, schedule.Slots))
}

// handleEditBooking replaces the member name on a booked slot. Admin only.
// POST /api/schedules/{id}/booking
func (s *HTTPServer) handleEditBooking(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("slot_edit")
	if !s.isAdmin(r) {
		writeError(w, http.StatusForbidden, "admin password required")
		return
	}
	req, ok := decodeSlotMutation(w, r)
	if !ok {
		return
	}

	schedule, err := s.manager.EditBooking(r.Context(), id, req.DateTime, req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(schedule, schedule.Slots))
}

// handleSummary re-dispatches the completion summary on admin request and
// returns the composer link.
// POST /api/schedules/{id}/summary
func (s *HTTPServer) handleSummary(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("summary_redispatch")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	if !s.isAdmin(r) {
		writeError(w, http.StatusForbidden, "admin password required")
		return
	}

	if err := s.manager.RedispatchSummary(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"composer_link": s.dispatcher.LastLink()})
}

// handleExport streams the schedule's bookings as an xlsx workbook.
// GET /api/schedules/{id}/export
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request, id string) {
	metrics.IncHTTP("schedule_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.isAdmin(r) {
		writeError(w, http.StatusForbidden, "admin password required")
		return
	}

	schedule, err := s.manager.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=escala_%s.xlsx", schedule.ID))
	if err := export.Workbook(schedule, w); err != nil {
		s.logger.Error().Err(err).Str("schedule_id", id).Msg("export failed")
	}
}

func decodeSlotMutation(w http.ResponseWriter, r *http.Request) (*SlotMutationRequest, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return nil, false
	}
	var req SlotMutationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if req.DateTime.IsZero() {
		writeError(w, http.StatusBadRequest, "date_time is required")
		return nil, false
	}
	return &req, true
}

func (s *HTTPServer) readCache(ctx context.Context, key string) ([]byte, bool) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	val, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (s *HTTPServer) writeCache(ctx context.Context, key string, body []byte) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.redis.Set(ctx, key, body, s.cacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}
