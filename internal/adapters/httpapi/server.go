package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campus-carpool/rides-api/internal/app/rides"
	"github.com/campus-carpool/rides-api/internal/domain"
)

// Server adapts the rides service to the HTTP surface. Paths and field names
// follow the legacy mobile API so existing clients keep working.
type Server struct {
	svc *rides.Service
}

func NewServer(svc *rides.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) routes(r chi.Router) {
	r.Get("/ride/all", s.handleListAll)
	r.Get("/ride/validateDuplicate", s.handleValidateDuplicate)
	r.Get("/ride/getMyActiveRides", s.handleMyActiveRides)
	r.Get("/ride/getRidesHistory", s.handleHistory)
	r.Get("/ride/getRidesHistoryCount/{id}", s.handleHistoryCount)
	r.Get("/ride/getRequesters/{id}", s.handleGetRequesters)

	r.Post("/ride", s.handleCreateRide)
	r.Post("/ride/requestJoin", s.handleRequestJoin)
	r.Post("/ride/answerJoinRequest", s.handleAnswerJoinRequest)
	r.Post("/ride/leaveRide", s.handleLeaveRide)
	r.Post("/ride/finishRide", s.handleFinishRide)
	r.Post("/ride/saveFeedback", s.handleSaveFeedback)
	r.Post("/ride/{id}/chat", s.handleChat)

	r.Delete("/ride/{id}", s.handleDeleteRide)
	r.Delete("/ride/allFromRoutine/{id}", s.handleDeleteRoutine)
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.ListUpcomingRides(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := make([]rideWithDriverJSON, 0, len(out))
	for _, rd := range out {
		resp = append(resp, toRideWithDriverJSON(rd))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidateDuplicate(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	q := r.URL.Query()
	date, err := parseDateTime(q.Get("date"), q.Get("time"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	going := parseBool(q.Get("going"), true)

	res, err := s.svc.ValidateDuplicate(r.Context(), caller, date, going)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResultJSON{
		Valid:   res.Valid,
		Status:  string(res.Status),
		Message: res.Message,
	})
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}

	date, err := parseDateTime(req.MyDate, req.MyTime)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	in := rides.CreateRideInput{
		Zone:         req.MyZone,
		Neighborhood: req.Neighborhood,
		Going:        req.Going,
		Place:        req.Place,
		Route:        req.Route,
		Description:  req.Description,
		Hub:          req.Hub,
		Slots:        req.Slots,
		Date:         date,
	}
	if req.WeekDays != nil {
		wd, err := parseWeekDays(*req.WeekDays)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		in.WeekDays = wd
	}
	if req.RepeatsUntil != nil {
		t := req.RepeatsUntil.Time.UTC()
		in.RepeatsUntil = &t
	}

	created, err := s.svc.CreateRide(r.Context(), caller, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := make([]rideJSON, 0, len(created))
	for _, rd := range created {
		resp = append(resp, toRideJSON(rd))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteRide(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	if err := s.svc.DeleteRide(r.Context(), domain.RideID(chi.URLParam(r, "id")), caller); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	if err := s.svc.DeleteRoutine(r.Context(), domain.RideID(chi.URLParam(r, "id")), caller); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestJoin(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req rideRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RideID == "" {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "rideId is required", nil)
		return
	}
	if err := s.svc.RequestJoin(r.Context(), domain.RideID(req.RideID), caller); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetRequesters(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	users, err := s.svc.GetRequesters(r.Context(), domain.RideID(chi.URLParam(r, "id")), caller)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := make([]userJSON, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserJSON(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnswerJoinRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req answerJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RideID == "" || req.UserID == "" {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "rideId and userId are required", nil)
		return
	}
	err := s.svc.AnswerJoinRequest(r.Context(), domain.RideID(req.RideID), caller, domain.UserID(req.UserID), req.Accepted)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaveRide(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req rideRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RideID == "" {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "rideId is required", nil)
		return
	}
	if err := s.svc.LeaveRide(r.Context(), domain.RideID(req.RideID), caller); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishRide(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req rideRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RideID == "" {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "rideId is required", nil)
		return
	}
	if err := s.svc.FinishRide(r.Context(), domain.RideID(req.RideID), caller); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}
	err := s.svc.SendChatMessage(r.Context(), domain.RideID(chi.URLParam(r, "id")), caller, req.Message)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RideID == "" {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "rideId is required", nil)
		return
	}
	if err := s.svc.SaveFeedback(r.Context(), domain.RideID(req.RideID), caller, req.Feedback); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyActiveRides(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	out, err := s.svc.GetMyActiveRides(r.Context(), caller)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := make([]rideWithDriverJSON, 0, len(out))
	for _, rd := range out {
		resp = append(resp, toRideWithDriverJSON(rd))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing caller", nil)
		return
	}
	out, err := s.svc.GetHistory(r.Context(), caller)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := make([]rideDetailsJSON, 0, len(out))
	for _, d := range out {
		resp = append(resp, toRideDetailsJSON(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistoryCount(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.GetHistoryCounts(r.Context(), domain.UserID(chi.URLParam(r, "id")))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyCountsJSON{
		OfferedCount: counts.OfferedCount,
		TakenCount:   counts.TakenCount,
	})
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}
