package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	competitionservice "litgb/contexts/contest-core/competition-service"
	comperrors "litgb/contexts/contest-core/competition-service/domain/errors"
	comphttp "litgb/contexts/contest-core/competition-service/transport/http"
	pollingengine "litgb/contexts/contest-core/polling-engine"
	pollerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
	pollhttp "litgb/contexts/contest-core/polling-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "litgb/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	competitions competitionservice.Module
	polling      pollingengine.Module
}

func New(
	competitions competitionservice.Module,
	polling pollingengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		competitions: competitions,
		polling:      polling,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /competitions", s.handleCreateCompetition)
	s.mux.HandleFunc("GET /competitions/{competition_id}", s.handleGetCompetition)
	s.mux.HandleFunc("PATCH /competitions/{competition_id}", s.handleUpdateCompetition)
	s.mux.HandleFunc("GET /competitions/{competition_id}/stat", s.handleCompetitionStat)
	s.mux.HandleFunc("POST /competitions/{competition_id}/join", s.handleJoinCompetition)
	s.mux.HandleFunc("POST /competitions/{competition_id}/leave", s.handleLeaveCompetition)
	s.mux.HandleFunc("POST /competitions/{competition_id}/files", s.handleSubmitFile)
	s.mux.HandleFunc("POST /competitions/{competition_id}/attach", s.handleAttachChat)
	s.mux.HandleFunc("POST /competitions/{competition_id}/cancel", s.handleCancelCompetition)
	s.mux.HandleFunc("GET /chats/{chat_id}/competitions", s.handleListChatCompetitions)
	s.mux.HandleFunc("GET /users/{user_id}/stats", s.handleUserStats)

	s.mux.HandleFunc("POST /competitions/{competition_id}/polling/ballot", s.handleCastBallot)
	s.mux.HandleFunc("PUT /competitions/{competition_id}/polling/draft", s.handleSetDraftSlot)
	s.mux.HandleFunc("GET /competitions/{competition_id}/polling/draft", s.handleGetDraft)
	s.mux.HandleFunc("POST /competitions/{competition_id}/polling/draft/apply", s.handleApplyDraft)
	s.mux.HandleFunc("DELETE /competitions/{competition_id}/polling/ballots", s.handleRetractBallots)
	s.mux.HandleFunc("GET /competitions/{competition_id}/polling/results", s.handlePollingResults)
	s.mux.HandleFunc("GET /competitions/{competition_id}/polling/voters", s.handlePollingVoters)
	s.mux.HandleFunc("GET /polling/schemas", s.handleListSchemas)
}

func (s *Server) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req comphttp.CreateCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.competitions.Handler.CreateCompetitionHandler(r.Context(), userID, req)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	resp, err := s.competitions.Handler.GetCompetitionHandler(r.Context(), compID)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req comphttp.UpdateCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.competitions.Handler.UpdateCompetitionHandler(r.Context(), compID, userID, req)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompetitionStat(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	resp, err := s.competitions.Handler.GetCompetitionStatHandler(r.Context(), compID)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJoinCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req comphttp.JoinCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.competitions.Handler.JoinCompetitionHandler(r.Context(), compID, userID, req)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaveCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := s.competitions.Handler.LeaveCompetitionHandler(r.Context(), compID, userID); err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitFile(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req comphttp.SubmitFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.competitions.Handler.SubmitFileHandler(r.Context(), compID, userID, req); err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachChat(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	var req comphttp.AttachChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.competitions.Handler.AttachChatHandler(r.Context(), compID, req)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelCompetition(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req comphttp.CancelCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.competitions.Handler.CancelCompetitionHandler(r.Context(), compID, userID, req); err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListChatCompetitions(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r, "chat_id")
	if !ok {
		return
	}
	resp, err := s.competitions.Handler.ListChatCompetitionsHandler(r.Context(), chatID)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	resp, err := s.competitions.Handler.GetUserStatsHandler(r.Context(), userID)
	if err != nil {
		writeCompetitionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req pollhttp.CastBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.polling.Handler.CastBallotHandler(r.Context(), compID, userID, req); err != nil {
		writePollingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDraftSlot(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req pollhttp.DraftSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePollingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.polling.Handler.SetDraftSlotHandler(r.Context(), compID, userID, req)
	if err != nil {
		writePollingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	resp, err := s.polling.Handler.GetDraftHandler(r.Context(), compID, userID)
	if err != nil {
		writePollingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApplyDraft(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := s.polling.Handler.ApplyDraftHandler(r.Context(), compID, userID); err != nil {
		writePollingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetractBallots(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := s.polling.Handler.RetractBallotsHandler(r.Context(), compID, userID); err != nil {
		writePollingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePollingResults(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	resp, err := s.polling.Handler.GetFileResultsHandler(r.Context(), compID)
	if err != nil {
		writePollingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollingVoters(w http.ResponseWriter, r *http.Request) {
	compID, ok := pathID(w, r, "competition_id")
	if !ok {
		return
	}
	resp, err := s.polling.Handler.CountVotersHandler(r.Context(), compID)
	if err != nil {
		writePollingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	resp, err := s.polling.Handler.ListSchemasHandler(r.Context())
	if err != nil {
		writePollingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_path_id", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-Id")
	if raw == "" {
		writeCompetitionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeCompetitionError(w, http.StatusBadRequest, "invalid_user", "X-User-Id must be a positive integer")
		return 0, false
	}
	return userID, true
}

func writeCompetitionDomainError(w http.ResponseWriter, err error) {
	switch {
	case comperrors.IsRule(err):
		writeCompetitionError(w, http.StatusUnprocessableEntity, "rule_violation", err.Error())
	case errors.Is(err, comperrors.ErrCompetitionNotFound):
		writeCompetitionError(w, http.StatusNotFound, "competition_not_found", err.Error())
	case errors.Is(err, comperrors.ErrFileNotFound):
		writeCompetitionError(w, http.StatusNotFound, "file_not_found", err.Error())
	case errors.Is(err, comperrors.ErrMemberNotFound):
		writeCompetitionError(w, http.StatusNotFound, "member_not_found", err.Error())
	case errors.Is(err, comperrors.ErrSchemaNotFound):
		writeCompetitionError(w, http.StatusNotFound, "schema_not_found", err.Error())
	case errors.Is(err, comperrors.ErrStageConflict):
		writeCompetitionError(w, http.StatusConflict, "stage_conflict", err.Error())
	case errors.Is(err, comperrors.ErrInvalidInput):
		writeCompetitionError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeCompetitionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePollingDomainError(w http.ResponseWriter, err error) {
	switch {
	case pollerrors.IsRule(err):
		writePollingError(w, http.StatusUnprocessableEntity, "rule_violation", err.Error())
	case errors.Is(err, pollerrors.ErrDraftNotFound):
		writePollingError(w, http.StatusNotFound, "draft_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrBallotNotFound):
		writePollingError(w, http.StatusNotFound, "ballot_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrResultsNotFound):
		writePollingError(w, http.StatusNotFound, "results_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrSchemaNotFound), errors.Is(err, pollerrors.ErrUnknownHandler):
		writePollingError(w, http.StatusNotFound, "schema_not_found", err.Error())
	case errors.Is(err, pollerrors.ErrConflict):
		writePollingError(w, http.StatusConflict, "conflict", err.Error())
	case comperrors.IsRule(err):
		writePollingError(w, http.StatusUnprocessableEntity, "rule_violation", err.Error())
	case errors.Is(err, comperrors.ErrCompetitionNotFound):
		writePollingError(w, http.StatusNotFound, "competition_not_found", err.Error())
	default:
		writePollingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeCompetitionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, comphttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writePollingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pollhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
