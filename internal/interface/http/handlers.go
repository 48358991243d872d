package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tuition-hub/tuition-fee-hub/internal/application/command"
	"github.com/tuition-hub/tuition-fee-hub/internal/application/query"
	"github.com/tuition-hub/tuition-fee-hub/internal/domain/shared"
	"github.com/tuition-hub/tuition-fee-hub/pkg/logger"
	"github.com/tuition-hub/tuition-fee-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROOT & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles requests to the root path.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "tuition-fee-hub",
		"version": "v1",
		"status":  "running",
		"endpoints": []string{
			"GET /health",
			"GET /api/v1/roster",
			"GET /api/v1/students/{id}/liability",
			"GET /api/v1/reminders/due",
			"POST /api/v1/students",
			"POST /api/v1/students/{id}/payments",
			"POST /api/v1/students/{id}/cancel",
			"PUT /api/v1/students/{id}/fee",
		},
	})
}

// handleHealth returns the full health status of the service.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())

	httpStatus := http.StatusOK
	if !status.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, status)
}

// handleReady returns readiness status for orchestration probes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", status.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive returns liveness status. Always OK while the process serves.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetRoster handles GET /api/v1/roster.
//
// Query parameters:
//   - as_of: reference date YYYY-MM-DD (default: today)
//   - include_cancelled: include students whose enrolment has ended
//   - page, page_size: pagination
func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetRosterHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Roster queries are not available")
		return
	}

	asOf, ok := parseAsOfParam(w, r)
	if !ok {
		return
	}

	q := query.GetRosterQuery{
		Today:            asOf,
		IncludeCancelled: getQueryParamBool(r, "include_cancelled"),
		Page:             getQueryParamInt(r, "page", 1),
		PageSize:         getQueryParamInt(r, "page_size", 50),
	}

	result, err := s.deps.GetRosterHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: result.TotalCount,
		Page:       q.Page,
		PageSize:   q.PageSize,
		HasMore:    q.Page*q.PageSize < result.TotalCount,
	})
}

// handleGetStudentLiability handles GET /api/v1/students/{id}/liability.
func (s *Server) handleGetStudentLiability(w http.ResponseWriter, r *http.Request) {
	studentID, ok := parseStudentIDPath(w, r)
	if !ok {
		return
	}

	if s.deps.GetStudentLiabilityHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Liability queries are not available")
		return
	}

	asOf, ok := parseAsOfParam(w, r)
	if !ok {
		return
	}

	result, err := s.deps.GetStudentLiabilityHandler.Handle(r.Context(), query.GetStudentLiabilityQuery{
		StudentID: studentID,
		Today:     asOf,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListDueReminders handles GET /api/v1/reminders/due.
//
// Query parameters:
//   - look_ahead_days: 0 (overdue only, default), 7, 14 or 30
//   - as_of: reference date YYYY-MM-DD (default: today)
func (s *Server) handleListDueReminders(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListDueRemindersHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Reminder queries are not available")
		return
	}

	asOf, ok := parseAsOfParam(w, r)
	if !ok {
		return
	}

	result, err := s.deps.ListDueRemindersHandler.Handle(r.Context(), query.ListDueRemindersQuery{
		LookAheadDays: getQueryParamInt(r, "look_ahead_days", 0),
		Today:         asOf,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// registerStudentRequest is the body of POST /api/v1/students.
type registerStudentRequest struct {
	DisplayName   string `json:"display_name"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	AdmissionDate string `json:"admission_date"`
	MonthlyFee    string `json:"monthly_fee"`
}

// handleRegisterStudent handles POST /api/v1/students.
func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterStudentHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Registrations are not available")
		return
	}

	var req registerStudentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterStudentHandler.Handle(r.Context(), command.RegisterStudentCommand{
		DisplayName:   req.DisplayName,
		Address:       req.Address,
		Phone:         req.Phone,
		AdmissionDate: req.AdmissionDate,
		MonthlyFee:    req.MonthlyFee,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"student_id":     result.StudentID.String(),
		"first_due_date": timeutil.FormatDateStr(result.FirstDueDate),
		"registered_at":  result.RegisteredAt,
	})
}

// recordPaymentRequest is the body of POST /api/v1/students/{id}/payments.
type recordPaymentRequest struct {
	MonthsToClear int `json:"months_to_clear"`
}

// handleRecordPayment handles POST /api/v1/students/{id}/payments.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	studentID, ok := parseStudentIDPath(w, r)
	if !ok {
		return
	}

	if s.deps.RecordPaymentHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Payments are not available")
		return
	}

	var req recordPaymentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordPaymentHandler.Handle(r.Context(), command.RecordPaymentCommand{
		StudentID:     studentID,
		MonthsToClear: req.MonthsToClear,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"payment_id":     result.PaymentID.String(),
		"paid_through":   timeutil.FormatDateStr(result.PaidThrough),
		"amount":         result.Amount,
		"pending_months": result.Liability.PendingMonths,
		"pending_amount": result.Liability.PendingAmount,
	})
}

// cancelStudentRequest is the body of POST /api/v1/students/{id}/cancel.
type cancelStudentRequest struct {
	CancellationDate string `json:"cancellation_date"`
}

// handleCancelStudent handles POST /api/v1/students/{id}/cancel.
func (s *Server) handleCancelStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := parseStudentIDPath(w, r)
	if !ok {
		return
	}

	if s.deps.CancelStudentHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Cancellations are not available")
		return
	}

	var req cancelStudentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := s.deps.CancelStudentHandler.Handle(r.Context(), command.CancelStudentCommand{
		StudentID:        studentID,
		CancellationDate: req.CancellationDate,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cancelled_on":   timeutil.FormatDateStr(result.CancelledOn),
		"pending_months": result.OutstandingLiability.PendingMonths,
		"pending_amount": result.OutstandingLiability.PendingAmount,
	})
}

// updateFeeRequest is the body of PUT /api/v1/students/{id}/fee.
type updateFeeRequest struct {
	MonthlyFee string `json:"monthly_fee"`
}

// handleUpdateFee handles PUT /api/v1/students/{id}/fee.
func (s *Server) handleUpdateFee(w http.ResponseWriter, r *http.Request) {
	studentID, ok := parseStudentIDPath(w, r)
	if !ok {
		return
	}

	if s.deps.UpdateMonthlyFeeHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Fee updates are not available")
		return
	}

	var req updateFeeRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := s.deps.UpdateMonthlyFeeHandler.Handle(r.Context(), command.UpdateMonthlyFeeCommand{
		StudentID:  studentID,
		MonthlyFee: req.MonthlyFee,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"old_fee": result.OldFee,
		"new_fee": result.NewFee,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST PARSING & ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// parseStudentIDPath extracts and validates the {id} path segment. On failure
// it writes the error response and returns false.
func parseStudentIDPath(w http.ResponseWriter, r *http.Request) (shared.StudentID, bool) {
	id, err := shared.NewStudentID(r.PathValue("id"))
	if err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_student_id",
			"Invalid student ID", err.Error())
		return "", false
	}
	return id, true
}

// parseAsOfParam reads the optional as_of reference date. Zero time means
// the current UTC date; malformed dates are rejected, never rounded.
func parseAsOfParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := getQueryParam(r, "as_of", "")
	if raw == "" {
		return time.Time{}, true
	}

	asOf, err := timeutil.ParseDate(raw)
	if err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_date",
			"Invalid as_of date, expected YYYY-MM-DD", err.Error())
		return time.Time{}, false
	}
	return asOf, true
}

// decodeJSONBody decodes a JSON request body. On failure it writes the error
// response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_body",
			"Invalid JSON request body", err.Error())
		return false
	}
	return true
}

// writeDomainError maps domain errors to HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONErrorWithDetails(w, http.StatusNotFound, "not_found",
			"Resource not found", err.Error())

	case shared.IsAlreadyExists(err):
		writeJSONErrorWithDetails(w, http.StatusConflict, "already_exists",
			"Resource already exists", err.Error())

	case errors.Is(err, shared.ErrStateTransition):
		writeJSONErrorWithDetails(w, http.StatusConflict, "invalid_state",
			"Operation not allowed in the current state", err.Error())

	case shared.IsValidation(err):
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "validation_error",
			"Invalid request", err.Error())

	default:
		s.logger.Error("request failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error",
			"An unexpected error occurred")
	}
}
