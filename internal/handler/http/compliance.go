package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ComplianceHandler interface {
	// Rules
	ListRules(w http.ResponseWriter, r *http.Request)
	CreateRule(w http.ResponseWriter, r *http.Request)
	UpdateRule(w http.ResponseWriter, r *http.Request)

	// Evaluation
	Evaluate(w http.ResponseWriter, r *http.Request)

	// Logs
	ListLogs(w http.ResponseWriter, r *http.Request)
	ResolveLog(w http.ResponseWriter, r *http.Request)
}

type complianceHandlerImpl struct {
	complianceService compliance.ComplianceService
}

func NewComplianceHandler(complianceService compliance.ComplianceService) ComplianceHandler {
	return &complianceHandlerImpl{complianceService: complianceService}
}

// ========== RULES ==========

func (h *complianceHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.complianceService.ListRules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *complianceHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req compliance.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.complianceService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compliance rule created", result)
}

func (h *complianceHandlerImpl) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Rule ID is required", nil)
		return
	}

	var req compliance.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.complianceService.UpdateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compliance rule updated", result)
}

// ========== EVALUATION ==========

// Evaluate checks every active rule against each employee's metrics for the
// requested window. Thresholds apply to the window totals, so
// max_hours_per_week only means a weekly limit when the window is one week.
func (h *complianceHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req compliance.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.complianceService.EvaluateCompliance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== LOGS ==========

func (h *complianceHandlerImpl) ListLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	filter := compliance.LogFilter{Page: page, Limit: limit}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if ruleID := r.URL.Query().Get("rule_id"); ruleID != "" {
		filter.RuleID = &ruleID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	result, err := h.complianceService.ListLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *complianceHandlerImpl) ResolveLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Log ID is required", nil)
		return
	}

	var req compliance.ResolveLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.complianceService.ResolveLog(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compliance log resolved", result)
}
