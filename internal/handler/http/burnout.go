package http

import (
	"net/http"
	"strings"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
)

type BurnoutHandler interface {
	Analyze(w http.ResponseWriter, r *http.Request)
}

type burnoutHandlerImpl struct {
	burnoutService burnout.BurnoutService
}

func NewBurnoutHandler(burnoutService burnout.BurnoutService) BurnoutHandler {
	return &burnoutHandlerImpl{burnoutService: burnoutService}
}

// Analyze reads period_start, period_end and an optional comma-separated
// employee_ids from the query string.
func (h *burnoutHandlerImpl) Analyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := burnout.AnalyzeRequest{
		PeriodStart: q.Get("period_start"),
		PeriodEnd:   q.Get("period_end"),
	}
	if ids := q.Get("employee_ids"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.EmployeeIDs = append(req.EmployeeIDs, id)
			}
		}
	}

	result, err := h.burnoutService.AnalyzeBurnout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
