package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeValidationAmounts(mux *http.ServeMux) {
	s.handle(mux, "POST /api/validation-amount/{name}", s.handleValidationAmountCreate)
	s.handle(mux, "GET /api/validation-amount/{name}", s.handleValidationAmountList)
	s.handle(mux, "GET /api/validation-amount/{name}/latest", s.handleValidationAmountLatest)
}

func (s *Server) handleValidationAmountCreate(w http.ResponseWriter, r *http.Request) {
	var v core.ValidationAmount
	if err := decodeJSON(r, &v); err != nil {
		badRequest(w, "invalid validation amount payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Validations.Create(r.Context(), r.PathValue("name"), v), http.StatusCreated)
}

func (s *Server) handleValidationAmountList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Validations.ListByAccount(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleValidationAmountLatest(w http.ResponseWriter, r *http.Request) {
	state := core.ParseTransactionState(r.URL.Query().Get("state"))
	writeResult(w, s.svc.Validations.Latest(r.Context(), r.PathValue("name"), state), http.StatusOK)
}
