package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routePayments(mux *http.ServeMux) {
	s.handle(mux, "POST /api/payment", s.handlePaymentCreate)
	s.handle(mux, "GET /api/payment", s.handlePaymentList)
	s.handle(mux, "GET /api/payment/{id}", s.handlePaymentGet)
	s.handle(mux, "DELETE /api/payment/{id}", s.handlePaymentDelete)
}

func (s *Server) handlePaymentCreate(w http.ResponseWriter, r *http.Request) {
	var payment core.Payment
	if err := decodeJSON(r, &payment); err != nil {
		badRequest(w, "invalid payment payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Payments.Create(r.Context(), payment), http.StatusCreated)
}

func (s *Server) handlePaymentList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Payments.List(r.Context()), http.StatusOK)
}

func (s *Server) handlePaymentGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Payments.Get(r.Context(), id), http.StatusOK)
}

func (s *Server) handlePaymentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Payments.Delete(r.Context(), id), http.StatusNoContent)
}
