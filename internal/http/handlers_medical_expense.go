package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"fintrack/internal/core"
)

func (s *Server) routeMedicalExpenses(mux *http.ServeMux) {
	s.handle(mux, "POST /api/medical-expense", s.handleMedicalExpenseCreate)
	s.handle(mux, "GET /api/medical-expense", s.handleMedicalExpenseList)
	s.handle(mux, "GET /api/medical-expense/{id}", s.handleMedicalExpenseGet)
	s.handle(mux, "GET /api/medical-expense/transaction/{id}", s.handleMedicalExpenseGetByTransaction)
	s.handle(mux, "GET /api/medical-expense/family-member/{id}", s.handleMedicalExpenseListByFamilyMember)
	s.handle(mux, "PUT /api/medical-expense/{id}", s.handleMedicalExpenseUpdate)
	s.handle(mux, "PATCH /api/medical-expense/{id}/claim-status", s.handleMedicalExpenseUpdateClaimStatus)
	s.handle(mux, "POST /api/medical-expense/{id}/paid", s.handleMedicalExpenseMarkPaid)
	s.handle(mux, "DELETE /api/medical-expense/{id}", s.handleMedicalExpenseDeactivate)
}

func (s *Server) handleMedicalExpenseCreate(w http.ResponseWriter, r *http.Request) {
	var expense core.MedicalExpense
	if err := decodeJSON(r, &expense); err != nil {
		badRequest(w, "invalid medical expense payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Medical.Create(r.Context(), expense), http.StatusCreated)
}

func (s *Server) handleMedicalExpenseList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Medical.List(r.Context()), http.StatusOK)
}

func (s *Server) handleMedicalExpenseGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Medical.Get(r.Context(), id), http.StatusOK)
}

func (s *Server) handleMedicalExpenseGetByTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Medical.GetByTransaction(r.Context(), id), http.StatusOK)
}

func (s *Server) handleMedicalExpenseListByFamilyMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Medical.ListByFamilyMember(r.Context(), id), http.StatusOK)
}

func (s *Server) handleMedicalExpenseUpdate(w http.ResponseWriter, r *http.Request) {
	var expense core.MedicalExpense
	if err := decodeJSON(r, &expense); err != nil {
		badRequest(w, "invalid medical expense payload: "+err.Error())
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	expense.MedicalExpenseID = id
	writeResult(w, s.svc.Medical.Update(r.Context(), expense), http.StatusOK)
}

func (s *Server) handleMedicalExpenseUpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClaimStatus string `json:"claimStatus"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid claim status payload: "+err.Error())
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	status := core.ClaimStatus(body.ClaimStatus)
	writeResult(w, s.svc.Medical.UpdateClaimStatus(r.Context(), id, status), http.StatusOK)
}

func (s *Server) handleMedicalExpenseMarkPaid(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an omitted paid date defaults to now.
	var body struct {
		PaidDate time.Time `json:"paidDate"`
	}
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid paid payload: "+err.Error())
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Medical.MarkPaid(r.Context(), id, body.PaidDate), http.StatusOK)
}

func (s *Server) handleMedicalExpenseDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Medical.Deactivate(r.Context(), id), http.StatusNoContent)
}
