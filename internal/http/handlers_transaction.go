package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeTransactions(mux *http.ServeMux) {
	s.handle(mux, "POST /api/transaction", s.handleTransactionCreate)
	s.handle(mux, "GET /api/transaction/{guid}", s.handleTransactionGet)
	s.handle(mux, "GET /api/transaction/account/{name}", s.handleTransactionList)
	s.handle(mux, "GET /api/transaction/account/totals/{name}", s.handleTransactionAccountTotals)
	s.handle(mux, "PUT /api/transaction/{guid}", s.handleTransactionUpdate)
	s.handle(mux, "PATCH /api/transaction/{guid}/state", s.handleTransactionUpdateState)
	s.handle(mux, "POST /api/transaction/{guid}/account", s.handleTransactionMove)
	s.handle(mux, "DELETE /api/transaction/{guid}", s.handleTransactionDelete)
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var tr core.Transaction
	if err := decodeJSON(r, &tr); err != nil {
		badRequest(w, "invalid transaction payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Transactions.Create(r.Context(), tr), http.StatusCreated)
}

func (s *Server) handleTransactionGet(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Transactions.Get(r.Context(), r.PathValue("guid")), http.StatusOK)
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Transactions.ListByAccount(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleTransactionAccountTotals(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Accounts.Totals(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	var tr core.Transaction
	if err := decodeJSON(r, &tr); err != nil {
		badRequest(w, "invalid transaction payload: "+err.Error())
		return
	}
	tr.GUID = r.PathValue("guid")
	writeResult(w, s.svc.Transactions.Update(r.Context(), tr), http.StatusOK)
}

func (s *Server) handleTransactionUpdateState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		State string `json:"transactionState"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid state payload: "+err.Error())
		return
	}
	state := core.TransactionState(body.State)
	writeResult(w, s.svc.Transactions.UpdateState(r.Context(), r.PathValue("guid"), state), http.StatusOK)
}

func (s *Server) handleTransactionMove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountNameOwner string `json:"accountNameOwner"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid move payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Transactions.MoveToAccount(r.Context(), r.PathValue("guid"), body.AccountNameOwner), http.StatusOK)
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Transactions.Delete(r.Context(), r.PathValue("guid")), http.StatusNoContent)
}
