package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeTransfers(mux *http.ServeMux) {
	s.handle(mux, "POST /api/transfer", s.handleTransferCreate)
	s.handle(mux, "GET /api/transfer", s.handleTransferList)
	s.handle(mux, "GET /api/transfer/{id}", s.handleTransferGet)
	s.handle(mux, "DELETE /api/transfer/{id}", s.handleTransferDelete)
}

func (s *Server) handleTransferCreate(w http.ResponseWriter, r *http.Request) {
	var transfer core.Transfer
	if err := decodeJSON(r, &transfer); err != nil {
		badRequest(w, "invalid transfer payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Transfers.Create(r.Context(), transfer), http.StatusCreated)
}

func (s *Server) handleTransferList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Transfers.List(r.Context()), http.StatusOK)
}

func (s *Server) handleTransferGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Transfers.Get(r.Context(), id), http.StatusOK)
}

func (s *Server) handleTransferDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Transfers.Delete(r.Context(), id), http.StatusNoContent)
}
