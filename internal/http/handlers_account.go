package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeAccounts(mux *http.ServeMux) {
	s.handle(mux, "POST /api/account", s.handleAccountCreate)
	s.handle(mux, "GET /api/account", s.handleAccountList)
	s.handle(mux, "GET /api/account/totals", s.handleAccountGrandTotals)
	s.handle(mux, "GET /api/account/{name}", s.handleAccountGet)
	s.handle(mux, "GET /api/account/{name}/totals", s.handleAccountTotals)
	s.handle(mux, "PUT /api/account/{name}", s.handleAccountUpdate)
	s.handle(mux, "POST /api/account/{name}/rename", s.handleAccountRename)
	s.handle(mux, "POST /api/account/{name}/deactivate", s.handleAccountDeactivate)
	s.handle(mux, "DELETE /api/account/{name}", s.handleAccountDelete)
}

func (s *Server) handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	var account core.Account
	if err := decodeJSON(r, &account); err != nil {
		badRequest(w, "invalid account payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Accounts.Create(r.Context(), account), http.StatusCreated)
}

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	writeResult(w, s.svc.Accounts.List(r.Context(), activeOnly), http.StatusOK)
}

func (s *Server) handleAccountGet(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Accounts.Get(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	var account core.Account
	if err := decodeJSON(r, &account); err != nil {
		badRequest(w, "invalid account payload: "+err.Error())
		return
	}
	account.NameOwner = r.PathValue("name")
	writeResult(w, s.svc.Accounts.Update(r.Context(), account), http.StatusOK)
}

func (s *Server) handleAccountRename(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewName string `json:"newName"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid rename payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Accounts.Rename(r.Context(), r.PathValue("name"), body.NewName), http.StatusOK)
}

func (s *Server) handleAccountDeactivate(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Accounts.Deactivate(r.Context(), r.PathValue("name")), http.StatusNoContent)
}

func (s *Server) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Accounts.Delete(r.Context(), r.PathValue("name")), http.StatusNoContent)
}

func (s *Server) handleAccountTotals(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Accounts.Totals(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleAccountGrandTotals(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Accounts.GrandTotals(r.Context()), http.StatusOK)
}
