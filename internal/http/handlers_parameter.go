package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeParameters(mux *http.ServeMux) {
	s.handle(mux, "POST /api/parameter", s.handleParameterCreate)
	s.handle(mux, "GET /api/parameter", s.handleParameterList)
	s.handle(mux, "GET /api/parameter/{name}", s.handleParameterGet)
	s.handle(mux, "PUT /api/parameter/{name}", s.handleParameterUpdate)
	s.handle(mux, "DELETE /api/parameter/{name}", s.handleParameterDelete)
}

func (s *Server) handleParameterCreate(w http.ResponseWriter, r *http.Request) {
	var parameter core.Parameter
	if err := decodeJSON(r, &parameter); err != nil {
		badRequest(w, "invalid parameter payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Parameters.Create(r.Context(), parameter), http.StatusCreated)
}

func (s *Server) handleParameterList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Parameters.List(r.Context()), http.StatusOK)
}

func (s *Server) handleParameterGet(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Parameters.Get(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleParameterUpdate(w http.ResponseWriter, r *http.Request) {
	var parameter core.Parameter
	if err := decodeJSON(r, &parameter); err != nil {
		badRequest(w, "invalid parameter payload: "+err.Error())
		return
	}
	parameter.Name = r.PathValue("name")
	writeResult(w, s.svc.Parameters.Update(r.Context(), parameter), http.StatusOK)
}

func (s *Server) handleParameterDelete(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Parameters.Delete(r.Context(), r.PathValue("name")), http.StatusNoContent)
}
