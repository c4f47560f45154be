package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeDescriptions(mux *http.ServeMux) {
	s.handle(mux, "POST /api/description", s.handleDescriptionCreate)
	s.handle(mux, "GET /api/description", s.handleDescriptionList)
	s.handle(mux, "GET /api/description/{name}", s.handleDescriptionGet)
	s.handle(mux, "POST /api/description/merge", s.handleDescriptionMerge)
	s.handle(mux, "POST /api/description/{name}/deactivate", s.handleDescriptionDeactivate)
	s.handle(mux, "DELETE /api/description/{name}", s.handleDescriptionDelete)
}

func (s *Server) handleDescriptionCreate(w http.ResponseWriter, r *http.Request) {
	var description core.Description
	if err := decodeJSON(r, &description); err != nil {
		badRequest(w, "invalid description payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Descriptions.Create(r.Context(), description), http.StatusCreated)
}

func (s *Server) handleDescriptionList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Descriptions.List(r.Context()), http.StatusOK)
}

func (s *Server) handleDescriptionGet(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Descriptions.Get(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleDescriptionMerge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SourceName string `json:"sourceName"`
		TargetName string `json:"targetName"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid merge payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Descriptions.Merge(r.Context(), body.SourceName, body.TargetName), http.StatusOK)
}

func (s *Server) handleDescriptionDeactivate(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Descriptions.Deactivate(r.Context(), r.PathValue("name")), http.StatusNoContent)
}

func (s *Server) handleDescriptionDelete(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Descriptions.Delete(r.Context(), r.PathValue("name")), http.StatusNoContent)
}
