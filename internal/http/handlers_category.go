package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeCategories(mux *http.ServeMux) {
	s.handle(mux, "POST /api/category", s.handleCategoryCreate)
	s.handle(mux, "GET /api/category", s.handleCategoryList)
	s.handle(mux, "GET /api/category/{name}", s.handleCategoryGet)
	s.handle(mux, "POST /api/category/merge", s.handleCategoryMerge)
	s.handle(mux, "POST /api/category/{name}/deactivate", s.handleCategoryDeactivate)
	s.handle(mux, "DELETE /api/category/{name}", s.handleCategoryDelete)
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var category core.Category
	if err := decodeJSON(r, &category); err != nil {
		badRequest(w, "invalid category payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Categories.Create(r.Context(), category), http.StatusCreated)
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Categories.List(r.Context()), http.StatusOK)
}

func (s *Server) handleCategoryGet(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Categories.Get(r.Context(), r.PathValue("name")), http.StatusOK)
}

func (s *Server) handleCategoryMerge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SourceName string `json:"sourceName"`
		TargetName string `json:"targetName"`
	}
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid merge payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Categories.Merge(r.Context(), body.SourceName, body.TargetName), http.StatusOK)
}

func (s *Server) handleCategoryDeactivate(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Categories.Deactivate(r.Context(), r.PathValue("name")), http.StatusNoContent)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Categories.Delete(r.Context(), r.PathValue("name")), http.StatusNoContent)
}
