package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) routeFamilyMembers(mux *http.ServeMux) {
	s.handle(mux, "POST /api/family-member", s.handleFamilyMemberCreate)
	s.handle(mux, "GET /api/family-member/{id}", s.handleFamilyMemberGet)
	s.handle(mux, "GET /api/family-member/owner/{owner}", s.handleFamilyMemberListByOwner)
	s.handle(mux, "PUT /api/family-member/{id}", s.handleFamilyMemberUpdate)
	s.handle(mux, "DELETE /api/family-member/{id}", s.handleFamilyMemberDeactivate)
}

func (s *Server) handleFamilyMemberCreate(w http.ResponseWriter, r *http.Request) {
	var member core.FamilyMember
	if err := decodeJSON(r, &member); err != nil {
		badRequest(w, "invalid family member payload: "+err.Error())
		return
	}
	writeResult(w, s.svc.Members.Create(r.Context(), member), http.StatusCreated)
}

func (s *Server) handleFamilyMemberGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Members.Get(r.Context(), id), http.StatusOK)
}

func (s *Server) handleFamilyMemberListByOwner(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Members.ListByOwner(r.Context(), r.PathValue("owner")), http.StatusOK)
}

func (s *Server) handleFamilyMemberUpdate(w http.ResponseWriter, r *http.Request) {
	var member core.FamilyMember
	if err := decodeJSON(r, &member); err != nil {
		badRequest(w, "invalid family member payload: "+err.Error())
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	member.FamilyMemberID = id
	writeResult(w, s.svc.Members.Update(r.Context(), member), http.StatusOK)
}

func (s *Server) handleFamilyMemberDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Members.Deactivate(r.Context(), id), http.StatusNoContent)
}
