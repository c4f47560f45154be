package http

import (
	"io"
	"net/http"
)

// maxReceiptBodyBytes is a transport-level ceiling on receipt uploads; the
// service enforces the configured limit beneath it.
const maxReceiptBodyBytes = 16 << 20

func (s *Server) routeReceiptImages(mux *http.ServeMux) {
	s.handle(mux, "PUT /api/transaction/{guid}/receipt", s.handleReceiptImageAttach)
	s.handle(mux, "GET /api/transaction/{guid}/receipt", s.handleReceiptImageGetByTransaction)
	s.handle(mux, "GET /api/receipt-image/{id}", s.handleReceiptImageGet)
	s.handle(mux, "DELETE /api/receipt-image/{id}", s.handleReceiptImageDelete)
}

func (s *Server) handleReceiptImageAttach(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReceiptBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Message: "receipt image body too large"})
		return
	}
	writeResult(w, s.svc.Receipts.Attach(r.Context(), r.PathValue("guid"), data), http.StatusCreated)
}

func (s *Server) handleReceiptImageGetByTransaction(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.svc.Receipts.GetByTransaction(r.Context(), r.PathValue("guid")), http.StatusOK)
}

func (s *Server) handleReceiptImageGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Receipts.Get(r.Context(), id), http.StatusOK)
}

func (s *Server) handleReceiptImageDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeResult(w, s.svc.Receipts.Delete(r.Context(), id), http.StatusNoContent)
}
