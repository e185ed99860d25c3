package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/invoice-scanner/internal/scanning"
)

// maxUploadSize caps multipart uploads; phone photos of invoices can be large
const maxUploadSize = int64(50 << 20)

const tooLargeMessage = "File is too large. Maximum size is 50MB. Please compress or resize your image."

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes {"error": message} with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// extractStatus maps an extraction failure to a response code. Bad input is
// the client's fault; anything else is a recognizer problem.
func extractStatus(err error) int {
	if errors.Is(err, scanning.ErrUnreadableImage) || errors.Is(err, scanning.ErrUnsupportedContent) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// handleIndex serves the HTML upload form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// upload is a file read from the multipart "file" field
type upload struct {
	filename    string
	contentType string
	data        []byte
}

// readUpload parses the multipart form and reads the uploaded file. On
// failure it has already written the error response.
func readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, tooLargeMessage, http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return nil, false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		msg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			msg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, msg, http.StatusBadRequest)
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return nil, false
	}

	// The extension wins over a generic browser-supplied type
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		if ct, ok := contentTypeFor(header.Filename); ok {
			contentType = ct
		} else {
			contentType = "application/octet-stream"
		}
	}

	return &upload{
		filename:    header.Filename,
		contentType: contentType,
		data:        data,
	}, true
}

// handleExtract returns the record for an uploaded invoice without storing it
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	up, ok := readUpload(w, r)
	if !ok {
		return
	}

	record, err := s.service.Extract(r.Context(), up.data, up.contentType)
	if err != nil {
		slog.Error("Error extracting invoice", "filename", up.filename, "error", err)
		jsonError(w, err.Error(), extractStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleUploadInvoice stores an uploaded invoice along with its record
func (s *Server) handleUploadInvoice(w http.ResponseWriter, r *http.Request) {
	up, ok := readUpload(w, r)
	if !ok {
		return
	}

	invoice, err := s.service.ProcessInvoice(r.Context(), up.filename, up.data, up.contentType)
	if err != nil {
		slog.Error("Error processing invoice", "filename", up.filename, "error", err)
		jsonError(w, err.Error(), extractStatus(err))
		return
	}

	writeJSON(w, http.StatusCreated, invoice)
}

// handleListInvoices returns all stored invoices
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.service.ListInvoices()
	if err != nil {
		slog.Error("Error listing invoices", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if invoices == nil {
		invoices = []*Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

// lookupInvoice loads the invoice named by the {id} path value. On failure it
// has already written the error response.
func (s *Server) lookupInvoice(w http.ResponseWriter, r *http.Request) (*Invoice, bool) {
	invoice, err := s.service.GetInvoice(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Invoice not found", http.StatusNotFound)
			return nil, false
		}
		slog.Error("Error getting invoice", "id", r.PathValue("id"), "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return invoice, true
}

// handleGetInvoice returns a single stored invoice
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, ok := s.lookupInvoice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// handleGetInvoiceRecord returns only the extracted record of an invoice
func (s *Server) handleGetInvoiceRecord(w http.ResponseWriter, r *http.Request) {
	invoice, ok := s.lookupInvoice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, invoice.Record)
}

// handleGetInvoiceFile returns the uploaded file for an invoice
func (s *Server) handleGetInvoiceFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetInvoiceFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteInvoice deletes an invoice and its file
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteInvoice(r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Invoice not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting invoice", "error", err)
		corsError(w, "Error deleting invoice", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
