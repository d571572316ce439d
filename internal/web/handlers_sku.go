package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/core"
	"github.com/JonMunkholm/proset/internal/logging"
	"github.com/JonMunkholm/proset/internal/sheet"
)

// formatJSON asks batch endpoints for a JSON body instead of a sheet.
const formatJSON = "json"

// outputFormat reads ?format=, falling back to def. It returns "json" or a
// sheet format.
func outputFormat(r *http.Request, def string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if f == "" {
		f = def
	}
	if f == formatJSON {
		return f, nil
	}
	sf, err := sheet.ParseFormat(f)
	if err != nil {
		return "", err
	}
	return string(sf), nil
}

// writeSheet buffers records as a sheet and sends them as an attachment
// named base plus the format's extension.
func writeSheet(w http.ResponseWriter, status int, format sheet.Format, base string, records [][]string) error {
	var buf bytes.Buffer
	if err := sheet.Write(&buf, format, records); err != nil {
		return err
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"."+string(format)))
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// fileBase makes a vendor name safe to use in a download file name.
func fileBase(vendor, suffix string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, vendor)
	return clean + "_" + suffix
}

// handleExport sends every SKU of a vendor as xlsx (default) or csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format, err := outputFormat(r, string(sheet.FormatXLSX))
	if err == nil && format == formatJSON {
		err = fmt.Errorf("%w: export is a sheet, use xlsx or csv", sheet.ErrUnsupportedFormat)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rows, err := s.skus.Export(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := writeSheet(w, http.StatusOK, sheet.Format(format), fileBase(name, "skus"), core.Records(rows)); err != nil {
		logging.FromContext(r.Context()).Error("write export", "vendor", name, "error", err)
	}
}

// readUpload returns the records of the multipart "file" field, reading the
// sheet format from the uploaded file name.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([][]string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", fmt.Errorf("request body too large: limit is %d bytes", tooBig.Limit)
		}
		return nil, "", fmt.Errorf("no file provided: %w", err)
	}
	defer file.Close()

	format, err := sheet.FormatOf(header.Filename)
	if err != nil {
		return nil, "", err
	}
	records, err := sheet.Read(file, format)
	if err != nil {
		return nil, "", err
	}
	return records, header.Filename, nil
}

// handleImport applies an uploaded sheet. The report comes back as JSON by
// default, or as a sheet with the report column filled in. A cancelled or
// timed-out import still returns the partial report, with the mapped error
// status.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := outputFormat(r, formatJSON)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records, filename, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	report, err := s.skus.Import(ctx, records)
	if report == nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = core.MapError(err).Status
		logging.FromContext(ctx).Warn("import incomplete", "file", filename, "error", err)
	}

	if format == formatJSON {
		writeJSON(w, status, report)
		return
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + "_import_report"
	w.Header().Set("X-Batch-ID", report.BatchID)
	if err := writeSheet(w, status, sheet.Format(format), base, report.ReportRecords()); err != nil {
		logging.FromContext(ctx).Error("write import report", "error", err)
	}
}

// GenerateResponse is the JSON body of a generate request. When generation
// stopped early, Rows holds the products that were created and Error says
// why.
type GenerateResponse struct {
	Vendor    string         `json:"vendor"`
	Requested int            `json:"requested"`
	Rows      []core.Row     `json:"rows"`
	Error     *ErrorResponse `json:"error,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format, err := outputFormat(r, formatJSON)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	raw := r.URL.Query().Get("count")
	count, err := strconv.Atoi(raw)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %q is not a number", core.ErrInvalidCount, raw))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	products, err := s.skus.Generate(ctx, name, count)
	if err != nil && len(products) == 0 {
		s.respondError(w, r, err)
		return
	}

	rows := make([]core.Row, len(products))
	for i, p := range products {
		rows[i] = core.RowFromProduct(p)
	}

	status := http.StatusCreated
	resp := GenerateResponse{Vendor: name, Requested: count, Rows: rows}
	if err != nil {
		msg := core.MapError(err)
		status = msg.Status
		e := errorResponse(msg)
		resp.Error = &e
		logging.FromContext(ctx).Warn("generation incomplete", "vendor", name, "created", len(rows), "error", err)
	}

	if format == formatJSON {
		writeJSON(w, status, resp)
		return
	}
	if err := writeSheet(w, status, sheet.Format(format), fileBase(name, "generated"), core.Records(rows)); err != nil {
		logging.FromContext(ctx).Error("write generated sheet", "error", err)
	}
}

// handleDeleteProduct removes one product. Imports never delete.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.skus.DeleteProduct(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "sku")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.skus.Product(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "sku"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSaveProduct writes one full product, sizes included, for the vendor
// in the path: 201 when created, 200 otherwise. The body may leave
// vendor.vendor_name empty but must not name another vendor.
func (s *Server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var p catalog.Product
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVendorBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid json: %w", err))
		return
	}
	switch strings.TrimSpace(p.Vendor.Name) {
	case "":
		p.Vendor.Name = name
	case name:
	default:
		s.respondError(w, r, fmt.Errorf("%w: body names vendor %q, path names %q",
			core.ErrInvalidProduct, p.Vendor.Name, name))
		return
	}

	created, err := s.skus.SaveProduct(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	saved, err := s.skus.Product(r.Context(), name, strings.TrimSpace(p.SkuInfo.SKU))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, status, saved)
}
