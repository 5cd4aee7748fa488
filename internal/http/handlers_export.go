package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"smartspend/internal/export"
	"smartspend/internal/ledger"
	"smartspend/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExportXLSX renders the filtered ledger and its summary as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	txs := ledger.SortNewestFirst(params.apply(all))
	summary := ledger.Summarize(all, params.Period, params.Filter, params.Now)

	// buffered so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, txs, summary, s.currency); err != nil {
		s.fail(w, r, log.OpExport, fmt.Errorf("write xlsx: %w", err))
		return
	}
	s.attachment(w, xlsxContentType, s.exportName(params, "xlsx"), buf.Bytes())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	all, params, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, ledger.SortNewestFirst(params.apply(all))); err != nil {
		s.fail(w, r, log.OpExport, fmt.Errorf("write csv: %w", err))
		return
	}
	s.attachment(w, "text/csv; charset=utf-8", s.exportName(params, "csv"), buf.Bytes())
}

func (s *Server) exportName(p viewParams, ext string) string {
	return fmt.Sprintf("smartspend-%s-%s.%s", p.Period, p.Now.Format("2006-01-02"), ext)
}

func (s *Server) attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
