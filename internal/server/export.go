package server

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/jask/ledgerdesk/internal/period"
	"github.com/jask/ledgerdesk/internal/service"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, ok := strings.CutSuffix(r.PathValue("file"), ".csv")
	if !ok || !slices.Contains(service.ExportKinds, kind) {
		http.NotFound(w, r)
		return
	}
	mode := period.ParseMode(query(r, "scope"))
	base := period.ParseDate(query(r, "base"), s.now())

	// buffered so a failed query still gets a proper status code
	var buf bytes.Buffer
	if err := s.Export.Write(r.Context(), &buf, kind, mode, base); err != nil {
		writeError(w, r, http.StatusInternalServerError, fmt.Errorf("export %s: %w", kind, err))
		return
	}
	name := s.Export.Filename(kind, mode, base)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(buf.Bytes())
}
