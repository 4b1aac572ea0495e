package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/dexedit/internal/core"
	"github.com/JonMunkholm/dexedit/internal/logging"
)

// multipartOverhead is allowed on top of the import limit for form framing.
const multipartOverhead = 64 << 10

var errNoFile = badRequest("no file provided")

// handleExport downloads the panel's live grid as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.withPanel(w, r, "export", func(p *core.Panel) (any, error) {
		var buf bytes.Buffer
		if err := p.Export(&buf); err != nil {
			return nil, err
		}
		return fileResponse{
			contentType: "text/csv; charset=utf-8",
			filename:    string(p.Descriptor().Kind) + ".csv",
			data:        buf.Bytes(),
		}, nil
	})
}

// ImportResponse reports an applied import.
type ImportResponse struct {
	Supplied  int       `json:"supplied"`
	Applied   int       `json:"applied"`
	Unmatched int       `json:"unmatched"`
	Failed    int       `json:"failed"`
	Ignored   []string  `json:"ignored,omitempty"`
	Grid      GridState `json:"grid"`
}

// handleImport applies a CSV to the live table. The file is sent either as
// the "file" field of a multipart form or as a text/csv body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := s.imports.acquire(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	defer s.imports.release()

	limit := s.cfg.Session.MaxImportSize
	if limit <= 0 {
		limit = core.DefaultMaxImportSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	src, name, err := importSource(r, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer src.Close()

	logger := logging.WithFields(r.Context(), "file", name)
	s.withPanel(w, r, "import", func(p *core.Panel) (any, error) {
		res, err := p.Import(src)
		s.metrics.Imported(p.Descriptor().Kind, res)
		var ie *core.ImportError
		if errors.As(err, &ie) {
			// Rows that passed are already in the live table.
			logger.Warn("import partly applied", "panel", p.ID(),
				"applied", res.Applied, "failed", res.Failed)
			return nil, &partialImportError{cause: ie, summary: importResponse(p, res)}
		}
		if err != nil {
			logger.Warn("import rejected", "panel", p.ID(), "error", err)
			return nil, err
		}
		logger.Info("import applied", "panel", p.ID(), "applied", res.Applied, "unmatched", res.Unmatched)
		return importResponse(p, res), nil
	})
}

func importResponse(p *core.Panel, res core.ImportResult) ImportResponse {
	return ImportResponse{
		Supplied:  res.Supplied,
		Applied:   res.Applied,
		Unmatched: res.Unmatched,
		Failed:    res.Failed,
		Ignored:   res.Ignored,
		Grid:      gridState(p),
	}
}

// partialImportError carries the counts and refreshed grid of an import in
// which some rows failed, so the error response can report them.
type partialImportError struct {
	cause   *core.ImportError
	summary ImportResponse
}

func (e *partialImportError) Error() string { return e.cause.Error() }
func (e *partialImportError) Unwrap() error { return e.cause }

func importSource(r *http.Request, limit int64) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if r.ContentLength == 0 {
			return nil, "", errNoFile
		}
		return r.Body, "body.csv", nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, "", fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, limit)
		}
		return nil, "", badRequest("invalid form: " + err.Error())
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") && header.Filename != "" {
		logging.FromContext(r.Context()).Debug("import file without .csv suffix", "file", header.Filename)
	}
	return file, header.Filename, nil
}

// handleIcon serves the icon of the entity on a row.
func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	row, err := parseRowParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.withPanel(w, r, "icon", func(p *core.Panel) (any, error) {
		icon, err := p.Icon(row)
		if err != nil {
			return nil, err
		}
		return fileResponse{contentType: http.DetectContentType(icon), data: icon}, nil
	})
}
