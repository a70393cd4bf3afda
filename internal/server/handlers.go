package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/apidoc"
	"github.com/goliatone/go-paramform/pkg/render"
	"github.com/goliatone/go-paramform/pkg/renderers/vanilla"
	"github.com/goliatone/go-paramform/pkg/session"
	"github.com/goliatone/go-paramform/pkg/widget"
)

// headerRefreshed tells the runtime script that a change re-fetched the
// parameters and the response body is the replacement form.
const headerRefreshed = "X-Paramform-Refreshed"

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeTSV  = "text/tab-separated-values; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) renderOptions() render.RenderOptions {
	return render.RenderOptions{
		ChangeEndpoint: s.endpoints.Params,
		SlideEndpoint:  s.endpoints.Slide,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "healthy",
		"datasets": s.catalog.Len(),
		"sessions": s.sessions.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	dataset, _ := sess.Dataset()

	out, err := s.html.RenderPage(r.Context(), vanilla.Page{
		Title:           s.title,
		Datasets:        s.catalog.Entries(),
		SelectedDataset: dataset.ID,
		Form:            sess.Form(),
		Table:           sess.Results().HTML(),
		DatasetEndpoint: s.endpoints.Datasets,
		ResultsEndpoint: s.endpoints.Results,
		TSVEndpoint:     s.endpoints.TSV,
		XLSXEndpoint:    s.endpoints.XLSX,
	}, s.renderOptions())
	if err != nil {
		s.logger.Error("render page", zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}
	writeBody(w, contentTypeHTML, out)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.writeForm(w, r)
}

func (s *Server) handleSelectDataset(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if err := sess.SelectDataset(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	s.writeForm(w, r)
}

// rejectedMessage is attached to a control whose reading was not accepted.
const rejectedMessage = "value not accepted"

// handleChange commits a control reading posted as one or more "value"
// fields. Changes of refreshing widgets answer with the rebuilt form;
// others answer 204. A rejected reading answers 422 with the current form
// and the error attached to the control.
func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	name := chi.URLParam(r, "name")

	control, ok := sess.Form().Control(name)
	if !ok {
		writeError(w, StatusError{Code: http.StatusNotFound})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}

	values := r.PostForm["value"]
	in := widget.Multi(values...)
	if !control.Multiple {
		in = widget.Single(r.PostForm.Get("value"))
	}

	if err := sess.Change(r.Context(), name, in); err != nil {
		if errors.Is(err, session.ErrRejected) {
			s.logger.Info("rejected control reading", zap.String("parameter", name), zap.Strings("value", in.Values))
			s.renderForm(w, r, http.StatusUnprocessableEntity, map[string][]string{name: {rejectedMessage}})
			return
		}
		writeError(w, err)
		return
	}
	if !control.TriggerRefresh {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set(headerRefreshed, "true")
	s.writeForm(w, r)
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if !sess.Slide(chi.URLParam(r, "name"), r.PostFormValue("value")) {
		writeError(w, StatusError{Code: http.StatusNotFound})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	table, err := sess.FetchResults(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, contentTypeHTML, []byte(table.HTML()))
}

func (s *Server) handleTSV(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	text, err := sess.Results().TSV()
	if err != nil {
		s.logger.Error("serialise table", zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}
	writeBody(w, contentTypeTSV, []byte(text))
}

func (s *Server) handleXLSX(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	var buf bytes.Buffer
	if err := sess.Results().WriteXLSX(&buf); err != nil {
		s.logger.Error("write workbook", zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}

	filename := "results.xlsx"
	if dataset, ok := sess.Dataset(); ok {
		filename = dataset.ID + ".xlsx"
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeBody(w, contentTypeXLSX, buf.Bytes())
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	datasets, err := apidoc.Collect(r.Context(), s.backend, s.catalog.Entries())
	if err != nil {
		s.logger.Warn("incomplete api description", zap.Error(err))
	}
	doc := apidoc.Build(datasets, apidoc.WithTitle(s.title))
	data, err := doc.MarshalJSON()
	if err != nil {
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}
	writeBody(w, "application/json; charset=utf-8", data)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" || strings.Contains(name, "..") {
		writeError(w, StatusError{Code: http.StatusNotFound})
		return
	}
	http.ServeFileFS(w, r, vanilla.AssetsFS(), name)
}

func (s *Server) writeForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, nil)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, errs map[string][]string) {
	sess := SessionFromContext(r.Context())
	opts := s.renderOptions()
	opts.Errors = errs
	out, err := s.html.Render(r.Context(), sess.Form(), opts)
	if err != nil {
		s.logger.Error("render form", zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err})
		return
	}
	writeStatusBody(w, status, contentTypeHTML, out)
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	writeStatusBody(w, http.StatusOK, contentType, body)
}

func writeStatusBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
