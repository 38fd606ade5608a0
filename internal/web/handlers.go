package web

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/KaramelBytes/rxslot-cli/internal/mining"
	"github.com/KaramelBytes/rxslot-cli/internal/parser"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/report"
	"github.com/KaramelBytes/rxslot-cli/internal/sample"
)

// maxUploadBytes caps the size of an uploaded table.
const maxUploadBytes = 10 << 20

// Handlers contains HTTP route handlers for the dashboard.
type Handlers struct {
	base     pipeline.Config
	miner    mining.Miner
	msg      report.Messages
	renderer *Renderer
	uploads  *uploadStore
}

// uploadStore holds the one uploaded table shared by all requests.
type uploadStore struct {
	mu   sync.Mutex
	name string
	data []byte
}

func (s *uploadStore) set(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.data = name, data
}

func (s *uploadStore) clear() { s.set("", nil) }

func (s *uploadStore) get() (string, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.data, s.data != nil
}

// runConfig derives the run configuration from the base config, the
// current upload and the threshold query parameters.
func (h *Handlers) runConfig(r *http.Request) (pipeline.Config, string, error) {
	cfg := h.base
	uploaded := ""
	if name, data, ok := h.uploads.get(); ok {
		cfg.Source = pipeline.Source{Name: name, Data: data}
		uploaded = name
	}
	var err error
	if cfg.MinSupport, err = parseFloatParam(r, "min_support", cfg.MinSupport); err != nil {
		return cfg, uploaded, err
	}
	if cfg.MinConfidence, err = parseFloatParam(r, "min_confidence", cfg.MinConfidence); err != nil {
		return cfg, uploaded, err
	}
	return cfg, uploaded, nil
}

func (h *Handlers) runPipeline(r *http.Request) (*pipeline.Result, string, error) {
	cfg, uploaded, err := h.runConfig(r)
	if err != nil {
		return nil, uploaded, err
	}
	res, err := pipeline.Run(r.Context(), cfg, h.miner)
	return res, uploaded, err
}

// HandleDashboard handles GET /: run the pipeline and render the dashboard.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	res, uploaded, err := h.runPipeline(r)
	if err != nil {
		h.renderer.renderError(w, r, h.msg, err)
		return
	}

	suggestions := make([]template.HTML, len(res.Suggestions))
	for i, s := range res.Suggestions {
		suggestions[i] = renderMarkdown(report.SuggestionText(h.msg, s))
	}

	h.renderer.renderPage(w, "dashboard", DashboardPageData{
		PageData:    h.renderer.page(h.msg.Title, h.msg),
		Result:      res,
		Rules:       res.HeadRules(),
		Bars:        report.Bars(res.TopItems, 100),
		Suggestions: suggestions,
		Support:     pipeline.SupportRange,
		Confidence:  pipeline.ConfidenceRange,
		Uploaded:    uploaded,
	})
}

// HandleReport handles GET /report and renders the Markdown report as HTML,
// or raw Markdown with ?format=md.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	res, _, err := h.runPipeline(r)
	if err != nil {
		h.renderer.renderError(w, r, h.msg, err)
		return
	}
	md := report.Markdown(res, h.msg)

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, md)
		return
	}

	h.renderer.renderPage(w, "report", ReportPageData{
		PageData:     h.renderer.page(h.msg.Title, h.msg),
		Result:       res,
		RenderedHTML: renderMarkdown(md),
	})
}

// HandleResultJSON handles GET /api/result: the full result as JSON.
func (h *Handlers) HandleResultJSON(w http.ResponseWriter, r *http.Request) {
	res, _, err := h.runPipeline(r)
	if err != nil {
		h.renderer.renderError(w, r, h.msg, err)
		return
	}
	renderJSON(w, http.StatusOK, res)
}

// HandleUpload handles POST /upload: replace the input table.
// The upload is parsed once up front so format and column errors show
// immediately instead of on the next dashboard load.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderer.renderError(w, r, h.msg, fmt.Errorf("%w: invalid upload form: %w", errBadRequest, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, h.msg, fmt.Errorf("%w: missing file field", errBadRequest))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.renderer.renderError(w, r, h.msg, fmt.Errorf("read upload: %w", err))
		return
	}

	tbl, err := parser.Parse(header.Filename, data, h.base.Table)
	if err != nil {
		h.renderer.renderError(w, r, h.msg, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if _, err := pipeline.Transactions(tbl, h.base.Column); err != nil {
		h.renderer.renderError(w, r, h.msg, err)
		return
	}

	h.uploads.set(header.Filename, data)
	slog.Info("table uploaded", "name", header.Filename, "bytes", len(data), "rows", tbl.Len())
	h.redirectHome(w, r)
}

// HandleUploadClear handles POST /upload/clear: fall back to the default file.
func (h *Handlers) HandleUploadClear(w http.ResponseWriter, r *http.Request) {
	h.uploads.clear()
	h.redirectHome(w, r)
}

// HandleUploadSample handles POST /upload/sample: use the bundled sample table.
func (h *Handlers) HandleUploadSample(w http.ResponseWriter, r *http.Request) {
	h.uploads.set(sample.Name, sample.Bytes())
	h.redirectHome(w, r)
}

// redirectHome sends the browser back to the dashboard, keeping the
// thresholds the form carried.
func (h *Handlers) redirectHome(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	for _, k := range []string{"min_support", "min_confidence"} {
		if v := strings.TrimSpace(r.FormValue(k)); v != "" {
			q.Set(k, v)
		}
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseFloatParam parses a float query parameter with a default value.
func parseFloatParam(r *http.Request, name string, defaultVal float64) (float64, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%w: %s %q is not a number", pipeline.ErrThresholdRange, name, s)
	}
	return v, nil
}
