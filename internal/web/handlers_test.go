package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/rxslot-cli/internal/parser"
	"github.com/KaramelBytes/rxslot-cli/internal/pipeline"
	"github.com/KaramelBytes/rxslot-cli/internal/sample"
)

const pairCSV = "處方編號,處方內容\n1,\"A, B\"\n2,\"A, B\"\n3,A\n"

// setupServer serves a handler whose default input is a file holding csv.
// An empty csv leaves the default path missing.
func setupServer(t *testing.T, csv, locale string) http.Handler {
	t.Helper()
	p := filepath.Join(t.TempDir(), "rx.csv")
	if csv != "" {
		require.NoError(t, os.WriteFile(p, []byte(csv), 0o644))
	}
	base := pipeline.DefaultConfig()
	base.Source = pipeline.Source{Path: p}
	return NewHandler(Options{Base: base, Locale: locale, Version: "test"})
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, httptest.NewRequest(http.MethodGet, target, nil))
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- HandleDashboard ---

func TestDashboard_Default(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	rec := get(t, h, "/?min_support=0.3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	for _, want := range []string{
		"Drug Storage Optimization",
		`<th>處方內容</th>`,
		`<strong class="rule-count">2</strong>`,
		`<td class="num">0.667</td>`,
		`<progress max="100" value="100">3</progress>`,
		"Place <strong>B</strong> near <strong>A</strong>",
		`value="0.30"`,
		"simulated",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "No association rules")
}

func TestDashboard_EmptyResultShowsWarnings(t *testing.T) {
	h := setupServer(t, "處方內容\n普拿疼\n普拿疼\n", "zh-TW")
	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "沒有找到符合條件的關聯規則，請嘗試降低門檻。")
	assert.Contains(t, body, "無可提供之儲位建議。")
	assert.NotContains(t, body, "<progress")
	assert.Contains(t, body, `lang="zh-TW"`)
}

func TestDashboard_ThresholdErrors(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	for _, target := range []string{"/?min_support=0.9", "/?min_confidence=0.01", "/?min_support=abc"} {
		rec := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestDashboard_MissingDefaultFile(t *testing.T) {
	h := setupServer(t, "", "en")
	rec := get(t, h, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "input file not found")
	assert.Contains(t, body, `action="/upload"`, "error page offers an upload")
}

func TestDashboard_EscapesTableContent(t *testing.T) {
	h := setupServer(t, "處方內容\n\"<script>x</script>, B\"\n", "en")
	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>x")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;x")
}

func TestItemNamesRenderLiterally(t *testing.T) {
	h := setupServer(t, "處方內容\n\"*A*, x|y\"\n", "en")

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>*A*</strong>")
	assert.NotContains(t, body, "<em>")

	rec = get(t, h, "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>x|y</td>")
}

// --- Upload ---

func TestUpload_ReplacesSourceAndKeepsThresholds(t *testing.T) {
	h := setupServer(t, "", "en")
	rec := do(t, h, uploadRequest(t, "mine.csv", pairCSV, map[string]string{"min_support": "0.30", "min_confidence": "0.60"}))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/?min_confidence=0.60&min_support=0.30", rec.Header().Get("Location"))

	out := decodeResult(t, get(t, h, "/api/result?min_support=0.3"))
	assert.Equal(t, "mine.csv", out["source"])
	assert.Len(t, out["rules"], 2)
}

func TestUpload_RejectsMissingColumn(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	rec := do(t, h, uploadRequest(t, "bad.csv", "drugs\nA\n", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "處方內容")

	// previous source still in use
	out := decodeResult(t, get(t, h, "/api/result"))
	assert.Equal(t, "rx.csv", out["source"])
}

func TestUpload_RejectsUnsupportedFormat(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	req := uploadRequest(t, "notes.docx", "x", nil)
	req.Header.Set("Accept", "application/json")
	rec := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported table format")
}

func TestUpload_MissingFileField(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("min_support=0.1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadSampleAndClear(t *testing.T) {
	h := setupServer(t, "", "en")

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/upload/sample", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	out := decodeResult(t, get(t, h, "/api/result"))
	assert.Equal(t, sample.Name, out["source"])
	assert.EqualValues(t, 60, out["transactions"])

	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/upload/clear", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/result").Code)
}

// --- Report and JSON ---

func TestReport_RendersMarkdownTables(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	rec := get(t, h, "/report?min_support=0.3")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "<th>antecedents</th>")
	assert.Contains(t, body, "<strong>B</strong>")

	rec = get(t, h, "/report?format=md&min_support=0.3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "| B | A | 0.667 | 1.000 | 1.000 |")
}

func TestResultJSON(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	out := decodeResult(t, get(t, h, "/api/result?min_support=0.3&min_confidence=0.5"))
	assert.EqualValues(t, 0.3, out["min_support"])
	assert.EqualValues(t, 3, out["transactions"])
	rules := out["rules"].([]any)
	require.Len(t, rules, 2)
	first := rules[0].(map[string]any)
	assert.Equal(t, []any{"B"}, first["antecedents"])
	assert.Nil(t, first["conviction"], "infinite conviction encodes as null")
}

func TestResultJSON_Errors(t *testing.T) {
	h := setupServer(t, "", "en")
	rec := get(t, h, "/api/result")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var out struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, http.StatusNotFound, out.Error.Status)
	assert.Contains(t, out.Error.Message, "input file not found")
}

// --- Server plumbing ---

func TestSecurityHeadersAndStatic(t *testing.T) {
	h := setupServer(t, pairCSV, "en")
	rec := get(t, h, "/static/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--accent")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, httptest.NewRequest(http.MethodDelete, "/", nil)).Code)
}

func TestNewServerAddr(t *testing.T) {
	srv := NewServer(Options{Base: pipeline.DefaultConfig(), Bind: "127.0.0.1", Port: 8501})
	assert.Equal(t, "127.0.0.1:8501", srv.Addr)
	assert.NotNil(t, srv.Handler)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&pipeline.ColumnError{Column: "處方內容"}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", pipeline.ErrThresholdRange), http.StatusBadRequest},
		{fmt.Errorf("%w: .docx", parser.ErrUnsupported), http.StatusBadRequest},
		{fmt.Errorf("%w: rx.csv", pipeline.ErrInputNotFound), http.StatusNotFound},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
