package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okellolabs/textsight/constants"
	"github.com/okellolabs/textsight/internal/history"
	"github.com/okellolabs/textsight/internal/recognition"
)

type fakeRecognizer struct {
	text string
	conf float64
	err  error
}

func (f *fakeRecognizer) DetectDocument(context.Context, string) (string, error) {
	return f.text, f.err
}

func (f *fakeRecognizer) DetectDocumentWithConfidence(context.Context, string) (string, float64, error) {
	return f.text, f.conf, f.err
}

func (f *fakeRecognizer) IsSupportedFormat(path string) bool {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return false
	}
	return constants.IsImageExt(path[dot:])
}

func (f *fakeRecognizer) Engine() string { return "fake" }

type fakeHistory struct {
	inserted []history.Record
	listed   []history.Record
	err      error
}

func (f *fakeHistory) Insert(_ context.Context, rec history.Record) (history.Record, error) {
	rec.ID = uuid.New()
	f.inserted = append(f.inserted, rec)
	return rec, f.err
}

func (f *fakeHistory) ListRecent(context.Context, int) ([]history.Record, error) {
	return f.listed, f.err
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	h := New(&fakeRecognizer{}, nil, nil).Router()
	rr := doRequest(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFormats(t *testing.T) {
	h := New(&fakeRecognizer{}, nil, nil).Router()
	rr := doRequest(t, h, http.MethodGet, "/v1/formats", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Formats []string `json:"formats"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Formats, "jpg")
	assert.Contains(t, resp.Formats, "webp")
	assert.Len(t, resp.Formats, 7)
}

func TestRecognizeValidation(t *testing.T) {
	h := New(&fakeRecognizer{text: "hello"}, nil, nil).Router()

	rr := doRequest(t, h, http.MethodPost, "/v1/recognitions", `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/v1/recognitions", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, h, http.MethodPost, "/v1/recognitions", `{"path":"notes.txt"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unsupported file format")
}

func TestRecognizeSuccess(t *testing.T) {
	h := New(&fakeRecognizer{text: "hello world"}, nil, nil).Router()
	rr := doRequest(t, h, http.MethodPost, "/v1/recognitions", `{"path":"scan.png"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
		Error      string   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "hello world", resp.Text)
	assert.Nil(t, resp.Confidence)
	assert.Empty(t, resp.Error)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

func TestRecognizeWithConfidence(t *testing.T) {
	h := New(&fakeRecognizer{text: "hello", conf: 0.87}, nil, nil).Router()
	rr := doRequest(t, h, http.MethodPost, "/v1/recognitions",
		`{"path":"scan.png","with_confidence":true}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Text)
	require.NotNil(t, resp.Confidence)
	assert.InDelta(t, 0.87, *resp.Confidence, 1e-9)
}

func TestRecognizeEngineOutcomesAreNotTransportErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"no text", recognition.ErrNoTextDetected, "no text detected in the image"},
		{"processing failure", errors.New("processing image: exit status 1"), "exit status 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(&fakeRecognizer{err: tc.err}, nil, nil).Router()
			rr := doRequest(t, h, http.MethodPost, "/v1/recognitions", `{"path":"scan.png"}`)
			require.Equal(t, http.StatusOK, rr.Code)

			var resp struct {
				Text  string `json:"text"`
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Empty(t, resp.Text)
			assert.Contains(t, resp.Error, tc.wantMsg)
		})
	}
}

func TestRecognizeRecordsHistory(t *testing.T) {
	hist := &fakeHistory{}
	h := New(&fakeRecognizer{text: "hello", conf: 0.5}, hist, nil).Router()

	rr := doRequest(t, h, http.MethodPost, "/v1/recognitions",
		`{"path":"scan.png","with_confidence":true}`)
	require.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, hist.inserted, 1)
	rec := hist.inserted[0]
	assert.Equal(t, "scan.png", rec.Path)
	assert.Equal(t, "fake", rec.Engine)
	assert.Equal(t, "hello", rec.Text)
	assert.InDelta(t, 0.5, rec.Confidence, 1e-9)
	assert.Empty(t, rec.ErrorMessage)
}

func TestListHistoryDisabled(t *testing.T) {
	h := New(&fakeRecognizer{}, nil, nil).Router()
	rr := doRequest(t, h, http.MethodGet, "/v1/recognitions", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListHistory(t *testing.T) {
	hist := &fakeHistory{listed: []history.Record{{
		ID:         uuid.New(),
		Path:       "scan.png",
		Engine:     "tesseract",
		Text:       "hello",
		Confidence: 0.9,
		Duration:   1500 * time.Millisecond,
		CreatedAt:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}}}
	h := New(&fakeRecognizer{}, hist, nil).Router()

	rr := doRequest(t, h, http.MethodGet, "/v1/recognitions?limit=10", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Recognitions []struct {
			Path       string  `json:"path"`
			Engine     string  `json:"engine"`
			Characters int     `json:"characters"`
			Confidence float64 `json:"confidence"`
			DurationMs int64   `json:"duration_ms"`
		} `json:"recognitions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Recognitions, 1)
	assert.Equal(t, "scan.png", resp.Recognitions[0].Path)
	assert.Equal(t, 5, resp.Recognitions[0].Characters)
	assert.EqualValues(t, 1500, resp.Recognitions[0].DurationMs)
}

func TestListHistoryBadLimit(t *testing.T) {
	h := New(&fakeRecognizer{}, &fakeHistory{}, nil).Router()
	rr := doRequest(t, h, http.MethodGet, "/v1/recognitions?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
