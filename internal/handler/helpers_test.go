package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tilerp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// do runs one request through a fresh engine built by setup.
func do(setup func(r *gin.Engine), method, path, body string) *httptest.ResponseRecorder {
	r := gin.New()
	setup(r)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("bad date: %w", service.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("quotation 4: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("dup: %w", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("short: %w", service.ErrInsufficientStock), http.StatusConflict},
		{fmt.Errorf("too many: %w", service.ErrOverDispatch), http.StatusConflict},
		{fmt.Errorf("lock: %w", service.ErrBusy), http.StatusConflict},
	}
	for _, tc := range cases {
		w := do(func(r *gin.Engine) {
			r.GET("/x", func(c *gin.Context) { respondError(c, tc.err) })
		}, http.MethodGet, "/x", "")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		body := decodeJSON(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, tc.err.Error(), body["error"])
	}
}

func TestRespondError_UnknownIsGeneric500(t *testing.T) {
	var captured []*gin.Error
	w := do(func(r *gin.Engine) {
		r.GET("/x", func(c *gin.Context) {
			respondError(c, errors.New("pq: connection refused"))
			captured = c.Errors
		})
	}, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeJSON(t, w)["error"])
	assert.NotContains(t, w.Body.String(), "pq:")
	require.Len(t, captured, 1)
}

type validated struct {
	Name   string          `json:"name"   validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

func TestBindAndValidate(t *testing.T) {
	setup := func(r *gin.Engine) {
		r.POST("/x", func(c *gin.Context) {
			var req validated
			if !bindAndValidate(c, &req) {
				return
			}
			respond(c, http.StatusOK, req)
		})
	}

	w := do(setup, http.MethodPost, "/x", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["error"], "invalid JSON")

	w = do(setup, http.MethodPost, "/x", `{"amount":"0"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decodeJSON(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "required", fields["validated.Name"])
	assert.Equal(t, "gt", fields["validated.Amount"])

	w = do(setup, http.MethodPost, "/x", `{"name":"ok","amount":"12.5"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["data"].(map[string]interface{})["name"])
}

func TestParamID(t *testing.T) {
	setup := func(r *gin.Engine) {
		r.GET("/x/:id", func(c *gin.Context) {
			id, ok := paramID(c, "id")
			if !ok {
				return
			}
			respond(c, http.StatusOK, id)
		})
	}
	assert.Equal(t, http.StatusBadRequest, do(setup, http.MethodGet, "/x/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(setup, http.MethodGet, "/x/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(setup, http.MethodGet, "/x/-3", "").Code)
	w := do(setup, http.MethodGet, "/x/17", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(17), decodeJSON(t, w)["data"])
}

func TestSendDocument(t *testing.T) {
	w := do(func(r *gin.Engine) {
		r.GET("/x", func(c *gin.Context) {
			sendDocument(c, &service.Document{FileName: "q.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}, true)
		})
	}, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="q.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", w.Body.String())
}
