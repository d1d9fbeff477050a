package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/machinery-catalog/internal/errs"
	"github.com/javajoker/machinery-catalog/internal/services"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func serveError(t *testing.T, err error, partial interface{}) (int, envelope) {
	t.Helper()
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondErrorWith(c, err, "product", partial) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", errs.Validation("price must be positive"), http.StatusBadRequest, "BAD_REQUEST"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"disabled", services.ErrAccountDisabled, http.StatusForbidden, "FORBIDDEN"},
		{"not found", errs.NotFound("product"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", fmt.Errorf("slug: %w", errs.ErrConflict), http.StatusConflict, "CONFLICT"},
		{"backend", &errs.RepositoryError{Op: "search", Err: errors.New("connection reset")}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := serveError(t, tc.err, nil)
			assert.Equal(t, tc.status, status)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestRespondErrorAssetFailures(t *testing.T) {
	uploadErr := &errs.AssetError{Kind: errs.ErrUploadFailed, Position: 2, Filename: "foto.jpg", Err: errors.New("timeout")}
	status, body := serveError(t, uploadErr, nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "ASSET_UPLOAD_FAILED", body.Error.Code)
	assert.Equal(t, float64(2), body.Error.Details["position"])
	assert.Equal(t, "foto.jpg", body.Error.Details["filename"])

	recordErr := &errs.AssetError{Kind: errs.ErrRecordWriteFailed, Position: 1, Err: errors.New("insert refused")}
	_, body = serveError(t, recordErr, nil)
	assert.Equal(t, "ASSET_RECORD_FAILED", body.Error.Code)

	partial := gin.H{"id": "abc"}
	batch := &errs.BatchError{Cause: uploadErr, Applied: 1, RolledBack: 1}
	status, body = serveError(t, batch, partial)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "ASSET_BATCH_ABORTED", body.Error.Code)
	assert.Equal(t, true, body.Error.Details["consistent"])
	assert.Equal(t, map[string]interface{}{"id": "abc"}, body.Error.Details["data"])

	batch.RollbackErrs = []error{errors.New("delete failed")}
	_, body = serveError(t, batch, nil)
	assert.Equal(t, "ASSET_BATCH_INCONSISTENT", body.Error.Code)
	assert.Equal(t, false, body.Error.Details["consistent"])
}

func TestReadUploadJSON(t *testing.T) {
	r := gin.New()
	var got *services.AssetPayload
	var gotTitle string
	r.POST("/", func(c *gin.Context) {
		payload, title, err := readUpload(c)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		got, gotTitle = payload, title
		c.Status(http.StatusOK)
	})

	body := `{"data_url":"data:application/pdf;base64,JVBERi0=","filename":"ficha.pdf","title":"Ficha"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", got.MimeType)
	assert.Equal(t, "ficha.pdf", got.Filename)
	assert.Equal(t, []byte("%PDF-"), got.Data)
	assert.Equal(t, "Ficha", gotTitle)

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadUploadMultipart(t *testing.T) {
	r := gin.New()
	var got *services.AssetPayload
	var gotTitle string
	r.POST("/", func(c *gin.Context) {
		payload, title, err := readUpload(c)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		got, gotTitle = payload, title
		c.Status(http.StatusOK)
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Demostración"))
	part, err := mw.CreateFormFile("file", "demo.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", got.MimeType)
	assert.Equal(t, "demo.pdf", got.Filename)
	assert.Equal(t, "Demostración", gotTitle)
}

func TestProductListFromQuery(t *testing.T) {
	categoryID := uuid.New()
	subA, subB := uuid.New(), uuid.New()

	r := gin.New()
	var filterPage, filterLimit int
	r.GET("/", func(c *gin.Context) {
		list := productListFromQuery(c)
		f := list.Filter()
		filterPage, filterLimit = f.Page, f.Limit

		require.NotNil(t, f.CategoryID)
		assert.Equal(t, categoryID, *f.CategoryID)
		assert.Equal(t, []uuid.UUID{subA, subB}, f.SubcategoryIDs)
		assert.Equal(t, "usado", f.Condition)
		require.NotNil(t, f.PriceMin)
		assert.Equal(t, 1000.0, *f.PriceMin)
		assert.Nil(t, f.PriceMax)
		assert.Equal(t, "john deere", f.Search)
		require.NotNil(t, f.Featured)
		assert.True(t, *f.Featured)
		assert.Nil(t, f.Active)
		assert.Equal(t, map[string]string{"potencia_hp": "120"}, f.Dynamic)
		assert.Equal(t, "price", f.Sort)
		assert.Equal(t, "asc", f.Order)
		c.Status(http.StatusOK)
	})

	url := fmt.Sprintf("/?category_id=%s&subcategory_ids=%s,%s,bogus&condition=usado&price_min=1000&price_max=abc"+
		"&search=john+deere&featured=true&attr.potencia_hp=120&sort=price&order=asc&page=3&limit=24",
		categoryID, subA, subB)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, filterPage)
	assert.Equal(t, 24, filterLimit)
}

func TestParseUUIDParam(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		if id, ok := parseUUIDParam(c, "id"); ok {
			utils.SuccessResponse(c, id)
		}
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}
