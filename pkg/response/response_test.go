package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

func TestPublicRevalidatesWithETag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/menus", func(c *gin.Context) {
		Public(c, []string{"Beranda", "Profil"})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/menus", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":["Beranda","Profil"]}`, rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/menus", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.Wrap(errors.New("pq: connection refused"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Len(t, c.Errors, 1)
	assert.True(t, c.IsAborted())
}

func TestAttachmentSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Attachment(c, "ppdb.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="ppdb.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
