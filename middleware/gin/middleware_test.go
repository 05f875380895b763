package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	propschema "github.com/reoring/propschema"
	"github.com/reoring/propschema/compiler"
	"github.com/reoring/propschema/middleware"
	ginmw "github.com/reoring/propschema/middleware/gin"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := compiler.New().AddProperty(propschema.String("email").Required().Rules("email"))

	r := gin.New()
	r.POST("/users", ginmw.ValidateJSON(s, middleware.Options{Logger: zap.NewNop()}), func(c *gin.Context) {
		rec, ok := ginmw.GetRecord(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, rec)
	})
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestValidateJSON(t *testing.T) {
	r := newRouter()

	w := post(r, `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"email":"a@example.com"}`, w.Body.String())

	w = post(r, `{"email":"nope"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Contains(t, payload.Errors, "email")

	w = post(r, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
