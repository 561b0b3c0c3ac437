package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buddybudget/wealth_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwnerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationMiddleware(), AuthMiddleware(), RequireOwner())
	r.GET("/whoami", func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, _ := utils.GetUserIdFromContext(ctx)
		currency, _ := utils.GetPrimaryCurrencyFromContext(ctx)
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		c.JSON(http.StatusOK, gin.H{"userId": userId, "currency": currency, "correlationId": cid})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	token, err := utils.JwtGenerate("user-7", "GBP")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	r := newOwnerRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"userId":"user-7","currency":"GBP","correlationId":"`+w.Header().Get(CorrelationHeader)+`"}`, w.Body.String())
			}
		})
	}
}

func TestCorrelationMiddleware_EchoesIncomingId(t *testing.T) {
	token, err := utils.JwtGenerate("user-7", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(CorrelationHeader, "trace-123")
	w := httptest.NewRecorder()
	newOwnerRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get(CorrelationHeader))
	assert.Contains(t, w.Body.String(), `"correlationId":"trace-123"`)
}
