package helper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	type request struct {
		Name string `json:"name" validate:"required"`
	}

	e := NewEcho()
	e.POST("/items", func(c echo.Context) error {
		var req request
		if err := Bind(c, &req); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, &req)
	})

	tests := [...]struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"valid", "/items", `{"name":"leaf"}`, http.StatusCreated},
		{"trailing slash", "/items/", `{"name":"leaf"}`, http.StatusCreated},
		{"invalid json", "/items", `{"name":`, http.StatusBadRequest},
		{"validation", "/items", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)
			require.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
