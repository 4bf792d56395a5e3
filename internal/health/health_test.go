package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	router := NewRouter(true, zerolog.Nop())

	tests := []struct {
		method, path string
		status       int
		body         string
	}{
		{http.MethodGet, "/", http.StatusOK, "ok"},
		{http.MethodGet, "/health", http.StatusOK, "ok"},
		{http.MethodHead, "/health", http.StatusOK, ""},
		{http.MethodGet, "/missing", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestServerShutdownBeforeStart(t *testing.T) {
	s := NewServer("0", NewRouter(true, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, s.Shutdown(context.Background()))
}
