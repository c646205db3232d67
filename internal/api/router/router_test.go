package router

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"

	"jobai-go/internal/api/handler"
	"jobai-go/internal/config"
	"jobai-go/internal/processor"
)

const routerResumeText = `Jane Doe
jane.doe@example.com
Experience
Backend Engineer
Jan 2019 - Dec 2021
Python services on Kubernetes with PostgreSQL and Redis, deployed through Jenkins.
`

func newRouterEngine(apiKeys []string) *server.Hertz {
	cfg := &config.Config{}
	cfg.Server.APIKeys = apiKeys
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	rp := processor.NewResumeProcessorV2(nil, nil, processor.WithsetLogger(nil))
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, cfg, handler.NewResumeHandler(cfg, nil, rp))
	return h
}

func postText(h *server.Hertz, headers ...ut.Header) *ut.ResponseRecorder {
	body := bytes.NewBufferString(`{"text": ` + jsonQuote(routerResumeText) + `}`)
	headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	return ut.PerformRequest(h.Engine, "POST", "/api/v1/extract-text", &ut.Body{Body: body, Len: body.Len()}, headers...)
}

func jsonQuote(s string) string {
	return `"` + strings.ReplaceAll(s, "\n", `\n`) + `"`
}

func TestRegisterRoutes_NoAuth(t *testing.T) {
	h := newRouterEngine(nil)

	resp := postText(h)

	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestRegisterRoutes_APIKey(t *testing.T) {
	h := newRouterEngine([]string{"secret-1", "secret-2"})

	tests := []struct {
		name    string
		headers []ut.Header
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", []ut.Header{{Key: APIKeyHeader, Value: "nope"}}, http.StatusUnauthorized},
		{"valid key", []ut.Header{{Key: APIKeyHeader, Value: "secret-2"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postText(h, tt.headers...)
			assert.Equal(t, tt.want, resp.Code, resp.Body.String())
		})
	}
}

func TestRegisterRoutes_PublicEndpoints(t *testing.T) {
	h := newRouterEngine([]string{"secret"})

	for _, path := range []string{"/", "/api/v1/health", "/metrics"} {
		resp := ut.PerformRequest(h.Engine, "GET", path, nil)
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}

	resp := ut.PerformRequest(h.Engine, "GET", "/metrics", nil)
	assert.Contains(t, resp.Body.String(), "jobai_http_requests_total")
}
