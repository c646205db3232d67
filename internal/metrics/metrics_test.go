package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveExtraction(t *testing.T) {
	before := testutil.ToFloat64(extractionsTotal.WithLabelValues(SourceText, OutcomeSuccess))

	ObserveExtraction(SourceText, OutcomeSuccess, 20*time.Millisecond)

	after := testutil.ToFloat64(extractionsTotal.WithLabelValues(SourceText, OutcomeSuccess))
	assert.Equal(t, before+1, after)
}

func TestSinkFailedAndWorkerMessage(t *testing.T) {
	SinkFailed("redis")
	WorkerMessage("ack")

	assert.GreaterOrEqual(t, testutil.ToFloat64(sinkFailuresTotal.WithLabelValues("redis")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(workerMessagesTotal.WithLabelValues("ack")), 1.0)
}

func TestHertzMiddlewareAndHandler(t *testing.T) {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.Use(HertzMiddleware())
	h.GET("/ping", func(ctx context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, "pong")
	})
	h.GET("/metrics", Handler())

	resp := ut.PerformRequest(h.Engine, "GET", "/ping", nil)
	assert.Equal(t, consts.StatusOK, resp.Code)

	labels := map[string]string{"method": "GET", "path": "/ping", "status": "200"}
	assert.GreaterOrEqual(t, testutil.ToFloat64(requestTotal.With(labels)), 1.0)

	resp = ut.PerformRequest(h.Engine, "GET", "/metrics", nil)
	assert.Equal(t, consts.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "jobai_http_requests_total"))
	assert.Contains(t, string(resp.Result().Header.ContentType()), "text/plain")
}
