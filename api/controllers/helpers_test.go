package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/api/middleware"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	"github.com/adspacehub/adspace-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type requestOpts struct {
	body   string
	userID uuid.UUID
	role   enums.UserRole
	params map[string]string
}

func newRequest(method, target string, opts requestOpts) *http.Request {
	var body io.Reader
	if opts.body != "" {
		body = strings.NewReader(opts.body)
	}
	req := httptest.NewRequest(method, target, body)
	ctx := req.Context()
	if opts.role != "" {
		ctx = middleware.WithIdentity(ctx, opts.userID, opts.role)
	}
	if len(opts.params) > 0 {
		rc := chi.NewRouteContext()
		for k, v := range opts.params {
			rc.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	}
	return req.WithContext(ctx)
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	handler(resp, req)
	return resp
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope.Data
}

func decodeAPIError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope.Error
}
