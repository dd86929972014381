package types

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/bcdb/pkg/types"
)

func TestFromError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{types.Malformedf("缺少 UserID"), http.StatusBadRequest, CodeMalformedRequest},
		{&types.Error{Kind: types.KindUnknownIdentity, Message: "x"}, http.StatusUnauthorized, CodeUnknownIdentity},
		{&types.Error{Kind: types.KindInvalidSignature, Message: "x"}, http.StatusUnauthorized, CodeInvalidSignature},
		{&types.Error{Kind: types.KindUnauthorized, Message: "x"}, http.StatusForbidden, CodeUnauthorized},
		{types.NotFoundf("节点不存在"), http.StatusNotFound, CodeNotFound},
		{types.Unavailable("超时", context.DeadlineExceeded), http.StatusServiceUnavailable, CodeUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		pd := FromError(tc.err, true)
		assert.Equal(t, tc.status, pd.Status, tc.err.Error())
		assert.Equal(t, tc.code, pd.Code)
	}
}

func TestFromError_Coarsening(t *testing.T) {
	unknown := FromError(&types.Error{Kind: types.KindUnknownIdentity, Message: "用户未注册"}, false)
	invalid := FromError(&types.Error{Kind: types.KindInvalidSignature, Message: "签名校验失败"}, false)

	assert.Equal(t, CodeAuthenticationFailed, unknown.Code)
	assert.Equal(t, CodeAuthenticationFailed, invalid.Code)
	assert.Equal(t, unknown.Detail, invalid.Detail)
	assert.Equal(t, unknown.Status, invalid.Status)
}

func TestFromError_InternalDetailHidden(t *testing.T) {
	pd := FromError(errors.New("badger: disk path /secret"), false)
	assert.NotContains(t, pd.Detail, "/secret")
}

func TestWriteJSON_RetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(types.Unavailable("注册表查询超时", nil), false).WriteJSON(rec)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"code":"UNAVAILABLE"`)
}
