package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLaunchpad/launchgate/internal/clock"
	"github.com/GoLaunchpad/launchgate/internal/ledger"
	"github.com/GoLaunchpad/launchgate/internal/middleware"
	"github.com/GoLaunchpad/launchgate/internal/model"
	"github.com/GoLaunchpad/launchgate/internal/repository"
	"github.com/GoLaunchpad/launchgate/internal/service"
)

func newHookRouter(t *testing.T, policy model.Policy) (*gin.Engine, *repository.MemoryAllowlist) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	policies := repository.NewMemoryPolicyStore()
	require.NoError(t, policies.Create(context.Background(), nil, &policy))
	allowlist := repository.NewMemoryAllowlist()

	authorizer := service.NewAuthorizer(policies, allowlist, ledger.NewMemory(), clock.Fixed(540*60))
	h := NewHookHandler(authorizer, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/v1/hooks/transfer", h.Authorize)
	return r, allowlist
}

func postHook(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/hooks/transfer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHookPermitted(t *testing.T) {
	asset := model.AssetID{0x40}
	r, _ := newHookRouter(t, model.Policy{Owner: model.Identity{0x01}, Asset: asset})

	body, _ := json.Marshal(model.TransferHookRequest{
		Asset:     asset.String(),
		Sender:    model.Identity{0x51}.String(),
		Recipient: model.Identity{0x52}.String(),
		Amount:    100,
	})
	w := postHook(r, string(body))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp model.TransferHookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Permitted)
	assert.Empty(t, resp.Reason)
}

func TestHookRejectedWithReason(t *testing.T) {
	asset := model.AssetID{0x40}
	r, _ := newHookRouter(t, model.Policy{
		Owner:            model.Identity{0x01},
		Asset:            asset,
		WhitelistEnabled: true,
	})

	body, _ := json.Marshal(model.TransferHookRequest{
		Asset:     asset.String(),
		Sender:    model.Identity{0x51}.String(),
		Recipient: model.Identity{0x52}.String(),
		Amount:    100,
	})
	w := postHook(r, string(body))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp model.TransferHookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Permitted)
	assert.Equal(t, "SENDER_NOT_WHITELISTED", resp.Reason)
}

func TestHookWhitelistedSenderPermitted(t *testing.T) {
	asset := model.AssetID{0x40}
	sender := model.Identity{0x51}
	r, allowlist := newHookRouter(t, model.Policy{
		Owner:            model.Identity{0x01},
		Asset:            asset,
		WhitelistEnabled: true,
	})
	require.NoError(t, allowlist.Add(context.Background(), asset, sender))

	body, _ := json.Marshal(model.TransferHookRequest{
		Asset:     asset.String(),
		Sender:    sender.String(),
		Recipient: model.Identity{0x52}.String(),
		Amount:    100,
	})
	w := postHook(r, string(body))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHookMalformedRequest(t *testing.T) {
	r, _ := newHookRouter(t, model.Policy{Owner: model.Identity{0x01}, Asset: model.AssetID{0x40}})

	w := postHook(r, `{"asset":"nope","sender":"x","recipient":"y","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
