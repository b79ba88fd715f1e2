package handler

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ishihatta/HamiotFirebase/internal/engine"
	"github.com/ishihatta/HamiotFirebase/internal/ledger"
	"github.com/ishihatta/HamiotFirebase/internal/notify"
	"github.com/ishihatta/HamiotFirebase/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSubmitter struct {
	mu    sync.Mutex
	count int
}

func (s *nopSubmitter) Submit(context.Context, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return nil
}

type staticDirectory map[string]string

func (d staticDirectory) GetAttribute(_ context.Context, accountID, key string) (string, bool) {
	v, ok := d[accountID+"/"+key]
	return v, ok
}

type nopGateway struct{}

func (nopGateway) Send(context.Context, notify.Push) (string, error) { return "id", nil }

func setupRouter(t *testing.T) (*gin.Engine, *nopSubmitter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	submitter := &nopSubmitter{}
	dir := staticDirectory{"alice@test/displayName": "Alice"}
	signer, err := ledger.NewEd25519Signer(hex.EncodeToString(bytes.Repeat([]byte{3}, ed25519.SeedSize)))
	require.NoError(t, err)

	transfers := engine.NewTransferEngine(
		transfer.NewValidator("hamiot#test"),
		submitter,
		dir,
		notify.NewDispatcher(nopGateway{}, time.Second),
	)
	t.Cleanup(transfers.Wait)
	accounts := engine.NewAccountService(engine.AccountConfig{
		AdminAccountID: "admin@test",
		DomainID:       "test",
		LedgerAddress:  "ledger:50051",
	}, submitter, signer, dir)

	r := gin.New()
	SetupRoutes(r, NewHandler(transfers, accounts))
	return r, submitter
}

func encodedTransfer(amount string) string {
	raw := ledger.EncodeTransaction(ledger.Transaction{
		HasPayload: true,
		Payload: ledger.Payload{
			Commands: []ledger.Command{ledger.TransferAsset{
				SrcAccountID:  "alice@test",
				DestAccountID: "bob@test",
				AssetID:       "hamiot#test",
				Amount:        amount,
			}},
			CreatorAccountID: "alice@test",
			Quorum:           1,
		},
	})
	return base64.StdEncoding.EncodeToString(raw)
}

func post(t *testing.T, r *gin.Engine, path, body string) map[string]any {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestTransferAsset_Plain(t *testing.T) {
	r, submitter := setupRouter(t)

	out := post(t, r, "/transferAsset", `{"transaction":"`+encodedTransfer("100")+`"}`)

	assert.Equal(t, map[string]any{"result": "OK"}, out)
	assert.Equal(t, 1, submitter.count)
}

func TestTransferAsset_Envelope(t *testing.T) {
	r, _ := setupRouter(t)

	out := post(t, r, "/transferAsset", `{"data":{"transaction":"`+encodedTransfer("0")+`"}}`)

	result, ok := out["result"].(map[string]any)
	require.True(t, ok, "response must be wrapped: %v", out)
	assert.Equal(t, "NG", result["result"])
	assert.Contains(t, result["detail"], "amount is invalid")
}

func TestTransferAsset_BadRequests(t *testing.T) {
	r, submitter := setupRouter(t)

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"empty body", ``, "Validation error"},
		{"not json", `transaction=abc`, "Validation error"},
		{"missing transaction", `{}`, "Validation error"},
		{"empty transaction", `{"transaction":""}`, "Validation error"},
		{"transaction not a string", `{"transaction":42}`, "Validation error"},
		{"bad base64", `{"transaction":"***"}`, "transaction cannot be decoded: invalid base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := post(t, r, "/transferAsset", tt.body)
			assert.Equal(t, "NG", out["result"])
			assert.Equal(t, tt.detail, out["detail"])
		})
	}
	assert.Zero(t, submitter.count)
}

func TestTransferAsset_EnvelopeMissingField(t *testing.T) {
	r, submitter := setupRouter(t)

	out := post(t, r, "/transferAsset", `{"data":{"other":"x"}}`)

	assert.Equal(t, map[string]any{"result": map[string]any{"result": "NG", "detail": "Validation error"}}, out)
	assert.Zero(t, submitter.count)
}

func TestTransferAsset_OversizedBody(t *testing.T) {
	r, submitter := setupRouter(t)

	body := `{"transaction":"` + strings.Repeat("A", maxBodyBytes) + `"}`
	out := post(t, r, "/transferAsset", body)

	assert.Equal(t, map[string]any{"result": "NG", "detail": "Validation error"}, out)
	assert.Zero(t, submitter.count)
}

func TestNewAccount(t *testing.T) {
	r, _ := setupRouter(t)

	out := post(t, r, "/newAccount", `{"data":{"publicKey":"ed0120abcd"}}`)
	result := out["result"].(map[string]any)
	assert.Equal(t, "OK", result["result"])
	assert.Regexp(t, `^\d+@test$`, result["accountId"])
	assert.Equal(t, "ledger:50051", result["irohaAddress"])

	out = post(t, r, "/newAccount", `{}`)
	assert.Equal(t, map[string]any{"result": "NG", "detail": "Validation error"}, out)

	out = post(t, r, "/newAccount", `{"data":{}}`)
	assert.Equal(t, map[string]any{"result": map[string]any{"result": "NG", "detail": "Validation error"}}, out)
}

func TestGetPublicUserData(t *testing.T) {
	r, _ := setupRouter(t)

	out := post(t, r, "/getPublicUserData", `{"accountId":"alice@test"}`)
	assert.Equal(t, map[string]any{"result": "OK", "displayName": "Alice"}, out)

	out = post(t, r, "/getPublicUserData", `{"accountId":"bob@test"}`)
	assert.Equal(t, map[string]any{"result": "NG", "detail": "displayName is null", "accountId": "bob@test"}, out)

	out = post(t, r, "/getPublicUserData", `{"data":{"accountId":"alice@test"}}`)
	assert.Equal(t, map[string]any{"result": map[string]any{"result": "OK", "displayName": "Alice"}}, out)
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
