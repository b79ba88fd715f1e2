package handler

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/ishihatta/HamiotFirebase/internal/engine"
	"github.com/ishihatta/HamiotFirebase/internal/transfer"
)

const (
	validationError = "Validation error"

	// maxBodyBytes bounds a request body. A signed transfer is a few hundred
	// bytes once base64-encoded.
	maxBodyBytes = 1 << 20
)

// Handler contains all HTTP handlers
type Handler struct {
	transfers *engine.TransferEngine
	accounts  *engine.AccountService
}

// NewHandler creates a new handler
func NewHandler(transfers *engine.TransferEngine, accounts *engine.AccountService) *Handler {
	return &Handler{
		transfers: transfers,
		accounts:  accounts,
	}
}

// CallResponse is the body of every RPC response. Result is "OK" or "NG".
type CallResponse struct {
	Result       string `json:"result"`
	Detail       string `json:"detail,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	IrohaAddress string `json:"irohaAddress,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
}

// TransferAssetRequest carries a base64-encoded, client-signed transaction.
type TransferAssetRequest struct {
	Transaction string `json:"transaction" binding:"required"`
}

// TransferAsset handles POST /transferAsset
func (h *Handler) TransferAsset(c *gin.Context) {
	var req TransferAssetRequest
	envelope, err := bindCall(c, &req)
	if err != nil {
		respond(c, envelope, CallResponse{Result: string(engine.StatusNG), Detail: validationError})
		return
	}

	raw, err := decodeBase64(req.Transaction)
	if err != nil {
		detail := (&transfer.ValidationError{Err: transfer.ErrDecode, Detail: "invalid base64"}).Error()
		respond(c, envelope, CallResponse{Result: string(engine.StatusNG), Detail: detail})
		return
	}

	result := h.transfers.TransferAsset(c.Request.Context(), raw)
	respond(c, envelope, CallResponse{Result: string(result.Status), Detail: result.Detail})
}

// NewAccountRequest carries the public key of the account to create.
type NewAccountRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
}

// NewAccount handles POST /newAccount
func (h *Handler) NewAccount(c *gin.Context) {
	var req NewAccountRequest
	envelope, err := bindCall(c, &req)
	if err != nil {
		respond(c, envelope, CallResponse{Result: string(engine.StatusNG), Detail: validationError})
		return
	}

	result := h.accounts.NewAccount(c.Request.Context(), req.PublicKey)
	respond(c, envelope, CallResponse{
		Result:       string(result.Status),
		Detail:       result.Detail,
		AccountID:    result.AccountID,
		IrohaAddress: result.LedgerAddress,
	})
}

// PublicUserDataRequest names the account to look up.
type PublicUserDataRequest struct {
	AccountID string `json:"accountId" binding:"required"`
}

// GetPublicUserData handles POST /getPublicUserData
func (h *Handler) GetPublicUserData(c *gin.Context) {
	var req PublicUserDataRequest
	envelope, err := bindCall(c, &req)
	if err != nil {
		respond(c, envelope, CallResponse{Result: string(engine.StatusNG), Detail: validationError})
		return
	}

	result := h.accounts.PublicUserData(c.Request.Context(), req.AccountID)
	respond(c, envelope, CallResponse{
		Result:      string(result.Status),
		Detail:      result.Detail,
		AccountID:   result.AccountID,
		DisplayName: result.DisplayName,
	})
}

// HealthResponse is the response for health check endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// bindCall decodes the request into req. Bodies wrapped as {"data": {...}},
// the callable-function convention, are unwrapped and the returned flag
// asks for the response to be wrapped the same way.
func bindCall[T any](c *gin.Context, req *T) (bool, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var envelope struct {
		Data *T `json:"data"`
	}
	// The body is cached on the context, so the second bind re-reads it.
	err := c.ShouldBindBodyWith(&envelope, binding.JSON)
	if envelope.Data != nil {
		if err == nil {
			*req = *envelope.Data
		}
		return true, err
	}
	if err != nil {
		return false, err
	}
	return false, c.ShouldBindBodyWith(req, binding.JSON)
}

// respond always answers 200; the outcome travels in the result field.
func respond(c *gin.Context, envelope bool, resp CallResponse) {
	if envelope {
		c.JSON(http.StatusOK, gin.H{"result": resp})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func decodeBase64(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return base64.RawStdEncoding.DecodeString(s)
	}
	return raw, nil
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	r.POST("/transferAsset", h.TransferAsset)
	r.POST("/newAccount", h.NewAccount)
	r.POST("/getPublicUserData", h.GetPublicUserData)
}
