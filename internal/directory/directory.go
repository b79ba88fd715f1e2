// Package directory reads per-account attributes from the ledger's
// account-detail store.
package directory

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/ledger"
	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
)

// Attribute keys written by the mobile client.
const (
	KeyDisplayName = "displayName"
	KeyFcmToken    = "fcmToken"
)

// Directory looks up one attribute of one account. A false result means the
// value is absent for any reason: unknown account, unset key, blank value or
// a failed lookup.
type Directory interface {
	GetAttribute(ctx context.Context, accountID, key string) (string, bool)
}

// Querier sends a serialized query to the ledger and returns the response.
type Querier interface {
	Query(ctx context.Context, query []byte) ([]byte, error)
}

// LedgerDirectory resolves attributes with signed GetAccountDetail queries.
type LedgerDirectory struct {
	querier Querier
	signer  ledger.Signer
	creator string
	counter atomic.Uint64
	now     func() time.Time
}

// NewLedgerDirectory returns a directory that queries as creatorAccountID.
func NewLedgerDirectory(querier Querier, signer ledger.Signer, creatorAccountID string) *LedgerDirectory {
	return &LedgerDirectory{
		querier: querier,
		signer:  signer,
		creator: creatorAccountID,
		now:     time.Now,
	}
}

// GetAttribute reads the value the account itself wrote under key. Only the
// first page of size one is requested.
func (d *LedgerDirectory) GetAttribute(ctx context.Context, accountID, key string) (string, bool) {
	value, err := d.lookup(ctx, accountID, key)
	if err != nil {
		slog.DebugContext(ctx, "attribute lookup failed", "account_id", accountID, "key", key, "error", err)
	}
	if err != nil || strings.TrimSpace(value) == "" {
		telemetry.AttributeLookupsTotal.WithLabelValues(key, "absent").Inc()
		return "", false
	}
	telemetry.AttributeLookupsTotal.WithLabelValues(key, "hit").Inc()
	return value, true
}

func (d *LedgerDirectory) lookup(ctx context.Context, accountID, key string) (string, error) {
	payload := ledger.EncodeAccountDetailPayload(ledger.AccountDetailQuery{
		CreatorAccountID: d.creator,
		CreatedTime:      uint64(d.now().UnixMilli()),
		Counter:          d.counter.Add(1),
		AccountID:        accountID,
		Key:              key,
		Writer:           accountID,
		PageSize:         1,
		PaginationKey:    key,
		PaginationWriter: accountID,
	})
	sig, err := d.signer.Sign(payload)
	if err != nil {
		return "", err
	}

	resp, err := d.querier.Query(ctx, ledger.EncodeQuery(payload, sig))
	if err != nil {
		return "", err
	}
	detail, err := ledger.DecodeAccountDetailResponse(resp)
	if err != nil {
		return "", err
	}

	// The detail document is keyed by writer, then by attribute key.
	var doc map[string]map[string]string
	if err := json.Unmarshal([]byte(detail), &doc); err != nil {
		return "", err
	}
	return doc[accountID][key], nil
}
