package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/ledger/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var defaultOptions = Options{SubmitTimeout: time.Second, QueryTimeout: time.Second}

func dialLedger(t *testing.T, l *ledgertest.Server, opts Options) *Client {
	t.Helper()

	l.Start(t)
	client, err := Dial(ledgertest.Target, opts, l.DialOption())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_SubmitForwardsBytes(t *testing.T) {
	l := &ledgertest.Server{}
	client := dialLedger(t, l, defaultOptions)

	raw := EncodeTransaction(sampleTransfer())
	require.NoError(t, client.Submit(context.Background(), raw))

	assert.Equal(t, []ledgertest.Call{{Method: toriiMethod, Request: raw}}, l.Calls())
}

func TestClient_SubmitRejected(t *testing.T) {
	l := &ledgertest.Server{Err: status.Error(codes.InvalidArgument, "stateless validation failed")}
	client := dialLedger(t, l, defaultOptions)

	err := client.Submit(context.Background(), EncodeTransaction(sampleTransfer()))
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClient_SubmitTimeout(t *testing.T) {
	l := &ledgertest.Server{Block: true}
	client := dialLedger(t, l, Options{SubmitTimeout: 50 * time.Millisecond, QueryTimeout: time.Second})

	start := time.Now()
	err := client.Submit(context.Background(), EncodeTransaction(sampleTransfer()))
	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_Query(t *testing.T) {
	reply := EncodeAccountDetailResponse(`{"alice@test":{"displayName":"Alice"}}`)
	l := &ledgertest.Server{Reply: reply}
	client := dialLedger(t, l, defaultOptions)

	query := EncodeQuery([]byte{0x0a, 0x00}, Signature{PublicKey: "ed0120aa", Signature: "bb"})
	got, err := client.Query(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, reply, got)
	assert.Equal(t, []ledgertest.Call{{Method: findMethod, Request: query}}, l.Calls())
}

func TestClient_QueryTimeout(t *testing.T) {
	l := &ledgertest.Server{Block: true}
	client := dialLedger(t, l, Options{SubmitTimeout: time.Second, QueryTimeout: 40 * time.Millisecond})

	start := time.Now()
	_, err := client.Query(context.Background(), EncodeQuery(nil, Signature{}))
	require.Error(t, err)
	assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
