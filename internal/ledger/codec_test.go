package ledger

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func sampleTransfer() Transaction {
	return Transaction{
		HasPayload: true,
		Payload: Payload{
			Commands: []Command{TransferAsset{
				SrcAccountID:  "1700000000000@test",
				DestAccountID: "1700000000001@test",
				AssetID:       "hamiot#test",
				Description:   "lunch",
				Amount:        "100",
			}},
			CreatorAccountID: "1700000000000@test",
			CreatedTime:      1700000000123,
			Quorum:           1,
		},
		Signatures: []Signature{{PublicKey: "ed0120aa", Signature: "bb"}},
	}
}

func TestDecodeTransaction_RoundTrip(t *testing.T) {
	tx := sampleTransfer()
	tx.Payload.Commands = append(tx.Payload.Commands,
		CreateAccount{AccountName: "1700000000002", DomainID: "test", PublicKey: "ed0120cc"},
		OpaqueCommand{Field: 7, Raw: []byte{0x0a, 0x01, 'x'}},
	)

	raw := EncodeTransaction(tx)
	got, err := DecodeTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	// Canonical input re-encodes to identical bytes.
	assert.Equal(t, raw, EncodeTransaction(got))
}

func TestDecodeTransaction_Empty(t *testing.T) {
	tx, err := DecodeTransaction(nil)
	require.NoError(t, err)
	assert.False(t, tx.HasPayload)
	assert.Nil(t, tx.FirstCommand())
}

func TestDecodeTransaction_PayloadWithoutCommands(t *testing.T) {
	tx := sampleTransfer()
	tx.Payload.Commands = nil

	got, err := DecodeTransaction(EncodeTransaction(tx))
	require.NoError(t, err)
	assert.True(t, got.HasPayload)
	assert.Nil(t, got.FirstCommand())
}

func TestDecodeTransaction_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated length", []byte{0x0a, 0x05, 0x01}},
		{"bad tag", []byte{0xff}},
		{"payload as varint", protowire.AppendVarint(protowire.AppendTag(nil, fieldTxPayload, protowire.VarintType), 1)},
		{"garbage", []byte("not a transaction at all")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransaction(tt.raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeTransaction_SkipsUnknownFields(t *testing.T) {
	raw := EncodeTransaction(sampleTransfer())
	raw = protowire.AppendTag(raw, 99, protowire.Fixed32Type)
	raw = protowire.AppendFixed32(raw, 42)

	got, err := DecodeTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, sampleTransfer(), got)
}

func TestDecodeCommand_LastCaseWins(t *testing.T) {
	create := appendString(nil, fieldCreateAccountName, "someone")
	transfer := appendString(nil, fieldTransferAmount, "5")

	var cmd []byte
	cmd = appendMessage(cmd, fieldCmdCreateAccount, create)
	cmd = appendMessage(cmd, fieldCmdTransferAsset, transfer)

	got, err := decodeCommand(cmd)
	require.NoError(t, err)
	assert.Equal(t, TransferAsset{Amount: "5"}, got)
}

func TestDecodeCommand_NoCase(t *testing.T) {
	got, err := decodeCommand(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeAccountDetailResponse(t *testing.T) {
	doc := `{"1700000000000@test":{"displayName":"Alice"}}`

	got, err := DecodeAccountDetailResponse(EncodeAccountDetailResponse(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDecodeAccountDetailResponse_Error(t *testing.T) {
	_, err := DecodeAccountDetailResponse(EncodeErrorResponse("no such account"))
	require.ErrorIs(t, err, ErrQueryRejected)
	assert.Contains(t, err.Error(), "no such account")
}

func TestDecodeAccountDetailResponse_Missing(t *testing.T) {
	_, err := DecodeAccountDetailResponse(nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeAccountDetailPayload(t *testing.T) {
	payload := EncodeAccountDetailPayload(AccountDetailQuery{
		CreatorAccountID: "admin@test",
		CreatedTime:      1700000000000,
		Counter:          3,
		AccountID:        "alice@test",
		Key:              "displayName",
		Writer:           "alice@test",
		PageSize:         1,
		PaginationKey:    "displayName",
		PaginationWriter: "alice@test",
	})

	seen := map[protowire.Number]bool{}
	var accountID, key string
	err := forEachField(payload, func(f field) error {
		seen[f.num] = true
		if f.num != fieldQueryGetAccountDetail {
			return nil
		}
		return forEachField(f.bytes, func(f field) error {
			switch f.num {
			case fieldDetailAccountID:
				accountID = string(f.bytes)
			case fieldDetailKey:
				key = string(f.bytes)
			}
			return nil
		})
	})
	require.NoError(t, err)

	assert.True(t, seen[fieldQueryMeta])
	assert.True(t, seen[fieldQueryGetAccountDetail])
	assert.Equal(t, "alice@test", accountID)
	assert.Equal(t, "displayName", key)
}

func TestRawCodec(t *testing.T) {
	c := rawCodec{}
	b, err := c.Marshal(&frame{b: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	var f frame
	require.NoError(t, c.Unmarshal([]byte{4, 5}, &f))
	assert.Equal(t, []byte{4, 5}, f.b)

	_, err = c.Marshal("not a frame")
	assert.Error(t, err)
	assert.Equal(t, "proto", c.Name())
}

// Golden encodings follow iroha.protocol 1.x (queries.proto, commands.proto)
// and were laid out by hand from those field numbers.
func TestEncodeAccountDetailPayload_Golden(t *testing.T) {
	got := EncodeAccountDetailPayload(AccountDetailQuery{
		CreatorAccountID: "admin@test",
		CreatedTime:      1,
		Counter:          1,
		AccountID:        "a@t",
		Key:              "k",
		Writer:           "a@t",
		PageSize:         1,
		PaginationKey:    "k",
		PaginationWriter: "a@t",
	})

	want := "" +
		"0a10" + // payload.meta
		"0801" + "120a" + hex.EncodeToString([]byte("admin@test")) + "1801" +
		"4a1b" + // payload.get_account_detail (oneof case 9)
		"0a03614074" + "12016b" + "1a03614074" +
		"220c" + "0801" + "1208" + "0a03614074" + "12016b"
	assert.Equal(t, want, hex.EncodeToString(got))
}

func TestEncodeTransferCommand_Golden(t *testing.T) {
	got := encodeCommand(TransferAsset{
		SrcAccountID:  "a@t",
		DestAccountID: "b@t",
		AssetID:       "c#t",
		Amount:        "1",
	})

	want := "8201" + "12" + // command.transfer_asset (oneof case 16)
		"0a03614074" + "1203624074" + "1a03632374" + "2a0131"
	assert.Equal(t, want, hex.EncodeToString(got))
}

func TestDecodeAccountDetailResponse_Golden(t *testing.T) {
	// QueryResponse{account_detail_response{detail: "{}"}}
	raw, err := hex.DecodeString("1204" + "0a027b7d")
	require.NoError(t, err)

	got, err := DecodeAccountDetailResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}
