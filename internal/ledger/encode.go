package ledger

import "google.golang.org/protobuf/encoding/protowire"

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// EncodePayload serializes a Transaction.Payload message. These are the bytes
// a transaction signature covers.
func EncodePayload(p Payload) []byte {
	var reduced []byte
	for _, cmd := range p.Commands {
		reduced = appendMessage(reduced, fieldReducedCommands, encodeCommand(cmd))
	}
	reduced = appendString(reduced, fieldReducedCreator, p.CreatorAccountID)
	reduced = appendVarint(reduced, fieldReducedCreatedTime, p.CreatedTime)
	reduced = appendVarint(reduced, fieldReducedQuorum, uint64(p.Quorum))

	return appendMessage(nil, fieldPayloadReduced, reduced)
}

// EncodeTransaction serializes a transaction in the ledger's wire format.
func EncodeTransaction(tx Transaction) []byte {
	var b []byte
	if tx.HasPayload {
		b = appendMessage(b, fieldTxPayload, EncodePayload(tx.Payload))
	}
	for _, sig := range tx.Signatures {
		b = appendMessage(b, fieldTxSignatures, encodeSignature(sig))
	}
	return b
}

func encodeCommand(cmd Command) []byte {
	switch c := cmd.(type) {
	case TransferAsset:
		var body []byte
		body = appendString(body, fieldTransferSrc, c.SrcAccountID)
		body = appendString(body, fieldTransferDest, c.DestAccountID)
		body = appendString(body, fieldTransferAssetID, c.AssetID)
		body = appendString(body, fieldTransferDescription, c.Description)
		body = appendString(body, fieldTransferAmount, c.Amount)
		return appendMessage(nil, fieldCmdTransferAsset, body)
	case CreateAccount:
		var body []byte
		body = appendString(body, fieldCreateAccountName, c.AccountName)
		body = appendString(body, fieldCreateAccountDomain, c.DomainID)
		body = appendString(body, fieldCreateAccountPubKey, c.PublicKey)
		return appendMessage(nil, fieldCmdCreateAccount, body)
	case OpaqueCommand:
		return appendMessage(nil, c.Field, c.Raw)
	}
	return nil
}

func encodeSignature(sig Signature) []byte {
	var b []byte
	b = appendString(b, fieldSigPublicKey, sig.PublicKey)
	b = appendString(b, fieldSigSignature, sig.Signature)
	return b
}

// AccountDetailQuery selects one page of an account's detail store.
type AccountDetailQuery struct {
	CreatorAccountID string
	CreatedTime      uint64
	Counter          uint64

	AccountID        string
	Key              string
	Writer           string
	PageSize         uint32
	PaginationKey    string
	PaginationWriter string
}

// EncodeAccountDetailPayload serializes the Query.Payload message of a
// GetAccountDetail query.
func EncodeAccountDetailPayload(q AccountDetailQuery) []byte {
	var meta []byte
	meta = appendVarint(meta, fieldMetaCreatedTime, q.CreatedTime)
	meta = appendString(meta, fieldMetaCreator, q.CreatorAccountID)
	meta = appendVarint(meta, fieldMetaCounter, q.Counter)

	var record []byte
	record = appendString(record, fieldRecordWriter, q.PaginationWriter)
	record = appendString(record, fieldRecordKey, q.PaginationKey)

	var pagination []byte
	pagination = appendVarint(pagination, fieldPaginationPageSize, uint64(q.PageSize))
	pagination = appendMessage(pagination, fieldPaginationFirstRecord, record)

	var detail []byte
	detail = appendString(detail, fieldDetailAccountID, q.AccountID)
	detail = appendString(detail, fieldDetailKey, q.Key)
	detail = appendString(detail, fieldDetailWriter, q.Writer)
	detail = appendMessage(detail, fieldDetailPagination, pagination)

	var payload []byte
	payload = appendMessage(payload, fieldQueryMeta, meta)
	payload = appendMessage(payload, fieldQueryGetAccountDetail, detail)
	return payload
}

// EncodeQuery wraps a signed query payload into a Query message.
func EncodeQuery(payload []byte, sig Signature) []byte {
	var b []byte
	b = appendMessage(b, fieldQueryPayload, payload)
	b = appendMessage(b, fieldQuerySignature, encodeSignature(sig))
	return b
}

// EncodeAccountDetailResponse serializes a QueryResponse carrying an account
// detail document. The ledger produces these; the service only needs it to
// stand in for the ledger.
func EncodeAccountDetailResponse(detail string) []byte {
	var body []byte
	body = appendString(body, fieldAccountDetail, detail)
	return appendMessage(nil, fieldRespAccountDetail, body)
}

// EncodeErrorResponse serializes a QueryResponse carrying an error response.
func EncodeErrorResponse(message string) []byte {
	var body []byte
	body = appendString(body, fieldErrorMessage, message)
	return appendMessage(nil, fieldRespError, body)
}
