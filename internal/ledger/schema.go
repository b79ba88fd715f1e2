package ledger

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers of the ledger's protobuf schema (iroha.protocol, 1.x).
// Only the messages this service reads or writes are listed.
const (
	// Transaction
	fieldTxPayload    protowire.Number = 1
	fieldTxSignatures protowire.Number = 2

	// Transaction.Payload. The batch field is not read.
	fieldPayloadReduced protowire.Number = 1

	// Transaction.Payload.ReducedPayload
	fieldReducedCommands    protowire.Number = 1
	fieldReducedCreator     protowire.Number = 2
	fieldReducedCreatedTime protowire.Number = 3
	fieldReducedQuorum      protowire.Number = 4

	// Command oneof cases
	fieldCmdCreateAccount protowire.Number = 5
	fieldCmdTransferAsset protowire.Number = 16

	// TransferAsset
	fieldTransferSrc         protowire.Number = 1
	fieldTransferDest        protowire.Number = 2
	fieldTransferAssetID     protowire.Number = 3
	fieldTransferDescription protowire.Number = 4
	fieldTransferAmount      protowire.Number = 5

	// CreateAccount
	fieldCreateAccountName   protowire.Number = 1
	fieldCreateAccountDomain protowire.Number = 2
	fieldCreateAccountPubKey protowire.Number = 3

	// Signature
	fieldSigPublicKey protowire.Number = 1
	fieldSigSignature protowire.Number = 2

	// Query / Query.Payload
	fieldQueryPayload          protowire.Number = 1
	fieldQuerySignature        protowire.Number = 2
	fieldQueryMeta             protowire.Number = 1
	fieldQueryGetAccountDetail protowire.Number = 9

	// QueryPayloadMeta
	fieldMetaCreatedTime protowire.Number = 1
	fieldMetaCreator     protowire.Number = 2
	fieldMetaCounter     protowire.Number = 3

	// GetAccountDetail
	fieldDetailAccountID  protowire.Number = 1
	fieldDetailKey        protowire.Number = 2
	fieldDetailWriter     protowire.Number = 3
	fieldDetailPagination protowire.Number = 4

	// AccountDetailPaginationMeta / AccountDetailRecordId
	fieldPaginationPageSize    protowire.Number = 1
	fieldPaginationFirstRecord protowire.Number = 2
	fieldRecordWriter          protowire.Number = 1
	fieldRecordKey             protowire.Number = 2

	// QueryResponse
	fieldRespAccountDetail protowire.Number = 2
	fieldRespError         protowire.Number = 4
	fieldAccountDetail     protowire.Number = 1
	fieldErrorMessage      protowire.Number = 2

	maxCommandField protowire.Number = 20
)

// gRPC method paths of the ledger gateway.
const (
	toriiMethod = "/iroha.protocol.CommandService_v1/Torii"
	findMethod  = "/iroha.protocol.QueryService_v1/Find"
)
