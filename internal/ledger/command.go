package ledger

import "google.golang.org/protobuf/encoding/protowire"

// Command is one instruction inside a transaction payload. It is a closed set:
// TransferAsset, CreateAccount, or OpaqueCommand for every other case.
type Command interface {
	isCommand()
}

// TransferAsset moves an amount of an asset between two accounts.
type TransferAsset struct {
	SrcAccountID  string
	DestAccountID string
	AssetID       string
	Description   string
	Amount        string
}

// CreateAccount registers a new account under a domain.
type CreateAccount struct {
	AccountName string
	DomainID    string
	PublicKey   string
}

// OpaqueCommand is any command variant this service does not interpret.
// Field is the oneof case number, Raw the undecoded message body.
type OpaqueCommand struct {
	Field protowire.Number
	Raw   []byte
}

func (TransferAsset) isCommand() {}
func (CreateAccount) isCommand() {}
func (OpaqueCommand) isCommand() {}

// Payload is the reduced payload of a transaction.
type Payload struct {
	Commands         []Command
	CreatorAccountID string
	CreatedTime      uint64
	Quorum           uint32
}

// Signature is a hex-encoded public key and signature pair.
type Signature struct {
	PublicKey string
	Signature string
}

// Transaction is a decoded ledger transaction. HasPayload is false when the
// payload field was not present on the wire.
type Transaction struct {
	HasPayload bool
	Payload    Payload
	Signatures []Signature
}

// FirstCommand returns the first command of the reduced payload, or nil if
// there is none.
func (t Transaction) FirstCommand() Command {
	if !t.HasPayload || len(t.Payload.Commands) == 0 {
		return nil
	}
	return t.Payload.Commands[0]
}
