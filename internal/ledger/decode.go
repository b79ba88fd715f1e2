package ledger

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned when bytes do not follow the ledger schema.
var ErrMalformed = errors.New("malformed ledger message")

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// forEachField walks the top-level fields of a protobuf message.
func forEachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) wantBytes() error {
	if f.typ != protowire.BytesType {
		return fmt.Errorf("%w: field %d has wire type %d, want bytes", ErrMalformed, f.num, f.typ)
	}
	return nil
}

func (f field) wantVarint() error {
	if f.typ != protowire.VarintType {
		return fmt.Errorf("%w: field %d has wire type %d, want varint", ErrMalformed, f.num, f.typ)
	}
	return nil
}

// DecodeTransaction parses a serialized ledger transaction.
func DecodeTransaction(b []byte) (Transaction, error) {
	var tx Transaction
	err := forEachField(b, func(f field) error {
		switch f.num {
		case fieldTxPayload:
			if err := f.wantBytes(); err != nil {
				return err
			}
			p, err := decodePayload(f.bytes)
			if err != nil {
				return err
			}
			tx.HasPayload = true
			tx.Payload = p
		case fieldTxSignatures:
			if err := f.wantBytes(); err != nil {
				return err
			}
			sig, err := decodeSignature(f.bytes)
			if err != nil {
				return err
			}
			tx.Signatures = append(tx.Signatures, sig)
		}
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func decodePayload(b []byte) (Payload, error) {
	var p Payload
	err := forEachField(b, func(f field) error {
		if f.num != fieldPayloadReduced {
			return nil
		}
		if err := f.wantBytes(); err != nil {
			return err
		}
		return forEachField(f.bytes, func(f field) error {
			switch f.num {
			case fieldReducedCommands:
				if err := f.wantBytes(); err != nil {
					return err
				}
				cmd, err := decodeCommand(f.bytes)
				if err != nil {
					return err
				}
				p.Commands = append(p.Commands, cmd)
			case fieldReducedCreator:
				if err := f.wantBytes(); err != nil {
					return err
				}
				p.CreatorAccountID = string(f.bytes)
			case fieldReducedCreatedTime:
				if err := f.wantVarint(); err != nil {
					return err
				}
				p.CreatedTime = f.varint
			case fieldReducedQuorum:
				if err := f.wantVarint(); err != nil {
					return err
				}
				p.Quorum = uint32(f.varint)
			}
			return nil
		})
	})
	return p, err
}

// decodeCommand resolves the oneof case of a Command message. As in protobuf,
// the last case present on the wire wins. A command with no case set decodes
// to nil.
func decodeCommand(b []byte) (Command, error) {
	var cmd Command
	err := forEachField(b, func(f field) error {
		if f.num > maxCommandField {
			return nil
		}
		if err := f.wantBytes(); err != nil {
			return err
		}
		switch f.num {
		case fieldCmdTransferAsset:
			t, err := decodeTransferAsset(f.bytes)
			if err != nil {
				return err
			}
			cmd = t
		case fieldCmdCreateAccount:
			c, err := decodeCreateAccount(f.bytes)
			if err != nil {
				return err
			}
			cmd = c
		default:
			cmd = OpaqueCommand{Field: f.num, Raw: f.bytes}
		}
		return nil
	})
	return cmd, err
}

func decodeTransferAsset(b []byte) (TransferAsset, error) {
	var t TransferAsset
	err := forEachField(b, func(f field) error {
		var dst *string
		switch f.num {
		case fieldTransferSrc:
			dst = &t.SrcAccountID
		case fieldTransferDest:
			dst = &t.DestAccountID
		case fieldTransferAssetID:
			dst = &t.AssetID
		case fieldTransferDescription:
			dst = &t.Description
		case fieldTransferAmount:
			dst = &t.Amount
		default:
			return nil
		}
		if err := f.wantBytes(); err != nil {
			return err
		}
		*dst = string(f.bytes)
		return nil
	})
	return t, err
}

func decodeCreateAccount(b []byte) (CreateAccount, error) {
	var c CreateAccount
	err := forEachField(b, func(f field) error {
		var dst *string
		switch f.num {
		case fieldCreateAccountName:
			dst = &c.AccountName
		case fieldCreateAccountDomain:
			dst = &c.DomainID
		case fieldCreateAccountPubKey:
			dst = &c.PublicKey
		default:
			return nil
		}
		if err := f.wantBytes(); err != nil {
			return err
		}
		*dst = string(f.bytes)
		return nil
	})
	return c, err
}

func decodeSignature(b []byte) (Signature, error) {
	var s Signature
	err := forEachField(b, func(f field) error {
		switch f.num {
		case fieldSigPublicKey:
			if err := f.wantBytes(); err != nil {
				return err
			}
			s.PublicKey = string(f.bytes)
		case fieldSigSignature:
			if err := f.wantBytes(); err != nil {
				return err
			}
			s.Signature = string(f.bytes)
		}
		return nil
	})
	return s, err
}

// ErrQueryRejected is returned when the ledger answers a query with an
// error response.
var ErrQueryRejected = errors.New("query rejected by ledger")

// DecodeAccountDetailResponse extracts the JSON detail document from a
// serialized QueryResponse.
func DecodeAccountDetailResponse(b []byte) (string, error) {
	var (
		detail    string
		found     bool
		rejection error
	)
	err := forEachField(b, func(f field) error {
		switch f.num {
		case fieldRespAccountDetail:
			if err := f.wantBytes(); err != nil {
				return err
			}
			found = true
			return forEachField(f.bytes, func(f field) error {
				if f.num != fieldAccountDetail {
					return nil
				}
				if err := f.wantBytes(); err != nil {
					return err
				}
				detail = string(f.bytes)
				return nil
			})
		case fieldRespError:
			if err := f.wantBytes(); err != nil {
				return err
			}
			msg := ""
			_ = forEachField(f.bytes, func(f field) error {
				if f.num == fieldErrorMessage && f.typ == protowire.BytesType {
					msg = string(f.bytes)
				}
				return nil
			})
			rejection = fmt.Errorf("%w: %s", ErrQueryRejected, msg)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if rejection != nil {
		return "", rejection
	}
	if !found {
		return "", fmt.Errorf("%w: no account detail in response", ErrMalformed)
	}
	return detail, nil
}
