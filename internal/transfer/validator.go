// Package transfer turns raw ledger transactions into checked transfer
// parameters. Nothing in this package performs I/O.
package transfer

import (
	"fmt"
	"regexp"

	"github.com/ishihatta/HamiotFirebase/internal/ledger"
	"github.com/shopspring/decimal"
)

// Parameters are the fields of a validated TransferAsset command. Every field
// is non-empty and Amount is a positive integer in decimal notation, kept
// exactly as the client encoded it.
type Parameters struct {
	Amount        string
	AssetID       string
	SrcAccountID  string
	DestAccountID string
}

// amountPattern is plain decimal notation. decimal.NewFromString alone would
// also take signs and exponents such as "+5" or "1e2".
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Validator checks transfer transactions against the business rules.
type Validator struct {
	assetID string
}

// NewValidator returns a validator accepting transfers of assetID only.
func NewValidator(assetID string) *Validator {
	return &Validator{assetID: assetID}
}

// Validate decodes raw and extracts the first command's transfer parameters.
// The returned error is always a *ValidationError.
func (v *Validator) Validate(raw []byte) (Parameters, error) {
	tx, err := Decode(raw)
	if err != nil {
		return Parameters{}, err
	}
	return v.Extract(tx)
}

// Decode parses raw as a ledger transaction.
func Decode(raw []byte) (ledger.Transaction, error) {
	tx, err := ledger.DecodeTransaction(raw)
	if err != nil {
		return ledger.Transaction{}, reject(ErrDecode, err.Error())
	}
	return tx, nil
}

// Extract checks the first command of a decoded transaction.
func (v *Validator) Extract(tx ledger.Transaction) (Parameters, error) {
	cmd, ok := tx.FirstCommand().(ledger.TransferAsset)
	if !ok {
		return Parameters{}, reject(ErrNotTransfer, "")
	}
	return v.check(cmd)
}

func (v *Validator) check(cmd ledger.TransferAsset) (Parameters, error) {
	required := []struct {
		name  string
		value string
	}{
		{"amount", cmd.Amount},
		{"assetId", cmd.AssetID},
		{"srcAccountId", cmd.SrcAccountID},
		{"destAccountId", cmd.DestAccountID},
	}
	for _, f := range required {
		if f.value == "" {
			return Parameters{}, reject(ErrMissingField, f.name+" is missing")
		}
	}

	if cmd.AssetID != v.assetID {
		return Parameters{}, reject(ErrAssetMismatch, fmt.Sprintf("%q is not %q", cmd.AssetID, v.assetID))
	}

	if !amountPattern.MatchString(cmd.Amount) {
		return Parameters{}, reject(ErrInvalidAmount, fmt.Sprintf("%q is not a number", cmd.Amount))
	}
	amount, err := decimal.NewFromString(cmd.Amount)
	if err != nil {
		return Parameters{}, reject(ErrInvalidAmount, fmt.Sprintf("%q is not a number", cmd.Amount))
	}
	if !amount.IsInteger() || !amount.IsPositive() {
		return Parameters{}, reject(ErrInvalidAmount, fmt.Sprintf("%q is not a positive integer", cmd.Amount))
	}

	return Parameters{
		Amount:        cmd.Amount,
		AssetID:       cmd.AssetID,
		SrcAccountID:  cmd.SrcAccountID,
		DestAccountID: cmd.DestAccountID,
	}, nil
}
