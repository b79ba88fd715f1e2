package engine

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/ishihatta/HamiotFirebase/internal/directory"
	"github.com/ishihatta/HamiotFirebase/internal/ledger"
	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
)

// AccountConfig describes the admin identity used to create accounts.
type AccountConfig struct {
	AdminAccountID string
	DomainID       string
	LedgerAddress  string
}

// AccountResult is returned by NewAccount.
type AccountResult struct {
	Status        Status
	Detail        string
	AccountID     string
	LedgerAddress string
}

// UserDataResult is returned by PublicUserData.
type UserDataResult struct {
	Status      Status
	Detail      string
	AccountID   string
	DisplayName string
}

// AccountService creates accounts and exposes their public attributes.
type AccountService struct {
	cfg       AccountConfig
	submitter Submitter
	signer    ledger.Signer
	directory directory.Directory
	now       func() time.Time
}

// NewAccountService returns a service that signs with signer as the admin.
func NewAccountService(cfg AccountConfig, submitter Submitter, signer ledger.Signer, dir directory.Directory) *AccountService {
	return &AccountService{
		cfg:       cfg,
		submitter: submitter,
		signer:    signer,
		directory: dir,
		now:       time.Now,
	}
}

// NewAccount registers publicKey under a fresh account named after the
// current time in milliseconds.
func (s *AccountService) NewAccount(ctx context.Context, publicKey string) AccountResult {
	ctx, span := telemetry.Tracer.Start(ctx, "engine.NewAccount")
	defer span.End()

	if publicKey == "" {
		return AccountResult{Status: StatusNG, Detail: "Validation error"}
	}

	now := s.now()
	name := strconv.FormatInt(now.UnixMilli(), 10)
	accountID := name + "@" + s.cfg.DomainID

	payload := ledger.Payload{
		Commands: []ledger.Command{ledger.CreateAccount{
			AccountName: name,
			DomainID:    s.cfg.DomainID,
			PublicKey:   publicKey,
		}},
		CreatorAccountID: s.cfg.AdminAccountID,
		CreatedTime:      uint64(now.UnixMilli()),
		Quorum:           1,
	}

	raw, err := s.sign(payload)
	if err == nil {
		err = s.submitter.Submit(ctx, raw)
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to create account", "account_id", accountID, "error", err)
		telemetry.AccountsCreatedTotal.WithLabelValues("failed").Inc()
		return AccountResult{Status: StatusNG, Detail: "Failure to create account: " + err.Error()}
	}

	slog.InfoContext(ctx, "account created", "account_id", accountID)
	telemetry.AccountsCreatedTotal.WithLabelValues("created").Inc()
	return AccountResult{
		Status:        StatusOK,
		AccountID:     accountID,
		LedgerAddress: s.cfg.LedgerAddress,
	}
}

func (s *AccountService) sign(payload ledger.Payload) ([]byte, error) {
	sig, err := s.signer.Sign(ledger.EncodePayload(payload))
	if err != nil {
		return nil, err
	}
	return ledger.EncodeTransaction(ledger.Transaction{
		HasPayload: true,
		Payload:    payload,
		Signatures: []ledger.Signature{sig},
	}), nil
}

// PublicUserData returns the account's display name.
func (s *AccountService) PublicUserData(ctx context.Context, accountID string) UserDataResult {
	if accountID == "" {
		return UserDataResult{Status: StatusNG, Detail: "Validation error"}
	}

	name, ok := s.directory.GetAttribute(ctx, accountID, directory.KeyDisplayName)
	if !ok {
		return UserDataResult{Status: StatusNG, Detail: "displayName is null", AccountID: accountID}
	}
	return UserDataResult{Status: StatusOK, DisplayName: name}
}
