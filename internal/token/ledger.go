package token

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Ledger is the fungible-balance collaborator the exchange core escrows
// through. The core never mutates balances directly; it requests transfers
// and trusts each call to be atomic. TransferIn debits the owner and credits
// the exchange escrow; TransferOut pays out of escrow.
type Ledger interface {
	TransferIn(tokenRef string, owner uuid.UUID, amount int64) error
	TransferOut(tokenRef string, recipient uuid.UUID, amount int64) error
}

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonPositiveAmount   = errors.New("transfer amount must be positive")
)

// MemoryLedger is an in-memory Ledger for standalone deployments and tests.
// Balances are tracked per (holder, token); escrow is a single pooled
// account per token.
type MemoryLedger struct {
	balances map[balanceKey]int64
	escrow   map[string]int64
}

type balanceKey struct {
	Holder uuid.UUID
	Token  string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[balanceKey]int64),
		escrow:   make(map[string]int64),
	}
}

// Mint credits a holder out of thin air. Test and bootstrap use only.
func (ml *MemoryLedger) Mint(tokenRef string, holder uuid.UUID, amount int64) {
	ml.balances[balanceKey{Holder: holder, Token: tokenRef}] += amount
}

func (ml *MemoryLedger) TransferIn(tokenRef string, owner uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}

	key := balanceKey{Holder: owner, Token: tokenRef}
	if ml.balances[key] < amount {
		return fmt.Errorf("%w: holder %s has %d %s, need %d",
			ErrInsufficientBalance, owner, ml.balances[key], tokenRef, amount)
	}

	ml.balances[key] -= amount
	ml.escrow[tokenRef] += amount
	return nil
}

func (ml *MemoryLedger) TransferOut(tokenRef string, recipient uuid.UUID, amount int64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}

	if ml.escrow[tokenRef] < amount {
		return fmt.Errorf("%w: escrow holds %d %s, need %d",
			ErrInsufficientBalance, ml.escrow[tokenRef], tokenRef, amount)
	}

	ml.escrow[tokenRef] -= amount
	ml.balances[balanceKey{Holder: recipient, Token: tokenRef}] += amount
	return nil
}

// BalanceOf returns a holder's free balance in a token.
func (ml *MemoryLedger) BalanceOf(tokenRef string, holder uuid.UUID) int64 {
	return ml.balances[balanceKey{Holder: holder, Token: tokenRef}]
}

// EscrowBalance returns the pooled escrow held for a token.
func (ml *MemoryLedger) EscrowBalance(tokenRef string) int64 {
	return ml.escrow[tokenRef]
}
