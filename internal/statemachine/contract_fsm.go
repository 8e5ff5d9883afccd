package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/toroprop/toro-api/internal/models"
)

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	cfsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// active → expired (end date reached)
			{Name: "expire", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusExpired},

			// active → terminated (rescinded early)
			{Name: "terminate", Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusTerminated},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Expire marks the contract as run out
func (c *ContractFSM) Expire(ctx context.Context) error {
	if !c.contract.MayExpire() {
		return fmt.Errorf("contract cannot expire in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "expire"); err != nil {
		return fmt.Errorf("failed to expire contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Terminate rescinds the contract before its end date
func (c *ContractFSM) Terminate(ctx context.Context) error {
	if !c.contract.MayTerminate() {
		return fmt.Errorf("contract cannot be terminated in current state: %s", c.contract.Status)
	}

	if err := c.fsm.Event(ctx, "terminate"); err != nil {
		return fmt.Errorf("failed to terminate contract: %w", err)
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}
