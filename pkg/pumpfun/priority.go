package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

// PriorityFee sets the compute budget of a trade transaction.
// Zero fields emit no instruction.
type PriorityFee struct {
	UnitLimit uint32 // compute units
	UnitPrice uint64 // micro-lamports per compute unit
}

type PriorityLevel string

const (
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

var priorityProfiles = map[PriorityLevel]PriorityFee{
	PriorityLow:     {UnitLimit: 200_000, UnitPrice: 1_000},
	PriorityMedium:  {UnitLimit: 400_000, UnitPrice: 5_000},
	PriorityHigh:    {UnitLimit: 800_000, UnitPrice: 10_000},
	PriorityExtreme: {UnitLimit: 1_000_000, UnitPrice: 50_000},
}

// PriorityProfile returns the preset fee for level.
func PriorityProfile(level PriorityLevel) (PriorityFee, error) {
	fee, ok := priorityProfiles[level]
	if !ok {
		return PriorityFee{}, fmt.Errorf("unknown priority level: %s", level)
	}
	return fee, nil
}

// Instructions returns the compute budget instructions to place ahead of a trade.
func (p *PriorityFee) Instructions() []solana.Instruction {
	if p == nil {
		return nil
	}

	var instructions []solana.Instruction
	if p.UnitLimit > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(p.UnitLimit).Build())
	}
	if p.UnitPrice > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(p.UnitPrice).Build())
	}
	return instructions
}
