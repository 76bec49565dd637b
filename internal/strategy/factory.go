package strategy

import (
	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// NewForClass builds the Strategy implementation for a class tag.
func NewForClass(class models.Class, llm llmclient.Client) Strategy {
	switch class {
	case models.ClassWarrior:
		return NewWarrior(llm)
	case models.ClassTrader:
		return NewTrader(llm)
	case models.ClassSurvivor:
		return NewSurvivor(llm)
	case models.ClassParasite:
		return NewParasite(llm)
	case models.ClassGambler:
		return NewGambler(llm)
	default:
		return NewWarrior(llm)
	}
}
