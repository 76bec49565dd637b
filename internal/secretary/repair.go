package secretary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// rawRepair is the loosely-typed shape of a Layer 2 repair response.
// Mirrors strategy.rawDecision's permissive-string-enum approach since the
// same JSON contract is reused for corrections.
type rawRepair struct {
	Prediction struct {
		Asset string `json:"asset"`
		Direction string `json:"direction"`
		StakePercent int `json:"stakePercent"`
	} `json:"prediction"`
	CombatStance string `json:"combatStance"`
	CombatTarget string `json:"combatTarget"`
	CombatStake int `json:"combatStake"`
}

// callLLMRepair sends a minimal repair prompt at low temperature and decodes
// the JSON object in the response. Any failure (exhausted providers, no
// object found, malformed JSON) is returned to the caller, which falls back
// to the safe hybrid decision (Layer 2).
func callLLMRepair(ctx context.Context, client llmclient.Client, prompt string) (rawRepair, string, error) {
	var out rawRepair
	if client == nil {
		return out, "", fmt.Errorf("secretary: no llm client configured")
	}

	resp, err := client.Chat(ctx, []llmclient.Message{
			{Role: "system", Content: "You repair malformed battle decisions. Respond with a single corrected JSON object only."},
			{Role: "user", Content: prompt},
		}, llmclient.Options{Temperature: 0.1, MaxTokens: 200})
	if err != nil {
		return out, "", err
	}

	start := strings.IndexByte(resp.Content, '{')
	end := strings.LastIndexByte(resp.Content, '}')
	if start < 0 || end < start {
		return out, resp.Content, fmt.Errorf("secretary: no JSON object in repair response")
	}
	if err := json.Unmarshal([]byte(resp.Content[start:end+1]), &out); err != nil {
		return out, resp.Content, fmt.Errorf("secretary: malformed repair JSON: %w", err)
	}
	return out, resp.Content, nil
}

func fromRepairPayload(agentID string, r rawRepair) models.Decision {
	return models.Decision{
		AgentID: agentID,
		Prediction: models.Prediction{
			Asset: models.Asset(strings.ToUpper(r.Prediction.Asset)),
			Direction: models.Direction(strings.ToUpper(r.Prediction.Direction)),
			StakePercent: r.Prediction.StakePercent,
		},
		Stance: models.Stance(strings.ToUpper(r.CombatStance)),
		TargetName: r.CombatTarget,
		CombatStake: r.CombatStake,
	}
}
