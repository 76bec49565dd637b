package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// rawDecision is the loosely-typed shape an LLM provider returns; fields
// are deliberately permissive (strings for enums) since Layer 1 of the
// Secretary is what coerces them into real types. Strategies only need to
// get the provider's free-form JSON into something Go can hold.
type rawDecision struct {
	Prediction struct {
		Asset string `json:"asset"`
		Direction string `json:"direction"`
		StakePercent int `json:"stakePercent"`
	} `json:"prediction"`
	CombatStance string `json:"combatStance"`
	CombatTarget string `json:"combatTarget"`
	CombatStake int `json:"combatStake"`
	Move *struct {
		Q int `json:"q"`
		R int `json:"r"`
	} `json:"move"`
	SkillActivate bool `json:"skillActivate"`
	SkillTarget string `json:"skillTarget"`
	AllianceProposeTarget string `json:"allianceProposeTarget"`
	AllianceBreak bool `json:"allianceBreak"`
	Reasoning string `json:"reasoning"`
}

// callLLM builds the shared system/user message pair from a personality and
// request, sends it, and decodes whatever JSON object the response
// contains. Any failure (exhausted providers, timeout, malformed JSON)
// returns a zero rawDecision and the error — callers fall back to their own
// class defaults, never propagating the error up as a battle fault
// (DecisionFailed policy).
func callLLM(ctx context.Context, client llmclient.Client, personality string, req DecisionRequest) (rawDecision, string, error) {
	var out rawDecision
	if client == nil {
		return out, "", fmt.Errorf("strategy: no llm client configured")
	}

	prompt := buildUserPrompt(req)
	resp, err := client.Chat(ctx, []llmclient.Message{
			{Role: "system", Content: personality},
			{Role: "user", Content: prompt},
		}, llmclient.Options{Temperature: 0.8, MaxTokens: 400})
	if err != nil {
		return out, "", err
	}

	start := strings.IndexByte(resp.Content, '{')
	end := strings.LastIndexByte(resp.Content, '}')
	if start < 0 || end < start {
		return out, resp.Content, fmt.Errorf("strategy: no JSON object in response")
	}
	if err := json.Unmarshal([]byte(resp.Content[start:end+1]), &out); err != nil {
		return out, resp.Content, fmt.Errorf("strategy: malformed decision JSON: %w", err)
	}
	return out, resp.Content, nil
}

func buildUserPrompt(req DecisionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, HP %d/%d.\n", req.Self.Name, req.Self.HP, req.Self.MaxHP)
	b.WriteString(req.SpatialContext)
	b.WriteString("\n")
	b.WriteString(req.SkillContext)
	b.WriteString("\n")
	b.WriteString(req.AllianceContext)
	b.WriteString("\n")
	if len(req.RecentLessons) > 0 {
		b.WriteString("Recent lessons: " + strings.Join(req.RecentLessons, "; ") + "\n")
	}
	b.WriteString("Respond with a single JSON object describing your decision.\n")
	return b.String()
}

func toRawDecision(agentID string, r rawDecision) models.Decision {
	var move *models.HexCoord
	if r.Move != nil {
		move = &models.HexCoord{Q: r.Move.Q, R: r.Move.R}
	}
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
		Move: move,
		SkillActivate: r.SkillActivate,
		SkillTarget: r.SkillTarget,
		AllianceProposeTarget: r.AllianceProposeTarget,
		AllianceBreak: r.AllianceBreak,
		Reasoning: r.Reasoning,
	}
}
