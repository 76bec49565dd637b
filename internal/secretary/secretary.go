// Package secretary implements the two-layer decision validator:
// programmatic correction that never fails, followed by an optional LLM
// repair pass. One phase function per numbered step, run unconditionally
// from a single entry point.
package secretary

import (
	"context"
	"sort"
	"strings"

	"github.com/rawblock/gladiator-arena/internal/grid"
	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Severity classifies a repair's visibility in logs/metrics.
type Severity string

const (
	SeverityInfo Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError Severity = "ERROR"
)

// Action classifies what the Secretary did to a field.
type Action string

const (
	ActionKept Action = "KEPT"
	ActionCorrected Action = "CORRECTED"
	ActionRemoved Action = "REMOVED"
	ActionDefaulted Action = "DEFAULTED"
)

// Issue is a single structured repair record, used for logging and metrics.
type Issue struct {
	Field string
	Severity Severity
	Action Action
	Detail string
}

// Secretary runs the two-layer pipeline over a raw Decision.
type Secretary struct {
	llm llmclient.Client
	alwaysInjectMove bool
	correctionEnabled bool
}

// New constructs a Secretary. alwaysInjectMove mirrors step 7's
// "system always-inject flag"; correctionEnabled gates the optional Layer 2
// LLM repair pass.
func New(llm llmclient.Client, alwaysInjectMove, correctionEnabled bool) *Secretary {
	return &Secretary{llm: llm, alwaysInjectMove: alwaysInjectMove, correctionEnabled: correctionEnabled}
}

// validationContext carries the ambient battle state Layer 1 needs without threading
// five parameters through every phase function.
type validationContext struct {
	battle *models.Battle
	grid *grid.Grid
	phase models.Phase
	self *models.Agent
}

// Validate runs Layer 1 unconditionally, then Layer 2 if the repaired
// decision still fails structural validation and correction is enabled.
func (s *Secretary) Validate(ctx context.Context, battle *models.Battle, g *grid.Grid, phase models.Phase, d models.Decision) (models.Decision, []Issue) {
	vc := validationContext{battle: battle, grid: g, phase: phase, self: battle.AgentByID(d.AgentID)}
	var issues []Issue

	d, issues = s.layer1Prediction(d, issues)
	d, issues = s.layer1CombatTarget(vc, d, issues)
	d, issues = s.layer1StakeCap(vc, d, issues)
	d, issues = s.layer1Skill(vc, d, issues)
	d, issues = s.layer1Move(vc, d, issues)
	d, issues = s.layer1Alliance(vc, d, issues)
	d, issues = s.layer1FallbackMove(vc, d, issues)

	if !s.isStructurallyValid(d) {
		if s.correctionEnabled && s.llm != nil {
			repaired, ok := s.layer2Repair(ctx, vc, d, issues)
			if ok {
				return repaired, append(issues, Issue{Field: "*", Severity: SeverityWarning, Action: ActionCorrected, Detail: "repaired via LLM correction pass"})
			}
		}
		d = s.safeHybrid(d)
		issues = append(issues, Issue{Field: "*", Severity: SeverityError, Action: ActionDefaulted, Detail: "safe hybrid: minimum-stake defaults for unrepairable fields"})
	}

	return d, issues
}

// --- Layer 1 steps ---

func (s *Secretary) layer1Prediction(d models.Decision, issues []Issue) (models.Decision, []Issue) {
	asset := models.Asset(strings.ToUpper(string(d.Prediction.Asset)))
	if !validAsset(asset) {
		issues = append(issues, Issue{Field: "prediction.asset", Severity: SeverityWarning, Action: ActionCorrected, Detail: "invalid asset, defaulted to ETH"})
		asset = models.AssetETH
	} else if asset != d.Prediction.Asset {
		issues = append(issues, Issue{Field: "prediction.asset", Severity: SeverityInfo, Action: ActionCorrected, Detail: "coerced to uppercase enum"})
	}
	d.Prediction.Asset = asset

	direction := models.Direction(strings.ToUpper(string(d.Prediction.Direction)))
	if direction != models.DirectionUp && direction != models.DirectionDown {
		issues = append(issues, Issue{Field: "prediction.direction", Severity: SeverityWarning, Action: ActionCorrected, Detail: "invalid direction, defaulted to UP"})
		direction = models.DirectionUp
	} else if direction != d.Prediction.Direction {
		issues = append(issues, Issue{Field: "prediction.direction", Severity: SeverityInfo, Action: ActionCorrected, Detail: "coerced to uppercase enum"})
	}
	d.Prediction.Direction = direction

	clamped := clamp(d.Prediction.StakePercent, models.MinStakePercent, models.MaxStakePercent)
	if clamped != d.Prediction.StakePercent {
		issues = append(issues, Issue{Field: "prediction.stakePercent", Severity: SeverityInfo, Action: ActionCorrected, Detail: "clamped into [5,50]"})
	}
	d.Prediction.StakePercent = clamped

	return d, issues
}

func validAsset(a models.Asset) bool {
	switch a {
	case models.AssetETH, models.AssetBTC, models.AssetSOL, models.AssetMON:
		return true
	default:
		return false
	}
}

func (s *Secretary) layer1CombatTarget(vc validationContext, d models.Decision, issues []Issue) (models.Decision, []Issue) {
	if d.Stance != models.StanceAttack && d.Stance != models.StanceSabotage {
		return d, issues
	}
	if vc.self == nil || vc.self.Position == nil {
		d.Stance = models.StanceNone
		d.TargetName, d.TargetID, d.CombatStake = "", "", 0
		return d, issues
	}

	resolved := s.resolveTarget(vc, d.TargetName)
	if resolved == nil {
		d.Stance = models.StanceNone
		d.TargetName, d.TargetID, d.CombatStake = "", "", 0
		issues = append(issues, Issue{Field: "combatTarget", Severity: SeverityWarning, Action: ActionRemoved, Detail: "target unresolved, stance downgraded to NONE"})
		return d, issues
	}
	if resolved.Name != d.TargetName {
		issues = append(issues, Issue{Field: "combatTarget", Severity: SeverityInfo, Action: ActionCorrected, Detail: "fuzzy-matched to " + resolved.Name})
	}
	d.TargetName = resolved.Name
	d.TargetID = resolved.ID
	return d, issues
}

// resolveTarget implements the fuzzy match cascade of step 2:
// exact name, substring, class-name match, then Levenshtein <= 3 — among
// live, adjacent, non-self agents only.
func (s *Secretary) resolveTarget(vc validationContext, name string) *models.Agent {
	candidates := adjacentLiveTargets(vc)
	if len(candidates) == 0 {
		return nil
	}
	if name == "" {
		return nil
	}
	upper := strings.ToUpper(name)

	for _, c := range candidates {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToUpper(c.Name), upper) || strings.Contains(upper, strings.ToUpper(c.Name)) {
			return c
		}
	}
	for _, c := range candidates {
		if strings.EqualFold(string(c.Class), name) {
			return c
		}
	}
	var best *models.Agent
	bestDist := 4 // > 3 means "no match"
	for _, c := range candidates {
		dist := levenshtein(strings.ToUpper(c.Name), upper)
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	if bestDist <= 3 {
		return best
	}
	return nil
}

func adjacentLiveTargets(vc validationContext) []*models.Agent {
	var out []*models.Agent
	if vc.self == nil || vc.self.Position == nil {
		return out
	}
	for _, a := range vc.battle.Roster {
		if a.ID == vc.self.ID || !a.Alive || a.Position == nil {
			continue
		}
		if models.Distance(*vc.self.Position, *a.Position) == 1 {
			out = append(out, a)
		}
	}
	// Deterministic order for reproducibility (property 6).
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Secretary) layer1StakeCap(vc validationContext, d models.Decision, issues []Issue) (models.Decision, []Issue) {
	if d.Stance != models.StanceAttack && d.Stance != models.StanceSabotage {
		return d, issues
	}
	if vc.self == nil {
		return d, issues
	}
	if d.CombatStake <= 0 {
		d.CombatStake = vc.self.HP * 10 / 100
		issues = append(issues, Issue{Field: "combatStake", Severity: SeverityInfo, Action: ActionDefaulted, Detail: "defaulted to 10% current HP"})
	}
	cap30 := vc.self.HP * 30 / 100
	if d.CombatStake > vc.self.HP {
		d.CombatStake = cap30
		issues = append(issues, Issue{Field: "combatStake", Severity: SeverityWarning, Action: ActionCorrected, Detail: "exceeded current HP, capped at 30%"})
	}
	return d, issues
}

func (s *Secretary) layer1Skill(vc validationContext, d models.Decision, issues []Issue) (models.Decision, []Issue) {
	if !d.SkillActivate {
		return d, issues
	}
	if vc.self == nil || vc.self.SkillCooldown > 0 {
		d.SkillActivate = false
		issues = append(issues, Issue{Field: "skillActivate", Severity: SeverityInfo, Action: ActionRemoved, Detail: "skill on cooldown"})
		return d, issues
	}
	if vc.self.Class == models.ClassParasite {
		target := vc.battle.AgentByName(d.SkillTarget)
		if target == nil || !target.Alive || target.ID == vc.self.ID {
			best := highestHPOther(vc)
			if best != nil {
				d.SkillTarget = best.Name
				issues = append(issues, Issue{Field: "skillTarget", Severity: SeverityInfo, Action: ActionCorrected, Detail: "SIPHON auto-picked highest-HP other live agent"})
			}
		}
	}
	return d, issues
}

func highestHPOther(vc validationContext) *models.Agent {
	var best *models.Agent
	for _, a := range vc.battle.Roster {
		if a.ID == vc.self.ID || !a.Alive {
			continue
		}
		if best == nil || a.HP > best.HP {
			best = a
		}
	}
	return best
}

func (s *Secretary) layer1Move(vc validationContext, d models.Decision, issues []Issue) (models.Decision, []Issue) {
	if d.Move == nil || vc.self == nil || vc.self.Position == nil {
		return d, issues
	}
	to := *d.Move
	valid := models.InRadius(to, grid.Radius) &&
	models.Distance(*vc.self.Position, to) == 1 &&
	!to.Equal(*vc.self.Position)
	if valid {
		if t := vc.grid.Tile(to); t != nil && t.Occupant != "" && t.Occupant != vc.self.ID {
			valid = false
		}
	}
	if !valid {
		d.Move = nil
		issues = append(issues, Issue{Field: "move", Severity: SeverityWarning, Action: ActionRemoved, Detail: "illegal move discarded"})
	}
	return d, issues
}

func (s *Secretary) layer1Alliance(vc validationContext, d models.Decision, issues []Issue) (models.Decision, []Issue) {
	if d.AllianceProposeTarget != "" && d.AllianceBreak {
		d.AllianceProposeTarget = ""
		issues = append(issues, Issue{Field: "allianceProposeTarget", Severity: SeverityInfo, Action: ActionRemoved, Detail: "propose+break same decision, keeping break only"})
		return d, issues
	}
	if d.AllianceProposeTarget == "" {
		return d, issues
	}
	if vc.self == nil {
		d.AllianceProposeTarget = ""
		return d, issues
	}
	target := vc.battle.AgentByName(d.AllianceProposeTarget)
	if target == nil || target.ID == vc.self.ID || !target.Alive || vc.self.Ally != nil {
		d.AllianceProposeTarget = ""
		issues = append(issues, Issue{Field: "allianceProposeTarget", Severity: SeverityInfo, Action: ActionRemoved, Detail: "invalid alliance proposal dropped"})
	}
	return d, issues
}

func (s *Secretary) layer1FallbackMove(vc validationContext, d models.Decision, issues []Issue) (models.Decision, []Issue) {
	if vc.self == nil || vc.self.Position == nil {
		return d, issues
	}
	onStorm := grid.InStorm(*vc.self.Position, vc.phase)
	needsInjection := d.Move == nil || onStorm || s.alwaysInjectMove
	if !needsInjection {
		return d, issues
	}

	candidate := vc.grid.ClosestUnoccupiedNonStorm(*vc.self.Position, vc.phase)
	if candidate == nil {
		// Fully boxed in: leave the move as-is (step 7).
		return d, issues
	}
	switch {
	case d.Move == nil:
		d.Move = candidate
		issues = append(issues, Issue{Field: "move", Severity: SeverityInfo, Action: ActionDefaulted, Detail: "fallback move injected"})
	case onStorm:
		d.Move = candidate
		issues = append(issues, Issue{Field: "move", Severity: SeverityWarning, Action: ActionCorrected, Detail: "agent standing in storm, move overridden"})
	case s.alwaysInjectMove:
		d.Move = candidate
		issues = append(issues, Issue{Field: "move", Severity: SeverityInfo, Action: ActionCorrected, Detail: "always-inject policy overrode chosen move"})
	}
	return d, issues
}

// --- Layer 2 ---

func (s *Secretary) isStructurallyValid(d models.Decision) bool {
	if !validAsset(d.Prediction.Asset) {
		return false
	}
	if d.Prediction.Direction != models.DirectionUp && d.Prediction.Direction != models.DirectionDown {
		return false
	}
	if d.Prediction.StakePercent < models.MinStakePercent || d.Prediction.StakePercent > models.MaxStakePercent {
		return false
	}
	switch d.Stance {
	case models.StanceAttack, models.StanceSabotage, models.StanceDefend, models.StanceNone:
	default:
		return false
	}
	if (d.Stance == models.StanceAttack || d.Stance == models.StanceSabotage) && d.TargetID == "" && d.TargetName == "" {
		return false
	}
	return true
}

// layer2Repair synthesises a minimal prompt enumerating residual errors and
// accepts the LLM's correction only if it now validates structurally
// (Layer 2).
func (s *Secretary) layer2Repair(ctx context.Context, vc validationContext, d models.Decision, issues []Issue) (models.Decision, bool) {
	var sb strings.Builder
	sb.WriteString("Fix the following JSON decision so it satisfies these constraints: ")
	sb.WriteString("asset in {ETH,BTC,SOL,MON}; direction in {UP,DOWN}; stakePercent in [5,50]; ")
	sb.WriteString("combatStance in {ATTACK,SABOTAGE,DEFEND,NONE}, with a target required for ATTACK/SABOTAGE. Residual issues: ")
	for _, i := range issues {
		sb.WriteString(i.Field + ": " + i.Detail + "; ")
	}

	raw, text, err := callLLMRepair(ctx, s.llm, sb.String())
	if err != nil || text == "" {
		return d, false
	}
	repaired := fromRepairPayload(d.AgentID, raw)
	if !s.isStructurallyValid(repaired) {
		return d, false
	}
	return repaired, true
}

// safeHybrid keeps every individually-valid field of d and fills the rest
// with minimum-stake defaults (Layer 2 failure path).
func (s *Secretary) safeHybrid(d models.Decision) models.Decision {
	out := models.NewDefaultDecision(d.AgentID, d.Prediction.Asset)
	if validAsset(d.Prediction.Asset) {
		out.Prediction.Asset = d.Prediction.Asset
	}
	if d.Prediction.Direction == models.DirectionUp || d.Prediction.Direction == models.DirectionDown {
		out.Prediction.Direction = d.Prediction.Direction
	}
	if d.Prediction.StakePercent >= models.MinStakePercent && d.Prediction.StakePercent <= models.MaxStakePercent {
		out.Prediction.StakePercent = d.Prediction.StakePercent
	}
	out.Move = d.Move
	out.Reasoning = d.Reasoning
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
