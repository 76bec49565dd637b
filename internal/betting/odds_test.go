package betting

import "testing"

func TestComputeOddsClampsProbability(t *testing.T) {
	agents := []AgentOddsInput{
		{AgentID: "tiny", HP: 1, WinRate: 0.0},
		{AgentID: "huge", HP: 999, WinRate: 1.0},
	}
	odds := ComputeOdds(agents, map[string]float64{}, 0)

	if odds["tiny"] < 1/maxProbability-0.01 {
		t.Fatalf("expected tiny agent's odds no shorter than the clamped ceiling allows, got %f", odds["tiny"])
	}
	if odds["huge"] != round2(1/maxProbability) {
		t.Fatalf("expected huge agent's probability clamped to the ceiling (odds %f), got %f", round2(1/maxProbability), odds["huge"])
	}
}

func TestComputeOddsNeverBattledAgentImputesHalfWinRate(t *testing.T) {
	agents := []AgentOddsInput{{AgentID: "rookie", HP: 500, WinRate: 0.5}}
	odds := ComputeOdds(agents, map[string]float64{}, 0)
	// hpShare=1 (only agent), poolShare=0: probability = 0.4*1+0.3*1+0.3*0.5=0.85 -> odds=1.18
	if odds["rookie"] != 1.18 {
		t.Fatalf("expected odds 1.18, got %f", odds["rookie"])
	}
}
