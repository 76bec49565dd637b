package betting

import (
	"sort"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// SettlementResult is the full accounting breakdown of one settlement run
// (steps 1-6).
type SettlementResult struct {
	TotalPool float64
	WinnersPool float64
	Treasury float64
	Burn float64
	NextJackpot float64
	TopBettorCut float64
	TopBettor string
	Payouts map[string]float64 // bettor -> total payout, including any top-bettor bonus
	RolledToJackpot float64 // added to NextJackpot when nobody bet on the winner
}

// Settle runs the pari-mutuel distribution once over every bet placed on
// battleID. Callers (Book.Settle) are responsible for idempotency — this
// function always recomputes from the bets it's given.
func Settle(bets []*models.Bet, carriedJackpot float64, winnerAgentID string) SettlementResult {
	var totalPool float64
	for _, b := range bets {
		totalPool += b.Amount
	}

	res := SettlementResult{
		TotalPool: totalPool,
		WinnersPool: 0.85*totalPool + carriedJackpot,
		Treasury: 0.05 * totalPool,
		Burn: 0.05 * totalPool,
		NextJackpot: 0.03 * totalPool,
		TopBettorCut: 0.02 * totalPool,
		Payouts: make(map[string]float64),
	}

	var winners []*models.Bet
	var totalWinningStake float64
	for _, b := range bets {
		if b.AgentID == winnerAgentID {
			winners = append(winners, b)
			totalWinningStake += b.Amount
		}
	}

	if len(winners) == 0 {
		// Nobody backed the winner: the winners' pool and the top-bettor
		// cut both roll forward into next battle's jackpot rather than
		// being awarded to anyone.
		res.RolledToJackpot = res.WinnersPool + res.TopBettorCut
		res.NextJackpot += res.RolledToJackpot
		res.TopBettorCut = 0
		for _, b := range bets {
			b.Settled = true
			b.Payout = 0
		}
		return res
	}

	sort.SliceStable(winners, func(i, j int) bool { return winners[i].PlacedAt.Before(winners[j].PlacedAt) })

	topBettor := winners[0]
	for _, w := range winners[1:] {
		if w.Amount > topBettor.Amount {
			topBettor = w
		}
	}
	res.TopBettor = topBettor.Bettor

	for _, w := range winners {
		share := w.Amount / totalWinningStake
		payout := round2(res.WinnersPool * share)
		if w.Bettor == topBettor.Bettor {
			payout = round2(payout + res.TopBettorCut)
		}
		w.Settled = true
		w.Payout = payout
		res.Payouts[w.Bettor] += payout
	}

	for _, b := range bets {
		if b.AgentID != winnerAgentID {
			b.Settled = true
			b.Payout = 0
		}
	}

	return res
}
