package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/rawblock/gladiator-arena/internal/api"
	"github.com/rawblock/gladiator-arena/internal/coordinator"
	"github.com/rawblock/gladiator-arena/internal/db"
	"github.com/rawblock/gladiator-arena/internal/llmclient"
	"github.com/rawblock/gladiator-arena/pkg/models"
)

// run-battle is the single CLI entry point: it boots the Coordinator, seeds
// a default five-class roster, and either serves the HTTP/WS façade
// (default) or runs one battle to completion and exits, depending on
// RUN_MODE. Uses an env-driven bootstrap — getEnvOrDefault, conditional
// degradation when an external dependency (here, Postgres) is absent,
// defer conn.Close.
func main() {
	log.Println("Starting Gladiator Arena...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment directly")
	}

	dbURL := os.Getenv("DATABASE_URL")
	var store *db.PostgresStore
	if dbURL != "" {
		conn, err := db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without persisting battle data. Error: %v", err)
		} else {
			defer conn.Close()
			if err := conn.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
			store = conn
		}
	} else {
		log.Println("DATABASE_URL not set, continuing without persistence")
	}

	llm := buildLLMClient()

	var persist coordinator.Persister = coordinator.NoopPersister{}
	if store != nil {
		persist = store
	}
	coord := coordinator.New(llm, persist)
	seedRatings(coord, store)

	tickInterval := tickIntervalFromSpeed(getEnvOrDefault("BATTLE_SPEED", "fast"))

	switch getEnvOrDefault("RUN_MODE", "serve") {
	case "run-battle":
		runSingleBattle(coord, tickInterval)
	default:
		serve(coord)
	}
}

// runSingleBattle creates one battle with the default roster, runs it to
// SETTLED synchronously, logs the outcome, and exits 0. Any failure to
// reach settlement is fatal, using the same log.Fatalf-on-unrecoverable-
// startup-failure convention as the rest of this command.
func runSingleBattle(coord *coordinator.Coordinator, tickInterval time.Duration) {
	battleID := getEnvOrDefault("BATTLE_ID", "battle-"+strconv.FormatInt(time.Now().UnixNano(), 36))
	ctx := context.Background()

	_, err := coord.StartBattle(ctx, battleID, defaultRoster(), coordinator.StartOptions{
		TickInterval: tickInterval,
	})
	if err != nil {
		log.Fatalf("FATAL: failed to start battle %s: %v", battleID, err)
	}

	if err := coord.ActivateAndRun(ctx, battleID); err != nil {
		log.Fatalf("FATAL: battle %s did not settle: %v", battleID, err)
	}

	view, err := coord.GetState(battleID)
	if err != nil {
		log.Fatalf("FATAL: failed to read final state of battle %s: %v", battleID, err)
	}
	log.Printf("Battle %s settled after %d epochs. Winner: %s", battleID, view.Battle.Epoch, view.Battle.WinnerID)
}

// serve starts the Gin HTTP/WS façade and blocks until it exits.
func serve(coord *coordinator.Coordinator) {
	r := api.SetupRouter(coord)
	port := getEnvOrDefault("PORT", "5340")
	log.Printf("Gladiator Arena API listening on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildLLMClient wires a provider round-robin from whichever of
// GROQ_API_KEY/GOOGLE_API_KEY/OPENROUTER_API_KEY are set,
// falling back to a NoopClient that forces every strategy into its
// guardrail-only default behavior when no key is configured.
func buildLLMClient() llmclient.Client {
	providers := map[string]string{
		"groq": os.Getenv("GROQ_API_KEY"),
		"google": os.Getenv("GOOGLE_API_KEY"),
		"openrouter": os.Getenv("OPENROUTER_API_KEY"),
	}
	quota, err := strconv.Atoi(getEnvOrDefault("LLM_DAILY_QUOTA", "1000"))
	if err != nil || quota <= 0 {
		quota = 1000
	}

	rr := llmclient.NewRoundRobin(providers, quota, llmclient.HTTPChat)
	for _, key := range providers {
		if key != "" {
			return rr
		}
	}
	log.Println("No LLM provider keys configured — strategies run in guardrail-only fallback mode")
	return llmclient.NoopClient{}
}

// seedRatings loads every agent's persisted rating back into the
// in-process book before the first battle touches it, so standings survive
// a process restart.
func seedRatings(coord *coordinator.Coordinator, store *db.PostgresStore) {
	if store == nil {
		return
	}
	ratings, err := store.LoadRatings(context.Background())
	if err != nil {
		log.Printf("Warning: failed to load persisted ratings: %v", err)
		return
	}
	for _, r := range ratings {
		coord.Ratings.Seed(r)
	}
	log.Printf("Loaded %d persisted agent ratings", len(ratings))
}

// defaultRoster seats one agent per class, the same five-class spread
// coordinator_test.go exercises.
func defaultRoster() []coordinator.RosterEntry {
	return []coordinator.RosterEntry{
		{Name: "Axe", Class: models.ClassWarrior, Personality: "relentless and direct"},
		{Name: "Ledger", Class: models.ClassTrader, Personality: "calculating and patient"},
		{Name: "Bramble", Class: models.ClassSurvivor, Personality: "cautious and opportunistic"},
		{Name: "Leech", Class: models.ClassParasite, Personality: "sly and adaptive"},
		{Name: "Lucky", Class: models.ClassGambler, Personality: "reckless and confident"},
	}
}

// tickIntervalFromSpeed maps BATTLE_SPEED to the coordinator's inter-epoch
// delay: instant ticks again immediately on completion, slow waits 2s, and
// fast (also used for an unset or unknown value) waits 500ms, so spectators
// have time to watch each epoch resolve.
func tickIntervalFromSpeed(speed string) time.Duration {
	switch speed {
	case "instant":
		return 0
	case "slow":
		return 2000 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
