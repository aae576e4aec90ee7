package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/assistant"
	"github.com/hrideymarwah15/studyassistant/internal/bridge"
	"github.com/hrideymarwah15/studyassistant/internal/executor"
	"github.com/hrideymarwah15/studyassistant/internal/gateway"
	"github.com/hrideymarwah15/studyassistant/internal/governance"
	"github.com/hrideymarwah15/studyassistant/internal/nlu"
	"github.com/hrideymarwah15/studyassistant/internal/observability"
	"github.com/hrideymarwah15/studyassistant/internal/search"
	"github.com/hrideymarwah15/studyassistant/internal/store"
	"github.com/hrideymarwah15/studyassistant/pkg/config"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfgPath := "config.json"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg := config.LoadConfig(cfgPath)

	dbPath := cfg.Memory.Path
	if dbPath == "" {
		dbPath = "assistant.db"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	engine := search.NewEngine(st)

	// Action table: every public action name and plan sub-action.
	registry := bridge.NewRegistry()
	(&bridge.TaskBridges{Store: st}).Register(registry)
	(&bridge.HabitBridges{Store: st}).Register(registry)
	(&bridge.CourseBridges{Store: st}).Register(registry)
	(&bridge.MaterialBridges{Searcher: engine}).Register(registry)
	(&bridge.CalendarBridges{Store: st}).Register(registry)
	(&bridge.StatsBridges{Store: st}).Register(registry)
	(&bridge.PlanBridges{Tasks: st}).Register(registry)
	(&bridge.FocusBridges{Events: st, Stats: st}).Register(registry)
	bridge.RegisterHelp(registry)

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: keep raw SQL and markup out of parameter bags.
	_ = gov.DenyParams(`(?i)drop\s+table`)
	_ = gov.DenyParams(`(?i)delete\s+from`)
	_ = gov.DenyParams(`(?i)<script`)

	logger := observability.NewLogger()

	states := executor.NewStateStore()
	if cfg.Assistant.StateTTLMinutes > 0 {
		states.SetTTL(time.Duration(cfg.Assistant.StateTTLMinutes) * time.Minute)
	}

	exec := executor.New(registry, gov, states, logger)
	parser := nlu.NewParser()
	asst := assistant.New(st, parser, exec, logger)

	var gw gateway.Messenger
	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		gw, err = gateway.NewTelegramGateway(tgCfg.Token, asst)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("Telegram gateway not configured; falling back to console")
		gw = gateway.NewConsoleGateway(asst)
	}

	// Start background scheduler with a cancelable context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := assistant.NewScheduler(st, states, gw, logger)
	if cfg.Assistant.ReminderLookaheadMinutes > 0 {
		scheduler.Lookahead = time.Duration(cfg.Assistant.ReminderLookaheadMinutes) * time.Minute
	}
	go scheduler.Start(ctx)

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	// Start gateway in a goroutine so we can wait for context in the main loop
	go func() {
		if err := gw.Start(); err != nil {
			log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
		}
		stop()
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	gw.Stop()
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] ASSISTANT CORE SHUT DOWN. GOODBYE.\033[0m")
}
