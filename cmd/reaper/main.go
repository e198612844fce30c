package main

import (
	"context"
	"log"
	"time"

	"GlowCare/pkg/config"
	"GlowCare/pkg/presence"
	"GlowCare/pkg/store"
)

// One-shot presence sweep for deployments that schedule the reaper
// out-of-band (cron) instead of relying on the in-process loop.
func main() {
	db, err := store.Open(config.DatabaseDSN, config.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	reaper := presence.NewReaper(store.New(db), 0,
		time.Duration(config.PresenceTimeoutSeconds)*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := reaper.Sweep(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Printf("[reaper] swept %d stale expert(s)", n)
}
