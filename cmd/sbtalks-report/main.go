// sbtalks-report recomputes every derived output (KPIs, geographic
// distributions, never-attended list) from the current masters without
// ingesting anything.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sbtalks/internal/cli"
	"sbtalks/internal/log"
	"sbtalks/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	centers, zips := cli.LoadReferenceData(ctx, logger, cfg)

	store := cli.InitStore(ctx, logger, cfg)
	if store.Cleanup != nil {
		defer store.Cleanup()
	}

	snap, err := store.Store.Load(ctx)
	if err != nil {
		logger.Error("Failed to load masters", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Loaded masters",
		log.FieldOperation, log.OpLoad,
		log.FieldPeople, len(snap.People),
		log.FieldAttendance, len(snap.Attendance))

	if err := services.WriteOutputs(ctx, cfg.OutputDir, snap, centers, zips, nil, logger); err != nil {
		logger.Error("Failed to write outputs", log.FieldError, err)
		os.Exit(1)
	}
}
