package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sbtalks/internal/amqp"
	"sbtalks/internal/cli"
	"sbtalks/internal/config"
	"sbtalks/internal/core"
	"sbtalks/internal/log"
	"sbtalks/internal/normalize"
	"sbtalks/internal/services"
	"sbtalks/internal/tabular"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	manifestPath := "run.yaml"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}
	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		logger.Error("Failed to load run manifest", log.FieldError, err, log.FieldPath, manifestPath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	centers, zips := cli.LoadReferenceData(ctx, logger, cfg)

	store := cli.InitStore(ctx, logger, cfg)
	if store.Cleanup != nil {
		defer store.Cleanup()
	}

	inputs, err := buildInputs(manifest)
	if err != nil {
		logger.Error("Failed to prepare inputs", log.FieldError, err)
		os.Exit(1)
	}

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, run events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	pipeline := services.NewPipeline(store.Store, centers, zips, publisher, logger, cfg.ZipCacheSize)
	res, err := pipeline.Run(ctx, tabular.CSVFile{Path: manifest.CRMExport}, inputs)
	if err != nil {
		logger.Error("Run failed", log.FieldError, err)
		os.Exit(1)
	}

	if err := services.WriteOutputs(ctx, cfg.OutputDir, res.Snapshot, centers, zips, res.Unresolved, logger); err != nil {
		logger.Error("Failed to write outputs", log.FieldError, err)
		os.Exit(1)
	}
}

// buildInputs resolves each manifest entry to a pipeline input: webinar
// identity from the manifest overrides or the export filename convention,
// plus the file's content fingerprint.
func buildInputs(manifest *config.Manifest) ([]services.Input, error) {
	inputs := make([]services.Input, 0, len(manifest.Attendance))
	for _, f := range manifest.Attendance {
		in := services.Input{
			File:      f.Path,
			Source:    tabular.CSVFile{Path: f.Path},
			WebinarID: f.WebinarID,
		}

		if f.WebinarDate != "" {
			date, err := core.ParseDate(f.WebinarDate)
			if err != nil {
				return nil, err
			}
			in.WebinarDate = date
		}
		if in.WebinarID == "" || in.WebinarDate.IsZero() {
			id, date, err := normalize.ParseExportFilename(f.Path)
			if err != nil {
				return nil, err
			}
			if in.WebinarID == "" {
				in.WebinarID = id
			}
			if in.WebinarDate.IsZero() {
				in.WebinarDate = date
			}
		}

		fingerprint, err := tabular.FileFingerprint(f.Path)
		if err != nil {
			return nil, err
		}
		in.Fingerprint = fingerprint

		inputs = append(inputs, in)
	}
	return inputs, nil
}
