package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed employee profiles into the profile cache, skipping unchanged ones",
	Run: func(cmd *cobra.Command, _ []string) {
		ingest(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Int("workers", 0, "number of profiles embedded concurrently")
	bindFlag(ingestCmd, "ingest.workers", "workers")
}

func ingest(ctx context.Context) {
	rt, err := newRuntime()
	if err != nil {
		log.Fatal(err)
	}
	logger := rt.logger

	logger.Info("starting the ingestion", zap.String("version", version))

	emb, err := rt.newEmbedder(ctx)
	if err != nil {
		logger.Fatal("creating the embedder", zap.Error(err))
	}

	result, err := rt.ingest(ctx, emb)
	if err != nil {
		logger.Fatal("ingesting profiles", zap.Error(err))
	}

	for id, err := range result.Failed {
		logger.Error("profile was not embedded", zap.String("employee_id", id), zap.Error(err))
	}

	logger.Info("ingestion finished",
		zap.Int("embedded", len(result.Employees)),
		zap.Int("failed", len(result.Failed)),
	)
}
