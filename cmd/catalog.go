package cmd

import (
	"context"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the role, course and mentor indices",
}

var catalogBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the role, course and mentor indices into the data directory",
	Run: func(cmd *cobra.Command, _ []string) {
		buildCatalog(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogBuildCmd)

	catalogBuildCmd.Flags().String("roles", "", "role table (CSV or XLSX)")
	catalogBuildCmd.Flags().String("roles-sheet", "", "worksheet of the role workbook (default is the first one)")
	catalogBuildCmd.Flags().String("courses", "", "course seed JSON file (default is the built-in seed)")

	bindFlag(catalogBuildCmd, "roles", "roles")
	bindFlag(catalogBuildCmd, "roles-sheet", "roles-sheet")
	bindFlag(catalogBuildCmd, "courses", "courses")
}

func buildCatalog(ctx context.Context) {
	rt, err := newRuntime()
	if err != nil {
		log.Fatal(err)
	}
	logger := rt.logger
	config := rt.config

	logger.Info("starting the catalog build", zap.String("version", version))

	emb, err := rt.newEmbedder(ctx)
	if err != nil {
		logger.Fatal("creating the embedder", zap.Error(err))
	}

	builder := catalog.NewBuilder(emb, logger)

	roles := []catalog.Role{}
	if config.Roles != "" {
		roles, err = builder.RolesFromFile(ctx, config.Roles, config.RolesSheet)
		if err != nil {
			logger.Fatal("building roles", zap.Error(err))
		}
	}
	if len(roles) == 0 {
		logger.Warn("no roles were built, role recommendations will be empty", zap.String("roles", config.Roles))
	}

	seed, err := rt.courseSeed()
	if err != nil {
		logger.Fatal("reading the course seed", zap.Error(err))
	}
	courses, err := builder.BuildCourses(ctx, seed)
	if err != nil {
		logger.Fatal("building courses", zap.Error(err))
	}

	batch, err := rt.ingest(ctx, emb)
	if err != nil {
		logger.Fatal("ingesting profiles for mentors", zap.Error(err))
	}
	mentors, err := builder.BuildMentors(ctx, batch.Employees)
	if err != nil {
		logger.Fatal("building mentors", zap.Error(err))
	}

	if err := catalog.New(roles, courses, mentors).Save(config.DataDir); err != nil {
		logger.Fatal("saving the catalog", zap.Error(err))
	}

	logger.Info("catalog built",
		zap.String("dir", filepath.Clean(config.DataDir)),
		zap.Int("roles", len(roles)),
		zap.Int("courses", len(courses)),
		zap.Int("mentors", len(mentors)),
		zap.Int("failed_profiles", len(batch.Failed)),
	)
}
