package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/catalog"
	"github.com/spigell/career-compass/internal/embedding"
	"github.com/spigell/career-compass/internal/leadership"
	"github.com/spigell/career-compass/internal/lookup"
	"github.com/spigell/career-compass/internal/matching"
	"github.com/spigell/career-compass/internal/orchestrator"
	"github.com/spigell/career-compass/internal/profile"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a career plan for one employee and print it as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		employeeID, _ := cmd.Flags().GetString("employee")
		signalsFile, _ := cmd.Flags().GetString("signals")
		buildPlan(cmd.Context(), cmd.OutOrStdout(), employeeID, signalsFile)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringP("employee", "e", "", "employee id (asks interactively when omitted)")
	planCmd.Flags().StringP("signals", "s", "", "JSON file with leadership signals")
	planCmd.Flags().String("lookup-policy", "", "how unknown employee ids are resolved: strict or lenient-demo")
	planCmd.Flags().Bool("summary", false, "add a prose summary to the plan")

	bindFlag(planCmd, "lookup.policy", "lookup-policy")
	bindFlag(planCmd, "summary.enabled", "summary")
}

func buildPlan(ctx context.Context, out io.Writer, employeeID, signalsFile string) {
	rt, err := newRuntime()
	if err != nil {
		log.Fatal(err)
	}
	logger := rt.logger
	config := rt.config

	signals, err := readSignals(signalsFile)
	if err != nil {
		logger.Fatal("reading leadership signals", zap.Error(err))
	}

	emb, err := rt.newEmbedder(ctx)
	if err != nil {
		logger.Fatal("creating the embedder", zap.Error(err))
	}

	batch, err := rt.ingest(ctx, emb)
	if err != nil {
		logger.Fatal("ingesting profiles", zap.Error(err))
	}
	directory := profile.NewDirectory(batch.Employees)

	cat, err := catalog.Load(config.DataDir, emb.Model(), logger)
	if err != nil {
		logger.Fatal("loading the catalog", zap.Error(err), zap.String("hint", "run `catalog build` first"))
	}

	skills, err := embedding.NewSkillCache(emb, config.Embedding.SkillCacheSize)
	if err != nil {
		logger.Fatal("creating the skill cache", zap.Error(err))
	}

	policy, err := lookup.New(config.Lookup.Policy, logger)
	if err != nil {
		logger.Fatal("creating the lookup policy", zap.Error(err))
	}

	summarizer, err := rt.newSummarizer(ctx)
	if err != nil {
		logger.Fatal("creating the summarizer", zap.Error(err))
	}

	if employeeID == "" {
		employeeID, err = pickEmployee(directory)
		if err != nil {
			logger.Fatal("choosing an employee", zap.Error(err))
		}
	}

	opts := []orchestrator.Option{
		orchestrator.WithPolicy(policy),
		orchestrator.WithLimits(config.Matching.Limits()),
	}
	if summarizer != nil {
		opts = append(opts, orchestrator.WithSummarizer(summarizer))
	}

	result, err := orchestrator.New(directory, cat, matching.NewEngine(skills), logger, opts...).Run(ctx, employeeID, signals)
	if err != nil {
		logger.Fatal("building the plan", zap.Error(err), zap.String("employee_id", employeeID))
	}

	if err := writeJSON(out, result); err != nil {
		logger.Fatal("writing the plan", zap.Error(err))
	}
}

func readSignals(path string) (leadership.Signals, error) {
	var signals leadership.Signals
	if strings.TrimSpace(path) == "" {
		return signals, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return signals, fmt.Errorf("read signals file: %w", err)
	}
	if err := json.Unmarshal(data, &signals); err != nil {
		return signals, fmt.Errorf("decode signals file %s: %w", path, err)
	}
	return signals, nil
}

func pickEmployee(directory *profile.Directory) (string, error) {
	ids := directory.IDs()
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: no profiles available", profile.ErrNotFound)
	}

	items := make([]string, 0, len(ids))
	for _, id := range ids {
		e, _ := directory.Get(id)
		items = append(items, fmt.Sprintf("%s %s / %s", e.ID, e.Name, e.JobTitle))
	}

	employeePrompt := promptui.Select{
		Label: "Choose an employee and press ENTER",
		Items: items,
		Size:  10,
	}

	i, _, err := employeePrompt.Run()
	if err != nil {
		return "", err
	}
	return ids[i], nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
