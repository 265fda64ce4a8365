package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/spigell/career-compass/internal/leadership"
)

var leadershipCmd = &cobra.Command{
	Use:   "leadership",
	Short: "Score leadership readiness from behavioral signals",
	Run: func(cmd *cobra.Command, _ []string) {
		flags := cmd.Flags()
		signalsFile, _ := flags.GetString("signals")

		signals, err := readSignals(signalsFile)
		if err != nil {
			log.Fatal(err)
		}

		overrides := map[string]*float64{
			"training":    &signals.TrainingCompletion,
			"recognition": &signals.RecognitionCount,
			"engagement":  &signals.Engagement,
			"feedback":    &signals.PositiveFeedbackRatio,
		}
		for name, target := range overrides {
			if flags.Changed(name) {
				*target, _ = flags.GetFloat64(name)
			}
		}

		if err := writeJSON(cmd.OutOrStdout(), leadership.Score(signals)); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(leadershipCmd)

	leadershipCmd.Flags().StringP("signals", "s", "", "JSON file with leadership signals")
	leadershipCmd.Flags().Float64("training", 0, "training completion ratio (0..1)")
	leadershipCmd.Flags().Float64("recognition", 0, "number of peer recognitions")
	leadershipCmd.Flags().Float64("engagement", 0, "engagement ratio (0..1)")
	leadershipCmd.Flags().Float64("feedback", 0, "positive feedback ratio (0..1)")
}
