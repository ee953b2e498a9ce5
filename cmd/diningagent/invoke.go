package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diningagent/internal/agent"
	"diningagent/internal/diningplan"
	"diningagent/internal/logging"
	"diningagent/internal/tools"
)

func newInvokeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <prompt>",
		Short: "Send one prompt through the agent and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := logging.ContextWithLogID(cmd.Context(), uuid.NewString())
			msg := a.orchestrator.Handle(ctx, agent.Request{
				Prompt:  strings.Join(args, " "),
				ModelID: v.GetString(flagModel),
			})
			printAnswer(cmd.OutOrStdout(), "Answer", msg.Text(), v.GetBool(flagRaw))
			return nil
		},
	}
	cmd.Flags().String(flagModel, "", "model id (default from DEFAULT_MODEL_ID)")
	cmd.Flags().Bool(flagRaw, false, "print the answer without markdown rendering")
	return cmd
}

func newPlanCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <restaurant name>",
		Short: "Build a dining plan for one restaurant without a model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			set, err := tools.NewDiningSet(a.client, cfg.Dining, a.logger,
				diningplan.WithMetrics(a.metrics),
				diningplan.WithTracer(a.tracer),
			)
			if err != nil {
				return err
			}
			planner, _ := set.Get(tools.DiningPlanToolName)

			ctx := logging.ContextWithLogID(cmd.Context(), uuid.NewString())
			text := planner.Execute(ctx, map[string]any{
				"restaurant_name": strings.Join(args, " "),
				"restaurant_url":  v.GetString(flagURL),
			})
			// Plans are line-oriented text, not markdown.
			printAnswer(cmd.OutOrStdout(), "Dining plan", text, true)
			return nil
		},
	}
	cmd.Flags().String(flagURL, "", "menu URL, skipping discovery")
	return cmd
}
