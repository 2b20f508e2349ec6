package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/cli"
	"sentinel-hq/sentinel/pkg/routing"
)

var routeFlags struct {
	intent        string
	familyMembers int
	tripCount     int
	maxTokens     int
	output        string
}

var intentTypes = []routing.IntentType{
	routing.IntentCompliance,
	routing.IntentDeals,
	routing.IntentPlanning,
	routing.IntentRealtime,
	routing.IntentComplex,
}

var routeCmd = &cobra.Command{
	Use:   "route QUERY",
	Short: "Show which provider the routing policy would pick for a query",
	Long: `Evaluate the routing policy for a query without calling any provider or
touching the budget.

Examples:
  sentinel route "Can I extend my Schengen visa?" --intent compliance
  sentinel route "Cheap flights to Lisbon" --intent deals --family 4 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().StringVar(&routeFlags.intent, "intent", string(routing.IntentCompliance), "intent type (compliance, deals, planning, realtime, complex)")
	routeCmd.Flags().IntVar(&routeFlags.familyMembers, "family", 0, "number of travellers in the party")
	routeCmd.Flags().IntVar(&routeFlags.tripCount, "trips", 0, "number of current and upcoming trips")
	routeCmd.Flags().IntVar(&routeFlags.maxTokens, "max-tokens", 0, "response bound (0 = routing default)")
	routeCmd.Flags().StringVarP(&routeFlags.output, "output", "o", "text", "output format (text, json)")
}

func runRoute(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(routeFlags.output)
	if err != nil {
		return err
	}
	intent, err := parseIntent(routeFlags.intent)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	sel := newPolicy(cfg).SelectOptimalAPI(&routing.Request{
		Query:         args[0],
		IntentType:    intent,
		FamilyMembers: routeFlags.familyMembers,
		TripCount:     routeFlags.tripCount,
		MaxTokens:     routeFlags.maxTokens,
	})

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), sel)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), selectionTable(sel))
}

func parseIntent(s string) (routing.IntentType, error) {
	want := routing.IntentType(strings.ToLower(strings.TrimSpace(s)))
	for _, it := range intentTypes {
		if it == want {
			return it, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

type selectionTable routing.Selection

func (s selectionTable) Rows() [][]string {
	rows := [][]string{
		{"api", s.APIType},
		{"rule", s.Rule},
	}
	if s.Tier != "" {
		rows = append(rows, []string{"tier", string(s.Tier)})
	}
	if s.Model != "" {
		rows = append(rows, []string{"model", s.Model})
	}
	rows = append(rows,
		[]string{"max tokens", fmt.Sprint(s.MaxTokens)},
		[]string{"estimated cost", usd(s.EstimatedCost)},
	)
	if s.Temperature != nil {
		rows = append(rows, []string{"temperature", fmt.Sprint(*s.Temperature)})
	}
	return rows
}
