package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/textutil"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the catalog data-quality dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.aiService()
			if err != nil {
				return err
			}
			report, err := client.DataQuality(commandCtx(cmd))
			if err != nil {
				return describeError(err, "data-quality report")
			}
			if report.Data == nil {
				return errors.New("data-quality report is empty")
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, report.Data)
			}
			out := cmd.OutOrStdout()
			renderDashboard(newScreen(out), report.Data)
			return nil
		},
	}
}

func renderDashboard(scr screen, data *aiservice.DataQualityData) {
	latest := data.Latest
	grade := aiservice.QualityGrade(latest.OverallQuality)

	scr.heading("Data quality")
	scr.check("Overall", gradeTone(grade), fmt.Sprintf("%s (%s)", textutil.Percent(latest.OverallQuality), grade))
	scr.check("Records", toneNeutral, strconv.Itoa(latest.TotalRecords))
	scr.check("Fields", toneNeutral, strconv.Itoa(latest.TotalFields))
	if latest.Date != "" {
		scr.check("Snapshot", toneNeutral, latest.Date)
	}
	if trend, ok := data.QualityTrend(); ok {
		series := data.Timeseries.OverallQuality
		scr.check("Trend", trendTone(trend.Change),
			fmt.Sprintf("%s %+.1f pts over %d snapshots", textutil.Sparkline(series), trend.Change, len(series)))
	}

	names := data.FieldNames()
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(scr.out)
	scr.heading("Field completeness")
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		field := data.FieldCompleteness[name]
		rows = append(rows, []string{
			textutil.Label(name, name),
			textutil.Percent(field.Latest),
			textutil.Percent(field.MissingPct),
			textutil.Sparkline(field.History),
			aiservice.QualityGrade(field.Latest),
		})
	}
	scr.table([]column{col("Field"), num("Complete"), num("Missing"), col("History"), col("Grade")}, rows)
}

func gradeTone(grade string) tone {
	switch grade {
	case "excellent", "good":
		return toneGood
	case "fair":
		return toneWarn
	default:
		return toneBad
	}
}

func trendTone(change float64) tone {
	if change < 0 {
		return toneWarn
	}
	return toneGood
}
