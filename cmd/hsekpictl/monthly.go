package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/cache"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/config"
	"github.com/smallbiznis/hsekpi/internal/kpisource"
	"github.com/smallbiznis/hsekpi/internal/monthlyrollup"
	rollupdomain "github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	"github.com/smallbiznis/hsekpi/internal/observability"
	"github.com/smallbiznis/hsekpi/internal/scope"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/smallbiznis/hsekpi/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

var (
	monthlyMonth   string
	monthlyProject string
	monthlyUser    string
	monthlyFormat  string
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Compute the monthly rollup for a month",
	Long: `Compute the monthly rollup as seen by a user and print it.

EXAMPLES:

  hsekpictl monthly --month 2025-03 --user 1
  hsekpictl monthly --month 2025-03 --user 1 --project 42 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := weekcalendar.ParseMonthKey(monthlyMonth)
		if err != nil {
			return fmt.Errorf("month must be YYYY-MM")
		}
		userID, err := snowflake.ParseString(strings.TrimSpace(monthlyUser))
		if err != nil || userID == 0 {
			return fmt.Errorf("user must be a numeric user id")
		}
		var projectID *snowflake.ID
		if monthlyProject != "" {
			id, err := snowflake.ParseString(strings.TrimSpace(monthlyProject))
			if err != nil || id == 0 {
				return fmt.Errorf("project must be a numeric project id")
			}
			projectID = &id
		}
		format := strings.ToLower(strings.TrimSpace(monthlyFormat))
		if format != "yaml" && format != "json" {
			return fmt.Errorf("format must be yaml or json")
		}

		var (
			scopeSvc  scopedomain.Service
			rollupSvc rollupdomain.Service
		)
		app := fx.New(
			fx.NopLogger,
			config.Module,
			observability.Module,
			db.Module,
			clock.Module,
			cache.Module,
			scope.Module,
			authorization.Module,
			kpisource.Module,
			monthlyrollup.Module,
			fx.Populate(&scopeSvc, &rollupSvc),
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(context.Background())

		principal, err := scopeSvc.LoadPrincipal(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user %s: %w", userID, err)
		}
		summary, err := rollupSvc.Summary(ctx, *principal, rollupdomain.Request{Month: month, ProjectID: projectID})
		if err != nil {
			return err
		}
		return writeSummary(cmd.OutOrStdout(), summary, format)
	},
}

func init() {
	monthlyCmd.Flags().StringVarP(&monthlyMonth, "month", "m", "", "month as YYYY-MM")
	monthlyCmd.Flags().StringVarP(&monthlyProject, "project", "p", "", "restrict to one project id")
	monthlyCmd.Flags().StringVarP(&monthlyUser, "user", "u", "", "user id whose scope applies")
	monthlyCmd.Flags().StringVarP(&monthlyFormat, "format", "f", "yaml", "output format: yaml or json")
	_ = monthlyCmd.MarkFlagRequired("month")
	_ = monthlyCmd.MarkFlagRequired("user")
}

// writeSummary prints the summary with the same field names as the HTTP API.
// YAML goes through the JSON form so both outputs share one schema.
func writeSummary(w io.Writer, summary *rollupdomain.Summary, format string) error {
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}
