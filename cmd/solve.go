package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerfleet/api/schedule"
	"github.com/kilianp07/powerfleet/app"
	"github.com/kilianp07/powerfleet/core/model"
	"github.com/kilianp07/powerfleet/pkg/export"
)

var solveCmd = &cobra.Command{
	Use:   "solve <request-file>",
	Short: "Schedule a request file (JSON or YAML) and print the response",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().String("format", "response", "output format: response, json or csv")
	rootCmd.AddCommand(solveCmd)
}

func readRequest(path string) (model.Request, error) {
	var req model.Request
	data, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "response", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	req, err := readRequest(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	res, err := svc.Planner.Plan(ctx, req)
	if err != nil {
		_, msg := schedule.StatusFor(err)
		if encErr := enc.Encode(schedule.ErrorResponse(msg)); encErr != nil {
			return encErr
		}
		return err
	}
	switch format {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), res.Routes)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), res.Routes)
	}
	return enc.Encode(schedule.NewResponse(res))
}
