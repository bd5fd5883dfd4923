package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PYPE-AI-MAIN/whispey/internal/config"
	"github.com/PYPE-AI-MAIN/whispey/internal/db/calllogs"
	"github.com/PYPE-AI-MAIN/whispey/internal/db/connection"
	"github.com/PYPE-AI-MAIN/whispey/internal/export"
	"github.com/PYPE-AI-MAIN/whispey/internal/filter"
	"github.com/PYPE-AI-MAIN/whispey/internal/history"
	"github.com/PYPE-AI-MAIN/whispey/internal/models"
	"github.com/PYPE-AI-MAIN/whispey/internal/views"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "views":
		err = listViews(cfg)
	case "apply":
		err = applyView(cfg, os.Args[2:])
	case "export":
		err = exportView(cfg, os.Args[2:])
	case "history":
		err = showHistory(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: whispey <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  views                         list saved views")
	fmt.Fprintln(os.Stderr, "  apply <view> [flags]          run a saved view and print a summary")
	fmt.Fprintln(os.Stderr, "  export <view> <file> [flags]  run a saved view and export rows (.csv or .json)")
	fmt.Fprintln(os.Stderr, "  history [flags]               show recently applied queries")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags: -agent, -from, -to, -limit, -offset")
}

func loadViews() (*views.Manager, error) {
	configDir, err := config.GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return views.NewManager(configDir)
}

func listViews(cfg *config.Config) error {
	manager, err := loadViews()
	if err != nil {
		return err
	}

	all := manager.List()
	if len(all) == 0 {
		fmt.Println("No saved views.")
		return nil
	}

	for _, view := range all {
		fmt.Printf("%s  (%s, %d operations, agent %s)\n",
			view.Name, view.Logic, len(view.Operations), view.AgentID)
	}
	return nil
}

// runView translates a saved view and executes it against the call-log table.
func runView(cfg *config.Config, viewName, agentID, dateFrom, dateTo string, limit, offset int) (*models.SavedView, *models.QueryResult, error) {
	manager, err := loadViews()
	if err != nil {
		return nil, nil, err
	}

	view, ok := manager.GetByName(viewName)
	if !ok {
		return nil, nil, fmt.Errorf("view not found: %s", viewName)
	}
	if agentID == "" {
		agentID = view.AgentID
	}
	if agentID == "" {
		return nil, nil, fmt.Errorf("no agent id: view %q has none saved and -agent was not given", viewName)
	}

	q, err := filter.Translate(view.Operations, view.Logic, filter.Subject(agentID, dateFrom, dateTo))
	if err != nil {
		return nil, nil, err
	}
	if limit <= 0 {
		limit = cfg.Query.DefaultLimit
	}
	q.Limit = limit
	q.Offset = offset

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Query.TimeoutMS)*time.Millisecond)
	defer cancel()

	pool, err := connection.NewPool(ctx, cfg.ConnectionConfig())
	if err != nil {
		return nil, nil, err
	}
	defer pool.Close()

	result, fetchErr := calllogs.Fetch(ctx, pool, q, cfg.Query.Role)

	if cfg.History.Enabled {
		recordHistory(cfg, view, agentID, q, result, fetchErr)
	}

	if fetchErr != nil {
		return nil, nil, fetchErr
	}
	return view, result, nil
}

func recordHistory(cfg *config.Config, view *models.SavedView, agentID string, q *models.Query, result *models.QueryResult, fetchErr error) {
	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		log.Printf("Warning: Could not open history store: %v\n", err)
		return
	}
	defer func() { _ = store.Close() }()

	sqlText, _, buildErr := calllogs.BuildSQL(q, cfg.Query.Role)
	if buildErr != nil {
		sqlText = ""
	}

	entry := history.AppliedQuery{
		AgentID:  agentID,
		ViewName: view.Name,
		SQLText:  sqlText,
		Success:  fetchErr == nil,
	}
	if result != nil {
		entry.Duration = result.Duration
		entry.RowCount = int64(len(result.Rows))
	}
	if fetchErr != nil {
		entry.ErrorMessage = fetchErr.Error()
	}

	if err := store.Add(entry); err != nil {
		log.Printf("Warning: Could not record query history: %v\n", err)
	}
}

func applyView(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	agent := fs.String("agent", "", "agent id (defaults to the view's saved agent)")
	from := fs.String("from", "", "start date (YYYY-MM-DD, inclusive)")
	to := fs.String("to", "", "end date (YYYY-MM-DD, inclusive)")
	limit := fs.Int("limit", 0, "row limit (defaults to query.default_limit)")
	offset := fs.Int("offset", 0, "row offset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("apply requires a view name")
	}

	view, result, err := runView(cfg, fs.Arg(0), *agent, *from, *to, *limit, *offset)
	if err != nil {
		return err
	}

	fmt.Printf("View %q: %d rows in %s\n", view.Name, len(result.Rows), result.Duration.Round(time.Millisecond))
	fmt.Printf("Columns: %s\n", strings.Join(result.Columns, ", "))
	return nil
}

func exportView(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	agent := fs.String("agent", "", "agent id (defaults to the view's saved agent)")
	from := fs.String("from", "", "start date (YYYY-MM-DD, inclusive)")
	to := fs.String("to", "", "end date (YYYY-MM-DD, inclusive)")
	limit := fs.Int("limit", 2000, "row limit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("export requires a view name and an output file")
	}
	viewName, outFile := fs.Arg(0), fs.Arg(1)

	_, result, err := runView(cfg, viewName, *agent, *from, *to, *limit, 0)
	if err != nil {
		return err
	}

	path := outFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Export.Directory, path)
	}

	if strings.HasSuffix(outFile, ".json") {
		if err := export.WriteJSON(path, result.Rows); err != nil {
			return err
		}
		fmt.Printf("Exported %d rows to %s\n", len(result.Rows), path)
		return nil
	}

	basic := calllogs.SelectColumns(cfg.Query.Role)
	metadataFields := collectJSONFields(result.Rows, "metadata")
	transcriptionFields := collectJSONFields(result.Rows, "transcription_metrics")

	records := make([]map[string]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		records = append(records, export.Flatten(row, basic, metadataFields, transcriptionFields))
	}

	header := export.Header(basic, metadataFields, transcriptionFields)
	if err := export.WriteCSV(path, header, records); err != nil {
		return err
	}
	fmt.Printf("Exported %d rows to %s\n", len(records), path)
	return nil
}

func showHistory(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	agent := fs.String("agent", "", "agent id to list history for")
	search := fs.String("search", "", "match view names or SQL text instead of listing by agent")
	limit := fs.Int("limit", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("query history is disabled in config")
	}

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	var entries []history.AppliedQuery
	switch {
	case *search != "":
		entries, err = store.Search(*search, *limit)
	case *agent != "":
		entries, err = store.GetRecent(*agent, *limit)
	default:
		return fmt.Errorf("history requires -agent or -search")
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return nil
	}
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed: " + e.ErrorMessage
		}
		fmt.Printf("%s  %-20s  %5d rows  %6s  %s\n",
			e.ExecutedAt.Format("2006-01-02 15:04:05"), e.ViewName, e.RowCount,
			e.Duration.Round(time.Millisecond), status)
	}
	return nil
}

// collectJSONFields gathers the union of field names seen in one JSONB
// column across a batch, so exported rows share a uniform column set.
func collectJSONFields(rows []map[string]interface{}, column string) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		object, ok := row[column].(map[string]interface{})
		if !ok {
			continue
		}
		for key := range object {
			seen[key] = true
		}
	}

	fields := make([]string, 0, len(seen))
	for key := range seen {
		fields = append(fields, key)
	}
	sort.Strings(fields)
	return fields
}
