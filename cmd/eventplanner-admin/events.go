package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/target/event-planner/internal/adapters/filestore"
	"github.com/target/event-planner/internal/bootstrap"
	"github.com/target/event-planner/internal/core"
	"github.com/target/event-planner/internal/domain/model"
)

type listEventsOptions struct {
	JSON bool
}

func parseListEventsFlags(args []string) (listEventsOptions, error) {
	fs := flag.NewFlagSet("list-events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listEventsOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print events as JSON")
	if err := fs.Parse(args); err != nil {
		return listEventsOptions{}, err
	}
	return opts, nil
}

type importEventsOptions struct {
	File   string
	DryRun bool
	Yes    bool
}

func parseImportEventsFlags(args []string) (importEventsOptions, error) {
	fs := flag.NewFlagSet("import-events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts importEventsOptions
	fs.StringVar(&opts.File, "file", "", "JSON events file to import (required)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be imported without writing")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return importEventsOptions{}, err
	}
	opts.File = strings.TrimSpace(opts.File)
	if opts.File == "" {
		return importEventsOptions{}, errors.New("--file is required")
	}
	return opts, nil
}

// withEventRepo opens the configured events backend for the duration of f.
func withEventRepo(cmdCtx *commandContext, f func(core.EventRepository) error) error {
	repo, closeRepo, err := bootstrap.BuildEventRepository(cmdCtx.Ctx, bootstrap.EventStoreDeps{
		Events:   cmdCtx.Config.Events,
		Postgres: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("open events backend: %w", err)
	}
	defer func() {
		if closeErr := closeRepo(); closeErr != nil {
			cmdCtx.Logger.Warn("events backend close failed", "error", closeErr)
		}
	}()
	return f(repo)
}

func runListEvents(cmdCtx *commandContext, args []string) error {
	opts, err := parseListEventsFlags(args)
	if err != nil {
		return err
	}
	return withEventRepo(cmdCtx, func(repo core.EventRepository) error {
		return listEvents(cmdCtx, repo, opts)
	})
}

func listEvents(cmdCtx *commandContext, repo core.EventRepository, opts listEventsOptions) error {
	events, err := repo.List(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	if opts.JSON {
		enc := json.NewEncoder(cmdCtx.Out)
		enc.SetIndent("", "  ")
		if events == nil {
			events = []*model.Event{}
		}
		return enc.Encode(events)
	}

	if len(events) == 0 {
		return writeln(cmdCtx.Out, "(no events found)")
	}
	return renderEventTable(cmdCtx.Out, events)
}

func renderEventTable(w io.Writer, events []*model.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tNAME\tDATE\tLOCATION\n"); err != nil {
		return fmt.Errorf("print events header: %w", err)
	}
	for _, ev := range events {
		if err := writef(tw, "%d\t%s\t%s\t%s\n", ev.ID, ev.Name, ev.Date, ev.Location); err != nil {
			return fmt.Errorf("print event row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush events table: %w", err)
	}
	return writef(w, "\nTotal events: %d\n", len(events))
}

func runImportEvents(cmdCtx *commandContext, args []string) error {
	opts, err := parseImportEventsFlags(args)
	if err != nil {
		return err
	}
	return withEventRepo(cmdCtx, func(repo core.EventRepository) error {
		return importEvents(cmdCtx, filestore.NewEventStore(opts.File), repo, opts)
	})
}

// importEvents copies every event from src into dst. Destination ids are
// assigned by dst, so imported events are renumbered after its existing ones.
func importEvents(cmdCtx *commandContext, src, dst core.EventRepository, opts importEventsOptions) error {
	events, err := src.List(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.File, err)
	}
	if len(events) == 0 {
		return writef(cmdCtx.Out, "No events found in %s\n", opts.File)
	}

	if opts.DryRun {
		if err := writef(cmdCtx.Out, "Dry-run: would import %d events from %s\n", len(events), opts.File); err != nil {
			return err
		}
		return renderEventTable(cmdCtx.Out, events)
	}
	if !opts.Yes {
		prompt := fmt.Sprintf("About to import %d events from %s into the %s backend.",
			len(events), opts.File, cmdCtx.Config.Events.Backend)
		if err := confirm(cmdCtx, prompt); err != nil {
			return err
		}
	}

	imported := 0
	for _, ev := range events {
		req := &model.CreateEventRequest{Name: ev.Name, Date: ev.Date, Location: ev.Location}
		if err := req.Validate(); err != nil {
			cmdCtx.Logger.Warn("skipping invalid event", "id", ev.ID, "error", err)
			continue
		}
		created, err := dst.Create(cmdCtx.Ctx, req)
		if err != nil {
			return fmt.Errorf("import event %d: %w", ev.ID, err)
		}
		cmdCtx.Logger.Debug("imported event", "source_id", ev.ID, "id", created.ID)
		imported++
	}
	return writef(cmdCtx.Out, "Imported %d/%d events\n", imported, len(events))
}
