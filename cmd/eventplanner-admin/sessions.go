package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	redisadapter "github.com/target/event-planner/internal/adapters/redis"
	"github.com/target/event-planner/internal/bootstrap"
	domainauth "github.com/target/event-planner/internal/domain/auth"
)

const scanBatch = 100

type sessionFilterOptions struct {
	UserID string
	Limit  int
	DryRun bool
	Yes    bool
}

func parseSessionFlags(name string, args []string) (sessionFilterOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sessionFilterOptions
	fs.StringVar(&opts.UserID, "user-id", "", "Only match sessions belonging to this user")
	if name == "list-sessions" {
		fs.IntVar(&opts.Limit, "limit", 50, "Maximum number of sessions to print")
	} else {
		fs.BoolVar(&opts.DryRun, "dry-run", false, "Show how many sessions would be deleted")
		fs.BoolVar(&opts.Yes, "yes", false, "Skip the confirmation prompt")
	}
	if err := fs.Parse(args); err != nil {
		return sessionFilterOptions{}, err
	}
	if opts.Limit < 0 {
		return sessionFilterOptions{}, errors.New("--limit must not be negative")
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	return opts, nil
}

type sessionEntry struct {
	Key      string
	ID       string
	UserID   string
	Username string
	Pending  bool
	TTL      time.Duration
}

// withRedis connects to Redis for the duration of f.
func withRedis(cmdCtx *commandContext, f func(context.Context, redis.UniversalClient) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	client, err := bootstrap.ConnectRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()
	return f(ctx, client)
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionFlags("list-sessions", args)
	if err != nil {
		return err
	}
	return withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		entries, err := collectSessions(ctx, client, opts.UserID)
		if err != nil {
			return err
		}
		return printSessions(cmdCtx.Out, entries, opts.Limit)
	})
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionFlags("clear-sessions", args)
	if err != nil {
		return err
	}
	return withRedis(cmdCtx, func(ctx context.Context, client redis.UniversalClient) error {
		return clearSessions(ctx, cmdCtx, client, opts)
	})
}

// collectSessions scans every session key, keeping those owned by userID when it is set.
func collectSessions(ctx context.Context, client redis.UniversalClient, userID string) ([]sessionEntry, error) {
	var entries []sessionEntry
	iter := client.Scan(ctx, 0, redisadapter.DefaultKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		entry, ok, err := loadSessionEntry(ctx, client, key)
		if err != nil {
			return nil, err
		}
		if !ok || (userID != "" && entry.UserID != userID) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TTL > entries[j].TTL })
	return entries, nil
}

// loadSessionEntry reports ok=false when the key expired between SCAN and GET.
func loadSessionEntry(ctx context.Context, client redis.UniversalClient, key string) (sessionEntry, bool, error) {
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sessionEntry{}, false, nil
	}
	if err != nil {
		return sessionEntry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	entry := sessionEntry{Key: key, ID: strings.TrimPrefix(key, redisadapter.DefaultKeyPrefix)}
	var sess domainauth.Session
	if err := json.Unmarshal(raw, &sess); err == nil && sess.User != nil {
		entry.UserID = sess.User.ID
		entry.Username = sess.User.Username
	} else {
		entry.Pending = true
	}

	ttl, err := client.TTL(ctx, key).Result()
	if err != nil {
		return sessionEntry{}, false, fmt.Errorf("redis ttl %s: %w", key, err)
	}
	entry.TTL = ttl
	return entry, true, nil
}

func printSessions(w io.Writer, entries []sessionEntry, limit int) error {
	if len(entries) == 0 {
		return writeln(w, "(no sessions found)")
	}

	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "SESSION\tUSER\tUSERNAME\tTTL\n"); err != nil {
		return fmt.Errorf("print sessions header: %w", err)
	}
	for _, e := range shown {
		user, name := e.UserID, e.Username
		if e.Pending {
			user, name = "(anonymous)", "-"
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\n", e.ID, user, name, renderTTL(e.TTL)); err != nil {
			return fmt.Errorf("print session row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush sessions table: %w", err)
	}
	return writef(w, "\nShowing %d of %d sessions\n", len(shown), len(entries))
}

func clearSessions(ctx context.Context, cmdCtx *commandContext, client redis.UniversalClient, opts sessionFilterOptions) error {
	entries, err := collectSessions(ctx, client, opts.UserID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return writeln(cmdCtx.Out, "No sessions found in Redis")
	}
	if opts.DryRun {
		return writef(cmdCtx.Out, "Dry-run: would delete %d sessions\n", len(entries))
	}
	if !opts.Yes {
		target := "every user"
		if opts.UserID != "" {
			target = fmt.Sprintf("user %q", opts.UserID)
		}
		if err := confirm(cmdCtx, fmt.Sprintf("About to delete %d sessions for %s.", len(entries), target)); err != nil {
			return err
		}
	}

	// One DEL per key keeps cluster clients from hitting CROSSSLOT errors.
	pipe := client.Pipeline()
	cmds := make([]*redis.IntCmd, 0, len(entries))
	for _, e := range entries {
		cmds = append(cmds, pipe.Del(ctx, e.Key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	var deleted int64
	for _, c := range cmds {
		deleted += c.Val()
	}
	cmdCtx.Logger.Info("sessions cleared", "deleted", deleted, "user_id", opts.UserID)
	return writef(cmdCtx.Out, "Deleted %d sessions\n", deleted)
}

func renderTTL(d time.Duration) string {
	switch {
	case d == -1:
		return "no expiry"
	case d < 0:
		return "expired"
	default:
		return d.Truncate(time.Second).String()
	}
}
