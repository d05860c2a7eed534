package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/event-planner/config"
	"github.com/target/event-planner/internal/adapters/filestore"
	redisadapter "github.com/target/event-planner/internal/adapters/redis"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/domain/model"
	"github.com/target/event-planner/internal/testutil"
)

func newCommandContext(in string) (*commandContext, *bytes.Buffer) {
	var out bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{Events: config.EventStoreConfig{Backend: config.EventBackendFile}},
		Out:    &out,
		In:     strings.NewReader(in),
	}, &out
}

func writeEventsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestPrintUsageListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: eventplanner-admin <command> [flags]")
	assert.Less(t, strings.Index(out, "clear-sessions"), strings.Index(out, "import-events"))
	assert.Less(t, strings.Index(out, "list-sessions"), strings.Index(out, "migrate"))
}

func TestParseFlags(t *testing.T) {
	_, err := parseMigrateFlags([]string{"--timeout", "0s"})
	assert.Error(t, err)

	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseImportEventsFlags([]string{"--file", "  "})
	assert.Error(t, err)

	_, err = parseSessionFlags("list-sessions", []string{"--limit", "-1"})
	assert.Error(t, err)

	sopts, err := parseSessionFlags("clear-sessions", []string{"--user-id", " u1 ", "--dry-run"})
	require.NoError(t, err)
	assert.Equal(t, "u1", sopts.UserID)
	assert.True(t, sopts.DryRun)
}

func TestListEvents(t *testing.T) {
	store := filestore.NewEventStore(writeEventsFile(t, `[
  {"id": 1, "name": "Picnic", "date": "2025-06-01", "location": "Park"},
  {"id": 4, "name": "Gala", "date": "2025-07-01", "location": "Hall"}
]`))

	cmdCtx, out := newCommandContext("")
	require.NoError(t, listEvents(cmdCtx, store, listEventsOptions{}))
	assert.Contains(t, out.String(), "Picnic")
	assert.Contains(t, out.String(), "Total events: 2")

	cmdCtx, out = newCommandContext("")
	empty := filestore.NewEventStore(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, listEvents(cmdCtx, empty, listEventsOptions{JSON: true}))
	assert.JSONEq(t, `[]`, out.String())
}

func TestImportEvents(t *testing.T) {
	srcPath := writeEventsFile(t, `[
  {"id": 7, "name": "Picnic", "date": "2025-06-01", "location": "Park"},
  {"id": 8, "name": "", "date": "2025-07-01", "location": "Hall"}
]`)
	src := filestore.NewEventStore(srcPath)

	newDst := func(t *testing.T) *filestore.EventStore {
		t.Helper()
		dst := filestore.NewEventStore(writeEventsFile(t, `[{"id": 1, "name": "Old", "date": "2024-01-01", "location": "Home"}]`))
		return dst
	}

	t.Run("renumbers and skips invalid events", func(t *testing.T) {
		dst := newDst(t)
		cmdCtx, out := newCommandContext("")
		require.NoError(t, importEvents(cmdCtx, src, dst, importEventsOptions{File: srcPath, Yes: true}))
		assert.Contains(t, out.String(), "Imported 1/2 events")

		events, err := dst.List(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, &model.Event{ID: 2, Name: "Picnic", Date: "2025-06-01", Location: "Park"}, events[1])
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		dst := newDst(t)
		cmdCtx, out := newCommandContext("")
		require.NoError(t, importEvents(cmdCtx, src, dst, importEventsOptions{File: srcPath, DryRun: true}))
		assert.Contains(t, out.String(), "Dry-run: would import 2 events")

		events, err := dst.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("declined confirmation aborts", func(t *testing.T) {
		dst := newDst(t)
		cmdCtx, _ := newCommandContext("n\n")
		err := importEvents(cmdCtx, src, dst, importEventsOptions{File: srcPath})
		require.EqualError(t, err, "aborted by user")

		events, err := dst.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("confirmed import", func(t *testing.T) {
		dst := newDst(t)
		cmdCtx, _ := newCommandContext("yes\n")
		require.NoError(t, importEvents(cmdCtx, src, dst, importEventsOptions{File: srcPath}))
	})
}

func TestCollectAndPrintSessions(t *testing.T) {
	_, client := testutil.NewMiniRedis(t)
	store := redisadapter.NewSessionStore(client)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "anon", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, domainauth.Session{
		ID: "a1", User: &domainauth.User{ID: "u1", Username: "ann"}, ExpiresAt: time.Now().Add(2 * time.Hour),
	}))

	entries, err := collectSessions(ctx, client, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a1", entries[0].ID, "longest TTL first")
	assert.True(t, entries[1].Pending)

	entries, err = collectSessions(ctx, client, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var buf bytes.Buffer
	require.NoError(t, printSessions(&buf, entries, 0))
	assert.Contains(t, buf.String(), "ann")
	assert.Contains(t, buf.String(), "Showing 1 of 1 sessions")

	buf.Reset()
	require.NoError(t, printSessions(&buf, nil, 10))
	assert.Equal(t, "(no sessions found)\n", buf.String())
}

func TestClearSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("by user", func(t *testing.T) {
		mr, client := testutil.NewMiniRedis(t)
		store := redisadapter.NewSessionStore(client)
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: "anon", ExpiresAt: time.Now().Add(time.Hour)}))
		require.NoError(t, store.Save(ctx, domainauth.Session{
			ID: "a1", User: &domainauth.User{ID: "u1"}, ExpiresAt: time.Now().Add(time.Hour),
		}))
		require.NoError(t, store.Save(ctx, domainauth.Session{
			ID: "b1", User: &domainauth.User{ID: "u2"}, ExpiresAt: time.Now().Add(time.Hour),
		}))

		cmdCtx, out := newCommandContext("")
		require.NoError(t, clearSessions(ctx, cmdCtx, client, sessionFilterOptions{UserID: "u1", Yes: true}))
		assert.Contains(t, out.String(), "Deleted 1 sessions")
		assert.False(t, mr.Exists(redisadapter.DefaultKeyPrefix+"a1"))
		assert.True(t, mr.Exists(redisadapter.DefaultKeyPrefix+"b1"))
		assert.True(t, mr.Exists(redisadapter.DefaultKeyPrefix+"anon"))
	})

	t.Run("dry run", func(t *testing.T) {
		mr, client := testutil.NewMiniRedis(t)
		store := redisadapter.NewSessionStore(client)
		require.NoError(t, store.Save(ctx, domainauth.Session{ID: "anon", ExpiresAt: time.Now().Add(time.Hour)}))

		cmdCtx, out := newCommandContext("")
		require.NoError(t, clearSessions(ctx, cmdCtx, client, sessionFilterOptions{DryRun: true}))
		assert.Contains(t, out.String(), "Dry-run: would delete 1 sessions")
		assert.True(t, mr.Exists(redisadapter.DefaultKeyPrefix+"anon"))
	})

	t.Run("nothing to clear", func(t *testing.T) {
		_, client := testutil.NewMiniRedis(t)
		cmdCtx, out := newCommandContext("")
		require.NoError(t, clearSessions(ctx, cmdCtx, client, sessionFilterOptions{Yes: true}))
		assert.Equal(t, "No sessions found in Redis\n", out.String())
	})
}

func TestRenderTTL(t *testing.T) {
	assert.Equal(t, "no expiry", renderTTL(-1))
	assert.Equal(t, "expired", renderTTL(-2))
	assert.Equal(t, "1m30s", renderTTL(90*time.Second+300*time.Millisecond))
}
