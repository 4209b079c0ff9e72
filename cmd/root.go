package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cocon/cooc/internal/config"
	"cocon/cooc/internal/db"
	"cocon/cooc/internal/errors"
	"cocon/cooc/internal/graph"
	"cocon/cooc/internal/logger"
)

var (
	dbPath     string
	configPath string
	jsonLogs   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cooc",
	Short: "Co-occurrence sampling and temporal pruning over a scholarly graph",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Initialize(jsonLogs, verbose)
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .cocon.db graph store")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML sampling config")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("COCON_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", errors.Newf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".cocon.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "cocon", "cocon.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", errors.WithHint(
		errors.New("no .cocon.db found"),
		"set COCON_DB, use --db, or run from a directory containing .cocon.db",
	)
}

// OpenDatabase discovers and opens the database
func OpenDatabase(ctx context.Context) (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	d, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := d.EnsureSchema(ctx); err != nil {
		d.Close()
		return nil, err
	}
	logger.Logger.Debugw("opened graph store", "path", path)
	return d, nil
}

// LoadSnapshot opens the store and reads it into memory.
func LoadSnapshot(ctx context.Context) (*graph.Snapshot, error) {
	d, err := OpenDatabase(ctx)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	snap, err := graph.SnapshotFromDB(ctx, d)
	if err != nil {
		return nil, errors.Wrap(err, "loading graph")
	}
	logger.Logger.Debugw("snapshot loaded",
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"ghosts", snap.Ghosts,
		"malformed", snap.Malformed,
		"dangling_edges", snap.DanglingEdges)
	return snap, nil
}

// LoadConfig returns the --config file on top of defaults, or the defaults.
func LoadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// ResolveNode finds a node by full ID or unambiguous ID prefix.
func ResolveNode(ctx context.Context, d *db.DB, reference string) (*db.Node, error) {
	// 1. Exact ID match
	node, err := d.GetNode(ctx, reference)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	// 2. ID prefix match
	if len(reference) >= 3 {
		matches, err := d.SearchByIDPrefix(ctx, reference, 10)
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 1:
			return &matches[0], nil
		case 0:
			// fall through to not found
		default:
			lines := make([]string, len(matches))
			for i, m := range matches {
				lines[i] = fmt.Sprintf("  %s (%s) %s", m.ID, m.Type, m.Name)
			}
			return nil, errors.Newf("ambiguous reference '%s'. %d matches:\n%s\nUse a full node ID instead.",
				reference, len(matches), strings.Join(lines, "\n"))
		}
	}

	return nil, errors.Mark(errors.Newf("node not found: %s", reference), errors.ErrNotFound)
}
