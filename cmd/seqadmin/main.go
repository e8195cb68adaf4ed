// Package main provides the CLI for inspecting and repairing document
// number sequences.
// Usage: seqadmin show --tenant <id> --type CS --year 2025
//        seqadmin set  --tenant <id> --type PV --year 2025 --value 120
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"mezgeb/internal/domain/sequence"
	"mezgeb/internal/infrastructure/config"
	"mezgeb/internal/infrastructure/storage/postgres"
	"mezgeb/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "show":
		showSequence(ctx)
	case "set":
		setSequence(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Mezgeb Sequence Admin CLI

Usage:
  seqadmin <command> [options]

Commands:
  show      Show the current counter value for a sequence key
  set       Force the counter to a value (next allocation returns value+1)
  help      Show this help

Options:
  --tenant <id>     Tenant identifier (required)
  --type <CS|PV|PB> Document type (required)
  --year <yyyy>     Numbering year (required)
  --value <n>       New counter value (set only)

Configuration:
  config.toml in the working directory or /etc/mezgeb, overridable with
  MEZGEB_-prefixed environment variables (e.g. MEZGEB_DATABASE_PASSWORD).

Examples:
  seqadmin show --tenant 1f0a... --type CS --year 2025
  seqadmin set --tenant 1f0a... --type PV --year 2025 --value 120`)
}

type keyArgs struct {
	key   sequence.Key
	value int64
}

func parseKeyArgs(needValue bool) keyArgs {
	var tenantID, docType, yearStr, valueStr string

	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--tenant":
			if i+1 < len(os.Args) {
				tenantID = os.Args[i+1]
				i++
			}
		case "--type":
			if i+1 < len(os.Args) {
				docType = os.Args[i+1]
				i++
			}
		case "--year":
			if i+1 < len(os.Args) {
				yearStr = os.Args[i+1]
				i++
			}
		case "--value":
			if i+1 < len(os.Args) {
				valueStr = os.Args[i+1]
				i++
			}
		}
	}

	if tenantID == "" || docType == "" || yearStr == "" {
		fmt.Println("Error: --tenant, --type and --year are required")
		os.Exit(1)
	}

	dt, err := sequence.ParseDocumentType(docType)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		fmt.Printf("Error: invalid year %q\n", yearStr)
		os.Exit(1)
	}

	args := keyArgs{key: sequence.Key{TenantID: tenantID, DocType: dt, Year: year}}

	if needValue {
		if valueStr == "" {
			fmt.Println("Error: --value is required for set")
			os.Exit(1)
		}
		v, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil || v < 0 {
			fmt.Printf("Error: invalid value %q\n", valueStr)
			os.Exit(1)
		}
		args.value = v
	}

	return args
}

func openStore(ctx context.Context) (*postgres.SequenceStore, func()) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	log.Debugw("connected", "database", cfg.Database.DBName)

	store := postgres.NewSequenceStore(postgres.NewTxManager(pool))
	return store, pool.Close
}

func showSequence(ctx context.Context) {
	args := parseKeyArgs(false)

	store, closeFn := openStore(ctx)
	defer closeFn()

	current, err := store.Current(ctx, args.key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if current == 0 {
		fmt.Printf("Sequence %s: no allocations yet (next value will be 1)\n", args.key)
		return
	}

	fmt.Printf("Sequence %s\n", args.key)
	fmt.Printf("  Last allocated: %d\n", current)
	fmt.Printf("  Next value:     %d\n", current+1)
}

func setSequence(ctx context.Context) {
	args := parseKeyArgs(true)

	store, closeFn := openStore(ctx)
	defer closeFn()

	previous, err := store.Current(ctx, args.key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if args.value < previous {
		fmt.Printf("Warning: rewinding %s from %d to %d; already-issued numbers will collide on insert\n",
			args.key, previous, args.value)
	}

	if err := store.Set(ctx, args.key, args.value); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Sequence %s set to %d (next allocation returns %d)\n", args.key, args.value, args.value+1)
}
