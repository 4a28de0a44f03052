package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"yield-advisor/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down); overrides -direction")
		version   = flag.Bool("version", false, "Print current migration version")
		force     = flag.Int("force", -1, "Force set version after a failed migration")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open embedded migrations: %v\n", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.Database.URL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected to %s on %s:%d\n", cfg.Database.Database, cfg.Database.Host, cfg.Database.Port)

	code := run(m, *direction, *steps, *version, forceSet, *force)
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to close migrator: source=%v database=%v\n", srcErr, dbErr)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

// migrator is the part of *migrate.Migrate that run drives.
type migrator interface {
	Version() (uint, bool, error)
	Force(version int) error
	Steps(n int) error
	Up() error
	Down() error
}

// run applies the requested migration action and returns the process exit code.
// It does not exit the process.
func run(m migrator, direction string, steps int, version, forceSet bool, force int) int {
	switch {
	case version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return 0
		}
		if err != nil {
			return fail("Failed to read version", err)
		}
		fmt.Printf("Version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(force); err != nil {
			return fail("Failed to force version", err)
		}
		fmt.Printf("Forced to version %d\n", force)
	case steps != 0:
		if err := m.Steps(steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fail("Failed to run migrations", err)
		}
		fmt.Printf("Applied %d migration steps\n", steps)
	case direction == "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fail("Failed to run up migrations", err)
		}
		fmt.Println("Migration completed successfully")
	case direction == "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fail("Failed to run down migrations", err)
		}
		fmt.Println("Migrations reverted successfully")
	default:
		fmt.Fprintf(os.Stderr, "Unknown direction %q, expected up or down\n", direction)
		flag.PrintDefaults()
		return 2
	}
	return 0
}

func fail(msg string, err error) int {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return 1
}
