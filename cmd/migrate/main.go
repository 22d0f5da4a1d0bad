// Command migrate applies the SQL migrations under db/migrations against the
// configured database.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"paperbridge/internal/config"
)

const usage = "usage: migrate [up|down|steps N|version]"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New("file://db/migrations", cfg.DB.DSN())
	if err != nil {
		log.Fatalf("opening migrations: %v", err)
	}
	defer m.Close()

	switch cmd := os.Args[1]; cmd {
	case "up":
		run(m.Up(), "up")
	case "down":
		run(m.Down(), "down")
	case "steps":
		if len(os.Args) < 3 {
			log.Fatal("steps needs a count, e.g. `migrate steps -1`")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("bad steps count %q: %v", os.Args[2], err)
		}
		run(m.Steps(n), fmt.Sprintf("steps %d", n))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("reading version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
	default:
		fmt.Printf("unknown command %q\n%s\n", cmd, usage)
		os.Exit(1)
	}
}

func run(err error, what string) {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate %s: %v", what, err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("migrate %s: nothing to do", what)
		return
	}
	log.Printf("migrate %s: done", what)
}
