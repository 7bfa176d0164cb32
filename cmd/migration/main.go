package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-app/internal/config"
	"gitlab.com/dirk.krummacker/contacts-app/internal/contacts"
	"gitlab.com/dirk.krummacker/contacts-app/internal/store"
)

// Creates the contacts table, then optionally runs an SQL script and loads seed contacts into an
// empty table.
//
// Usage example on the command line:
// > DBDRIVER=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go -seed=../../data/contacts.json
func main() {
	configPtr := flag.String("config", "", "an optional TOML configuration file")
	filePtr := flag.String("file", "", "an sql file to execute after the table has been created")
	seedPtr := flag.String("seed", "", "a JSON file with contacts to load into an empty table")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		fmt.Println("could not load configuration", err)
		panic(err)
	}
	db, err := store.Open(cfg.Database)
	if err != nil {
		fmt.Println("could not open database", err)
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx, db); err != nil {
		fmt.Println("could not create contacts table", err)
		panic(err)
	}
	fmt.Println("contacts table is in place")

	if *filePtr != "" {
		n := executeFile(db, *filePtr)
		fmt.Printf("executed %d statements from %s\n", n, *filePtr)
	}

	if *seedPtr != "" {
		s, err := store.New(db)
		if err != nil {
			fmt.Println("could not prepare statements", err)
			panic(err)
		}
		seed, err := contacts.LoadSeedFile(*seedPtr)
		if err != nil {
			fmt.Println("could not read seed file", err)
			panic(err)
		}
		n, err := contacts.NewService(s).Bootstrap(ctx, seed)
		if err != nil {
			fmt.Println("could not seed contacts", err)
			panic(err)
		}
		fmt.Printf("seeded %d contacts\n", n)
	}
}

// executeFile runs the statements of an SQL script, each terminated by a semicolon at the end of
// a line, and returns how many were executed.
func executeFile(db *sqlx.DB, path string) int {
	readFile, err := os.Open(path) // nosemgrep
	if err != nil {
		panic(err)
	}
	defer readFile.Close()

	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	count := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			db.MustExec(builder.String())
			builder = strings.Builder{}
			count++
		}
	}
	return count
}
