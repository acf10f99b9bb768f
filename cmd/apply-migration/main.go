package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/yuanzac/submarine/common/database"
	"github.com/yuanzac/submarine/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>...", os.Args[0])
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer database.Close(db)

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	for _, file := range os.Args[1:] {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("Failed to read migration file: %v", err)
		}
		stmts := splitStatements(string(content))
		for i, stmt := range stmts {
			fmt.Printf("[%s] executing statement %d/%d...\n", file, i+1, len(stmts))
			if _, err := db.ExecContext(context.Background(), stmt); err != nil {
				log.Fatalf("Failed to execute statement %d of %s: %v\nStatement: %s", i+1, file, err, stmt[:min(100, len(stmt))])
			}
		}
	}
	fmt.Println("Migration completed successfully")
}

// splitStatements splits on ';' and drops comment-only chunks.
func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if s := strings.TrimSpace(strings.Join(lines, "\n")); s != "" {
			out = append(out, s)
		}
	}
	return out
}
