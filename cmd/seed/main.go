// Package main seeds a local badger database with sample notes, tags,
// and tasks for development.
//
// Usage:
//
//	DB_PATH=~/notevault/db go run ./cmd/seed
//	DB_PATH=~/notevault/db go run ./cmd/seed --user-id my-uid
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/notevaultapp/notevault-core/internal/docstore/badgerstore"
	"github.com/notevaultapp/notevault-core/internal/identity"
	"github.com/notevaultapp/notevault-core/internal/logger"
	"github.com/notevaultapp/notevault-core/internal/service"
	"github.com/notevaultapp/notevault-core/internal/validation"
)

var (
	userID = flag.String("user-id", "", "User id to seed data for (generated when empty)")
	email  = flag.String("email", "dev@notevault.local", "Email for the seeded user")
)

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/notevault/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	lg := logger.New(logger.Config{Level: logger.ParseLevel("warn")})
	store, err := badgerstore.Open(dbPath, lg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	ident := identity.NewContext(identity.NewStatic(*userID, *email), store, lg)
	if err := ident.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize identity: %v", err)
	}
	uid, _ := ident.CurrentUserID()
	fmt.Printf("Seeding data for user: %s\n", uid)

	v := validation.New()
	tags := service.NewTagService(store, ident, lg)
	notes := service.NewNoteService(store, ident, tags, v, lg)
	tasks := service.NewTaskService(store, ident, v, lg)
	tags.SetNoteSource(notes)

	seedNotes := []service.NoteCreate{
		{
			Title:   "Welcome to NoteVault",
			Content: "Your notes live here. Docs: https://github.com/notevaultapp/notevault-core",
			Tags:    []string{"getting started"},
		},
		{
			Title:   "Grocery list",
			Content: "milk, eggs, coffee",
			Tags:    []string{"home"},
		},
		{
			Title:   "Q3 planning",
			Content: "draft the roadmap before the offsite",
			Tags:    []string{"work", "planning"},
		},
	}
	for _, n := range seedNotes {
		id, err := notes.Create(ctx, n)
		if err != nil {
			log.Fatalf("Failed to create note %q: %v", n.Title, err)
		}
		fmt.Printf("  note %s: %s\n", id, n.Title)
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	lastWeek := time.Now().AddDate(0, 0, -7)
	seedTasks := []service.TaskCreate{
		{
			Title:             "Review roadmap draft",
			DueDate:           &tomorrow,
			Priority:          "high",
			RecurringType:     "none",
			RecurringInterval: 1,
		},
		{
			Title:             "Water the plants",
			DueDate:           &lastWeek,
			Priority:          "low",
			RecurringType:     "weekly",
			RecurringInterval: 1,
		},
		{
			Title:             "Someday: learn the banjo",
			Priority:          "medium",
			RecurringType:     "none",
			RecurringInterval: 1,
		},
	}
	for _, tk := range seedTasks {
		id, err := tasks.Create(ctx, tk)
		if err != nil {
			log.Fatalf("Failed to create task %q: %v", tk.Title, err)
		}
		fmt.Printf("  task %s: %s\n", id, tk.Title)
	}

	stats := tasks.Stats()
	fmt.Printf("\nSeeded %d notes, %d tags, %d tasks (%d overdue)\n",
		len(notes.Notes()), len(tags.Tags()), stats.Total, stats.Overdue)
}
