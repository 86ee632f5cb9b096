// Package main dumps the contents of a local badger database, one
// collection at a time, as indented JSON.
//
// Usage:
//
//	DB_PATH=~/notevault/db go run ./cmd/dbinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/notevault/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")

	counts := map[string]int{}
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			collection, id, ok := strings.Cut(key, "/")
			if !ok {
				continue
			}
			counts[collection]++

			err := item.Value(func(val []byte) error {
				var doc map[string]any
				if err := json.Unmarshal(val, &doc); err != nil {
					return fmt.Errorf("unmarshal %s: %w", key, err)
				}
				pretty, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Printf("\n[%s] %s\n%s\n", collection, id, pretty)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to read database: %v", err)
	}

	fmt.Println("\n=== Summary ===")
	for collection, n := range counts {
		fmt.Printf("%s: %d\n", collection, n)
	}
}
