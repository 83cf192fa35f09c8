package main

import (
	"fmt"
	"os"

	"library-desk/library"
)

// Seeds a fresh catalog with a small sample set, replacing any existing
// database file. Handy for demos and manual testing.
func main() {
	cfg, err := library.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Cleaning up existing database files...")
	dbFiles := []string{cfg.DBPath, cfg.DBPath + "-shm", cfg.DBPath + "-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}

	log := library.NewLogger(library.LogOptions{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	mgr, err := library.NewLibraryManager(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer mgr.Close()

	samples := []library.BookInput{
		{ISBN: "9780451524935", Title: "1984", Author: "George Orwell", Genre: "Dystopian", ShelfNumber: "A1", Quantity: 3},
		{ISBN: "9780452284241", Title: "Animal Farm", Author: "George Orwell", Genre: "Satire", ShelfNumber: "A1", Quantity: 2},
		{ISBN: "9780553296983", Title: "The Diary of a Young Girl", Author: "Anne Frank", Genre: "Biography", ShelfNumber: "B2", Quantity: 2},
		{ISBN: "9781590302255", Title: "The Art of War", Author: "Sun Tzu", Genre: "Philosophy", ShelfNumber: "C3", Quantity: 1},
		{ISBN: "9780547928210", Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", Genre: "Fantasy", ShelfNumber: "D1", Quantity: 4},
		{ISBN: "9780439064873", Title: "Harry Potter and the Chamber of Secrets", Author: "J.K. Rowling", Genre: "Fantasy", ShelfNumber: "D2", Quantity: 5},
		{ISBN: "9780545139700", Title: "Harry Potter and the Deathly Hallows", Author: "J.K. Rowling", Genre: "Fantasy", ShelfNumber: "D2", Quantity: 5},
		{ISBN: "9780061120084", Title: "To Kill a Mockingbird", Author: "Harper Lee", Genre: "Classic", ShelfNumber: "E1", Quantity: 3},
		{ISBN: "9780316769488", Title: "The Catcher in the Rye", Author: "J.D. Salinger", Genre: "Classic", ShelfNumber: "E1", Quantity: 2},
		{ISBN: "9780141439518", Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance", ShelfNumber: "E2", Quantity: 3},
		{ISBN: "9780307474278", Title: "The Da Vinci Code", Author: "Dan Brown", Genre: "Thriller", ShelfNumber: "F1", Quantity: 2},
		{ISBN: "9780062315007", Title: "The Alchemist", Author: "Paulo Coelho", Genre: "Fiction", ShelfNumber: "F2", Quantity: 3},
	}

	imported := 0
	for _, b := range samples {
		if err := mgr.AddBook(b); err != nil {
			fmt.Printf("Error adding '%s': %v\n", b.Title, err)
			continue
		}
		imported++
	}

	fmt.Printf("Imported %d of %d books into %s\n", imported, len(samples), cfg.DBPath)
}
