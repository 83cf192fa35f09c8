package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-desk/library"
)

var configPath string

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library-desk",
		Short:         "Library catalog, loans and analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Ensure the default accounts exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, log, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			if err := mgr.Store().SeedDefaultAccounts(); err != nil {
				return err
			}
			n, err := mgr.Store().CountUsers()
			if err != nil {
				return err
			}
			log.Info().Int("accounts", n).Msg("seed complete")
			fmt.Printf("Seeding complete, %d account(s) in the store.\n", n)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export catalog and loan analytics to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, log, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()
			dash := library.NewDashboard(mgr.Store())
			if err := library.ExportAnalyticsCSV(dash, args[0]); err != nil {
				return err
			}
			log.Info().Str("file", args[0]).Msg("analytics exported")
			fmt.Printf("Exported analytics to %s\n", args[0])
			return nil
		},
	})

	return root
}

func openManager() (*library.LibraryManager, library.Config, zerolog.Logger, error) {
	cfg, err := library.LoadConfig(configPath)
	if err != nil {
		return nil, cfg, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := library.NewLogger(library.LogOptions{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	mgr, err := library.NewLibraryManager(cfg, log)
	if err != nil {
		// Store unreachable at startup is fatal for this application.
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("cannot open library database")
		return nil, cfg, log, err
	}
	return mgr, cfg, log, nil
}

func runShell() error {
	mgr, cfg, log, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	scanner := bufio.NewScanner(os.Stdin)

	session, err := loginLoop(scanner, mgr)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s!\n", session.User.FullName)

	dash := library.NewDashboard(mgr.Store())
	watcher := library.NewOverdueWatcher(dash, cfg.OverdueRefresh, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	covers := library.NewCoverCache()

	fmt.Println("Available commands:")
	fmt.Println("  Catalog: books [page], search, show, add book, edit book, delete book")
	fmt.Println("  Loans: loan, return, loans")
	fmt.Println("  Other: dashboard, register, export, exit")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")

		switch cmd {
		case "books":
			handleBooks(mgr, arg)
		case "search":
			handleSearch(scanner, mgr)
		case "show":
			handleShow(mgr, covers, strings.TrimSpace(arg))
		case "add":
			if arg == "book" {
				handleAddBook(scanner, mgr)
			} else {
				fmt.Println("Did you mean 'add book'?")
			}
		case "edit":
			handleEditBook(scanner, mgr, covers)
		case "delete":
			handleDeleteBook(scanner, mgr, covers)
		case "loan":
			handleLoan(scanner, mgr)
		case "return":
			handleReturn(scanner, mgr)
		case "loans":
			handleListLoans(mgr)
		case "dashboard":
			handleDashboard(dash, watcher)
		case "register":
			handleRegister(scanner, mgr)
		case "export":
			handleExport(scanner, dash)
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		case "":
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
	return nil
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func loginLoop(sc *bufio.Scanner, mgr *library.LibraryManager) (*library.Session, error) {
	for attempts := 0; attempts < 3; attempts++ {
		fmt.Print("Username: ")
		if !sc.Scan() {
			return nil, errors.New("login aborted")
		}
		username := strings.TrimSpace(sc.Text())

		password, err := readPassword("Password: ")
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}

		session, err := mgr.Login(username, password)
		if err == nil {
			return session, nil
		}
		if errors.Is(err, library.ErrInvalidCredentials) {
			fmt.Println("Invalid username or password.")
			continue
		}
		return nil, err
	}
	return nil, errors.New("too many failed login attempts")
}

func handleBooks(mgr *library.LibraryManager, arg string) {
	page := 0
	if arg != "" {
		p, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			fmt.Printf("Invalid page number: %s\n", arg)
			return
		}
		page = p
	}

	// The read runs off the interactive goroutine; we block here only because
	// a shell has nothing better to do than wait for its own output.
	res := <-mgr.PageAsync(page)
	if res.Err != nil {
		fmt.Printf("Error: %v\n", res.Err)
		return
	}
	printBooks(mgr, res.Value)
}

func handleSearch(sc *bufio.Scanner, mgr *library.LibraryManager) {
	fmt.Print("Field (title/author/isbn/genre/shelf_number/status): ")
	if !sc.Scan() {
		return
	}
	field := strings.TrimSpace(sc.Text())

	fmt.Print("Query: ")
	if !sc.Scan() {
		return
	}
	query := strings.TrimSpace(sc.Text())

	res := <-mgr.SearchAsync(field, query)
	if res.Err != nil {
		fmt.Printf("Error: %v\n", res.Err)
		return
	}
	if len(res.Value) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	printBooks(mgr, res.Value)
}

func printBooks(mgr *library.LibraryManager, books []library.Book) {
	if len(books) == 0 {
		fmt.Println("No books on this page.")
		return
	}
	fmt.Printf("%-15s %-30s %-20s %-12s %-10s %s\n", "ISBN", "Title", "Author", "Status", "Copies", "Available")
	fmt.Println(strings.Repeat("-", 100))
	for _, b := range books {
		avail, err := mgr.Available(b.ISBN)
		availStr := "?"
		if err == nil {
			availStr = strconv.Itoa(avail)
		}
		fmt.Printf("%-15s %-30s %-20s %-12s %-10d %s\n",
			b.ISBN, truncateString(b.Title, 30), truncateString(b.Author, 20),
			b.Status, b.Quantity, availStr)
	}
}

func handleShow(mgr *library.LibraryManager, covers *library.CoverCache, isbn string) {
	if isbn == "" {
		fmt.Println("Usage: show <isbn>")
		return
	}
	b, err := mgr.GetBook(isbn)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	avail, _ := mgr.Available(isbn)

	cover, cached := covers.Get(isbn)
	if !cached {
		covers.Put(isbn, b.CoverImage)
		cover = b.CoverImage
	}

	fmt.Printf("ISBN:      %s\n", b.ISBN)
	fmt.Printf("Title:     %s\n", b.Title)
	fmt.Printf("Author:    %s\n", b.Author)
	fmt.Printf("Genre:     %s\n", b.Genre)
	fmt.Printf("Shelf:     %s\n", b.ShelfNumber)
	fmt.Printf("Status:    %s\n", b.Status)
	fmt.Printf("Copies:    %d (%d available)\n", b.Quantity, avail)
	if len(cover) > 0 {
		fmt.Printf("Cover:     %d bytes\n", len(cover))
	}
}

func handleAddBook(sc *bufio.Scanner, mgr *library.LibraryManager) {
	in, ok := promptBookInput(sc, library.BookInput{}, true)
	if !ok {
		return
	}
	if err := mgr.AddBook(in); err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added book %s.\n", in.ISBN)
}

func handleEditBook(sc *bufio.Scanner, mgr *library.LibraryManager, covers *library.CoverCache) {
	fmt.Print("ISBN of book to edit: ")
	if !sc.Scan() {
		return
	}
	isbn := strings.TrimSpace(sc.Text())

	b, err := mgr.GetBook(isbn)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	current := library.BookInput{
		ISBN: b.ISBN, Title: b.Title, Author: b.Author, Genre: b.Genre,
		ShelfNumber: b.ShelfNumber, Status: b.Status, Quantity: b.Quantity,
		CoverImage: b.CoverImage,
	}
	in, ok := promptBookInput(sc, current, false)
	if !ok {
		return
	}
	if err := mgr.UpdateBook(in); err != nil {
		fmt.Printf("Error updating book: %v\n", err)
		return
	}
	covers.Invalidate(isbn)
	fmt.Printf("Updated book %s.\n", isbn)
}

// promptBookInput collects book fields. When editing, empty answers keep the
// current value shown in brackets.
func promptBookInput(sc *bufio.Scanner, current library.BookInput, adding bool) (library.BookInput, bool) {
	ask := func(label, cur string) (string, bool) {
		if adding {
			fmt.Printf("%s: ", label)
		} else {
			fmt.Printf("%s [%s]: ", label, cur)
		}
		if !sc.Scan() {
			return "", false
		}
		v := strings.TrimSpace(sc.Text())
		if v == "" && !adding {
			return cur, true
		}
		return v, true
	}

	var ok bool
	if adding {
		if current.ISBN, ok = ask("ISBN", ""); !ok {
			return current, false
		}
	}
	if current.Title, ok = ask("Title", current.Title); !ok {
		return current, false
	}
	if current.Author, ok = ask("Author", current.Author); !ok {
		return current, false
	}
	if current.Genre, ok = ask("Genre", current.Genre); !ok {
		return current, false
	}
	if current.ShelfNumber, ok = ask("Shelf number", current.ShelfNumber); !ok {
		return current, false
	}
	if current.Status, ok = ask("Status", current.Status); !ok {
		return current, false
	}

	qty, ok := ask("Quantity", strconv.Itoa(current.Quantity))
	if !ok {
		return current, false
	}
	n, err := strconv.Atoi(qty)
	if err != nil || n < 0 {
		fmt.Printf("Invalid quantity: %s\n", qty)
		return current, false
	}
	current.Quantity = n

	// Stand-in for the file-open dialog: a path supplies raw image bytes.
	path, ok := ask("Cover image path (optional)", "")
	if !ok {
		return current, false
	}
	if path != "" {
		img, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			fmt.Printf("Cover file error: %v. Keeping book without new cover.\n", err)
		} else {
			current.CoverImage = img
		}
	}

	return current, true
}

func handleDeleteBook(sc *bufio.Scanner, mgr *library.LibraryManager, covers *library.CoverCache) {
	fmt.Print("ISBN of book to delete: ")
	if !sc.Scan() {
		return
	}
	isbn := strings.TrimSpace(sc.Text())

	if err := mgr.DeleteBook(isbn); err != nil {
		if errors.Is(err, library.ErrBookOnLoan) {
			fmt.Println("Cannot delete: copies of this book are still on loan.")
			return
		}
		fmt.Printf("Error deleting book: %v\n", err)
		return
	}
	covers.Invalidate(isbn)
	fmt.Printf("Deleted book %s.\n", isbn)
}

func handleLoan(sc *bufio.Scanner, mgr *library.LibraryManager) {
	fmt.Print("ISBN: ")
	if !sc.Scan() {
		return
	}
	isbn := strings.TrimSpace(sc.Text())

	fmt.Print("Borrower ID: ")
	if !sc.Scan() {
		return
	}
	borrowerID := strings.TrimSpace(sc.Text())

	fmt.Print("Borrower name: ")
	if !sc.Scan() {
		return
	}
	borrowerName := strings.TrimSpace(sc.Text())

	fmt.Print("Loan period in days [14]: ")
	if !sc.Scan() {
		return
	}
	days := 14
	if s := strings.TrimSpace(sc.Text()); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			fmt.Printf("Invalid loan period: %s\n", s)
			return
		}
		days = n
	}

	now := time.Now()
	loan, err := mgr.CreateLoan(library.LoanInput{
		ISBN:         isbn,
		BorrowerID:   borrowerID,
		BorrowerName: borrowerName,
		LoanDate:     now,
		DueDate:      now.AddDate(0, 0, days),
	})
	if err != nil {
		if errors.Is(err, library.ErrNotAvailable) {
			fmt.Println("This book is currently not available for loan.")
			return
		}
		fmt.Printf("Error recording loan: %v\n", err)
		return
	}
	fmt.Printf("Loan %d recorded, due %s.\n", loan.ID, loan.DueDate.Format("2006-01-02"))
}

func handleReturn(sc *bufio.Scanner, mgr *library.LibraryManager) {
	fmt.Print("Loan ID: ")
	if !sc.Scan() {
		return
	}
	idStr := strings.TrimSpace(sc.Text())
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		fmt.Printf("Invalid loan ID: %s\n", idStr)
		return
	}

	if err := mgr.ReturnLoan(id); err != nil {
		fmt.Printf("Error returning loan: %v\n", err)
		return
	}
	fmt.Println("Book returned successfully.")
}

func handleListLoans(mgr *library.LibraryManager) {
	loans, err := mgr.ListLoans()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(loans) == 0 {
		fmt.Println("No loans recorded.")
		return
	}

	now := time.Now()
	fmt.Printf("%-6s %-15s %-25s %-12s %-12s %s\n", "ID", "ISBN", "Borrower", "Loaned", "Due", "Status")
	fmt.Println(strings.Repeat("-", 90))
	for i := range loans {
		l := &loans[i]
		fmt.Printf("%-6d %-15s %-25s %-12s %-12s %s\n",
			l.ID, l.ISBN, truncateString(l.BorrowerName, 25),
			l.LoanDate.Format("2006-01-02"), l.DueDate.Format("2006-01-02"),
			l.Status(now))
	}
}

func handleDashboard(dash *library.Dashboard, watcher *library.OverdueWatcher) {
	total, err := dash.TotalCopies()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	active, err := dash.ActiveLoans()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Total Books: %d | On Loan: %d | Overdue: %d\n", total, active, watcher.Count())
	fmt.Println("\nRecent Activity")
	activities, err := dash.RecentActivity(5)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, a := range activities {
		fmt.Printf("  %s\n", a)
	}
}

func handleRegister(sc *bufio.Scanner, mgr *library.LibraryManager) {
	fmt.Print("Full name: ")
	if !sc.Scan() {
		return
	}
	fullName := strings.TrimSpace(sc.Text())

	fmt.Print("Username: ")
	if !sc.Scan() {
		return
	}
	username := strings.TrimSpace(sc.Text())

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	secret, err := readPassword("Secret code: ")
	if err != nil {
		fmt.Printf("Error reading secret code: %v\n", err)
		return
	}

	if err := mgr.Register(fullName, username, password, secret); err != nil {
		switch {
		case errors.Is(err, library.ErrBadSecretCode):
			fmt.Println("Invalid secret code. Please contact the system administrator.")
		case errors.Is(err, library.ErrUsernameTaken):
			fmt.Println("That username is already taken.")
		default:
			fmt.Printf("Error registering user: %v\n", err)
		}
		return
	}
	fmt.Printf("Registered user '%s'.\n", username)
}

func handleExport(sc *bufio.Scanner, dash *library.Dashboard) {
	// Stand-in for the file-save dialog: a path supplies the destination.
	fmt.Print("Destination file: ")
	if !sc.Scan() {
		return
	}
	path := strings.TrimSpace(sc.Text())
	if path == "" {
		fmt.Println("Export cancelled.")
		return
	}
	if err := library.ExportAnalyticsCSV(dash, path); err != nil {
		fmt.Printf("Error exporting data: %v\n", err)
		return
	}
	fmt.Printf("Data exported successfully to %s\n", filepath.Base(path))
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	return s[:maxLength-3] + "..."
}
