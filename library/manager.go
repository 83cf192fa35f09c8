package library

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LibraryManager is the façade the presentation layer talks to. It owns the
// availability accounting and the loan lifecycle; the Database underneath
// only moves rows.
type LibraryManager struct {
	db         *Database
	validate   *validator.Validate
	log        zerolog.Logger
	pageSize   int
	secretCode string
}

// NewLibraryManager opens (or creates) the store described by cfg.
func NewLibraryManager(cfg Config, log zerolog.Logger) (*LibraryManager, error) {
	db, err := NewDatabase(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{
		db:         db,
		validate:   validator.New(),
		log:        log,
		pageSize:   cfg.PageSize,
		secretCode: cfg.SecretCode,
	}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// Store exposes the gateway for read-only collaborators (dashboard, export).
func (lm *LibraryManager) Store() *Database { return lm.db }

// ------------------ Availability accounting ------------------

// ActiveLoanCount counts unreturned loans for the isbn.
func (lm *LibraryManager) ActiveLoanCount(isbn string) (int, error) {
	return lm.db.ActiveLoanCount(isbn)
}

// Available computes quantity minus active loans, fresh on every call. It is
// never cached: it depends on two mutable tables, and the status column is
// only a display hint.
func (lm *LibraryManager) Available(isbn string) (int, error) {
	b, err := lm.db.GetBook(isbn)
	if err != nil {
		return 0, err
	}
	active, err := lm.db.ActiveLoanCount(isbn)
	if err != nil {
		return 0, err
	}
	return b.Quantity - active, nil
}

// ------------------ Loan lifecycle ------------------

// CreateLoan records a loan after checking the borrower fields and that a
// copy is actually lendable. The loan insert and the status hint update are
// two independent statements; a crash between them leaves the status stale,
// which the live availability computation masks.
func (lm *LibraryManager) CreateLoan(in LoanInput) (*Loan, error) {
	if err := lm.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	avail, err := lm.Available(in.ISBN)
	if err != nil {
		return nil, err
	}
	if avail <= 0 {
		lm.log.Debug().Str("isbn", in.ISBN).Msg("loan rejected: no copies available")
		return nil, ErrNotAvailable
	}

	loan := Loan{
		ISBN:         in.ISBN,
		BorrowerID:   in.BorrowerID,
		BorrowerName: in.BorrowerName,
		LoanDate:     in.LoanDate,
		DueDate:      in.DueDate,
	}
	id, err := lm.db.AddLoan(loan)
	if err != nil {
		return nil, err
	}
	loan.ID = id

	if err := lm.db.UpdateBookStatus(in.ISBN, StatusOnLoan); err != nil {
		lm.log.Warn().Err(err).Str("isbn", in.ISBN).Msg("loan recorded but status hint not updated")
	}

	lm.log.Info().Int64("loan", id).Str("isbn", in.ISBN).
		Str("borrower", in.BorrowerName).Msg("loan created")
	return &loan, nil
}

// ReturnLoan marks the loan returned. Calling it on an already-returned loan
// is a harmless no-op, so the book status cannot flip twice. When the last
// active loan for the isbn comes back, the status hint resets to Available.
func (lm *LibraryManager) ReturnLoan(id int64) error {
	loan, err := lm.db.GetLoan(id)
	if err != nil {
		return err
	}
	if loan.Returned {
		return nil
	}

	if err := lm.db.MarkLoanReturned(id); err != nil {
		return err
	}

	active, err := lm.db.ActiveLoanCount(loan.ISBN)
	if err != nil {
		return err
	}
	if active == 0 {
		if err := lm.db.UpdateBookStatus(loan.ISBN, StatusAvailable); err != nil {
			return err
		}
	}

	lm.log.Info().Int64("loan", id).Str("isbn", loan.ISBN).Msg("loan returned")
	return nil
}

// ListLoans returns every loan, active first.
func (lm *LibraryManager) ListLoans() ([]Loan, error) { return lm.db.ListLoans() }

// ------------------ Catalog ------------------

// AddBook validates and inserts a catalog entry. An empty status defaults to
// Available.
func (lm *LibraryManager) AddBook(in BookInput) error {
	if err := lm.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Status == "" {
		in.Status = StatusAvailable
	}
	return lm.db.AddBook(Book(in))
}

// UpdateBook validates and rewrites a catalog entry; the isbn stays put.
func (lm *LibraryManager) UpdateBook(in BookInput) error {
	if err := lm.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return lm.db.UpdateBook(Book(in))
}

// DeleteBook removes a book unless copies are still out. Returned-loan
// history never blocks deletion; those rows stay behind.
func (lm *LibraryManager) DeleteBook(isbn string) error {
	active, err := lm.db.ActiveLoanCount(isbn)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrBookOnLoan
	}
	return lm.db.DeleteBook(isbn)
}

func (lm *LibraryManager) GetBook(isbn string) (*Book, error) { return lm.db.GetBook(isbn) }

// Page returns one page of the catalog in stable isbn order.
func (lm *LibraryManager) Page(pageIndex int) ([]Book, error) {
	if pageIndex < 0 {
		pageIndex = 0
	}
	return lm.db.GetBooksPage(pageIndex*lm.pageSize, lm.pageSize)
}

// Search matches one whitelisted field against a substring.
func (lm *LibraryManager) Search(field, substring string) ([]Book, error) {
	return lm.db.SearchBooks(field, substring)
}

// PageAsync fetches a catalog page off the interactive goroutine. The result
// lands on a buffered channel, so abandoning it leaks nothing; a stale result
// arriving after the view moved on is the caller's to discard.
func (lm *LibraryManager) PageAsync(pageIndex int) <-chan Result[[]Book] {
	return fetchAsync(func() ([]Book, error) { return lm.Page(pageIndex) })
}

// SearchAsync runs Search in the background, same delivery contract as
// PageAsync.
func (lm *LibraryManager) SearchAsync(field, substring string) <-chan Result[[]Book] {
	return fetchAsync(func() ([]Book, error) { return lm.Search(field, substring) })
}
