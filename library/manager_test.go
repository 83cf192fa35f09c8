package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *LibraryManager {
	t.Helper()
	cfg := Config{
		DBPath:     filepath.Join(t.TempDir(), "lib.db"),
		PageSize:   50,
		SecretCode: "YDT-library-mgmt-code",
	}
	mgr, err := NewLibraryManager(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func addBook(t *testing.T, mgr *LibraryManager, isbn string, quantity int) {
	t.Helper()
	require.NoError(t, mgr.AddBook(BookInput{
		ISBN:     isbn,
		Title:    "Book " + isbn,
		Author:   "Author",
		Genre:    "Fiction",
		Quantity: quantity,
	}))
}

func loanInput(isbn, borrower string) LoanInput {
	now := time.Now()
	return LoanInput{
		ISBN:         isbn,
		BorrowerID:   "B-" + borrower,
		BorrowerName: borrower,
		LoanDate:     now,
		DueDate:      now.AddDate(0, 0, 14),
	}
}

func TestAvailabilityScenario(t *testing.T) {
	mgr := newManager(t)
	addBook(t, mgr, "123", 2)

	avail, err := mgr.Available("123")
	require.NoError(t, err)
	assert.Equal(t, 2, avail)

	loanA, err := mgr.CreateLoan(loanInput("123", "Alice"))
	require.NoError(t, err)
	assert.False(t, loanA.Returned)

	avail, err = mgr.Available("123")
	require.NoError(t, err)
	assert.Equal(t, 1, avail)

	_, err = mgr.CreateLoan(loanInput("123", "Bob"))
	require.NoError(t, err)

	avail, err = mgr.Available("123")
	require.NoError(t, err)
	assert.Equal(t, 0, avail)

	// Third attempt must be rejected as a domain error, not a store error.
	_, err = mgr.CreateLoan(loanInput("123", "Carol"))
	assert.ErrorIs(t, err, ErrNotAvailable)

	// Status hint follows the loan.
	b, err := mgr.GetBook("123")
	require.NoError(t, err)
	assert.Equal(t, StatusOnLoan, b.Status)

	// Returning A frees one copy but the book stays On Loan until B returns.
	require.NoError(t, mgr.ReturnLoan(loanA.ID))
	avail, err = mgr.Available("123")
	require.NoError(t, err)
	assert.Equal(t, 1, avail)

	b, err = mgr.GetBook("123")
	require.NoError(t, err)
	assert.Equal(t, StatusOnLoan, b.Status)

	loans, err := mgr.ListLoans()
	require.NoError(t, err)
	require.Len(t, loans, 2)
	for _, l := range loans {
		if !l.Returned {
			require.NoError(t, mgr.ReturnLoan(l.ID))
		}
	}

	b, err = mgr.GetBook("123")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, b.Status)

	avail, err = mgr.Available("123")
	require.NoError(t, err)
	assert.Equal(t, 2, avail)
}

func TestReturnLoanIsIdempotent(t *testing.T) {
	mgr := newManager(t)
	addBook(t, mgr, "42", 1)

	loan, err := mgr.CreateLoan(loanInput("42", "Alice"))
	require.NoError(t, err)

	require.NoError(t, mgr.ReturnLoan(loan.ID))

	// Take the only copy out again, then re-return the old loan: the second
	// call must be a no-op and must not flip the book back to Available.
	_, err = mgr.CreateLoan(loanInput("42", "Bob"))
	require.NoError(t, err)

	require.NoError(t, mgr.ReturnLoan(loan.ID))

	b, err := mgr.GetBook("42")
	require.NoError(t, err)
	assert.Equal(t, StatusOnLoan, b.Status)

	avail, err := mgr.Available("42")
	require.NoError(t, err)
	assert.Equal(t, 0, avail)
}

func TestReturnUnknownLoan(t *testing.T) {
	mgr := newManager(t)
	assert.ErrorIs(t, mgr.ReturnLoan(9999), ErrNotFound)
}

func TestCreateLoanValidation(t *testing.T) {
	mgr := newManager(t)
	addBook(t, mgr, "7", 1)

	in := loanInput("7", "Alice")
	in.BorrowerName = ""
	_, err := mgr.CreateLoan(in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = loanInput("7", "Alice")
	in.BorrowerID = ""
	_, err = mgr.CreateLoan(in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Nothing was inserted by the rejected attempts.
	n, err := mgr.ActiveLoanCount("7")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAddBookValidation(t *testing.T) {
	mgr := newManager(t)

	err := mgr.AddBook(BookInput{ISBN: "1", Author: "A", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidInput, "missing title")

	err = mgr.AddBook(BookInput{ISBN: "1", Title: "T", Author: "A", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidInput, "negative quantity")

	// Default status applied when empty.
	require.NoError(t, mgr.AddBook(BookInput{ISBN: "1", Title: "T", Author: "A", Quantity: 1}))
	b, err := mgr.GetBook("1")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, b.Status)
}

func TestDeleteBookBlockedByActiveLoans(t *testing.T) {
	mgr := newManager(t)
	addBook(t, mgr, "55", 1)

	loan, err := mgr.CreateLoan(loanInput("55", "Alice"))
	require.NoError(t, err)

	assert.ErrorIs(t, mgr.DeleteBook("55"), ErrBookOnLoan)

	// Returned-loan history does not block deletion; the row stays behind.
	require.NoError(t, mgr.ReturnLoan(loan.ID))
	require.NoError(t, mgr.DeleteBook("55"))

	loans, err := mgr.ListLoans()
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}

func TestPageUsesConfiguredSize(t *testing.T) {
	cfg := Config{DBPath: filepath.Join(t.TempDir(), "lib.db"), PageSize: 2, SecretCode: "x"}
	mgr, err := NewLibraryManager(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	for _, isbn := range []string{"a", "b", "c", "d", "e"} {
		addBook(t, mgr, isbn, 1)
	}

	page0, err := mgr.Page(0)
	require.NoError(t, err)
	assert.Len(t, page0, 2)

	page2, err := mgr.Page(2)
	require.NoError(t, err)
	assert.Len(t, page2, 1)

	// Negative page indexes clamp to the first page.
	clamped, err := mgr.Page(-1)
	require.NoError(t, err)
	assert.Equal(t, page0, clamped)
}

func TestAsyncReads(t *testing.T) {
	mgr := newManager(t)
	addBook(t, mgr, "async-1", 1)
	addBook(t, mgr, "async-2", 1)

	res := <-mgr.PageAsync(0)
	require.NoError(t, res.Err)
	assert.Len(t, res.Value, 2)

	sres := <-mgr.SearchAsync("isbn", "async-2")
	require.NoError(t, sres.Err)
	require.Len(t, sres.Value, 1)
	assert.Equal(t, "async-2", sres.Value[0].ISBN)

	// Errors travel the same channel.
	eres := <-mgr.SearchAsync("bogus-field", "x")
	assert.ErrorIs(t, eres.Err, ErrUnknownSearchField)
}

func TestLoanDerivedStatus(t *testing.T) {
	now := time.Now()

	l := Loan{DueDate: now.Add(24 * time.Hour)}
	assert.Equal(t, LoanOnLoan, l.Status(now))

	l = Loan{DueDate: now.Add(-24 * time.Hour)}
	assert.Equal(t, LoanOverdue, l.Status(now))

	l = Loan{DueDate: now.Add(-24 * time.Hour), Returned: true}
	assert.Equal(t, LoanReturned, l.Status(now))
}
