package library

import "time"

// Book statuses shown in the catalog. The status column is a display hint
// only; the lendable count is always derived from quantity and live loans.
const (
	StatusAvailable = "Available"
	StatusOnLoan    = "On Loan"
	StatusReserved  = "Reserved"
	StatusDamaged   = "Damaged"
	StatusLost      = "Lost"
)

// User is a staff account. Created at registration or seed time and never
// mutated by the application afterwards.
type User struct {
	ID       int64  `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"` // sha256 lowercase hex
	IsAdmin  bool   `db:"is_admin" json:"is_admin"`
}

// Book is a catalog entry. ISBN is the externally assigned primary key and
// never changes; Quantity is the total number of owned copies.
type Book struct {
	ISBN        string `db:"isbn" json:"isbn"`
	Title       string `db:"title" json:"title"`
	Author      string `db:"author" json:"author"`
	Genre       string `db:"genre" json:"genre"`
	ShelfNumber string `db:"shelf_number" json:"shelf_number"`
	Status      string `db:"status" json:"status"`
	Quantity    int    `db:"quantity" json:"quantity"`
	CoverImage  []byte `db:"cover_image" json:"-"`
}

// Loan records one copy lent to a borrower. DueDate maps to the legacy
// return_date column, which holds the due date, not the actual return time;
// no column records when a loan actually came back.
type Loan struct {
	ID           int64     `db:"id" json:"id"`
	ISBN         string    `db:"isbn" json:"isbn"`
	BorrowerID   string    `db:"borrower_id" json:"borrower_id"`
	BorrowerName string    `db:"borrower_name" json:"borrower_name"`
	LoanDate     time.Time `db:"loan_date" json:"loan_date"`
	DueDate      time.Time `db:"return_date" json:"return_date"`
	Returned     bool      `db:"returned" json:"returned"`
}

// LoanStatus is the displayed state of a loan, derived on the fly.
type LoanStatus string

const (
	LoanOnLoan   LoanStatus = "On Loan"
	LoanOverdue  LoanStatus = "Overdue"
	LoanReturned LoanStatus = "Returned"
)

// Status derives the displayed loan state at the given instant. On Loan and
// Overdue are two faces of the same active state; Returned is terminal.
func (l *Loan) Status(now time.Time) LoanStatus {
	switch {
	case l.Returned:
		return LoanReturned
	case l.DueDate.Before(now):
		return LoanOverdue
	default:
		return LoanOnLoan
	}
}

// BookInput carries the fields accepted when adding or editing a book.
type BookInput struct {
	ISBN        string `validate:"required"`
	Title       string `validate:"required"`
	Author      string `validate:"required"`
	Genre       string
	ShelfNumber string
	Status      string
	Quantity    int `validate:"gte=0"`
	CoverImage  []byte
}

// LoanInput carries the fields accepted when recording a loan.
type LoanInput struct {
	ISBN         string    `validate:"required"`
	BorrowerID   string    `validate:"required"`
	BorrowerName string    `validate:"required"`
	LoanDate     time.Time `validate:"required"`
	DueDate      time.Time `validate:"required"`
}
