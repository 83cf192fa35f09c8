package library

import (
	"database/sql"
	"errors"
)

// ---------------------------------------------------------------------------
// Loan rows
// ---------------------------------------------------------------------------

// AddLoan inserts a loan row. Loans always start active; the returned flag
// defaults to false and is the only field ever mutated afterwards.
func (d *Database) AddLoan(l Loan) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO loans (isbn, borrower_id, borrower_name, loan_date, return_date)
         VALUES (?, ?, ?, ?, ?)`,
		l.ISBN, l.BorrowerID, l.BorrowerName, l.LoanDate.UTC(), l.DueDate.UTC())
	if err != nil {
		return 0, storeErr("add loan", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("add loan", err)
	}
	return id, nil
}

func (d *Database) GetLoan(id int64) (*Loan, error) {
	var l Loan
	err := d.db.Get(&l,
		`SELECT id, isbn, borrower_id, borrower_name, loan_date, return_date, returned
         FROM loans WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get loan", err)
	}
	return &l, nil
}

// MarkLoanReturned flips the returned flag. Loan rows are never deleted.
func (d *Database) MarkLoanReturned(id int64) error {
	res, err := d.db.Exec(`UPDATE loans SET returned = 1 WHERE id = ?`, id)
	if err != nil {
		return storeErr("mark loan returned", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLoans returns every loan, active ones first, closest due date first
// within each group.
func (d *Database) ListLoans() ([]Loan, error) {
	var loans []Loan
	err := d.db.Select(&loans,
		`SELECT id, isbn, borrower_id, borrower_name, loan_date, return_date, returned
         FROM loans ORDER BY returned, return_date`)
	if err != nil {
		return nil, storeErr("list loans", err)
	}
	return loans, nil
}

// ActiveLoanCount counts unreturned loans for the isbn. Overdue loans still
// count: a copy out the door is unavailable no matter how late it is.
func (d *Database) ActiveLoanCount(isbn string) (int, error) {
	var n int
	err := d.db.Get(&n, `SELECT COUNT(*) FROM loans WHERE isbn = ? AND returned = 0`, isbn)
	if err != nil {
		return 0, storeErr("count active loans", err)
	}
	return n, nil
}
