package library

import (
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const dialectSQLite = "sqlite3"

const (
	tblBooks       = "books"
	colISBN        = "isbn"
	colTitle       = "title"
	colAuthor      = "author"
	colGenre       = "genre"
	colShelfNumber = "shelf_number"
	colStatus      = "status"
	colQuantity    = "quantity"
	colCoverImage  = "cover_image"
)

// searchColumns whitelists the fields a catalog search may match on. Anything
// else is ErrUnknownSearchField, never interpolated into SQL.
var searchColumns = map[string]string{
	"title":        colTitle,
	"author":       colAuthor,
	"isbn":         colISBN,
	"genre":        colGenre,
	"shelf_number": colShelfNumber,
	"status":       colStatus,
}

var bookColumns = []any{
	colISBN, colTitle, colAuthor, colGenre, colShelfNumber, colStatus, colQuantity, colCoverImage,
}

// ---------------------------------------------------------------------------
// Book CRUD
// ---------------------------------------------------------------------------

func (d *Database) AddBook(b Book) error {
	_, err := d.db.Exec(
		`INSERT INTO books (isbn, title, author, genre, shelf_number, status, quantity, cover_image)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ISBN, b.Title, b.Author, b.Genre, b.ShelfNumber, b.Status, b.Quantity, b.CoverImage)
	if err != nil {
		return storeErr("add book", err)
	}
	return nil
}

// UpdateBook rewrites every mutable field of the book. The isbn identifies
// the row and is never part of the SET list.
func (d *Database) UpdateBook(b Book) error {
	res, err := d.db.Exec(
		`UPDATE books SET title = ?, author = ?, genre = ?, shelf_number = ?,
         status = ?, quantity = ?, cover_image = ? WHERE isbn = ?`,
		b.Title, b.Author, b.Genre, b.ShelfNumber, b.Status, b.Quantity, b.CoverImage, b.ISBN)
	if err != nil {
		return storeErr("update book", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) DeleteBook(isbn string) error {
	res, err := d.db.Exec(`DELETE FROM books WHERE isbn = ?`, isbn)
	if err != nil {
		return storeErr("delete book", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetBook(isbn string) (*Book, error) {
	var b Book
	err := d.db.Get(&b,
		`SELECT isbn, title, author, genre, shelf_number, status, quantity, cover_image
         FROM books WHERE isbn = ?`, isbn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get book", err)
	}
	return &b, nil
}

// UpdateBookStatus flips the display-hint status column and nothing else.
func (d *Database) UpdateBookStatus(isbn, status string) error {
	if _, err := d.db.Exec(`UPDATE books SET status = ? WHERE isbn = ?`, status, isbn); err != nil {
		return storeErr("update book status", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Paged listing and search
// ---------------------------------------------------------------------------

// GetBooksPage returns one offset/limit window of the catalog. Ordering by
// isbn is explicit so successive fetches of the same page agree.
func (d *Database) GetBooksPage(offset, limit int) ([]Book, error) {
	query, args, err := goqu.Dialect(dialectSQLite).
		From(tblBooks).
		Select(bookColumns...).
		Order(goqu.I(colISBN).Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, storeErr("build page query", err)
	}

	var books []Book
	if err := d.db.Select(&books, query, args...); err != nil {
		return nil, storeErr("get books page", err)
	}
	return books, nil
}

// SearchBooks runs a contains-match on one whitelisted field. Case
// sensitivity is whatever the store's default collation does.
func (d *Database) SearchBooks(field, substring string) ([]Book, error) {
	col, ok := searchColumns[field]
	if !ok {
		return nil, ErrUnknownSearchField
	}

	query, args, err := goqu.Dialect(dialectSQLite).
		From(tblBooks).
		Select(bookColumns...).
		Where(goqu.I(col).Like("%" + substring + "%")).
		Order(goqu.I(colISBN).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, storeErr("build search query", err)
	}

	var books []Book
	if err := d.db.Select(&books, query, args...); err != nil {
		return nil, storeErr("search books", err)
	}
	return books, nil
}
