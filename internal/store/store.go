// Package store persists contacts. SQLStore keeps them in an SQL database
// through sqlx, Memory keeps them in process memory. Both report a missing
// id with ErrNotFound.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-app/internal/config"
	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no contact exists for an id.
var ErrNotFound = errors.New("contact not found")

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// schema holds the statements creating the contacts table per driver. Email
// matching must stay case-sensitive, hence the binary collation on MySQL.
var schema = map[string][]string{
	config.DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS contacts (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			first TEXT NOT NULL DEFAULT '',
			last  TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS contacts_email ON contacts (email)`,
	},
	config.DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS contacts (
			id    BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			first VARCHAR(255) NOT NULL DEFAULT '',
			last  VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(64) NOT NULL DEFAULT '',
			email VARCHAR(255) COLLATE utf8mb4_bin NOT NULL DEFAULT '',
			UNIQUE KEY contacts_email (email)
		) DEFAULT CHARSET = utf8mb4`,
	},
}

// Open connects to the SQL database described by the configuration. SQLite
// is limited to a single connection so that writes are serialized and an
// in-memory database is shared by all requests.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlx.Open(config.DriverSQLite, cfg.Path+"?_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	case config.DriverMySQL:
		dsn := mysql.NewConfig()
		dsn.User = cfg.User
		dsn.Passwd = cfg.Password
		dsn.Net = "tcp"
		dsn.Addr = cfg.Host
		dsn.DBName = cfg.Name
		// Report matched rather than changed rows, so that saving an
		// unchanged contact is not mistaken for a missing one.
		dsn.ClientFoundRows = true
		return sqlx.Open(config.DriverMySQL, dsn.FormatDSN())
	}
	return nil, fmt.Errorf("driver %q is not an SQL database", cfg.Driver)
}

// Migrate creates the contacts table if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("could not migrate contacts table: %w", err)
		}
	}
	return nil
}

// SQLStore stores contacts in the contacts table of an SQL database.
type SQLStore struct {
	db *sqlx.DB

	insert           *sqlx.NamedStmt
	insertWithId     *sqlx.NamedStmt
	update           *sqlx.NamedStmt
	selectAll        *sqlx.Stmt
	selectWhereId    *sqlx.Stmt
	selectWhereEmail *sqlx.Stmt
	deleteWhereId    *sqlx.Stmt
	count            *sqlx.Stmt
}

// New prepares all statements on the database. The database can be a real
// one for production use or a mock database within unit tests.
func New(db *sqlx.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	var err error

	// Prepared statements offer a significant speed increase if executed many times.
	if s.insert, err = db.PrepareNamed(`
		INSERT INTO contacts (first, last, phone, email)
		VALUES (:first, :last, :phone, :email)
	`); err != nil {
		return nil, err
	}
	if s.insertWithId, err = db.PrepareNamed(`
		INSERT INTO contacts (id, first, last, phone, email)
		VALUES (:id, :first, :last, :phone, :email)
	`); err != nil {
		return nil, err
	}
	if s.update, err = db.PrepareNamed(`
		UPDATE contacts SET first = :first, last = :last, phone = :phone, email = :email
		WHERE id = :id
	`); err != nil {
		return nil, err
	}
	if s.selectAll, err = db.Preparex(`
		SELECT id, first, last, phone, email FROM contacts ORDER BY id
	`); err != nil {
		return nil, err
	}
	if s.selectWhereId, err = db.Preparex(`
		SELECT id, first, last, phone, email FROM contacts WHERE id = ?
	`); err != nil {
		return nil, err
	}
	if s.selectWhereEmail, err = db.Preparex(`
		SELECT id, first, last, phone, email FROM contacts WHERE email = ? ORDER BY id
	`); err != nil {
		return nil, err
	}
	if s.deleteWhereId, err = db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`); err != nil {
		return nil, err
	}
	if s.count, err = db.Preparex(`
		SELECT COUNT(*) FROM contacts
	`); err != nil {
		return nil, err
	}
	return s, nil
}

// FindAll returns all contacts ordered by id.
func (s *SQLStore) FindAll(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	if err := s.selectAll.SelectContext(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	return contacts, nil
}

// FindByID returns the contact with the given id.
func (s *SQLStore) FindByID(ctx context.Context, id int64) (model.Contact, error) {
	var contact model.Contact
	err := s.selectWhereId.GetContext(ctx, &contact, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, ErrNotFound
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("select contact %d: %w", id, err)
	}
	return contact, nil
}

// FindByEmail returns the contacts whose email equals the given one exactly.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := s.selectWhereEmail.SelectContext(ctx, &contacts, email); err != nil {
		return nil, fmt.Errorf("select contacts by email: %w", err)
	}
	return contacts, nil
}

// Insert stores a new contact and sets its Id to the one the database assigned.
func (s *SQLStore) Insert(ctx context.Context, contact *model.Contact) error {
	result, err := s.insert.ExecContext(ctx, contact)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	contact.Id = id
	return nil
}

// InsertAll stores all contacts in a single transaction. Contacts that carry
// an Id keep it; the others get one assigned by the database.
func (s *SQLStore) InsertAll(ctx context.Context, contacts []model.Contact) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insert := tx.NamedStmtContext(ctx, s.insert)
	insertWithId := tx.NamedStmtContext(ctx, s.insertWithId)
	for i := range contacts {
		stmt := insert
		if contacts[i].Id != 0 {
			stmt = insertWithId
		}
		if _, err = stmt.ExecContext(ctx, &contacts[i]); err != nil {
			return fmt.Errorf("insert contact %q: %w", contacts[i].Email, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Update replaces the contact stored under contact.Id.
func (s *SQLStore) Update(ctx context.Context, contact model.Contact) error {
	result, err := s.update.ExecContext(ctx, contact)
	if err != nil {
		return fmt.Errorf("update contact %d: %w", contact.Id, err)
	}
	return expectOneRow(result)
}

// Delete removes the contact with the given id.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	return expectOneRow(result)
}

// Count returns the number of stored contacts.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.count.GetContext(ctx, &n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

// Close releases the prepared statements. The database itself stays open.
func (s *SQLStore) Close() error {
	return errors.Join(
		s.insert.Close(),
		s.insertWithId.Close(),
		s.update.Close(),
		s.selectAll.Close(),
		s.selectWhereId.Close(),
		s.selectWhereEmail.Close(),
		s.deleteWhereId.Close(),
		s.count.Close(),
	)
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
