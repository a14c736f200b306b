// Package contacts caches CardDAV contacts in a local SQLite database
// so repeated listing and searching does not re-download every address
// book from the server.
package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/fastmailctl/fastmailctl/internal/carddav"
)

const syncKey = "carddav"

// Cache is a local SQLite contact cache.
type Cache struct {
	db *sqlx.DB
}

// NewCache opens (or creates) a SQLite database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func NewCache(dbPath string) (*Cache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &Cache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *Cache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Replace wipes the cache and stores the given contacts as the new
// full snapshot, recording the sync time.
func (c *Cache) Replace(ctx context.Context, contacts []carddav.Contact) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts"); err != nil {
		return fmt.Errorf("clearing contacts: %w", err)
	}

	const query = `
		INSERT OR REPLACE INTO contacts (
			id, name, organization, title, notes,
			emails, phones, search_text, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, contact := range contacts {
		emails, err := json.Marshal(contact.Emails)
		if err != nil {
			return fmt.Errorf("marshaling emails for contact %s: %w", contact.ID, err)
		}
		phones, err := json.Marshal(contact.Phones)
		if err != nil {
			return fmt.Errorf("marshaling phones for contact %s: %w", contact.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			contact.ID, contact.Name, contact.Organization, contact.Title, contact.Notes,
			string(emails), string(phones), searchText(contact), now,
		)
		if err != nil {
			return fmt.Errorf("storing contact %s: %w", contact.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO sync_meta (key, synced_at) VALUES (?, ?)", syncKey, now)
	if err != nil {
		return fmt.Errorf("recording sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing contacts: %w", err)
	}
	return nil
}

// All returns every cached contact ordered by name.
func (c *Cache) All(ctx context.Context) ([]carddav.Contact, error) {
	return c.query(ctx,
		"SELECT id, name, organization, title, notes, emails, phones FROM contacts ORDER BY LOWER(name)")
}

// Search returns cached contacts whose name, email, or organization
// contains the query, case-insensitively, ordered by name.
func (c *Cache) Search(ctx context.Context, query string) ([]carddav.Contact, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return c.query(ctx,
		"SELECT id, name, organization, title, notes, emails, phones FROM contacts WHERE search_text LIKE ? ORDER BY LOWER(name)",
		pattern)
}

// SyncedAt returns the time of the last snapshot, or the zero time if
// the cache has never been filled.
func (c *Cache) SyncedAt(ctx context.Context) (time.Time, error) {
	var syncedAt time.Time
	err := c.db.GetContext(ctx, &syncedAt,
		"SELECT synced_at FROM sync_meta WHERE key = ?", syncKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("reading sync time: %w", err)
	}
	return syncedAt, nil
}

type contactRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Organization string `db:"organization"`
	Title        string `db:"title"`
	Notes        string `db:"notes"`
	Emails       string `db:"emails"`
	Phones       string `db:"phones"`
}

func (c *Cache) query(ctx context.Context, sql string, args ...any) ([]carddav.Contact, error) {
	var rows []contactRow
	if err := c.db.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}

	contacts := make([]carddav.Contact, 0, len(rows))
	for _, row := range rows {
		contact := carddav.Contact{
			ID:           row.ID,
			Name:         row.Name,
			Organization: row.Organization,
			Title:        row.Title,
			Notes:        row.Notes,
		}
		if err := json.Unmarshal([]byte(row.Emails), &contact.Emails); err != nil {
			return nil, fmt.Errorf("unmarshaling emails for contact %s: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.Phones), &contact.Phones); err != nil {
			return nil, fmt.Errorf("unmarshaling phones for contact %s: %w", row.ID, err)
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// searchText builds the lowercase haystack the LIKE search runs over.
func searchText(contact carddav.Contact) string {
	parts := []string{contact.Name, contact.Organization}
	for _, e := range contact.Emails {
		parts = append(parts, e.Email)
	}
	return strings.ToLower(strings.Join(parts, "\n"))
}
