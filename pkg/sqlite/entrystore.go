package sqlite

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/homeline-hub/homeline-go/pkg/entry"
)

// Compile-time interface satisfaction check.
var _ entry.Store = (*EntryStore)(nil)

// timeFormat is RFC 3339 with fixed-width nanoseconds, so the TEXT
// columns sort chronologically under lexicographic ORDER BY.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// EntryStore is the SQLite implementation of entry.Store. Credentials
// are encrypted with AES-256-GCM before write and decrypted after read;
// every other column is stored in the clear.
type EntryStore struct {
	db   *DB
	aead cipher.AEAD
}

// NewEntryStore creates an EntryStore on the given database. masterKey
// must be KeySize bytes; the credential cipher is derived from it once
// at construction.
func NewEntryStore(db *DB, masterKey []byte) (*EntryStore, error) {
	aead, err := newCredentialAEAD(masterKey)
	if err != nil {
		return nil, err
	}
	return &EntryStore{db: db, aead: aead}, nil
}

// Create persists a new entry. The identifier uniqueness check rides on
// the unique index, so of two concurrent Create calls for the same
// identifier exactly one succeeds.
func (s *EntryStore) Create(ctx context.Context, e *entry.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	encrypted, err := s.encrypt(e.Credential)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	const query = `INSERT INTO entries (id, identifier, title, credential, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.Writer.ExecContext(ctx, query,
		e.ID, e.Identifier, e.Title, encrypted,
		now.Format(timeFormat), now.Format(timeFormat))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			dup := &entry.DuplicateError{
				Identifier: e.Identifier,
				Credential: e.Credential,
			}
			const lookup = `SELECT id FROM entries WHERE identifier = ?`
			if lookupErr := s.db.Reader.QueryRowContext(ctx, lookup, e.Identifier).Scan(&dup.ExistingID); lookupErr != nil {
				return fmt.Errorf("look up duplicate entry: %w", lookupErr)
			}
			return dup
		}
		return fmt.Errorf("create entry %s: %w", e.ID, err)
	}

	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// Get returns the entry with the given ID, or entry.ErrNotFound.
func (s *EntryStore) Get(ctx context.Context, id string) (*entry.Entry, error) {
	const query = `SELECT id, identifier, title, credential, created_at, updated_at FROM entries WHERE id = ?`

	e, err := s.scanEntry(s.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

// GetByIdentifier returns the entry for the given account identifier,
// or entry.ErrNotFound.
func (s *EntryStore) GetByIdentifier(ctx context.Context, identifier string) (*entry.Entry, error) {
	const query = `SELECT id, identifier, title, credential, created_at, updated_at FROM entries WHERE identifier = ?`

	e, err := s.scanEntry(s.db.Reader.QueryRowContext(ctx, query, identifier))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entry.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry for account: %w", err)
	}
	return e, nil
}

// UpdateCredential replaces the credential of an existing entry and
// bumps its UpdatedAt.
func (s *EntryStore) UpdateCredential(ctx context.Context, id, credential string) error {
	encrypted, err := s.encrypt(credential)
	if err != nil {
		return err
	}

	const query = `UPDATE entries SET credential = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.Writer.ExecContext(ctx, query,
		encrypted, time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("update credential for entry %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return entry.ErrNotFound
	}
	return nil
}

// List returns all entries ordered by creation time.
func (s *EntryStore) List(ctx context.Context) ([]*entry.Entry, error) {
	const query = `SELECT id, identifier, title, credential, created_at, updated_at FROM entries ORDER BY created_at, id`

	rows, err := s.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// Delete removes an entry.
func (s *EntryStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM entries WHERE id = ?`

	result, err := s.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return entry.ErrNotFound
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *EntryStore) scanEntry(row scanner) (*entry.Entry, error) {
	var e entry.Entry
	var encrypted, createdAt, updatedAt string

	if err := row.Scan(&e.ID, &e.Identifier, &e.Title, &encrypted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	credential, err := s.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential for entry %s: %w", e.ID, err)
	}
	e.Credential = credential

	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &e, nil
}

// encrypt encrypts plaintext with the credential cipher and returns a
// base64-encoded string containing the nonce prepended to the
// ciphertext.
func (s *EntryStore) encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded ciphertext produced by encrypt.
func (s *EntryStore) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
