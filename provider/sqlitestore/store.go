package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/spachava753/phonebook/provider"
)

// openDB is swapped in tests.
var openDB = sql.Open

// Store is a provider.Client backed by a SQLite database.
type Store struct {
	db     *sql.DB
	perms  provider.Permission
	log    zerolog.Logger
	now    func() time.Time
	closed atomic.Bool
}

var _ provider.Client = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPermissions limits the grants the store honours. The default is
// provider.PermAll.
func WithPermissions(perms provider.Permission) Option {
	return func(s *Store) {
		s.perms = perms
	}
}

// WithLogger sets the logger used for batch and delete tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// Open opens or creates the contacts database at path.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, &provider.Error{Code: provider.ErrorCodeUnavailable, Message: "database path is required"}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", strings.ReplaceAll(path, " ", "%20"))
	return open(dsn, opts...)
}

// OpenMemory opens a private in-memory database.
func OpenMemory(opts ...Option) (*Store, error) {
	return open("file::memory:?_foreign_keys=1", opts...)
}

func open(dsn string, opts ...Option) (*Store, error) {
	db, err := openDB("sqlite3", dsn)
	if err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeUnavailable, Message: "opening sqlite database failed", Err: err}
	}
	// One connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &provider.Error{Code: provider.ErrorCodeUnavailable, Message: "connecting to sqlite database failed", Err: err}
	}
	if _, err := db.Exec(schemaSQL + viewsSQL()); err != nil {
		db.Close()
		return nil, &provider.Error{Code: provider.ErrorCodeStore, Message: "creating schema failed", Err: err}
	}

	s := &Store{
		db:    db,
		perms: provider.PermAll,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the database. Later calls fail with
// provider.ErrorCodeUnavailable.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) check(want provider.Permission) error {
	if s.closed.Load() {
		return &provider.Error{Code: provider.ErrorCodeUnavailable, Message: "store is closed"}
	}
	if !s.perms.Has(want) {
		access := "read"
		if want.Has(provider.PermWrite) {
			access = "write"
		}
		return &provider.Error{Code: provider.ErrorCodePermissionDenied, Message: access + " access to contacts is not granted"}
	}
	return nil
}

// Query implements provider.Client.
func (s *Store) Query(ctx context.Context, q provider.Query) ([]provider.Row, error) {
	if err := s.check(provider.PermRead); err != nil {
		return nil, err
	}
	view, ok := views[q.View]
	if !ok {
		return nil, &provider.Error{Code: provider.ErrorCodeInvalid, Message: fmt.Sprintf("unknown view %q", q.View)}
	}

	columns := q.Columns
	if len(columns) == 0 {
		columns = view.columns
	}
	for _, column := range columns {
		if !contains(view.columns, column) {
			return nil, &provider.Error{Code: provider.ErrorCodeInvalid, Message: fmt.Sprintf("unknown column %q in view %q", column, q.View)}
		}
	}
	order, err := parseSortOrder(q.SortOrder, view.columns)
	if err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeInvalid, Message: err.Error()}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(view.name)
	if where := strings.TrimSpace(q.Where); where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	if order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), q.Args...)
	if err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeStore, Message: fmt.Sprintf("query on %q failed", q.View), Err: err}
	}
	defer rows.Close()
	return scanRows(rows, columns)
}

func scanRows(rows *sql.Rows, columns []string) ([]provider.Row, error) {
	out := make([]provider.Row, 0, 64)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &provider.Error{Code: provider.ErrorCodeStore, Message: "scanning row failed", Err: err}
		}
		row := make(provider.Row, len(columns))
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[columns[i]] = value
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeStore, Message: "iterating rows failed", Err: err}
	}
	return out, nil
}

// ApplyBatch implements provider.Client. The batch runs in one transaction.
func (s *Store) ApplyBatch(ctx context.Context, authority string, ops []provider.Operation) ([]provider.Result, error) {
	if authority != provider.Authority {
		return nil, &provider.Error{Code: provider.ErrorCodeInvalid, Message: fmt.Sprintf("unknown authority %q", authority)}
	}
	if err := s.check(provider.PermWrite); err != nil {
		return nil, err
	}
	if err := provider.ValidateBatch(ops); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeStore, Message: "starting transaction failed", Err: err}
	}
	defer tx.Rollback()

	results := make([]provider.Result, 0, len(ops))
	for i, op := range ops {
		values, err := resolveValues(op, results)
		if err != nil {
			return nil, opError(i, op, err)
		}
		var res provider.Result
		switch op.Kind {
		case provider.OpInsert:
			res, err = s.insert(ctx, tx, op.Target, values)
		case provider.OpUpdate:
			res, err = update(ctx, tx, op.Target, op.Selection, values)
		case provider.OpDelete:
			res, err = deleteRows(ctx, tx, op.Target, op.Selection)
		}
		if err != nil {
			return nil, opError(i, op, err)
		}
		results = append(results, res)
	}

	if err := tx.Commit(); err != nil {
		return nil, &provider.Error{Code: provider.ErrorCodeStore, Message: "committing batch failed", Err: err}
	}
	s.log.Debug().Int("operations", len(ops)).Msg("batch applied")
	return results, nil
}

func opError(index int, op provider.Operation, err error) error {
	return &provider.Error{
		Code:    provider.ErrorCodeStore,
		Message: fmt.Sprintf("operation %d (%s %s) failed", index, op.Kind, op.Target),
		Err:     err,
	}
}

func resolveValues(op provider.Operation, results []provider.Result) (map[string]any, error) {
	values := make(map[string]any, len(op.Values)+len(op.BackRefs))
	for column, value := range op.Values {
		values[column] = value
	}
	for column, ref := range op.BackRefs {
		if int(ref) >= len(results) {
			return nil, fmt.Errorf("back reference %d is not applied yet", ref)
		}
		values[column] = results[ref].ID
	}
	for column := range values {
		if !contains(writable[op.Target], column) {
			return nil, fmt.Errorf("column %q is not writable in %q", column, op.Target)
		}
	}
	return values, nil
}

func sortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, table provider.Table, values map[string]any) (provider.Result, error) {
	if table == provider.TableRawContacts {
		contactID, err := s.insertAggregate(ctx, tx)
		if err != nil {
			return provider.Result{}, err
		}
		values[provider.ColumnContactID] = contactID
	}
	if table == provider.TableData {
		if _, ok := values[provider.ColumnRawContactID]; !ok {
			return provider.Result{}, errors.New("data row requires raw_contact_id")
		}
		if mime, _ := values[provider.ColumnMimeType].(string); mime == "" {
			return provider.Result{}, errors.New("data row requires mimetype")
		}
	}

	columns := sortedColumns(values)
	args := make([]any, 0, len(columns))
	for _, column := range columns {
		args = append(args, values[column])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders(len(columns)))

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return provider.Result{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return provider.Result{}, err
	}
	return provider.Result{ID: id, Count: 1}, nil
}

// insertAggregate creates the aggregated contact a new raw contact joins.
func (s *Store) insertAggregate(ctx context.Context, tx *sql.Tx) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO contacts (lookup_key, created_at) VALUES (?, ?)",
		uuid.NewString(), s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func update(ctx context.Context, tx *sql.Tx, table provider.Table, sel provider.Selection, values map[string]any) (provider.Result, error) {
	columns := sortedColumns(values)
	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+len(sel.Args))
	for _, column := range columns {
		sets = append(sets, column+" = ?")
		args = append(args, values[column])
	}
	args = append(args, sel.Args...)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE (%s)", table, strings.Join(sets, ", "), sel.Where)

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return provider.Result{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return provider.Result{}, err
	}
	return provider.Result{Count: int(n)}, nil
}

func deleteRows(ctx context.Context, tx *sql.Tx, table provider.Table, sel provider.Selection) (provider.Result, error) {
	var res sql.Result
	var err error
	switch table {
	case provider.TableData:
		res, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM data WHERE (%s)", sel.Where), sel.Args...)
	case provider.TableRawContacts:
		where := fmt.Sprintf("(%s)", sel.Where)
		if _, err = tx.ExecContext(ctx,
			"DELETE FROM data WHERE raw_contact_id IN (SELECT _id FROM raw_contacts WHERE "+where+")", sel.Args...); err != nil {
			return provider.Result{}, err
		}
		res, err = tx.ExecContext(ctx, "DELETE FROM raw_contacts WHERE "+where, sel.Args...)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				"DELETE FROM contacts WHERE _id NOT IN (SELECT contact_id FROM raw_contacts)")
		}
	default:
		return provider.Result{}, fmt.Errorf("cannot delete from %q", table)
	}
	if err != nil {
		return provider.Result{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return provider.Result{}, err
	}
	return provider.Result{Count: int(n)}, nil
}

// Delete implements provider.Client for aggregated contact URIs. Raw contacts
// and data rows of the contact are removed with it.
func (s *Store) Delete(ctx context.Context, uri string) (int, error) {
	if err := s.check(provider.PermWrite); err != nil {
		return 0, err
	}
	id, err := provider.ParseContactURI(uri)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &provider.Error{Code: provider.ErrorCodeStore, Message: "starting transaction failed", Err: err}
	}
	defer tx.Rollback()

	steps := []string{
		"DELETE FROM data WHERE raw_contact_id IN (SELECT _id FROM raw_contacts WHERE contact_id = ?)",
		"DELETE FROM raw_contacts WHERE contact_id = ?",
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step, id); err != nil {
			return 0, &provider.Error{Code: provider.ErrorCodeStore, Message: fmt.Sprintf("deleting contact %d failed", id), Err: err}
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM contacts WHERE _id = ?", id)
	if err != nil {
		return 0, &provider.Error{Code: provider.ErrorCodeStore, Message: fmt.Sprintf("deleting contact %d failed", id), Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &provider.Error{Code: provider.ErrorCodeStore, Message: fmt.Sprintf("deleting contact %d failed", id), Err: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, &provider.Error{Code: provider.ErrorCodeStore, Message: "committing delete failed", Err: err}
	}
	s.log.Debug().Int64("contact_id", id).Int64("deleted", n).Msg("contact deleted")
	return int(n), nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
