package mosaicdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// dbConn owns the single connection to the document file together with
// the transaction-depth counter. Statements are scoped to the enclosing
// call: prepared, bound, stepped and released before the call returns.
type dbConn struct {
	db               *sql.DB
	transactionCount int
}

func dbConnectionString(filename string, readOnly bool, create bool) string {
	mode := "rw"
	if readOnly {
		mode = "ro"
	} else if create {
		mode = "rwc"
	}
	return fmt.Sprintf("file:%s?mode=%s&_busy_timeout=10000", filename, mode)
}

// openConn opens (or creates) the document file on the custom driver
// which has the geometric predicates registered.
func openConn(filename string, readOnly bool, create bool) (*dbConn, error) {
	dsn := dbConnectionString(filename, readOnly, create)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, wrapDatabaseError("opening database", err)
	}

	// a single connection: the document is used from one logical flow at
	// a time, and explicit BEGIN/COMMIT must observe the same connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrapDatabaseError("opening database \""+filename+"\"", err)
	}

	log.Debugf("Connected to document file: %s (readOnly=%v)", filename, readOnly)
	return &dbConn{db: db}, nil
}

func (c *dbConn) close() error {
	return c.db.Close()
}

// traceSQL logs the statement with its parameters and the outcome when
// the trace level is active.
func traceSQL(sqlText string, args []interface{}, err error) {
	if !log.IsLevelEnabled(log.TraceLevel) {
		return
	}
	var b strings.Builder
	b.WriteString("[sql] ")
	b.WriteString(sqlText)
	if len(args) > 0 {
		fmt.Fprintf(&b, " %v", args)
	}
	if err != nil {
		fmt.Fprintf(&b, " -> %v", err)
	} else {
		b.WriteString(" -> ok")
	}
	log.Trace(b.String())
}

// wrapDatabaseError maps a driver failure to a DatabaseError, extracting
// the native result code when one is present.
func wrapDatabaseError(context string, err error) error {
	code := -1
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		code = int(sqliteErr.Code)
	}
	return &DatabaseError{Message: context + ": " + err.Error(), Code: code, Cause: err}
}

// exec runs a statement which returns no rows.
func (c *dbConn) exec(sqlText string, args ...interface{}) error {
	_, err := c.db.Exec(sqlText, args...)
	traceSQL(sqlText, args, err)
	if err != nil {
		return wrapDatabaseError("executing statement", err)
	}
	return nil
}

// execReturningRowID runs an INSERT and returns the rowid assigned by
// the store.
func (c *dbConn) execReturningRowID(sqlText string, args ...interface{}) (int64, error) {
	result, err := c.db.Exec(sqlText, args...)
	traceSQL(sqlText, args, err)
	if err != nil {
		return 0, wrapDatabaseError("executing statement", err)
	}
	rowID, err := result.LastInsertId()
	if err != nil {
		return 0, wrapDatabaseError("retrieving last-insert rowid", err)
	}
	return rowID, nil
}

// query runs a statement which returns rows. The caller owns the rows
// and must close them on every exit path.
func (c *dbConn) query(sqlText string, args ...interface{}) (*sql.Rows, error) {
	rows, err := c.db.Query(sqlText, args...)
	traceSQL(sqlText, args, err)
	if err != nil {
		return nil, wrapDatabaseError("executing query", err)
	}
	return rows, nil
}

// queryRow runs a statement expected to return at most one row.
func (c *dbConn) queryRow(sqlText string, args ...interface{}) *sql.Row {
	row := c.db.QueryRow(sqlText, args...)
	traceSQL(sqlText, args, nil)
	return row
}

// beginTransaction opens the document-level transaction. Nesting is
// rejected: the depth counter is 0 or 1.
func (c *dbConn) beginTransaction() error {
	if c.transactionCount > 0 {
		return &TransactionMisuseError{Message: "BeginTransaction called while a transaction is already pending"}
	}
	if err := c.exec("BEGIN;"); err != nil {
		return err
	}
	c.transactionCount++
	return nil
}

// endTransaction closes the pending transaction, committing or rolling
// back.
func (c *dbConn) endTransaction(commit bool) error {
	if c.transactionCount == 0 {
		verb := "CommitTransaction"
		if !commit {
			verb = "RollbackTransaction"
		}
		return &TransactionMisuseError{Message: verb + " called without a pending transaction"}
	}
	stmt := "ROLLBACK;"
	if commit {
		stmt = "COMMIT;"
	}
	if err := c.exec(stmt); err != nil {
		return err
	}
	c.transactionCount--
	return nil
}

// isTransactionPending reports whether a document-level transaction is
// open.
func (c *dbConn) isTransactionPending() bool {
	return c.transactionCount > 0
}

type columnInfo struct {
	Name string
	Type string
}

// tableColumns returns the column names and declared types of a table,
// in declaration order.
func (c *dbConn) tableColumns(tableName string) ([]columnInfo, error) {
	rows, err := c.query("SELECT name, type FROM pragma_table_info(?)", tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []columnInfo
	for rows.Next() {
		var ci columnInfo
		if err := rows.Scan(&ci.Name, &ci.Type); err != nil {
			return nil, wrapDatabaseError("scanning table info", err)
		}
		columns = append(columns, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDatabaseError("iterating table info", err)
	}
	return columns, nil
}

// tableIndices returns the names of the indices on a table.
func (c *dbConn) tableIndices(tableName string) ([]string, error) {
	rows, err := c.query("SELECT name FROM pragma_index_list(?)", tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indices []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapDatabaseError("scanning index list", err)
		}
		indices = append(indices, name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDatabaseError("iterating index list", err)
	}
	return indices, nil
}

// tableExists reports whether a table (or virtual table) of the given
// name exists.
func (c *dbConn) tableExists(tableName string) (bool, error) {
	var count int
	err := c.queryRow("SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?", tableName).Scan(&count)
	if err != nil {
		return false, wrapDatabaseError("querying sqlite_master", err)
	}
	return count > 0, nil
}
