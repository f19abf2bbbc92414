// Package sqlstore implements remote.Client directly on a SQL database through
// gorm. It serves the same tables, filters and error codes as the hosted
// backend, so the store and services run unchanged against a local database.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/0xAcousticbridge/GAID/internal/logger"
	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/models"
	"github.com/0xAcousticbridge/GAID/internal/telemetry"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

const backendName = "sql"

// private tables are never reachable through From
var private = map[string]bool{
	"auth_users": true,
}

// Options configures a Store
type Options struct {
	// JWTSecret signs access and refresh tokens (HS256). Required.
	JWTSecret  string
	TokenTTL   time.Duration
	RefreshTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
	Sessions   remote.SessionStore
	Logger     *zap.Logger
	Now        func() time.Time
}

// Store is a remote.Client backed by gorm
type Store struct {
	db     *gorm.DB
	tables map[string]*table
	auth   *Auth
	log    *zap.Logger
	now    func() time.Time
}

type table struct {
	name   string
	model  reflect.Type
	schema *schema.Schema
}

func (t *table) newModel() interface{} { return reflect.New(t.model).Interface() }

func (t *table) newSlice() interface{} {
	return reflect.New(reflect.SliceOf(t.model)).Interface()
}

// column resolves a JSON/column name to its database column
func (t *table) column(name string) (string, error) {
	f := t.schema.LookUpField(name)
	if f == nil || f.DBName == "" {
		return "", &remote.Error{
			Code:    "42703",
			Message: fmt.Sprintf("column %s.%s does not exist", t.name, name),
			Status:  http.StatusBadRequest,
		}
	}
	return f.DBName, nil
}

func (t *table) has(column string) bool {
	_, ok := t.schema.FieldsByDBName[column]
	return ok
}

// New creates a Store over db. The schema must already be migrated.
func New(db *gorm.DB, opts Options) (*Store, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("sqlstore: JWT secret is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sessions == nil {
		opts.Sessions = &remote.MemorySessionStore{}
	}

	s := &Store{
		db:     db,
		tables: make(map[string]*table),
		log:    logger.OrNop(opts.Logger),
		now:    opts.Now,
	}

	cache := &sync.Map{}
	for _, m := range models.All() {
		sch, err := schema.Parse(m, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: parse %T: %w", m, err)
		}
		if private[sch.Table] {
			continue
		}
		s.tables[sch.Table] = &table{
			name:   sch.Table,
			model:  reflect.TypeOf(m).Elem(),
			schema: sch,
		}
	}

	s.auth = newAuth(db, opts, s.log)
	return s, nil
}

func (s *Store) Auth() remote.Auth { return s.auth }

// SQLAuth exposes the concrete auth implementation
func (s *Store) SQLAuth() *Auth { return s.auth }

func (s *Store) From(name string) *remote.Query {
	return remote.NewQuery(s, name)
}

// Execute implements remote.Executor
func (s *Store) Execute(ctx context.Context, q *remote.Query, op remote.Operation, payload interface{}, dest interface{}) (err error) {
	start := time.Now()
	ctx, span := telemetry.TraceRemoteCall(ctx, telemetry.RemoteCallAttrs{
		Backend:   backendName,
		Table:     q.Table,
		Operation: string(op),
	})
	defer func() {
		telemetry.EndRemoteCall(span, statusOf(err), err)
		metrics.ObserveRemoteCall(backendName, q.Table, string(op), start, err)
		if err != nil {
			s.log.Debug("Query failed", logger.WithTable(q.Table), logger.WithOp(string(op)), zap.Error(err))
		}
	}()

	t, ok := s.tables[q.Table]
	if !ok {
		return &remote.Error{
			Code:    remote.CodeUnknownTable,
			Message: fmt.Sprintf("relation %q does not exist", q.Table),
			Status:  http.StatusNotFound,
		}
	}

	db := s.db.WithContext(ctx)

	switch op {
	case remote.OpSelect:
		return s.selectRows(db, t, q, dest)
	case remote.OpCount:
		n, ok := dest.(*int64)
		if !ok {
			return fmt.Errorf("count destination must be *int64, got %T", dest)
		}
		tx, err := s.scope(db.Model(t.newModel()), t, q)
		if err != nil {
			return err
		}
		return translate(tx.Count(n).Error)
	case remote.OpInsert:
		return s.insert(db, t, payload, dest)
	case remote.OpUpsert:
		return s.upsert(db, t, q, payload, dest)
	case remote.OpUpdate:
		return s.update(db, t, q, payload, dest)
	case remote.OpDelete:
		tx, err := s.scope(db.Model(t.newModel()), t, q)
		if err != nil {
			return err
		}
		return translate(tx.Delete(t.newModel()).Error)
	}

	return &remote.Error{Code: remote.CodeBadQuery, Message: "unsupported operation " + string(op), Status: http.StatusBadRequest}
}

func (s *Store) selectRows(db *gorm.DB, t *table, q *remote.Query, dest interface{}) error {
	tx, err := s.scope(db.Model(t.newModel()), t, q)
	if err != nil {
		return err
	}

	if q.Columns != "" && q.Columns != "*" {
		var cols []string
		for _, c := range strings.Split(q.Columns, ",") {
			col, err := t.column(strings.TrimSpace(c))
			if err != nil {
				return err
			}
			cols = append(cols, col)
		}
		tx = tx.Select(cols)
	}

	for _, o := range q.Orders {
		col, err := t.column(o.Column)
		if err != nil {
			return err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: !o.Ascending})
	}

	limit := q.RowLimit
	if q.Cardinality == remote.One && (limit == 0 || limit > 2) {
		limit = 2
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	rows := t.newSlice()
	if err := tx.Find(rows).Error; err != nil {
		return translate(err)
	}
	if dest == nil {
		return nil
	}

	found := reflect.ValueOf(rows).Elem()
	if q.Cardinality != remote.One {
		return remote.Decode(rows, dest)
	}
	switch found.Len() {
	case 0:
		return remote.NoRows(t.name)
	case 1:
		return remote.Decode(found.Index(0).Interface(), dest)
	default:
		return &remote.Error{
			Code:    remote.CodeNoRows,
			Message: "JSON object requested, multiple (or no) rows returned",
			Details: fmt.Sprintf("The result contains more than one row (table %s)", t.name),
			Status:  http.StatusNotAcceptable,
		}
	}
}

// scope applies the query's filters to tx
func (s *Store) scope(tx *gorm.DB, t *table, q *remote.Query) (*gorm.DB, error) {
	postgres := s.db.Dialector.Name() == "postgres"

	for _, f := range q.Filters {
		col, err := t.column(f.Column)
		if err != nil {
			return nil, err
		}
		column := clause.Column{Name: col}

		switch f.Op {
		case remote.FilterEq:
			tx = tx.Where(clause.Eq{Column: column, Value: f.Value})

		case remote.FilterIn:
			values, _ := f.Value.([]string)
			vars := make([]interface{}, len(values))
			for i, v := range values {
				vars[i] = v
			}
			tx = tx.Where(clause.IN{Column: column, Values: vars})

		case remote.FilterContains:
			values, _ := f.Value.([]string)
			if postgres {
				tx = tx.Where("? @> ?", column, models.StringArray(values))
				continue
			}
			for _, v := range values {
				tx = tx.Where("(',' || trim(?, '{}') || ',') LIKE ?", column, "%,"+v+",%")
			}

		case remote.FilterTextSearch:
			query := fmt.Sprint(f.Value)
			if postgres {
				tx = tx.Where(textSearchExpr(column, query, f.Search))
				continue
			}
			for _, term := range remote.SearchTerms(query) {
				tx = tx.Where("LOWER(?) LIKE ?", column, "%"+term+"%")
			}

		default:
			return nil, &remote.Error{Code: remote.CodeBadQuery, Message: "unsupported filter " + string(f.Op), Status: http.StatusBadRequest}
		}
	}
	return tx, nil
}

func textSearchExpr(column clause.Column, query string, opts remote.TextSearchOptions) clause.Expr {
	fn := "to_tsquery"
	switch opts.Type {
	case remote.SearchPlain:
		fn = "plainto_tsquery"
	case remote.SearchPhrase:
		fn = "phraseto_tsquery"
	case remote.SearchWebsearch:
		fn = "websearch_to_tsquery"
	}

	if opts.Config == "" {
		return clause.Expr{SQL: "to_tsvector(?) @@ " + fn + "(?)", Vars: []interface{}{column, query}}
	}
	return clause.Expr{
		SQL:  "to_tsvector(?::regconfig, ?) @@ " + fn + "(?::regconfig, ?)",
		Vars: []interface{}{opts.Config, column, opts.Config, query},
	}
}

// records decodes a payload into typed models, rejecting unknown columns
func (s *Store) records(t *table, payload interface{}) ([]remote.Row, []interface{}, error) {
	rows, err := remote.Rows(payload)
	if err != nil {
		return nil, nil, &remote.Error{Code: remote.CodeBadQuery, Message: err.Error(), Status: http.StatusBadRequest}
	}

	out := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		for key := range row {
			if _, err := t.column(key); err != nil {
				return nil, nil, err
			}
		}
		m := t.newModel()
		if err := remote.Decode(row, m); err != nil {
			return nil, nil, &remote.Error{Code: remote.CodeBadQuery, Message: err.Error(), Status: http.StatusBadRequest}
		}
		out = append(out, m)
	}
	return rows, out, nil
}

func (s *Store) insert(db *gorm.DB, t *table, payload interface{}, dest interface{}) error {
	_, records, err := s.records(t, payload)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, m := range records {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	return writeRecords(records, dest)
}

// upsert inserts each row, updating only the supplied columns of a row that
// already exists on the conflict columns, then reads the stored row back
func (s *Store) upsert(db *gorm.DB, t *table, q *remote.Query, payload interface{}, dest interface{}) error {
	rows, records, err := s.records(t, payload)
	if err != nil {
		return err
	}

	conflict := make([]clause.Column, len(q.OnConflict))
	conflictSet := make(map[string]bool, len(q.OnConflict))
	for i, c := range q.OnConflict {
		col, err := t.column(c)
		if err != nil {
			return err
		}
		conflict[i] = clause.Column{Name: col}
		conflictSet[col] = true
	}

	stored := make([]interface{}, 0, len(records))
	err = db.Transaction(func(tx *gorm.DB) error {
		for i, m := range records {
			var updates []string
			for key := range rows[i] {
				col, _ := t.column(key)
				if !conflictSet[col] && col != "id" {
					updates = append(updates, col)
				}
			}
			sort.Strings(updates)

			onConflict := clause.OnConflict{Columns: conflict}
			if len(updates) == 0 {
				onConflict.DoNothing = true
			} else {
				if t.has("updated_at") && !contains(updates, "updated_at") {
					updates = append(updates, "updated_at")
				}
				onConflict.DoUpdates = clause.AssignmentColumns(updates)
			}

			if err := tx.Clauses(onConflict).Create(m).Error; err != nil {
				return err
			}

			probe := tx.Model(t.newModel())
			value := reflect.ValueOf(m).Elem()
			for _, c := range conflict {
				v, _ := t.schema.FieldsByDBName[c.Name].ValueOf(tx.Statement.Context, value)
				probe = probe.Where(clause.Eq{Column: c, Value: v})
			}
			row := t.newModel()
			if err := probe.Take(row).Error; err != nil {
				return err
			}
			stored = append(stored, row)
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	return writeRecords(stored, dest)
}

func (s *Store) update(db *gorm.DB, t *table, q *remote.Query, payload interface{}, dest interface{}) error {
	values, ok := payload.(map[string]interface{})
	if !ok {
		rows, err := remote.Rows(payload)
		if err != nil || len(rows) != 1 {
			return &remote.Error{Code: remote.CodeBadQuery, Message: "update takes one object", Status: http.StatusBadRequest}
		}
		values = rows[0]
	}

	cols := make([]string, 0, len(values)+1)
	for key := range values {
		col, err := t.column(key)
		if err != nil {
			return err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	withTime := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		withTime[k] = v
	}
	if t.has("updated_at") {
		if _, set := withTime["updated_at"]; !set {
			withTime["updated_at"] = s.now().UTC()
			cols = append(cols, "updated_at")
		}
	}

	m := t.newModel()
	if err := remote.Decode(withTime, m); err != nil {
		return &remote.Error{Code: remote.CodeBadQuery, Message: err.Error(), Status: http.StatusBadRequest}
	}

	tx, err := s.scope(db.Model(t.newModel()), t, q)
	if err != nil {
		return err
	}
	if err := tx.Select(cols).Updates(m).Error; err != nil {
		return translate(err)
	}

	if dest == nil {
		return nil
	}
	return s.selectRows(db, t, q, dest)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeRecords(records []interface{}, dest interface{}) error {
	if dest == nil {
		return nil
	}
	if remote.IsSliceDest(dest) {
		return remote.Decode(records, dest)
	}
	if len(records) == 0 {
		return remote.NoRows("")
	}
	return remote.Decode(records[0], dest)
}

// translate maps database errors onto the backend's error codes
func translate(err error) error {
	var re *remote.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &re):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &remote.Error{Code: remote.CodeUniqueViol, Message: "duplicate key value violates unique constraint", Details: err.Error(), Status: http.StatusConflict}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &remote.Error{Code: "23503", Message: "insert or update violates foreign key constraint", Details: err.Error(), Status: http.StatusConflict}
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return &remote.Error{Code: "23514", Message: "new row violates check constraint", Details: err.Error(), Status: http.StatusBadRequest}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return remote.NoRows("")
	}
	return &remote.Error{Code: "XX000", Message: "database error", Details: err.Error(), Status: http.StatusInternalServerError}
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var re *remote.Error
	if errors.As(err, &re) {
		return re.Status
	}
	return http.StatusInternalServerError
}
