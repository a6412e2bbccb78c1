package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primelabs/primelabs/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresStore keeps every collection in the single JSONB table created by
// migrations/001_documents.sql.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *PostgresStore) Create(ctx context.Context, collection string, doc any, id string) (string, error) {
	obj, err := toObject(doc)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}
	_, err = s.conn(ctx).Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(data))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Read(ctx context.Context, collection, id string, out any) error {
	var data []byte
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return json.Unmarshal(data, out)
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	patch, err := toObject(partial)
	if err != nil {
		return err
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	tag, err := s.conn(ctx).Exec(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2`,
		collection, id, string(data))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var sqlOps = map[Op]string{
	OpEq: "=", OpNe: "<>", OpLt: "<", OpLte: "<=", OpGt: ">", OpGte: ">=",
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) (*Page, error) {
	if err := validateQuery(collection, &q); err != nil {
		return nil, err
	}
	sql, args, err := buildSelect(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	type row struct {
		id  string
		key []byte
	}
	page := &Page{}
	var last row
	for rows.Next() {
		var r row
		var data []byte
		if err := rows.Scan(&r.id, &data, &r.key); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		if len(page.Docs) == q.Limit {
			page.Next = encodeCursor(last.key, last.id)
			break
		}
		page.Docs = append(page.Docs, Doc{ID: r.id, Data: data})
		last = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return page, nil
}

// buildSelect renders q as one statement. The order key is selected next to
// the document so the next cursor can be built from the last row.
func buildSelect(collection string, q Query) (string, []interface{}, error) {
	args := []interface{}{collection}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{"collection = $1"}
	for _, f := range q.Filters {
		v, err := normalize(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%w: filter %s: %v", ErrInvalidQuery, f.Field, err)
		}
		raw, _ := json.Marshal(v)
		where = append(where, fmt.Sprintf("data #> %s::text[] %s %s::jsonb",
			next(splitField(f.Field)), sqlOps[f.Op], next(string(raw))))
	}

	keyExpr := "NULL::jsonb"
	dir := "ASC"
	cmp := ">"
	if q.Order != nil {
		keyExpr = fmt.Sprintf("data #> %s::text[]", next(splitField(q.Order.Field)))
		if q.Order.Desc {
			dir, cmp = "DESC", "<"
		}
	}

	cur, err := decodeCursor(q.Cursor)
	if err != nil {
		return "", nil, err
	}
	if cur != nil {
		if q.Order != nil {
			key := string(cur.Key)
			if key == "" {
				key = "null"
			}
			where = append(where, fmt.Sprintf("(COALESCE(%s, 'null'::jsonb), id) %s (%s::jsonb, %s)",
				keyExpr, cmp, next(key), next(cur.ID)))
		} else {
			where = append(where, fmt.Sprintf("id %s %s", cmp, next(cur.ID)))
		}
	}

	order := "id " + dir
	if q.Order != nil {
		order = fmt.Sprintf("COALESCE(%s, 'null'::jsonb) %s, id %s", keyExpr, dir, dir)
	}

	sql := fmt.Sprintf(`SELECT id, data, %s FROM documents WHERE %s ORDER BY %s LIMIT %d`,
		keyExpr, strings.Join(where, " AND "), order, q.Limit+1)
	return sql, args, nil
}
