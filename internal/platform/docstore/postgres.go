package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyChannel is the LISTEN/NOTIFY channel fed by the documents trigger.
const NotifyChannel = "doc_changes"

type Postgres struct {
	DB   *pgxpool.Pool
	feed *feed
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{DB: db, feed: newFeed()}
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (Record, error) {
	if !KnownCollection(collection) {
		return Record{}, ErrUnknownCollection
	}
	var rec Record
	err := p.DB.QueryRow(ctx, `
    SELECT id, data, created_at, updated_at
    FROM documents
    WHERE collection = $1 AND id = $2
  `, collection, id).Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Record, error) {
	if !KnownCollection(collection) {
		return nil, ErrUnknownCollection
	}
	rows, err := p.DB.Query(ctx, `
    SELECT id, data, created_at, updated_at
    FROM documents
    WHERE collection = $1
    ORDER BY created_at, id
  `, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	if !KnownCollection(collection) {
		return ErrUnknownCollection
	}
	_, err := p.DB.Exec(ctx, `
    INSERT INTO documents (collection, id, data)
    VALUES ($1, $2, $3)
    ON CONFLICT (collection, id)
    DO UPDATE SET data = EXCLUDED.data, updated_at = now()
  `, collection, id, []byte(data))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	if !KnownCollection(collection) {
		return ErrUnknownCollection
	}
	tag, err := p.DB.Exec(ctx, "DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Increment(ctx context.Context, collection, id, field string) (int64, error) {
	if !KnownCollection(collection) {
		return 0, ErrUnknownCollection
	}
	var next int64
	err := p.DB.QueryRow(ctx, `
    INSERT INTO documents (collection, id, data)
    VALUES ($1, $2, jsonb_build_object($3::text, 1))
    ON CONFLICT (collection, id)
    DO UPDATE SET
      data = jsonb_set(documents.data, ARRAY[$3::text], to_jsonb(COALESCE((documents.data->>$3::text)::bigint, 0) + 1)),
      updated_at = now()
    RETURNING (data->>$3::text)::bigint
  `, collection, id, field).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	return next, nil
}

func (p *Postgres) Subscribe(ctx context.Context, collection string) (<-chan Change, error) {
	if !KnownCollection(collection) {
		return nil, ErrUnknownCollection
	}
	return p.feed.subscribe(ctx, collection), nil
}

// Listen holds a dedicated connection on NotifyChannel and republishes
// notifications to subscribers until ctx is done. Connection failures are
// retried with a capped backoff.
func (p *Postgres) Listen(ctx context.Context) {
	backoff := time.Second
	for {
		err := p.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("change feed listener stopped, reconnecting", "err", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}
}

func (p *Postgres) listenOnce(ctx context.Context) error {
	conn, err := p.DB.Acquire(ctx)
	if err != nil {
		return err
	}
	defer releaseListener(pooledListener{conn})

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	slog.Info("change feed listening", "channel", NotifyChannel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var change Change
		if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
			slog.Warn("change feed payload invalid", "payload", notification.Payload, "err", err)
			continue
		}
		p.feed.publish(change)
	}
}

const unlistenTimeout = 5 * time.Second

type listenerConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Release()
	Discard(ctx context.Context) error
}

type pooledListener struct {
	*pgxpool.Conn
}

// Discard closes the connection instead of returning it to the pool.
func (c pooledListener) Discard(ctx context.Context) error {
	return c.Hijack().Close(ctx)
}

// releaseListener drops the connection's subscriptions before it goes back
// to the pool. A connection that cannot be cleared is closed.
func releaseListener(conn listenerConn) {
	ctx, cancel := context.WithTimeout(context.Background(), unlistenTimeout)
	defer cancel()
	if _, err := conn.Exec(ctx, "UNLISTEN *"); err != nil {
		slog.Warn("change feed unlisten failed, closing connection", "err", err)
		if err := conn.Discard(ctx); err != nil {
			slog.Warn("change feed connection close failed", "err", err)
		}
		return
	}
	conn.Release()
}
