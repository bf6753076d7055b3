package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type recordingConn struct {
	execErr   error
	statement []string
	released  bool
	discarded bool
}

func (c *recordingConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.statement = append(c.statement, sql)
	return pgconn.NewCommandTag("UNLISTEN"), c.execErr
}

func (c *recordingConn) Release() { c.released = true }

func (c *recordingConn) Discard(context.Context) error {
	c.discarded = true
	return nil
}

func TestReleaseListenerUnlistensBeforeRelease(t *testing.T) {
	conn := &recordingConn{}
	releaseListener(conn)

	assert.Equal(t, []string{"UNLISTEN *"}, conn.statement)
	assert.True(t, conn.released)
	assert.False(t, conn.discarded)
}

func TestReleaseListenerClosesUnclearedConnection(t *testing.T) {
	conn := &recordingConn{execErr: errors.New("conn busy")}
	releaseListener(conn)

	assert.Equal(t, []string{"UNLISTEN *"}, conn.statement)
	assert.False(t, conn.released, "a connection still listening must not return to the pool")
	assert.True(t, conn.discarded)
}
