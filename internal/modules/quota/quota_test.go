// README: Quota module tests (lazy reset and quota boundary logic); skipped unless ROAMLY_TEST_DSN is set.
package quota

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/infra"
	"roamly/migrations"
)

// TestUseTokenCrossMonthReset verifies that a user with 0 tokens left from a previous month
// is automatically reset and the request succeeds.
func TestUseTokenCrossMonthReset(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO ai_usage VALUES ('user_reset', 0, '2000-01')")
	require.NoError(t, err)

	rem, err := svc.Remaining(ctx, "user_reset")
	require.NoError(t, err)
	assert.Equal(t, DefaultTokens, rem)

	require.NoError(t, svc.UseToken(ctx, "user_reset"))

	var remaining int
	require.NoError(t, db.QueryRow(ctx, "SELECT tokens_remaining FROM ai_usage WHERE uid = 'user_reset'").Scan(&remaining))
	assert.Equal(t, DefaultTokens-1, remaining)
}

// TestUseTokenInsufficientCheck verifies that a user with 0 tokens in the current month is blocked.
func TestUseTokenInsufficientCheck(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month) VALUES ('user_zero', 0, TO_CHAR(NOW(), 'YYYY-MM'))")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UseToken(ctx, "user_zero"), ErrInsufficientTokens)
}

// TestUseTokenNewUser verifies that a user absent from the table is initialised on first call.
func TestUseTokenNewUser(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	rem, err := svc.Remaining(ctx, "user_new")
	require.NoError(t, err)
	assert.Equal(t, DefaultTokens, rem)

	require.NoError(t, svc.UseToken(ctx, "user_new"))

	rem, err = svc.Remaining(ctx, "user_new")
	require.NoError(t, err)
	assert.Equal(t, DefaultTokens-1, rem)
}

func TestUseTokenCustomAllowance(t *testing.T) {
	_, db := setupTestService(t)
	svc := NewService(NewStore(db), 2)
	ctx := context.Background()

	require.NoError(t, svc.UseToken(ctx, "user_small"))
	require.NoError(t, svc.UseToken(ctx, "user_small"))
	assert.ErrorIs(t, svc.UseToken(ctx, "user_small"), ErrInsufficientTokens)
}

func TestNewServiceDefaultAllowance(t *testing.T) {
	assert.Equal(t, DefaultTokens, NewService(nil, 0).Allowance())
	assert.Equal(t, 5, NewService(nil, 5).Allowance())
}

// setupTestService creates a real postgres-backed Service.
// It skips the test when ROAMLY_TEST_DSN is not set.
func setupTestService(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("ROAMLY_TEST_DSN")
	if dsn == "" {
		t.Skip("ROAMLY_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	require.NoError(t, infra.RunMigrations(dsn, migrations.FS, zerolog.Nop()))

	db, err := infra.NewDB(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(ctx, "TRUNCATE TABLE ai_usage")
	require.NoError(t, err)

	return NewService(NewStore(db), DefaultTokens), db
}
