package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookingauth/internal/domain"
	"bookingauth/internal/store"
	"bookingauth/pkg/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()

	gdb, err := db.OpenGorm(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, store.AutoMigrate(gdb), "automigrate")
	return store.New(gdb), gdb
}

func countRows(t *testing.T, gdb *gorm.DB, model any, where string, arg any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Where(where, arg).Count(&n).Error)
	return n
}

func TestAccountLookupByEmailIsCaseSensitive(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	acc := &domain.Account{Email: "Mixed@x.com", Name: "Mixed"}
	require.NoError(t, st.Accounts().Create(ctx, acc))

	got, err := st.Accounts().GetByEmail(ctx, "Mixed@x.com")
	require.NoError(t, err)
	require.Equal(t, acc.ID, got.ID)
	require.Nil(t, got.EmailVerified)

	_, err = st.Accounts().GetByEmail(ctx, "mixed@x.com")
	require.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestAccountMarkEmailVerified(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	acc := &domain.Account{Email: "old@x.com"}
	require.NoError(t, st.Accounts().Create(ctx, acc))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Accounts().MarkEmailVerified(ctx, acc.ID, "new@x.com", at))

	got, err := st.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "new@x.com", got.Email)
	require.NotNil(t, got.EmailVerified)
	require.True(t, got.EmailVerified.Equal(at))
}

func TestCredentialUpsertKeepsOneRowPerUser(t *testing.T) {
	st, gdb := setupStore(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, st.Credentials().UpsertPassword(ctx, &domain.PasswordCredential{
		UserID: userID, Algo: "bcrypt", Hash: []byte("h1"), PasswordVer: 1,
	}))
	require.NoError(t, st.Credentials().UpsertPassword(ctx, &domain.PasswordCredential{
		UserID: userID, Algo: "argon2id", Hash: []byte("h2"), Salt: []byte("s"), ParamsJSON: []byte("{}"), PasswordVer: 2,
	}))

	require.EqualValues(t, 1, countRows(t, gdb, &domain.PasswordCredential{}, "user_id = ?", userID))
	got, err := st.Credentials().GetPasswordByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "argon2id", got.Algo)
	require.Equal(t, []byte("h2"), got.Hash)

	_, err = st.Credentials().GetPasswordByUserID(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestVerificationTokenReplaceLeavesSingleToken(t *testing.T) {
	st, gdb := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := &domain.VerificationToken{Email: "a@x.com", Token: "verify_one", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, st.VerificationTokens().Replace(ctx, first))

	second := &domain.VerificationToken{Email: "a@x.com", Token: "verify_two", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, st.VerificationTokens().Replace(ctx, second))

	require.EqualValues(t, 1, countRows(t, gdb, &domain.VerificationToken{}, "email = ?", "a@x.com"))

	got, err := st.VerificationTokens().GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "verify_two", got.Token)
	require.Equal(t, second.ID, got.ID)

	_, err = st.VerificationTokens().GetByToken(ctx, "verify_one")
	require.ErrorIs(t, err, store.ErrRecordNotFound)
	_, err = st.VerificationTokens().GetByID(ctx, first.ID)
	require.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestVerificationTokenReplaceDoesNotTouchOtherEmails(t *testing.T) {
	st, gdb := setupStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, st.VerificationTokens().Replace(ctx, &domain.VerificationToken{Email: "a@x.com", Token: "verify_a", ExpiresAt: exp}))
	require.NoError(t, st.VerificationTokens().Replace(ctx, &domain.VerificationToken{Email: "b@x.com", Token: "verify_b", ExpiresAt: exp}))

	require.EqualValues(t, 1, countRows(t, gdb, &domain.VerificationToken{}, "email = ?", "a@x.com"))
	require.EqualValues(t, 1, countRows(t, gdb, &domain.VerificationToken{}, "email = ?", "b@x.com"))
}

func TestTwoFactorTokenLifecycle(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()
	exp := time.Now().Add(5 * time.Minute)

	tok := &domain.TwoFactorToken{Email: "b@x.com", Token: "123456", ExpiresAt: exp}
	require.NoError(t, st.TwoFactorTokens().Replace(ctx, tok))

	got, err := st.TwoFactorTokens().GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	require.Equal(t, "123456", got.Token)

	byID, err := st.TwoFactorTokens().GetByID(ctx, tok.ID)
	require.NoError(t, err)
	require.Equal(t, tok.Email, byID.Email)

	require.NoError(t, st.TwoFactorTokens().Delete(ctx, tok.ID))
	_, err = st.TwoFactorTokens().GetByEmail(ctx, "b@x.com")
	require.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestTwoFactorConfirmationReplaceIsResetThenSet(t *testing.T) {
	st, gdb := setupStore(t)
	ctx := context.Background()
	userID := uuid.New()

	first := &domain.TwoFactorConfirmation{UserID: userID}
	require.NoError(t, st.TwoFactorConfirmations().Create(ctx, first))

	second := &domain.TwoFactorConfirmation{UserID: userID}
	require.NoError(t, st.TwoFactorConfirmations().Replace(ctx, second))

	require.EqualValues(t, 1, countRows(t, gdb, &domain.TwoFactorConfirmation{}, "user_id = ?", userID))
	got, err := st.TwoFactorConfirmations().GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)

	require.NoError(t, st.TwoFactorConfirmations().DeleteByUserID(ctx, userID))
	_, err = st.TwoFactorConfirmations().GetByUserID(ctx, userID)
	require.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestTwoFactorConfirmationCreateDuplicateConflicts(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, st.TwoFactorConfirmations().Create(ctx, &domain.TwoFactorConfirmation{UserID: userID}))
	err := st.TwoFactorConfirmations().Create(ctx, &domain.TwoFactorConfirmation{UserID: userID})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestTokenCreateDuplicateEmailConflicts(t *testing.T) {
	st, gdb := setupStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, st.VerificationTokens().Create(ctx, &domain.VerificationToken{Email: "a@x.com", Token: "verify_one", ExpiresAt: exp}))
	err := st.VerificationTokens().Create(ctx, &domain.VerificationToken{Email: "a@x.com", Token: "verify_two", ExpiresAt: exp})
	require.ErrorIs(t, err, store.ErrConflict)
	require.EqualValues(t, 1, countRows(t, gdb, &domain.VerificationToken{}, "email = ?", "a@x.com"))

	require.NoError(t, st.TwoFactorTokens().Create(ctx, &domain.TwoFactorToken{Email: "b@x.com", Token: "123456", ExpiresAt: exp}))
	err = st.TwoFactorTokens().Create(ctx, &domain.TwoFactorToken{Email: "b@x.com", Token: "654321", ExpiresAt: exp})
	require.ErrorIs(t, err, store.ErrConflict)
	require.EqualValues(t, 1, countRows(t, gdb, &domain.TwoFactorToken{}, "email = ?", "b@x.com"))
}

func TestSessionRotateAndRevoke(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	sess := &domain.Session{UserID: userID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, st.Sessions().Create(ctx, sess))

	newRID := uuid.New()
	require.NoError(t, st.Sessions().Rotate(ctx, sess.ID, newRID, now.Add(2*time.Hour), "10.0.0.1", "unit-test"))

	_, err := st.Sessions().GetByRefreshID(ctx, sess.RefreshID)
	require.ErrorIs(t, err, store.ErrRecordNotFound)

	got, err := st.Sessions().GetByRefreshID(ctx, newRID)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", got.IP)
	require.Nil(t, got.RevokedAt)

	n, err := st.Sessions().RevokeAllForUser(ctx, userID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err = st.Sessions().GetByRefreshID(ctx, newRID)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
}

func TestWithTxRollsBack(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Accounts().Create(ctx, &domain.Account{Email: "tx@x.com"}); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, err = st.Accounts().GetByEmail(ctx, "tx@x.com")
	require.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestAccountSetTwoFactorEnabled(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	acc := &domain.Account{Email: "tfa@x.com"}
	require.NoError(t, st.Accounts().Create(ctx, acc))
	require.False(t, acc.IsTwoFactorEnabled)

	require.NoError(t, st.Accounts().SetTwoFactorEnabled(ctx, acc.ID, true))
	got, err := st.Accounts().GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, got.IsTwoFactorEnabled)
}
