package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedUser  *models.User
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "testuser", Email: "test@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(1, 1).
		WillReturnError(errors.New("connection timeout"))

	user, err := repo.GetByID(ctx, 1)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		email := "test@example.com"
		rows := sqlmock.NewRows([]string{"id", "email"}).AddRow(1, email)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
			WithArgs(email, 1).
			WillReturnRows(rows)

		user, err := repo.GetByEmail(ctx, email)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, email, user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		email := "ghost@example.com"
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WithArgs(email, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByEmail(ctx, email)
		assert.NoError(t, err) // Should return nil, nil per implementation
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "newuser", Email: "new@example.com"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "dup", Email: "dup@example.com"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_RoleAndToken(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "reporter", models.RoleUser)

	require.NoError(t, repo.UpdateRole(ctx, u.ID, models.RoleReporter))
	require.NoError(t, repo.UpdateFCMToken(ctx, u.ID, "device-token"))

	reporters, err := repo.ListByRole(ctx, models.RoleReporter)
	require.NoError(t, err)
	require.Len(t, reporters, 1)
	assert.Equal(t, u.ID, reporters[0].ID)

	token, err := repo.FCMToken(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "device-token", token)

	_, err = repo.FCMToken(ctx, 999)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(repo.UpdateRole(ctx, 999, models.RoleAdmin)))
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isUniqueConstraintError(nil))
}
