package ledger

import (
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"parrainage-bot/internal/database"
	"parrainage-bot/internal/models"
)

func referredUserSQL(l *Ledger, db *gorm.DB) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var user models.User
		return l.referredUser(tx, 7).Take(&user)
	})
}

func TestReferredUserLocksRowOnPostgres(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=parrainage_bot sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	l := New(db)
	if !l.lockRows {
		t.Fatal("lockRows = false with the postgres dialector")
	}

	sql := referredUserSQL(l, db)
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("referred user query = %q, want FOR UPDATE", sql)
	}
	if !strings.Contains(sql, "user_id = 7") {
		t.Errorf("referred user query = %q, want user_id filter", sql)
	}
}

func TestReferredUserNoLockOnSQLite(t *testing.T) {
	db, err := database.ConnectSQLite(filepath.Join(t.TempDir(), "lock.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	l := New(db)
	if l.lockRows {
		t.Fatal("lockRows = true with the sqlite dialector")
	}
	if sql := referredUserSQL(l, db); strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("referred user query = %q, want no row lock", sql)
	}
}
