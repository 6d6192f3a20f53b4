// Package ledger keeps the referral records: who joined, who referred whom, and the
// counts derived from them.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parrainage-bot/internal/models"
)

type Ledger struct {
	db  *gorm.DB
	now func() time.Time
	// lockRows enables SELECT ... FOR UPDATE on the referred user during Credit.
	// SQLite has no row locks and relies on its single writer instead.
	lockRows bool
}

type Option func(*Ledger)

// WithClock replaces the clock used for joined_at and created_at.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(db *gorm.DB, opts ...Option) *Ledger {
	l := &Ledger{
		db:       db,
		now:      time.Now,
		lockRows: db.Dialector.Name() == "postgres",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register creates the user if it does not exist yet and reports whether it did.
// Existing users are left untouched, including their username and display name.
func (l *Ledger) Register(ctx context.Context, userID int64, username, displayName string) (bool, error) {
	user := models.User{
		UserID:      userID,
		Username:    username,
		DisplayName: displayName,
		JoinedAt:    l.now().UTC(),
	}
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user)
	if res.Error != nil {
		return false, storageErr("register user", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Credit records that referrerID brought referredID. It returns ErrSelfReferral,
// ErrAlreadyCredited or ErrAlreadyRecorded when the referral is refused, and a
// *StorageError when the database fails. The referrer is not required to be a known user.
func (l *Ledger) Credit(ctx context.Context, referredID, referrerID int64) (*models.Referral, error) {
	if referredID == referrerID {
		return nil, ErrSelfReferral
	}

	var referral models.Referral
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := l.referredUser(tx, referredID).Take(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Unregistered referred user: the referral is still recorded.
		case err != nil:
			return storageErr("load referred user", err)
		case user.ReferrerID != nil:
			return ErrAlreadyCredited
		}

		var existing int64
		if err := tx.Model(&models.Referral{}).Where("referred_id = ?", referredID).Count(&existing).Error; err != nil {
			return storageErr("check existing referral", err)
		}
		if existing > 0 {
			return ErrAlreadyRecorded
		}

		referral = models.Referral{
			ID:         uuid.New(),
			ReferrerID: referrerID,
			ReferredID: referredID,
			CreatedAt:  l.now().UTC(),
		}
		if err := tx.Create(&referral).Error; err != nil {
			return storageErr("insert referral", err)
		}

		if err := tx.Model(&models.User{}).
			Where("user_id = ?", referredID).
			Update("referrer_id", referrerID).Error; err != nil {
			return storageErr("set referrer", err)
		}
		return nil
	})
	if err != nil {
		var se *StorageError
		if IsRejection(err) || errors.As(err, &se) {
			return nil, err
		}
		return nil, storageErr("credit transaction", err)
	}
	return &referral, nil
}

// referredUser selects the referred user, locking the row on PostgreSQL so concurrent
// credits for the same user run one after the other.
func (l *Ledger) referredUser(tx *gorm.DB, referredID int64) *gorm.DB {
	if l.lockRows {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx.Where("user_id = ?", referredID)
}

func (l *Ledger) CountReferralsBy(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("referrer_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, storageErr("count referrals", err)
	}
	return count, nil
}

type referredRow struct {
	ReferredID  int64
	UserID      sql.NullInt64
	Username    sql.NullString
	DisplayName sql.NullString
	CreatedAt   time.Time
}

// ListReferralsBy returns up to limit users referred by userID, newest first.
func (l *Ledger) ListReferralsBy(ctx context.Context, userID int64, limit int) ([]models.ReferredUser, error) {
	if limit <= 0 {
		return []models.ReferredUser{}, nil
	}

	var rows []referredRow
	err := l.db.WithContext(ctx).
		Table("referrals AS r").
		Select("r.referred_id, u.user_id, u.username, u.display_name, r.created_at").
		Joins("LEFT JOIN users u ON u.user_id = r.referred_id").
		Where("r.referrer_id = ?", userID).
		Order("r.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("list referrals", err)
	}

	out := make([]models.ReferredUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ReferredUser{
			UserID:      r.ReferredID,
			Username:    r.Username.String,
			DisplayName: r.DisplayName.String,
			Registered:  r.UserID.Valid,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

// Leaderboard ranks every known user by referral count, highest first. Equal scores
// are ordered by ascending user id.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		return []models.LeaderboardEntry{}, nil
	}

	var entries []models.LeaderboardEntry
	err := l.db.WithContext(ctx).
		Table("users AS u").
		Select("u.user_id, u.username, u.display_name, COUNT(r.referred_id) AS score").
		Joins("LEFT JOIN referrals r ON r.referrer_id = u.user_id").
		Group("u.user_id, u.username, u.display_name").
		Order("score DESC, u.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, storageErr("leaderboard", err)
	}
	return entries, nil
}
