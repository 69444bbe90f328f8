package dao

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestSettingsDAOGetByUserID(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	d := NewSettingsDAO(db)

	rows := sqlmock.NewRows([]string{
		"user_id", "email_enabled", "wechat_enabled", "sms_enabled",
		"task_notifications", "quiet_hours_start", "quiet_hours_end",
	}).AddRow(int64(1), true, false, false, true, "22:00", "06:00")
	mock.ExpectQuery("SELECT \\* FROM `user_notification_settings`.*").WillReturnRows(rows)

	settings, err := d.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), settings.UserID)
	assert.True(t, settings.EmailEnabled)
	assert.False(t, settings.WechatEnabled)
	assert.Equal(t, "22:00", settings.QuietHoursStart)
	assert.Equal(t, "06:00", settings.QuietHoursEnd)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsDAOGetByUserIDNotFound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	d := NewSettingsDAO(db)

	mock.ExpectQuery("SELECT \\* FROM `user_notification_settings`.*").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := d.GetByUserID(context.Background(), 2)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsDAOSave(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	d := NewSettingsDAO(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `user_notification_settings`.*").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := d.Save(context.Background(), UserNotificationSettings{
		UserID:            1,
		EmailEnabled:      true,
		TaskNotifications: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "06:00",
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
