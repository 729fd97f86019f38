package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("创建 sqlmock 失败: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开 gorm 失败: %v", err)
	}
	return db, mock
}

func TestNotificationRepo_MarkRead_FirstCall(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepo(db)

	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkRead(context.Background(), "n-1", "u-1", time.Now()); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestNotificationRepo_MarkRead_Idempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepo(db)

	// 已读通知：UPDATE 影响 0 行，存在性检查返回 1
	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	if err := repo.MarkRead(context.Background(), "n-1", "u-1", time.Now()); err != nil {
		t.Errorf("重复标记已读不应报错，实际: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestNotificationRepo_MarkRead_NotOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepo(db)

	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.MarkRead(context.Background(), "n-1", "intruder", time.Now())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestNotificationRepo_MarkAllRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepo(db)

	mock.ExpectExec(`UPDATE "notifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkAllRead(context.Background(), "u-1", time.Now())
	if err != nil {
		t.Fatalf("全部已读失败: %v", err)
	}
	if n != 4 {
		t.Errorf("期望影响 4 行，实际=%d", n)
	}
}

func TestNotificationRepo_MarkDelivered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepo(db)

	mock.ExpectExec(`UPDATE "notifications" SET "delivered_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkDelivered(context.Background(), "n-1", time.Now()); err != nil {
		t.Fatalf("回写投递时间失败: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestTaskRepo_MarkReminderSent_OnlyOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepo(db)

	mock.ExpectExec(`UPDATE "tasks" SET "reminder_sent_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET "reminder_sent_at"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.MarkReminderSent(context.Background(), "t-1", time.Now())
	if err != nil || !first {
		t.Fatalf("首次标记应成功: ok=%v err=%v", first, err)
	}
	second, err := repo.MarkReminderSent(context.Background(), "t-1", time.Now())
	if err != nil || second {
		t.Errorf("重复标记应返回 false: ok=%v err=%v", second, err)
	}
}
