package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"atlas/internal/model"
)

func TestUserRepo_UpdateWithDepartments_ClearCommits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "user_departments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// 空列表：清空部门归属
	user := &model.User{UserID: "u-1", Name: "新名字", Role: "executant", IsActive: true}
	if err := repo.UpdateWithDepartments(context.Background(), user, []string{}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("SQL 期望未满足: %v", err)
	}
}

func TestUserRepo_UpdateWithDepartments_RollbackOnMembershipError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "user_departments"`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	user := &model.User{UserID: "u-1", Name: "新名字", Role: "executant", IsActive: true}
	if err := repo.UpdateWithDepartments(context.Background(), user, []string{"d-1"}); err == nil {
		t.Fatal("期望返回错误")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("用户行修改应随部门写入失败一并回滚: %v", err)
	}
}
