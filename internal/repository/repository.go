package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Region       RegionRepository
	Department   DepartmentRepository
	Contract     ContractRepository
	Subdivision  SubdivisionRepository
	Task         TaskRepository
	Issue        IssueRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Region:       NewRegionRepo(db),
		Department:   NewDepartmentRepo(db),
		Contract:     NewContractRepo(db),
		Subdivision:  NewSubdivisionRepo(db),
		Task:         NewTaskRepo(db),
		Issue:        NewIssueRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
