package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DataWorkbench/paimonweb/qerror"
)

const JobManager = "job_manager"

const (
	StateRunning  = "RUNNING"
	StateSucceed  = "SUCCEED"
	StateFailed   = "FAILED"
	StateCanceled = "CANCELED"
)

// JobRecord tracks one SQL execution or one cluster submission.
type JobRecord struct {
	ID          string `gorm:"column:id;primaryKey;size:64"`
	TaskType    string `gorm:"column:task_type;size:32"`
	SessionID   string `gorm:"column:session_id;size:64"`
	OperationID string `gorm:"column:operation_id;size:64"`
	Statement   string `gorm:"column:statement"`
	AppID       string `gorm:"column:app_id;size:128"`
	FlinkIDs    string `gorm:"column:flink_ids"`
	WebURL      string `gorm:"column:web_url"`
	State       string `gorm:"column:state;size:16;index"`
	Message     string `gorm:"column:message"`
	Created     int64  `gorm:"column:created;autoCreateTime"`
	Updated     int64  `gorm:"column:updated;autoUpdateTime"`
}

func (JobRecord) TableName() string {
	return JobManager
}

func (r *JobRecord) JobIDs() []string {
	if r.FlinkIDs == "" {
		return nil
	}
	return strings.Split(r.FlinkIDs, ",")
}

type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&JobRecord{})
}

func (s *RecordStore) Upsert(ctx context.Context, record *JobRecord) error {
	db := s.db.WithContext(ctx)
	return db.Table(JobManager).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_id", "operation_id", "app_id", "flink_ids",
			"web_url", "state", "message", "updated"}),
	}).Create(record).Error
}

func (s *RecordStore) Get(ctx context.Context, id string) (*JobRecord, error) {
	var record JobRecord
	db := s.db.WithContext(ctx)
	if err := db.Table(JobManager).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = qerror.ResourceNotExists.Format(id)
		}
		return nil, err
	}
	return &record, nil
}

func (s *RecordStore) ListByState(ctx context.Context, state string) ([]*JobRecord, error) {
	var records []*JobRecord
	db := s.db.WithContext(ctx)
	err := db.Table(JobManager).Where("state = ?", state).Order("created").Find(&records).Error
	return records, err
}
