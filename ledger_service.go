package main

import (
	"fmt"
	"time"

	"github.com/grutapig/postx/xapi"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LedgerService keeps a sqlite history of every post attempt. Write-only
// during posting; it is never consulted to retry anything.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(dbPath string) (*LedgerService, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ledger database: %w", err)
	}

	service := &LedgerService{db: db}

	if err := service.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run ledger migrations: %w", err)
	}

	return service, nil
}

func (s *LedgerService) runMigrations() error {
	return s.db.AutoMigrate(&PostRecordModel{})
}

// RecordAttempt logs one post attempt. post is nil for failed attempts,
// attemptErr is nil for successful ones.
func (s *LedgerService) RecordAttempt(requestUUID, toolName string, threadIndex, threadSize int, text string, post *xapi.PostResult, attemptErr error) error {
	record := PostRecordModel{
		RequestUUID: requestUUID,
		ToolName:    toolName,
		ThreadIndex: threadIndex,
		ThreadSize:  threadSize,
		Text:        text,
		IsSuccess:   attemptErr == nil,
		PostedAt:    time.Now(),
	}
	if post != nil {
		record.TweetID = post.TweetID
		record.URL = post.URL
	}
	if attemptErr != nil {
		record.ErrorMessage = attemptErr.Error()
	}
	return s.db.Create(&record).Error
}

func (s *LedgerService) RecentPosts(limit int) ([]PostRecordModel, error) {
	var records []PostRecordModel
	err := s.db.Order("posted_at desc").Limit(limit).Find(&records).Error
	return records, err
}

func (s *LedgerService) PostCount() (int64, error) {
	var count int64
	err := s.db.Model(&PostRecordModel{}).Count(&count).Error
	return count, err
}

func (s *LedgerService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
