package store

import (
	"fmt"

	"rais/internal/model"
)

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(filename string, fileSize int64, fileHash, sessionID string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (filename, file_size, file_hash, session_id, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, filename, fileSize, fileHash, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// FinishImportLog 用导入报告回填日志
func (s *Store) FinishImportLog(id int64, report *model.IngestReport) error {
	status := "completed"
	errorMessage := ""
	if !report.Success {
		status = "failed"
		if len(report.Errors) > 0 {
			errorMessage = report.Errors[0].Message
		}
	}

	imported, skipped := 0, 0
	for _, sheet := range report.Sheets {
		switch sheet.Status {
		case "imported":
			imported++
		case "skipped":
			skipped++
		}
	}

	_, err := s.db.Exec(`
		UPDATE import_logs SET
			kind = ?,
			total_sheets = ?,
			imported_sheets = ?,
			skipped_sheets = ?,
			total_rows = ?,
			error_rows = ?,
			warning_count = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(report.Kind), len(report.Sheets), imported, skipped,
		report.Stats.RowsProcessed, report.Stats.RowsFailed, len(report.Warnings),
		status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// HasImportedHash 查某个文件指纹是否已成功导入过
func (s *Store) HasImportedHash(fileHash string) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM import_logs WHERE file_hash = ? AND status = 'completed'
	`, fileHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query import logs: %w", err)
	}
	return count > 0, nil
}
