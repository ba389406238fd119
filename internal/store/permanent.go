package store

import (
	"fmt"

	"rais/internal/model"
)

// ReadSnapshot 读出永久层全量快照
func (s *Store) ReadSnapshot() (*model.StoreSnapshot, error) {
	snap := model.NewStoreSnapshot("")

	rows, err := s.db.Query(`SELECT defect_code, category, severity, count FROM defect_totals`)
	if err != nil {
		return nil, fmt.Errorf("failed to query defect totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		agg := &model.DefectAggregate{}
		if err := rows.Scan(&agg.DefectCode, &agg.Category, &agg.Severity, &agg.Count); err != nil {
			return nil, fmt.Errorf("failed to scan defect total: %w", err)
		}
		snap.Defects[agg.DefectCode] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`SELECT produced, rejected FROM overview WHERE id = 1`).
		Scan(&snap.Overview.Produced, &snap.Overview.Rejected); err != nil {
		return nil, fmt.Errorf("failed to read overview: %w", err)
	}

	batchRows, err := s.db.Query(`
		SELECT batch_number, production_date, planned_quantity, produced_quantity,
		       rejected_quantity, status, risk_level, source_sheet, source_file
		FROM batches
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer batchRows.Close()

	for batchRows.Next() {
		b := &model.Batch{}
		if err := batchRows.Scan(&b.BatchNumber, &b.ProductionDate, &b.PlannedQuantity,
			&b.ProducedQuantity, &b.RejectedQuantity, &b.Status, &b.RiskLevel,
			&b.SourceSheet, &b.SourceFile); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		snap.Batches[b.BatchNumber] = b
	}
	if err := batchRows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

// MergeSnapshot 把一份快照累加进永久层，单事务完成
// 批次风险等级按合并后的总量用 risk 重算；
// 重复合并同一份快照会重复计数，去重由调用方的会话生命周期保证
func (s *Store) MergeSnapshot(snap *model.StoreSnapshot, risk *model.RiskPolicy) error {
	if risk == nil {
		risk = model.NewRiskPolicy(0, 0)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	for _, agg := range snap.Defects {
		if _, err := tx.Exec(`
			INSERT INTO defect_totals (defect_code, category, severity, count)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(defect_code) DO UPDATE SET
				count = count + excluded.count,
				updated_at = CURRENT_TIMESTAMP
		`, agg.DefectCode, agg.Category, agg.Severity, agg.Count); err != nil {
			return fmt.Errorf("failed to merge defect %s: %w", agg.DefectCode, err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE overview SET produced = produced + ?, rejected = rejected + ? WHERE id = 1
	`, snap.Overview.Produced, snap.Overview.Rejected); err != nil {
		return fmt.Errorf("failed to merge overview: %w", err)
	}

	for _, b := range snap.Batches {
		if _, err := tx.Exec(`
			INSERT INTO batches (batch_number, production_date, planned_quantity,
				produced_quantity, rejected_quantity, status, risk_level, source_sheet, source_file)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(batch_number) DO UPDATE SET
				produced_quantity = produced_quantity + excluded.produced_quantity,
				rejected_quantity = rejected_quantity + excluded.rejected_quantity,
				planned_quantity = planned_quantity + excluded.planned_quantity,
				status = excluded.status,
				updated_at = CURRENT_TIMESTAMP
		`, b.BatchNumber, b.ProductionDate, b.PlannedQuantity, b.ProducedQuantity,
			b.RejectedQuantity, b.Status, b.RiskLevel, b.SourceSheet, b.SourceFile); err != nil {
			return fmt.Errorf("failed to merge batch %s: %w", b.BatchNumber, err)
		}

		merged := model.Batch{}
		if err := tx.QueryRow(`
			SELECT produced_quantity, rejected_quantity FROM batches WHERE batch_number = ?
		`, b.BatchNumber).Scan(&merged.ProducedQuantity, &merged.RejectedQuantity); err != nil {
			return fmt.Errorf("failed to reread batch %s: %w", b.BatchNumber, err)
		}
		if _, err := tx.Exec(`
			UPDATE batches SET risk_level = ? WHERE batch_number = ?
		`, risk.Classify(merged.RejectionRate()), b.BatchNumber); err != nil {
			return fmt.Errorf("failed to reclassify batch %s: %w", b.BatchNumber, err)
		}
	}

	return tx.Commit()
}
