package repository

import (
	"context"

	"github.com/Minsekko/SJP-HR/internal/model/entity"
	"gorm.io/gorm"
)

// SequenceRepository 单据序号仓库。
// 序号按 (类别, 日期) 存放在 doc_sequences 计数器表里，
// 通过 value = value + 1 条件更新原子递增，进程重启后从持久值继续。
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository 创建单据序号仓库
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextSequence 取得 (category, date) 范围内的下一个序号，首次为 1。
// 必须在 tx 内调用，与单据插入共享同一事务。
func (r *SequenceRepository) NextSequence(tx *gorm.DB, category, date string) (int, error) {
	res := tx.Model(&entity.DocSequence{}).
		Where("category = ? AND date = ?", category, date).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		// 当日首张单据，插入计数器行
		seq := &entity.DocSequence{Category: category, Date: date, Value: 1}
		if err := tx.Create(seq).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var seq entity.DocSequence
	if err := tx.Where("category = ? AND date = ?", category, date).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// Next 在独立事务中取序号（仅测试与工具使用）
func (r *SequenceRepository) Next(ctx context.Context, category, date string) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := r.NextSequence(tx, category, date)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}
