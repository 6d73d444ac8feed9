package repository

import (
	"context"

	"voidspace/backend/internal/models"

	"gorm.io/gorm"
)

// UploadRepository owns the append-only upload accounting rows. The sum of
// file sizes here is the global usage counter, recomputed on every read
// rather than maintained as a running total.
type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// TotalUsage returns the sum of all accepted upload sizes in bytes.
func (r *UploadRepository) TotalUsage(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Upload{}).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&total).Error
	return total, err
}

// Record appends an accounting row for an accepted upload.
func (r *UploadRepository) Record(ctx context.Context, userID uint, fileKey string, fileSize int64) error {
	row := models.Upload{UserID: userID, FileKey: fileKey, FileSize: fileSize}
	return r.db.WithContext(ctx).Create(&row).Error
}
