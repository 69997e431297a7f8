package repository

import (
	"context"
	"errors"
	"strings"

	"cctv-surveillance-reports/be/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReports implements Reports on top of a GORM connection.
type GormReports[T any, P interface {
	*T
	Record
}] struct {
	db *gorm.DB
	stamper
}

func NewGormReports[T any, P interface {
	*T
	Record
}](db *gorm.DB) *GormReports[T, P] {
	return &GormReports[T, P]{db: db, stamper: defaultStamper()}
}

func (r *GormReports[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	p := P(rec)
	if err := validate(p); err != nil {
		return nil, err
	}
	p.Assign(r.newID(), r.now())

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *GormReports[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *GormReports[T, P]) List(ctx context.Context) ([]T, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *GormReports[T, P]) ListByLocation(ctx context.Context, location string) ([]T, error) {
	return r.find(r.db.WithContext(ctx).Where("location = ?", location))
}

func (r *GormReports[T, P]) find(tx *gorm.DB) ([]T, error) {
	out := []T{}
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces every client-owned field of the record; createdAt is kept.
// Concurrent updates are last-write-wins.
func (r *GormReports[T, P]) Update(ctx context.Context, id string, rec *T) (*T, error) {
	p := P(rec)
	if err := validate(p); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Assign(id, P(existing).GetCreatedAt())

	if err := r.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *GormReports[T, P]) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormUsers implements Users on top of a GORM connection.
type GormUsers struct {
	db *gorm.DB
}

func NewGormUsers(db *gorm.DB) *GormUsers {
	return &GormUsers{db: db}
}

func (r *GormUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormUsers) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUsers) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// isUniqueViolation matches driver messages when TranslateError is not enabled.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Migrate creates or updates the SQL schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ActivityReport{},
		&models.StatusReport{},
	)
}

// NewGormStore wires the GORM repositories of db into a Store.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Activities: NewGormReports[models.ActivityReport](db),
		Statuses:   NewGormReports[models.StatusReport](db),
		Users:      NewGormUsers(db),
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
