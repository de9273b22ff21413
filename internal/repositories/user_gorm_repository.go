package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jammal/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// GetByExternalID retrieves a user by their identity provider subject.
func (r *GORMUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "external_id = ?", externalID)
}

func (r *GORMUserRepository) first(tx *gorm.DB, cond, arg string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Upsert inserts the user or, on an ExternalID conflict, refreshes name and email.
// user is reloaded so the caller sees the stored ID and role.
func (r *GORMUserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
	}).Omit("Orders").Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	stored, err := r.GetByExternalID(ctx, user.ExternalID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// UpdateRole sets the role flag.
func (r *GORMUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

// UpdateWishlist replaces the stored wishlist.
func (r *GORMUserRepository) UpdateWishlist(ctx context.Context, id string, wishlist models.Wishlist) error {
	return r.updateColumn(ctx, id, "wishlist", wishlist.Encode())
}

func (r *GORMUserRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("User not found")
	}
	return nil
}

// ListCustomers pages through users, newest first, with order statistics.
func (r *GORMUserRepository) ListCustomers(ctx context.Context, filter CustomerFilter) ([]CustomerSummary, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	q = q.Order("created_at DESC")
	if filter.Page.Limit > 0 {
		q = q.Offset(filter.Page.Offset()).Limit(filter.Page.Limit)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	if len(users) == 0 {
		return []CustomerSummary{}, total, nil
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var orders []struct {
		UserID    string
		Total     decimal.Decimal
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("user_id, total, created_at").
		Where("user_id IN ?", ids).
		Scan(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load customer orders: %w", err)
	}

	summaries := make([]CustomerSummary, len(users))
	index := make(map[string]int, len(users))
	for i, u := range users {
		summaries[i] = CustomerSummary{User: u, TotalSpent: decimal.Zero}
		index[u.ID] = i
	}
	for _, o := range orders {
		s := &summaries[index[o.UserID]]
		s.OrderCount++
		s.TotalSpent = s.TotalSpent.Add(o.Total)
		if s.LastOrderDate == nil || o.CreatedAt.After(*s.LastOrderDate) {
			created := o.CreatedAt
			s.LastOrderDate = &created
		}
	}
	return summaries, total, nil
}

// ListByRole returns every user with role, newest first.
func (r *GORMUserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

// GetWithOrders loads a user with their orders and order items.
func (r *GORMUserRepository) GetWithOrders(ctx context.Context, id string) (*models.User, error) {
	tx := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Orders.Items")
	return r.first(tx, "id = ?", id)
}

// Delete deletes a user by ID.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("Customer not found")
	}
	return nil
}
