package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products, e.g. attar or bakhoor.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;type:varchar(120);not null" validate:"required,max=120"`
	Name        string    `json:"name" gorm:"type:varchar(120);not null" validate:"required,max=120"`
	Description string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product represents a product in the store.
type Product struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string          `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=2,max=200"`
	Slug         string          `json:"slug" gorm:"uniqueIndex;type:varchar(200);not null" validate:"required,max=200"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(12,2);index;not null"`
	Discount     float64         `json:"discount" validate:"gte=0,lte=100"` // Percentage off Price
	Stock        int             `json:"stock" validate:"gte=0"`
	Images       string          `json:"-" gorm:"type:text"`
	Variants     *string         `json:"-" gorm:"type:text"`
	CategoryID   string          `json:"categoryId" gorm:"type:varchar(36);index;not null" validate:"required"`
	Category     *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	IsFeatured   bool            `json:"isFeatured"`
	IsBestSeller bool            `json:"isBestSeller"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ImageList decodes the stored image array.
func (p *Product) ImageList() ImageList {
	return ParseImageList(p.Images)
}

// DiscountedPrice applies the discount percentage to Price.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(p.Discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

// MarshalJSON renders the image and variant blobs as structured fields.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Images   ImageList       `json:"images"`
		Variants ProductVariants `json:"variants"`
	}{
		alias:    alias(p),
		Images:   p.ImageList(),
		Variants: ParseProductVariants(p.Variants),
	})
}

// UnmarshalJSON accepts images and variants as structured fields.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	aux := struct {
		*alias
		Images   ImageList        `json:"images"`
		Variants *ProductVariants `json:"variants"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Images = aux.Images.Encode()
	if aux.Variants != nil && len(aux.Variants.Sizes) > 0 {
		b, _ := json.Marshal(aux.Variants)
		s := string(b)
		p.Variants = &s
	}
	return nil
}

// Review is a customer's rating of a product, one per user and product.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);uniqueIndex:idx_review_user_product;not null"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);uniqueIndex:idx_review_user_product;index;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   *string   `json:"comment"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product   *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
