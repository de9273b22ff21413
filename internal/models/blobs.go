package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ShippingAddress is the structure serialized into Order.Address.
type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// ParseShippingAddress decodes raw; malformed input yields an empty address.
func ParseShippingAddress(raw string) ShippingAddress {
	var addr ShippingAddress
	if raw == "" {
		return addr
	}
	if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		return ShippingAddress{}
	}
	return addr
}

// Encode serializes the address for storage.
func (a ShippingAddress) Encode() string {
	b, _ := json.Marshal(a)
	return string(b)
}

// ImageList is the decoded form of Product.Images: URLs or inline data URLs.
type ImageList []string

// ParseImageList decodes raw; malformed input yields an empty list.
func ParseImageList(raw string) ImageList {
	return parseStringList(raw)
}

// Encode serializes the list for storage. A nil list encodes as "[]".
func (l ImageList) Encode() string {
	return encodeStringList(l)
}

// Wishlist is the decoded form of User.Wishlist: product ids.
type Wishlist []string

// ParseWishlist decodes raw; nil or malformed input yields an empty list.
func ParseWishlist(raw *string) Wishlist {
	if raw == nil {
		return Wishlist{}
	}
	return parseStringList(*raw)
}

// Contains reports whether productID is on the list.
func (w Wishlist) Contains(productID string) bool {
	for _, id := range w {
		if id == productID {
			return true
		}
	}
	return false
}

// Add appends productID unless already present.
func (w Wishlist) Add(productID string) Wishlist {
	if w.Contains(productID) {
		return w
	}
	return append(w, productID)
}

// Remove drops every occurrence of productID.
func (w Wishlist) Remove(productID string) Wishlist {
	out := make(Wishlist, 0, len(w))
	for _, id := range w {
		if id != productID {
			out = append(out, id)
		}
	}
	return out
}

// Encode serializes the wishlist for storage.
func (w Wishlist) Encode() string {
	return encodeStringList(w)
}

// ProductVariants is the decoded form of Product.Variants.
type ProductVariants struct {
	Sizes []string `json:"sizes,omitempty"`
}

// ParseProductVariants decodes raw; nil or malformed input yields no variants.
func ParseProductVariants(raw *string) ProductVariants {
	var v ProductVariants
	if raw == nil || *raw == "" {
		return v
	}
	if err := json.Unmarshal([]byte(*raw), &v); err != nil {
		return ProductVariants{}
	}
	return v
}

func parseStringList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func encodeStringList(l []string) string {
	if l == nil {
		l = []string{}
	}
	b, _ := json.Marshal(l)
	return string(b)
}
