package models

import "time"

// Category groups favorite locations. Many favorites may share one category.
type Category struct {
	ID           string    `json:"id"`
	CategoryName string    `json:"categoryName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ClientID     string    `json:"clientId"`
}

// CategoryRequest creates a new category.
type CategoryRequest struct {
	ClientID     string `json:"clientId" binding:"required"`
	CategoryName string `json:"categoryName" binding:"required"`
}

// CategoryUpdateRequest renames an existing category.
type CategoryUpdateRequest struct {
	CategoryName string `json:"categoryName" binding:"required"`
}
