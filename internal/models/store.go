package models

// Store is a tenant storefront. Every customer-facing resource is scoped to
// exactly one store; a session verified for one store grants nothing on another.
type Store struct {
	BaseModel
	Slug     string `gorm:"uniqueIndex" json:"slug"`
	Name     string `json:"name"`
	NameAr   string `json:"name_ar"`
	Currency string `json:"currency"`
	IsActive bool   `json:"is_active"`
}

// AdminUser is a platform operator with access to the admin API.
type AdminUser struct {
	BaseModel
	Email        string `gorm:"uniqueIndex" json:"email"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
}
