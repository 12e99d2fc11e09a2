package dto

// RegisterDTO binds from JSON or from the fields of a multipart form.
type RegisterDTO struct {
	Name     string `json:"name" form:"name" binding:"required,max=50"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=72"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileDTO leaves empty fields unchanged.
type UpdateProfileDTO struct {
	Name  string `json:"name" form:"name" binding:"max=50"`
	Email string `json:"email" form:"email" binding:"omitempty,email"`
}

type AdminUpdateUserDTO struct {
	Name  *string `json:"name" binding:"omitempty,max=50"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *string `json:"role"`
}
