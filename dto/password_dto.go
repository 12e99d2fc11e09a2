package dto

type ForgotPasswordDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordDTO struct {
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type UpdatePasswordDTO struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
