package request

// UpdateTenantSettingsRequest changes how a tenant's imports are read
type UpdateTenantSettingsRequest struct {
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	Locale     string `json:"locale" binding:"omitempty,max=20"`
	DateFormat string `json:"date_format"`
}
