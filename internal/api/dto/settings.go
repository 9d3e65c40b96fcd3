package dto

// UpdateProfileRequest sets the user's business identity.
type UpdateProfileRequest struct {
	BusinessName  string `json:"business_name"`
	BusinessTaxID string `json:"business_tax_id"`
}

// ConfigureIMAPRequest stores mailbox credentials. Password may be
// empty on update to keep the stored one.
type ConfigureIMAPRequest struct {
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
	UseTLS   bool   `json:"use_tls"`
}

// ConnectWhatsAppRequest links a WhatsApp Business phone number to the
// account.
type ConnectWhatsAppRequest struct {
	PhoneNumberID string `json:"phone_number_id" binding:"required"`
}

// GmailAuthURLResponse carries the consent URL to redirect the user to.
type GmailAuthURLResponse struct {
	URL string `json:"url"`
}
