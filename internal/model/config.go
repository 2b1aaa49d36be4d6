package model

// Reserved document ids inside the schedules collection. Every other id is a
// schedule instance.
const (
	MessagingConfigID = "whatsappConfig"
	AdminConfigID     = "adminConfig"
)

// DefaultAdminPassword is the admin passcode before a destination number has
// ever been saved.
const DefaultAdminPassword = "123"

// adminPasswordPrefix is the constant part of the derived admin passcode.
const adminPasswordPrefix = "ibrb"

// MessagingConfig is the singleton document holding the outbound summary
// destination.
type MessagingConfig struct {
	Number string `json:"number"`
}

// AdminConfig is the singleton document with the shared admin passcode and
// member permissions. The passcode is a plaintext shared secret, not a
// security boundary.
type AdminConfig struct {
	Password              string `json:"password"`
	UserCanDeleteBookings bool   `json:"userCanDeleteBookings"`
}

// DeriveAdminPassword computes the admin passcode that accompanies a saved
// destination number: the constant prefix plus the number's last 4
// characters.
func DeriveAdminPassword(number string) string {
	tail := number
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return adminPasswordPrefix + tail
}
