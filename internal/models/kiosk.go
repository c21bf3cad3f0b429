package models

import "time"

type Kiosk struct {
	KioskID       string     `json:"kiosk_id"`
	CompanyID     string     `json:"company_id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	MACAddress    string     `json:"mac_address"`
	DeviceType    string     `json:"device_type"`
	IsActive      bool       `json:"is_active"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

const (
	DeviceWindows = "windows"
	DeviceAndroid = "android"
	DeviceWeb     = "web"
	DeviceIOS     = "ios"
)

func ValidDeviceType(value string) bool {
	switch value {
	case DeviceWindows, DeviceAndroid, DeviceWeb, DeviceIOS:
		return true
	default:
		return false
	}
}

// KioskRegistrationToken stores only the sha256 of the issued token.
type KioskRegistrationToken struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"user_id"`
	IsUsed    bool      `json:"is_used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
