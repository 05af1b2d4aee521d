package models

// ClientIdentifyRequest carries an optional previously issued client id.
type ClientIdentifyRequest struct {
	ClientID *string `json:"clientId,omitempty"`
}

// ClientIdentifyResponse returns the authoritative client id for this device.
type ClientIdentifyResponse struct {
	ClientID string `json:"clientId"`
}
