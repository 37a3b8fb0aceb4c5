package dto

type SetBlockedRequest struct {
	Blocked bool `json:"blocked"`
}
