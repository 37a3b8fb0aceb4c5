package dto

import "github.com/google/uuid"

type CreateMarketplaceRequest struct {
	Name       string `json:"name"`
	Domain     string `json:"domain"`
	AdminEmail string `json:"adminEmail"`
}

type CreateMarketplaceResponse struct {
	MarketplaceID uuid.UUID `json:"marketplaceId"`
}

type SetMarketplaceStatusRequest struct {
	Status string `json:"status"`
}

type DeleteMarketplaceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CleanupResponse struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}

// MarketplaceStats is an advisory per-marketplace snapshot; counts are
// computed live, not transactionally maintained.
type MarketplaceStats struct {
	MarketplaceID uuid.UUID `json:"marketplaceId"`
	Name          string    `json:"name"`
	Domain        string    `json:"domain"`
	Status        string    `json:"status"`
	Users         int64     `json:"users"`
	Listings      int64     `json:"listings"`
	Pending       int64     `json:"pending"`
}

type MigrateUsersResponse struct {
	Success  bool  `json:"success"`
	Migrated int64 `json:"migrated"`
	Skipped  int64 `json:"skipped"`
}
