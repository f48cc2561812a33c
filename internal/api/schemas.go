package api

import (
	"github.com/svgagenius/svga-agent/internal/artifacts"
	"github.com/svgagenius/svga-agent/internal/export"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	Export export.Status `json:"export"`
}

type BalanceResponse struct {
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Diamonds     int    `json:"diamonds"`
	Admin        bool   `json:"admin"`
	ManualVIP    bool   `json:"manual_vip"`
	VIP          bool   `json:"vip"`
	ExportCost   int    `json:"export_cost"`
	VIPThreshold int    `json:"vip_threshold"`
}

type ExportsResponse struct {
	Exports []ExportRecordResponse `json:"exports"`
}

type ExportRecordResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Format    string `json:"format,omitempty"`
	Cost      int    `json:"cost"`
	CreatedAt string `json:"created_at"`
}

type ArtifactsResponse struct {
	Artifacts []artifacts.Entry `json:"artifacts"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
