// Package ledger persists the agent's user/credit economy: user accounts with
// diamond balances and privilege flags, the economy settings that price
// exports, and a log of performed exports.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	EconomyKeyExportCost   = "export_cost"
	EconomyKeyVIPThreshold = "vip_threshold"

	ExportKindFrames = "frames"
	ExportKindGIF    = "gif"
	ExportKindAssets = "assets"
	ExportKindBatch  = "batch"
)

// ErrInsufficientFunds is returned by DebitUser when the user's balance is
// below the debit amount. The conditional UPDATE never lets a balance go
// negative, so two concurrent attempts cannot both spend the same diamonds.
var ErrInsufficientFunds = errors.New("ledger: insufficient balance")

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Diamonds    int       `json:"diamonds"`
	ManualVIP   bool      `json:"manual_vip"`
	CreatedAt   time.Time `json:"created_at"`
}

// Economy is the pricing snapshot consumed by the export guard.
type Economy struct {
	ExportCost   int `json:"export_cost"`
	VIPThreshold int `json:"vip_threshold"`
}

type ExportRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Format    string    `json:"format,omitempty"`
	Cost      int       `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

func NewID() string {
	return uuid.NewString()
}
