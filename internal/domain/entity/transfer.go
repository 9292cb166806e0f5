package entity

import "time"

// Estados de un traslado entre sedes.
const (
	TransferPending   = "pending"
	TransferCompleted = "completed"
	TransferCancelled = "cancelled" // terminal
)

// TransferShipment cabecera de un traslado.
type TransferShipment struct {
	ID                    string
	Number                string
	SourceLocationID      string
	DestinationLocationID string
	Status                string
	Notes                 string
	CreatedBy             string
	CreatedAt             time.Time
	CompletedAt           *time.Time
	CancelledAt           *time.Time
	CancelledBy           string
	CancelReason          string
}

// TransferLine línea del traslado; BoxID apunta a la caja de bodega de la que salió la mercancía.
type TransferLine struct {
	ID         string
	ShipmentID string
	Position   int
	ItemID     string
	VariantID  string
	Quantity   int64
	BoxID      *string
}

// FromBox indica si la línea salió de una caja de bodega.
func (l *TransferLine) FromBox() bool {
	return l.BoxID != nil && *l.BoxID != ""
}
