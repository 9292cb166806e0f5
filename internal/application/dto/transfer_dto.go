package dto

import "time"

// TransferLineRequest línea de traslado. BoxID solo aplica si el origen es la bodega central.
type TransferLineRequest struct {
	ItemID    string `json:"item_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int64  `json:"quantity"`
	BoxID     string `json:"box_id,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceLocationID      string                `json:"source_location_id"`
	DestinationLocationID string                `json:"destination_location_id"`
	Notes                 string                `json:"notes,omitempty"`
	DispatchOnly          bool                  `json:"dispatch_only,omitempty"`
	Lines                 []TransferLineRequest `json:"lines"`
}

// ReverseTransferRequest body para POST /api/transfers/:id/reverse.
type ReverseTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferLineResponse línea de traslado en respuestas.
type TransferLineResponse struct {
	ID        string `json:"id"`
	Position  int    `json:"position"`
	ItemID    string `json:"item_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int64  `json:"quantity"`
	BoxID     string `json:"box_id,omitempty"`
}

// TransferResponse traslado con sus líneas.
type TransferResponse struct {
	ID                    string                 `json:"id"`
	Number                string                 `json:"number"`
	SourceLocationID      string                 `json:"source_location_id"`
	DestinationLocationID string                 `json:"destination_location_id"`
	Status                string                 `json:"status"`
	Notes                 string                 `json:"notes,omitempty"`
	CreatedBy             string                 `json:"created_by"`
	CreatedAt             time.Time              `json:"created_at"`
	CompletedAt           *time.Time             `json:"completed_at,omitempty"`
	CancelledAt           *time.Time             `json:"cancelled_at,omitempty"`
	CancelledBy           string                 `json:"cancelled_by,omitempty"`
	CancelReason          string                 `json:"cancel_reason,omitempty"`
	Lines                 []TransferLineResponse `json:"lines"`
	Movements             []MovementResponse     `json:"movements,omitempty"`
}
