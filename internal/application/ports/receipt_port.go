package ports

import "github.com/jhoicas/retail-stock-api/internal/application/dto"

// ReceiptRenderer genera el comprobante de una venta (PDF).
type ReceiptRenderer interface {
	RenderSaleReceipt(sale *dto.SaleResponse, locationName string) ([]byte, error)
}
