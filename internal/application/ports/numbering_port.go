package ports

import "context"

// Tipos de documento numerados.
const (
	DocSale     = "V"
	DocReturn   = "D"
	DocTransfer = "T"
)

// DocumentNumberer genera identificadores legibles y únicos por sede y tipo de documento.
// El motor trata el resultado como un string opaco.
type DocumentNumberer interface {
	Next(ctx context.Context, kind, locationCode string) (string, error)
}
