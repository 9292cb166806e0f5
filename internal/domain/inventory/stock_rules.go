package inventory

// ApplyDelta aplica un delta con signo sobre la cantidad actual con piso en cero.
// Devuelve la nueva cantidad y si hubo recorte (la salida pedía más de lo disponible).
//
//	nueva = max(0, actual + delta)
func ApplyDelta(current, delta int64) (next int64, clamped bool) {
	next = current + delta
	if next < 0 {
		return 0, true
	}
	return next, false
}

// ReversalOut cantidad efectiva que se descuenta del destino al anular un traslado:
// min(trasladado, disponible).
func ReversalOut(transferred, available int64) int64 {
	if available < transferred {
		if available < 0 {
			return 0
		}
		return available
	}
	return transferred
}
