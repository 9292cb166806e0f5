package domain

// Roles reconocidos en el token de sesión.
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleCashier   = "cashier"
	RoleWarehouse = "warehouse"
)

// Actor contexto explícito de sesión (usuario, sede y rol) que recibe cada transacción.
// Lo construye la capa HTTP a partir del token; el núcleo lo acepta tal cual.
type Actor struct {
	UserID     string
	LocationID string
	Role       string
}

// Valid indica si el actor trae los identificadores mínimos.
func (a Actor) Valid() bool {
	return a.UserID != "" && a.LocationID != ""
}
