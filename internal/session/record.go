// Package session implementa el store de registros de correlación del bridge.
//
// Un registro vive desde que el engine lo crea hasta que alguien lo consume con
// TakeAndRemove (o hasta que vence su TTL). Consumir es atómico: ante dos
// consumidores concurrentes del mismo id, solo uno recibe el registro.
package session

// Record es un registro de correlación. Unión cerrada: solo PendingCallback e IssuedCode.
type Record interface {
	isRecord()
	// Kind devuelve el discriminante, útil para logs y métricas.
	Kind() string
}

// PendingCallback se crea en authorize y se consume en callback.
type PendingCallback struct {
	RedirectURI string
	State       string
}

// IssuedCode se crea en callback (assertion verificada) y se consume en token.
type IssuedCode struct {
	Identity string
	State    string
}

func (PendingCallback) isRecord() {}
func (IssuedCode) isRecord()      {}

func (PendingCallback) Kind() string { return "pending_callback" }
func (IssuedCode) Kind() string      { return "issued_code" }
