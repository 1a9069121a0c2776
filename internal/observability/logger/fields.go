package logger

import (
	"time"

	"github.com/dropDatabas3/steambridge/internal/util"
	"go.uber.org/zap"
)

// Field es un alias de zap.Field para no importar zap en cada paquete.
type Field = zap.Field

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field {
	return zap.Int64("duration_ms", d.Milliseconds())
}

// =================================================================================
// CAMPOS ESTÁNDAR - BRIDGE
// =================================================================================

// SteamID es el SteamID64 verificado. No es secreto, se loguea completo.
func SteamID(v string) zap.Field { return zap.String("steam_id", v) }

// ClientID identifica a la aplicación cliente.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// SessionKey loguea el identificador de correlación enmascarado.
func SessionKey(v string) zap.Field { return zap.String("session_key", util.MaskToken(v)) }

// Code loguea el código de intercambio enmascarado.
func Code(v string) zap.Field { return zap.String("code", util.MaskToken(v)) }

// RedirectURI loguea solo origen + path del redirect del cliente.
func RedirectURI(v string) zap.Field { return zap.String("redirect_uri", util.StripQuery(v)) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
