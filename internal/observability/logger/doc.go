// Package logger expone un logger Zap singleton con scoping por contexto.
//
// El bridge loguea cada pierna del flujo (authorize, callback, token, userinfo)
// con campos estructurados. Los identificadores de correlación y los códigos
// nunca se loguean completos: usar SessionKey/Code, que los enmascaran.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Token"))
//	log.Info("token issued", logger.SteamID(id))
package logger
