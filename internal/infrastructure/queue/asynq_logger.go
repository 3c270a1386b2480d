package queue

import (
	"fmt"

	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// AsynqLogger adapta el logger de la aplicación a asynq.Logger.
type AsynqLogger struct {
	log *logger.Logger
}

// NewAsynqLogger construye el adaptador.
func NewAsynqLogger(log *logger.Logger) *AsynqLogger {
	return &AsynqLogger{log: log.Component("asynq")}
}

func (l *AsynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }

// Fatal termina el proceso (zerolog llama a os.Exit).
func (l *AsynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
