package nimbuslog

import "go.uber.org/zap"

// ZapLogger adapts a *zap.Logger to the Logger capability. This is the
// default production backend: structured, leveled, and the library the
// core's Logger contract is documented against.
type ZapLogger struct {
	base *zap.Logger
}

// NewZapLogger wraps base. A nil base falls back to zap's production
// configuration.
func NewZapLogger(base *zap.Logger) *ZapLogger {
	if base == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	}
	return &ZapLogger{base: base}
}

func (z *ZapLogger) fields(r Record) []zap.Field {
	fields := make([]zap.Field, 0, len(r.Data)+2)
	if r.Category != "" {
		fields = append(fields, zap.String("category", r.Category))
	}
	if r.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", r.CorrelationID))
	}
	for k, v := range r.Data {
		fields = append(fields, zap.Any(k, v))
	}
	if r.Err != nil {
		fields = append(fields, zap.Error(r.Err))
	}
	return fields
}

func (z *ZapLogger) Debug(r Record)    { z.base.Debug(r.Message, z.fields(r)...) }
func (z *ZapLogger) Info(r Record)     { z.base.Info(r.Message, z.fields(r)...) }
func (z *ZapLogger) Warn(r Record)     { z.base.Warn(r.Message, z.fields(r)...) }
func (z *ZapLogger) Error(r Record)    { z.base.Error(r.Message, z.fields(r)...) }
// Critical logs at error level with a "critical" severity marker rather
// than zap's Fatal, which would os.Exit the process — a side effect this
// capability's contract never asks for.
func (z *ZapLogger) Critical(r Record) {
	fields := append(z.fields(r), zap.String("severity", "critical"))
	z.base.Error(r.Message, fields...)
}
