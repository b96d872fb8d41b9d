package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig задаёт параметры инициализации логгера.
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json, text
	Development bool
	Output      string // путь к файлу; пусто или "stderr"/"stdout" для консоли
}

// Logger оборачивает zap.Logger доменными хелперами.
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

var (
	globalLogger *Logger
	globalMu     sync.Mutex
)

// InitLogger создаёт новый Logger по конфигурации. Никогда не паникует:
// при ошибке открытия файла вывод переключается на stderr.
func InitLogger(cfg LogConfig) *Logger {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "text" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sink := resolveSink(cfg.Output)
	core := zapcore.NewCore(encoder, sink, level)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	zl := zap.New(core, opts...)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

func resolveSink(output string) zapcore.WriteSyncer {
	switch output {
	case "", "stderr":
		return zapcore.AddSync(os.Stderr)
	case "stdout":
		return zapcore.AddSync(os.Stdout)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zapcore.AddSync(os.Stderr)
		}
		return zapcore.AddSync(f)
	}
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetGlobalLogger возвращает процесс-глобальный логгер, создавая его с
// настройками по умолчанию при первом обращении.
func GetGlobalLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// InitGlobalLogger инициализирует и устанавливает глобальный логгер.
func InitGlobalLogger(cfg LogConfig) *Logger {
	l := InitLogger(cfg)
	SetGlobalLogger(l)
	return l
}

// SetGlobalLogger заменяет глобальный логгер (используется в тестах).
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// L — короткий алиас для GetGlobalLogger().
func L() *Logger {
	return GetGlobalLogger()
}

// With возвращает производный логгер с дополнительными полями.
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.Logger.With(fields...)
	return &Logger{Logger: child, sugar: child.Sugar()}
}

func (l *Logger) WithComponent(name string) *Logger  { return l.With(Component(name)) }
func (l *Logger) WithKeyword(keyword string) *Logger { return l.With(Keyword(keyword)) }
func (l *Logger) WithAuctionID(id string) *Logger    { return l.With(AuctionID(id)) }
func (l *Logger) WithJobName(name string) *Logger    { return l.With(JobName(name)) }

// Sugar возвращает *zap.SugaredLogger для printf-style вызовов.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// Глобальные функции логирования — делегируют глобальному логгеру.

func Debug(msg string, fields ...zap.Field) { GetGlobalLogger().Logger.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetGlobalLogger().Logger.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetGlobalLogger().Logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetGlobalLogger().Logger.Error(msg, fields...) }

func Debugf(template string, args ...interface{}) { GetGlobalLogger().sugar.Debugf(template, args...) }
func Infof(template string, args ...interface{})  { GetGlobalLogger().sugar.Infof(template, args...) }
func Warnf(template string, args ...interface{})  { GetGlobalLogger().sugar.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { GetGlobalLogger().sugar.Errorf(template, args...) }

// Доменные конструкторы полей — используются по всем пакетам вместо
// разрозненных zap.String/zap.Int вызовов, чтобы ключи оставались
// согласованными в structured-логах (дашборды, алерты).

func Keyword(v string) zap.Field         { return zap.String("keyword", v) }
func AuctionID(v string) zap.Field       { return zap.String("auction_id", v) }
func ASIN(v string) zap.Field            { return zap.String("asin", v) }
func SKU(v string) zap.Field             { return zap.String("sku", v) }
func Strategy(v string) zap.Field        { return zap.String("strategy", v) }
func TokensLeft(v int) zap.Field         { return zap.Int("tokens_left", v) }
func GrossProfit(v int) zap.Field        { return zap.Int("gross_profit", v) }
func GrossMarginPct(v float64) zap.Field { return zap.Float64("gross_margin_pct", v) }
func Component(v string) zap.Field       { return zap.String("component", v) }
func JobName(v string) zap.Field         { return zap.String("job", v) }
func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Latency(v float64) zap.Field        { return zap.Float64("latency_ms", v) }

// Переэкспортированные обёртки над стандартными полями zap — позволяют
// вызывающему коду импортировать только pkg/utils, а не go.uber.org/zap.
func String(key, val string) zap.Field          { return zap.String(key, val) }
func Int(key string, val int) zap.Field         { return zap.Int(key, val) }
func Int64(key string, val int64) zap.Field     { return zap.Int64(key, val) }
func Float64(key string, val float64) zap.Field { return zap.Float64(key, val) }
func Bool(key string, val bool) zap.Field       { return zap.Bool(key, val) }
func Err(err error) zap.Field                   { return zap.Error(err) }
func Any(key string, val interface{}) zap.Field { return zap.Any(key, val) }

// fieldsToInterface конвертирует zap.Field в чередующийся key/value слайс
// для использования с sugared-логгером.
func fieldsToInterface(fields []zap.Field) []interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	out := make([]interface{}, 0, len(enc.Fields)*2)
	for k, v := range enc.Fields {
		out = append(out, k, v)
	}
	return out
}
