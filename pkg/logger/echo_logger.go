package logger

import (
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// NewEchoRequestLogger는 zap으로 HTTP 요청/응답을 기록하는 Echo 미들웨어를 생성합니다.
// /health 요청은 기록하지 않습니다.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		HandleError:   true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogMethod:     true,
		LogURI:        true,
		LogRoutePath:  true,
		LogRequestID:  true,
		LogStatus:     true,
		LogError:      true,
		LogUserAgent:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request.remote_ip", v.RemoteIP),
				zap.String("request.method", v.Method),
				zap.String("request.uri", v.URI),
				zap.String("request.route", v.RoutePath),
				zap.String("request.user_agent", v.UserAgent),
				zap.String("request.request_id", v.RequestID),
				zap.Int("response.status", v.Status),
				zap.Duration("response.latency", v.Latency),
			}
			if jobNumber := c.Param("jobNumber"); jobNumber != "" {
				fields = append(fields, zap.String("job_number", jobNumber))
			}

			switch {
			case v.Error != nil && v.Status >= 500:
				logger.Error("Request failed", append(fields, zap.Error(v.Error))...)
			case v.Status >= 400:
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	})
}

// EchoZapLogger는 echo.Logger 인터페이스를 구현한 zap 로거 래퍼입니다.
// 레벨/프리픽스/출력 설정은 zap 설정을 따르므로 무시합니다.
type EchoZapLogger struct {
	Logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewEchoZapLogger는 echo.Logger를 구현한 zap 래퍼를 생성합니다.
func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{Logger: logger, sugar: logger.Sugar()}
}

func (l *EchoZapLogger) Output() io.Writer { return &zapWriter{logger: l.Logger} }
func (l *EchoZapLogger) SetOutput(io.Writer) {}
func (l *EchoZapLogger) Level() log.Lvl { return log.INFO }
func (l *EchoZapLogger) SetLevel(log.Lvl) {}
func (l *EchoZapLogger) SetHeader(string) {}
func (l *EchoZapLogger) Prefix() string { return "" }
func (l *EchoZapLogger) SetPrefix(string) {}
func (l *EchoZapLogger) Print(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Printf(f string, i ...interface{}) { l.sugar.Infof(f, i...) }
func (l *EchoZapLogger) Printj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Debug(i ...interface{}) { l.sugar.Debug(i...) }
func (l *EchoZapLogger) Debugf(f string, i ...interface{}) { l.sugar.Debugf(f, i...) }
func (l *EchoZapLogger) Debugj(j log.JSON) { l.Logger.Debug("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Info(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Infof(f string, i ...interface{}) { l.sugar.Infof(f, i...) }
func (l *EchoZapLogger) Infoj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Warn(i ...interface{}) { l.sugar.Warn(i...) }
func (l *EchoZapLogger) Warnf(f string, i ...interface{}) { l.sugar.Warnf(f, i...) }
func (l *EchoZapLogger) Warnj(j log.JSON) { l.Logger.Warn("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Error(i ...interface{}) { l.sugar.Error(i...) }
func (l *EchoZapLogger) Errorf(f string, i ...interface{}) { l.sugar.Errorf(f, i...) }
func (l *EchoZapLogger) Errorj(j log.JSON) { l.Logger.Error("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.sugar.Fatal(i...) }
func (l *EchoZapLogger) Fatalf(f string, i ...interface{}) { l.sugar.Fatalf(f, i...) }
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.Logger.Fatal("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Panic(i ...interface{}) { l.sugar.Panic(i...) }
func (l *EchoZapLogger) Panicf(f string, i ...interface{}) { l.sugar.Panicf(f, i...) }
func (l *EchoZapLogger) Panicj(j log.JSON) { l.Logger.Panic("json_message", zap.Any("json", j)) }

type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Write(p []byte) (n int, err error) {
	w.logger.Info(string(p))
	return len(p), nil
}
