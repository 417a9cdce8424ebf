package core

import (
	"go.uber.org/zap"

	"foxypack/pkg/foxypack"
)

// ZapObserver logs the routing decisions of a controller.
type ZapObserver struct {
	logger *zap.Logger
}

// NewZapObserver creates an observer writing to logger.
func NewZapObserver(logger *zap.Logger) *ZapObserver {
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) HandlerBypassed(role foxypack.Role, handler string, err error) {
	o.logger.Debug("Handler bypassed",
		zap.String("role", string(role)),
		zap.String("handler", handler),
		zap.Error(err))
}

func (o *ZapObserver) ChainResolved(role foxypack.Role, handler string) {
	o.logger.Info("Chain resolved",
		zap.String("role", string(role)),
		zap.String("handler", handler))
}

func (o *ZapObserver) ChainExhausted(role foxypack.Role) {
	o.logger.Info("No handler produced a result",
		zap.String("role", string(role)))
}

// MultiObserver fans routing decisions out to several observers.
type MultiObserver []foxypack.Observer

func (m MultiObserver) HandlerBypassed(role foxypack.Role, handler string, err error) {
	for _, o := range m {
		o.HandlerBypassed(role, handler, err)
	}
}

func (m MultiObserver) ChainResolved(role foxypack.Role, handler string) {
	for _, o := range m {
		o.ChainResolved(role, handler)
	}
}

func (m MultiObserver) ChainExhausted(role foxypack.Role) {
	for _, o := range m {
		o.ChainExhausted(role)
	}
}
