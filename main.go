package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/examples/coffee"
	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/reflection"
)

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer application.Shutdown()
	log := application.Logger()

	// ── Providers ────────────────────────────────────────────────────────────

	if err := application.Register(&coffee.ServiceProvider{}); err != nil {
		log.Fatal("register coffee provider", zap.Error(err))
	}
	if err := application.Boot(); err != nil {
		log.Fatal("boot", zap.Error(err))
	}

	for _, reg := range application.Registrations() {
		log.Info("binding", zap.Stringer("registration", reg))
	}

	// ── Closed and open generic bindings ─────────────────────────────────────

	water, err := container.Resolve[coffee.WaterService](application.Container)
	if err != nil {
		log.Fatal("resolve water", zap.Error(err))
	}
	log.Info("resolved", zap.String("abstraction", "WaterService"), zap.String("type", fmt.Sprintf("%T", water)))

	beans, err := container.Resolve[coffee.BeanService[coffee.Catimor]](application.Container)
	if err != nil {
		log.Fatal("resolve beans", zap.Error(err))
	}
	log.Info("resolved", zap.String("abstraction", "BeanService[Catimor]"), zap.String("type", fmt.Sprintf("%T", beans)))

	svc, err := container.Resolve[coffee.CoffeeService](application.Container)
	if err != nil {
		log.Fatal("resolve coffee", zap.Error(err))
	}
	log.Info("brewed", zap.String("type", fmt.Sprintf("%T", svc)), zap.String("cup", svc.Brew()))

	// ── Failures ─────────────────────────────────────────────────────────────

	// Typica beans are bound through the open template but never declared.
	_, err = application.Resolve(reflection.TypeOf[coffee.BeanService[coffee.Typica]]())
	var actErr *container.ActivationError
	if errors.As(err, &actErr) {
		log.Warn("activation failed", zap.Stringer("type", actErr.Type), zap.Error(err))
	}

	application.Forget(reflection.TypeOf[coffee.WaterService]())
	_, err = application.Resolve(reflection.TypeOf[coffee.WaterService]())
	var resErr *container.ResolutionError
	if errors.As(err, &resErr) {
		log.Warn("resolution failed", zap.Stringer("abstraction", resErr.Abstraction), zap.Error(err))
	}

	// ── Metrics ──────────────────────────────────────────────────────────────

	gatherer := application.Gatherer()
	if gatherer == nil {
		return
	}
	families, err := gatherer.Gather()
	if err != nil {
		log.Error("gather metrics", zap.Error(err))
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			fields := []zap.Field{zap.String("metric", f.GetName())}
			for _, l := range m.GetLabel() {
				fields = append(fields, zap.String(l.GetName(), l.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				fields = append(fields, zap.Float64("value", m.GetGauge().GetValue()))
			}
			log.Info("metric", fields...)
		}
	}
}
