//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"campus-trade/internal/biz"
	"campus-trade/internal/conf"
	"campus-trade/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init cron application.
func wireApp(*conf.Bootstrap, log.Logger) (*CronApp, func(), error) {
	panic(wire.Build(data.ProviderSet, biz.ProviderSet, newCronApp))
}
