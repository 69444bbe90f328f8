package main

import (
	"gitee.com/flycash/notification-dispatch/internal/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server"
)

func main() {
	egoApp := ego.New()
	app := ioc.InitApp()
	if err := egoApp.Serve(func() server.Server {
		return app.WebServer
	}()).Cron(app.Crons...).Run(); err != nil {
		elog.Panic("startup", elog.Any("err", err))
	}
}
