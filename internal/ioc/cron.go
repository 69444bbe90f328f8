package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/service/retention"
	"github.com/gotomicro/ego/task/ecron"
)

func Crons(r *retention.Cron) []ecron.Ecron {
	c1 := ecron.Load("cron").Build(ecron.WithJob(r.Do))
	return []ecron.Ecron{c1}
}
