package ioc

import (
	notificationweb "gitee.com/flycash/notification-dispatch/internal/web/notification"
	settingsweb "gitee.com/flycash/notification-dispatch/internal/web/settings"
	"github.com/gotomicro/ego/server/egin"
)

func InitWebServer(
	notificationHdl *notificationweb.Handler,
	settingsHdl *settingsweb.Handler,
) *egin.Component {
	server := egin.Load("server").Build()
	notificationHdl.PublicRoutes(server.Engine)
	settingsHdl.PublicRoutes(server.Engine)
	return server
}
