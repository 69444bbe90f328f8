package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/ego-component/egorm"
)

func InitDB() *egorm.Component {
	db := egorm.Load("mysql").Build()
	if err := db.AutoMigrate(
		&dao.UserNotificationSettings{},
		&dao.Message{},
		&dao.DeliveryLog{},
	); err != nil {
		panic(err)
	}
	return db
}
