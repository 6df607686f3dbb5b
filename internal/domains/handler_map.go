package domains

import (
	"oip/dpnotify/internal/domains/common"
	"oip/dpnotify/internal/domains/common/job"
	"oip/dpnotify/internal/domains/handlers/alertmail"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	job.ActionOrderAlertMail: alertmail.NewAlertMailHandler,
}
