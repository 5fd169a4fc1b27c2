// Package schema lists the persisted models so tests can build the schema
// with AutoMigrate. Production schemas come from the SQL migrations.
package schema

import (
	activityModel "github.com/festy23/stagegate/internal/activity/model"
	notificationModel "github.com/festy23/stagegate/internal/notification/model"
	projectModel "github.com/festy23/stagegate/internal/project/model"
	redflagModel "github.com/festy23/stagegate/internal/redflag/model"
	reviewModel "github.com/festy23/stagegate/internal/review/model"
	userModel "github.com/festy23/stagegate/internal/user/model"
)

// Models returns every table model in dependency order.
func Models() []any {
	return []any{
		&userModel.User{},
		&projectModel.Project{},
		&projectModel.ProjectMember{},
		&reviewModel.ReviewSession{},
		&reviewModel.ReviewAssignment{},
		&reviewModel.GateReview{},
		&redflagModel.RedFlag{},
		&activityModel.ActivityLog{},
		&notificationModel.Notification{},
	}
}
