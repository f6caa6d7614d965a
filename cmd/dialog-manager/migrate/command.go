package migrate

import (
	"github.com/spf13/cobra"

	"github.com/chatassist/dialog-manager/internal/business"
	"github.com/chatassist/dialog-manager/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Dialog Manager migrations",
		"Dialog Manager migrations apply the database schema for records and reminders.",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
