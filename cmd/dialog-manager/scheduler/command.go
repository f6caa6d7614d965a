package scheduler

import (
	"github.com/spf13/cobra"

	"github.com/chatassist/dialog-manager/internal/business"
	"github.com/chatassist/dialog-manager/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"scheduler",
		"Dialog Manager scheduler",
		"Dialog Manager scheduler delivers due and recurring reminders, sends payroll reports and cleans up idle wizards.",
		buildInfo,
		cmdutils.RunAsService,
		business.SchedulerMain,
	)
}
