package bootstrap

import (
	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
)

// ConsumerService is the application glue holding the top-level components.
type ConsumerService struct {
	*MultiQueueConsumer
	libLog.Logger
}

// Run starts the service via the shared Launcher.
func (app *ConsumerService) Run() {
	libCommons.NewLauncher(
		libCommons.WithLogger(app.Logger),
		libCommons.RunApp(ApplicationName, app.MultiQueueConsumer),
	).Run()
}
