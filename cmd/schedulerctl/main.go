// Command schedulerctl talks to the scheduler backend from the terminal: it lists and creates
// calendars and events, expands recurrences and prints a month grid.
package main

import (
	"os"

	"github.com/recurrence-scheduler/scheduler-web/internal/utils"
	log "github.com/sirupsen/logrus"
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func main() {
	if err := newApp(utils.SystemClock{}).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
