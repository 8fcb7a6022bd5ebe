package main

import (
	"github.com/sirupsen/logrus"
	"github.com/vsariola/autorec/recorder"
)

// RunStatusLog logs the recording status changes until the control loop
// finishes.
func RunStatusLog(broker *recorder.Broker, log logrus.FieldLogger) {
	for {
		select {
		case <-broker.FinishedRecorder:
			return
		case msg := <-broker.ToMonitor:
			entry := log.WithField("param", msg.Param.Name()).WithField("at", msg.Time)
			if msg.Recording {
				entry.Info("recording")
			} else {
				entry.Info("stopped recording")
			}
		}
	}
}
