package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.WarnLevel)
	logg.SetOutput(os.Stdout)
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	if data != nil {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
			"data":     data,
		}).Error(err.Error())
	} else {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
		}).Error(err.Error())
	}
}

// LogCompensationFailure records a failed inventory compensation write.
// These failures are swallowed on purpose: the primary transaction write
// already succeeded and the design accepts inventory drift over blocking it.
func LogCompensationFailure(logger *logrus.Logger, funcName string, itemID uint, err error) {
	logger.WithFields(logrus.Fields{
		"module":   "compensation",
		"funcName": funcName,
		"item_id":  itemID,
	}).Warn(err.Error())
}
